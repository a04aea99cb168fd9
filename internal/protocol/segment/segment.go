// Package segment defines the opaque byte buffer carried by a frame.
package segment

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// Segment is one owned, variable-length byte buffer. It carries no type tag;
// its identity is its raw content.
type Segment struct {
	buf []byte
}

// FromBytes copies b into a new segment. Any binary content is allowed.
func FromBytes(b []byte) Segment {
	return Segment{buf: bytes.Clone(b)}
}

// Wrap takes ownership of b without copying. The caller must not touch b
// afterwards.
func Wrap(b []byte) Segment {
	return Segment{buf: b}
}

// FromText stores the UTF-8 bytes of s.
func FromText(s string) Segment {
	return Segment{buf: []byte(s)}
}

// Append extends s with the bytes of other. The result never shares spare
// capacity with copies of s taken earlier.
func (s *Segment) Append(other Segment) {
	s.buf = append(s.buf[:len(s.buf):len(s.buf)], other.buf...)
}

func (s Segment) Len() int {
	return len(s.buf)
}

// Bytes exposes the underlying buffer for I/O. It must be treated as
// read-only.
func (s Segment) Bytes() []byte {
	return s.buf
}

// String decodes the buffer as UTF-8. Each maximal invalid subpart becomes
// one U+FFFD, so "a\xff\xfeb" reads as "a\ufffd\ufffdb" and a truncated
// multi-byte sequence reads as a single U+FFFD.
func (s Segment) String() string {
	if utf8.Valid(s.buf) {
		return string(s.buf)
	}
	var b strings.Builder
	b.Grow(len(s.buf) + utf8.UTFMax)
	for p := s.buf; len(p) > 0; {
		r, n := utf8.DecodeRune(p)
		if r == utf8.RuneError && n == 1 {
			b.WriteRune(utf8.RuneError)
			p = p[maximalSubpart(p):]
			continue
		}
		b.Write(p[:n])
		p = p[n:]
	}
	return b.String()
}

// maximalSubpart reports how many leading bytes of p start a well-formed
// sequence that p fails to complete. It is at least one.
func maximalSubpart(p []byte) int {
	lo, hi, need := byte(0x80), byte(0xbf), 0
	switch c := p[0]; {
	case c >= 0xc2 && c <= 0xdf:
		need = 1
	case c == 0xe0:
		lo, need = 0xa0, 2
	case c == 0xed:
		hi, need = 0x9f, 2
	case c >= 0xe1 && c <= 0xef:
		need = 2
	case c == 0xf0:
		lo, need = 0x90, 3
	case c >= 0xf1 && c <= 0xf3:
		need = 3
	case c == 0xf4:
		hi, need = 0x8f, 3
	default:
		return 1
	}
	n := 1
	for ; n <= need && n < len(p); n++ {
		if p[n] < lo || p[n] > hi {
			break
		}
		lo, hi = 0x80, 0xbf
	}
	return n
}

func Equal(a, b Segment) bool {
	return bytes.Equal(a.buf, b.buf)
}

// Readable returns the display string of every segment, in order.
func Readable(segs []Segment) []string {
	out := make([]string, 0, len(segs))
	for _, seg := range segs {
		out = append(out, seg.String())
	}
	return out
}
