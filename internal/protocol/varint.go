package protocol

import (
	"encoding/binary"
	"io"
)

// MaxVarintLen is the longest varint encoding of a uint64.
const MaxVarintLen = binary.MaxVarintLen64

// AppendVarint appends v to dst as an unsigned LEB128 varint: seven payload
// bits per byte, low group first, high bit set on every byte but the last.
func AppendVarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// VarintLen returns the encoded length of v in bytes.
func VarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// ReadVarint reads one unsigned LEB128 varint from r.
//
// io.EOF is returned only when r is exhausted before the first byte; running
// out of input after that yields io.ErrUnexpectedEOF.
func ReadVarint(r io.ByteReader) (uint64, error) {
	var x uint64
	var s uint
	for i := 0; i < MaxVarintLen; i++ {
		b, err := r.ReadByte()
		if err != nil {
			if i > 0 && err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		// the tenth byte may only carry bit 63
		if i == MaxVarintLen-1 && b > 1 {
			return 0, ErrVarintOverflow
		}
		x |= uint64(b&0x7f) << s
		if b&0x80 == 0 {
			return x, nil
		}
		s += 7
	}
	return 0, ErrVarintOverflow
}

// ByteReader returns r as an io.ByteReader. Readers without ReadByte are
// read one byte at a time so nothing past the varint is consumed.
func ByteReader(r io.Reader) io.ByteReader {
	if br, ok := r.(io.ByteReader); ok {
		return br
	}
	return &singleByteReader{r: r}
}

type singleByteReader struct {
	r   io.Reader
	buf [1]byte
}

func (s *singleByteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(s.r, s.buf[:]); err != nil {
		return 0, err
	}
	return s.buf[0], nil
}
