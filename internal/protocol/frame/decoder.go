package frame

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/sendit/internal/protocol"
	"github.com/danmuck/sendit/internal/protocol/segment"
)

// payloads above this size are read incrementally so a corrupt length
// cannot force one huge allocation before the stream runs dry
const readChunk = 64 * 1024

// Decoder reads successive frames from one source. It is not safe for
// concurrent use and must be the only reader of its source.
type Decoder struct {
	r      io.Reader
	br     io.ByteReader
	opts   Options
	prefix [LengthPrefixLen]byte
}

func NewDecoder(r io.Reader, opts Options) *Decoder {
	return &Decoder{
		r:    r,
		br:   protocol.ByteReader(r),
		opts: opts,
	}
}

// Decode blocks until one full frame has been read and returns its segments
// in wire order.
//
// io.EOF is returned unwrapped when the source ends cleanly between frames.
// A source that ends inside a frame yields io.ErrUnexpectedEOF. No partial
// result is ever returned; after an error the stream position is unknown.
func (d *Decoder) Decode() ([]segment.Segment, error) {
	total, err := protocol.ReadVarint(d.br)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("frame: read total size: %w", err)
	}
	if err := d.opts.checkTotal(total); err != nil {
		return nil, err
	}

	order := d.opts.order()
	segs := make([]segment.Segment, 0)
	var consumed uint64
	// lengths that overshoot total_size still end the loop
	for consumed < total {
		if _, err := io.ReadFull(d.r, d.prefix[:]); err != nil {
			return nil, fmt.Errorf("frame: read segment %d length: %w", len(segs), unexpected(err))
		}
		n := order.Uint32(d.prefix[:])
		payload, err := readPayload(d.r, n)
		if err != nil {
			return nil, fmt.Errorf("frame: read segment %d payload: %w", len(segs), unexpected(err))
		}
		segs = append(segs, segment.Wrap(payload))
		consumed += LengthPrefixLen + uint64(n)
	}
	return segs, nil
}

// DecodeFrame decodes the first frame in b. Bytes after it are ignored.
func DecodeFrame(b []byte, opts Options) ([]segment.Segment, error) {
	segs, err := NewDecoder(bytes.NewReader(b), opts).Decode()
	if err == io.EOF {
		return nil, fmt.Errorf("frame: read total size: %w", io.ErrUnexpectedEOF)
	}
	return segs, err
}

func readPayload(r io.Reader, n uint32) ([]byte, error) {
	if n <= readChunk {
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		return buf, nil
	}
	var buf bytes.Buffer
	buf.Grow(readChunk)
	if _, err := io.CopyN(&buf, r, int64(n)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// unexpected maps a clean EOF inside a frame to io.ErrUnexpectedEOF.
func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
