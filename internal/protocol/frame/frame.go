package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/sendit/internal/protocol/segment"
)

// LengthPrefixLen is the size of the u32 length field ahead of each segment.
const LengthPrefixLen = 4

var (
	ErrFrameTooLarge   = errors.New("frame: frame too large")
	ErrSegmentTooLarge = errors.New("frame: segment too large")
)

// Options selects the segment length byte order and bounds frame size.
// Writer and reader on one wire must agree on ByteOrder; the frame does not
// carry it.
type Options struct {
	ByteOrder binary.ByteOrder
	// MaxFrameBytes caps total_size. Zero disables the check.
	MaxFrameBytes uint64
}

func DefaultOptions() Options {
	return Options{ByteOrder: binary.LittleEndian}
}

func (o Options) order() binary.ByteOrder {
	if o.ByteOrder == nil {
		return binary.LittleEndian
	}
	return o.ByteOrder
}

func (o Options) checkTotal(total uint64) error {
	if o.MaxFrameBytes > 0 && total > o.MaxFrameBytes {
		return fmt.Errorf("%w: total_size=%d max=%d", ErrFrameTooLarge, total, o.MaxFrameBytes)
	}
	return nil
}

// TotalSize is the frame's total_size field: the sum over segments of the
// length prefix plus payload.
func TotalSize(segs []segment.Segment) uint64 {
	var total uint64
	for _, seg := range segs {
		total += LengthPrefixLen + uint64(seg.Len())
	}
	return total
}

func writeFull(w io.Writer, b []byte) error {
	n, err := w.Write(b)
	if err != nil {
		return err
	}
	if n < len(b) {
		return io.ErrShortWrite
	}
	return nil
}
