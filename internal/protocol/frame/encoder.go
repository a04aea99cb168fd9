package frame

import (
	"fmt"
	"io"
	"math"

	"github.com/danmuck/sendit/internal/protocol"
	"github.com/danmuck/sendit/internal/protocol/segment"
)

// Encoder queues segments and serializes them as one frame per Encode call.
// It is not safe for concurrent use.
type Encoder struct {
	opts    Options
	pending []segment.Segment
}

func NewEncoder(opts Options) *Encoder {
	return &Encoder{opts: opts}
}

// Add queues seg behind the already pending segments.
func (e *Encoder) Add(seg segment.Segment) {
	e.pending = append(e.pending, seg)
}

func (e *Encoder) AddText(s string) {
	e.Add(segment.FromText(s))
}

// AddRaw queues a copy of b.
func (e *Encoder) AddRaw(b []byte) {
	e.Add(segment.FromBytes(b))
}

// Len reports the number of pending segments.
func (e *Encoder) Len() int {
	return len(e.pending)
}

func (e *Encoder) TotalSize() uint64 {
	return TotalSize(e.pending)
}

// Clear drops all pending segments without writing.
func (e *Encoder) Clear() {
	clear(e.pending)
	e.pending = e.pending[:0]
}

// Encode writes the pending segments to w as one frame and clears them.
// On error the pending list is left unchanged; bytes already handed to w
// are not rolled back and the sink should be considered corrupt.
func (e *Encoder) Encode(w io.Writer) error {
	if err := e.EncodeWithoutClearing(w); err != nil {
		return err
	}
	e.Clear()
	return nil
}

// EncodeWithoutClearing writes the pending segments to w as one frame and
// keeps them queued, so the same frame can be sent again.
func (e *Encoder) EncodeWithoutClearing(w io.Writer) error {
	total, err := e.validate()
	if err != nil {
		return err
	}

	var head [protocol.MaxVarintLen]byte
	if err := writeFull(w, protocol.AppendVarint(head[:0], total)); err != nil {
		return fmt.Errorf("frame: write total size: %w", err)
	}

	order := e.opts.order()
	var prefix [LengthPrefixLen]byte
	for i, seg := range e.pending {
		order.PutUint32(prefix[:], uint32(seg.Len()))
		if err := writeFull(w, prefix[:]); err != nil {
			return fmt.Errorf("frame: write segment %d length: %w", i, err)
		}
		if seg.Len() == 0 {
			continue
		}
		if err := writeFull(w, seg.Bytes()); err != nil {
			return fmt.Errorf("frame: write segment %d payload: %w", i, err)
		}
	}
	return nil
}

// AppendFrame appends the encoded frame to dst. The pending list is not
// modified.
func (e *Encoder) AppendFrame(dst []byte) ([]byte, error) {
	total, err := e.validate()
	if err != nil {
		return dst, err
	}
	dst = protocol.AppendVarint(dst, total)
	order := e.opts.order()
	var prefix [LengthPrefixLen]byte
	for _, seg := range e.pending {
		order.PutUint32(prefix[:], uint32(seg.Len()))
		dst = append(dst, prefix[:]...)
		dst = append(dst, seg.Bytes()...)
	}
	return dst, nil
}

func (e *Encoder) validate() (uint64, error) {
	for i, seg := range e.pending {
		if uint64(seg.Len()) > math.MaxUint32 {
			return 0, fmt.Errorf("%w: segment %d has %d bytes", ErrSegmentTooLarge, i, seg.Len())
		}
	}
	total := e.TotalSize()
	if err := e.opts.checkTotal(total); err != nil {
		return 0, err
	}
	return total, nil
}
