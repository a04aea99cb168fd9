package protocol

import "errors"

var (
	ErrVarintOverflow   = errors.New("protocol: varint overflows uint64")
	ErrUnknownByteOrder = errors.New("protocol: unknown byte order")
)
