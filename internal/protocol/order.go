package protocol

import (
	"encoding/binary"
	"fmt"
	"strings"
)

const (
	OrderLittle = "little"
	OrderBig    = "big"
)

// ParseByteOrder maps a configured byte order name onto binary.ByteOrder.
// An empty name selects little-endian.
func ParseByteOrder(name string) (binary.ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", OrderLittle, "le", "little-endian", "littleendian":
		return binary.LittleEndian, nil
	case OrderBig, "be", "big-endian", "bigendian", "network":
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownByteOrder, name)
	}
}

// ByteOrderName is the inverse of ParseByteOrder. Nil reports little.
func ByteOrderName(order binary.ByteOrder) string {
	if order == binary.BigEndian {
		return OrderBig
	}
	return OrderLittle
}
