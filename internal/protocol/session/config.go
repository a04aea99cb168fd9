package session

import (
	"encoding/binary"
	"time"

	"github.com/danmuck/sendit/internal/protocol/frame"
)

// DefaultMaxFrameBytes bounds total_size for network peers.
const DefaultMaxFrameBytes uint64 = 8 * 1024 * 1024

// Config defines transport timeouts and the frame wire options. A zero
// timeout disables that deadline.
type Config struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	ByteOrder      binary.ByteOrder
	MaxFrameBytes  uint64
}

func DefaultConfig() Config {
	return Config{
		ConnectTimeout: 5 * time.Second,
		ByteOrder:      binary.LittleEndian,
		MaxFrameBytes:  DefaultMaxFrameBytes,
	}
}

func (c Config) FrameOptions() frame.Options {
	return frame.Options{
		ByteOrder:     c.ByteOrder,
		MaxFrameBytes: c.MaxFrameBytes,
	}
}
