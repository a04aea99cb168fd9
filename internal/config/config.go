package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/sendit/internal/protocol"
	"github.com/danmuck/sendit/internal/protocol/session"
)

var ErrInvalidConfig = errors.New("config: invalid")

type ServerConfig struct {
	Name          string
	Addr          string
	MetricsAddr   string
	CorsOrigins   []string
	ByteOrder     string
	MaxFrameBytes uint64
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
}

type ClientConfig struct {
	Addr           string
	ByteOrder      string
	MaxFrameBytes  uint64
	ConnectTimeout time.Duration
	WriteTimeout   time.Duration
}

type serverFile struct {
	Name          string   `toml:"name"`
	Addr          string   `toml:"addr"`
	MetricsAddr   string   `toml:"metrics_addr"`
	CorsOrigins   []string `toml:"cors_origins"`
	ByteOrder     string   `toml:"byte_order"`
	MaxFrameBytes int64    `toml:"max_frame_bytes"`
	ReadTimeout   string   `toml:"read_timeout"`
	WriteTimeout  string   `toml:"write_timeout"`
}

type clientFile struct {
	Addr           string `toml:"addr"`
	ByteOrder      string `toml:"byte_order"`
	MaxFrameBytes  int64  `toml:"max_frame_bytes"`
	ConnectTimeout string `toml:"connect_timeout"`
	WriteTimeout   string `toml:"write_timeout"`
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Name:          "senditd",
		Addr:          ":3333",
		ByteOrder:     protocol.OrderLittle,
		MaxFrameBytes: session.DefaultMaxFrameBytes,
	}
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Addr:           "localhost:3333",
		ByteOrder:      protocol.OrderLittle,
		MaxFrameBytes:  session.DefaultMaxFrameBytes,
		ConnectTimeout: 5 * time.Second,
	}
}

// LoadServerConfig reads path and applies every key it defines over
// DefaultServerConfig.
func LoadServerConfig(path string) (ServerConfig, error) {
	cfg := DefaultServerConfig()
	var raw serverFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return ServerConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	if meta.IsDefined("name") {
		cfg.Name = strings.TrimSpace(raw.Name)
	}
	if meta.IsDefined("addr") {
		cfg.Addr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}
	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = raw.CorsOrigins
	}
	if meta.IsDefined("byte_order") {
		cfg.ByteOrder = strings.TrimSpace(raw.ByteOrder)
	}
	if meta.IsDefined("max_frame_bytes") {
		if raw.MaxFrameBytes < 0 {
			return ServerConfig{}, fmt.Errorf("%w: max_frame_bytes must not be negative", ErrInvalidConfig)
		}
		cfg.MaxFrameBytes = uint64(raw.MaxFrameBytes)
	}
	if meta.IsDefined("read_timeout") {
		if cfg.ReadTimeout, err = parseDuration("read_timeout", raw.ReadTimeout); err != nil {
			return ServerConfig{}, err
		}
	}
	if meta.IsDefined("write_timeout") {
		if cfg.WriteTimeout, err = parseDuration("write_timeout", raw.WriteTimeout); err != nil {
			return ServerConfig{}, err
		}
	}

	if err := ValidateServerConfig(cfg); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

// LoadClientConfig reads path and applies every key it defines over
// DefaultClientConfig.
func LoadClientConfig(path string) (ClientConfig, error) {
	cfg := DefaultClientConfig()
	var raw clientFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return ClientConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	if meta.IsDefined("addr") {
		cfg.Addr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("byte_order") {
		cfg.ByteOrder = strings.TrimSpace(raw.ByteOrder)
	}
	if meta.IsDefined("max_frame_bytes") {
		if raw.MaxFrameBytes < 0 {
			return ClientConfig{}, fmt.Errorf("%w: max_frame_bytes must not be negative", ErrInvalidConfig)
		}
		cfg.MaxFrameBytes = uint64(raw.MaxFrameBytes)
	}
	if meta.IsDefined("connect_timeout") {
		if cfg.ConnectTimeout, err = parseDuration("connect_timeout", raw.ConnectTimeout); err != nil {
			return ClientConfig{}, err
		}
	}
	if meta.IsDefined("write_timeout") {
		if cfg.WriteTimeout, err = parseDuration("write_timeout", raw.WriteTimeout); err != nil {
			return ClientConfig{}, err
		}
	}

	if err := ValidateClientConfig(cfg); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

func ValidateServerConfig(cfg ServerConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("%w: server config missing name", ErrInvalidConfig)
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("%w: server config missing addr", ErrInvalidConfig)
	}
	if _, err := protocol.ParseByteOrder(cfg.ByteOrder); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	}
	return nil
}

func ValidateClientConfig(cfg ClientConfig) error {
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("%w: client config missing addr", ErrInvalidConfig)
	}
	if _, err := protocol.ParseByteOrder(cfg.ByteOrder); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if cfg.ConnectTimeout < 0 || cfg.WriteTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Session converts a validated server config into connection settings.
func (c ServerConfig) Session() session.Config {
	order, _ := protocol.ParseByteOrder(c.ByteOrder)
	cfg := session.DefaultConfig()
	cfg.ByteOrder = order
	cfg.MaxFrameBytes = c.MaxFrameBytes
	cfg.ReadTimeout = c.ReadTimeout
	cfg.WriteTimeout = c.WriteTimeout
	return cfg
}

// Session converts a validated client config into connection settings.
func (c ClientConfig) Session() session.Config {
	order, _ := protocol.ParseByteOrder(c.ByteOrder)
	cfg := session.DefaultConfig()
	cfg.ByteOrder = order
	cfg.MaxFrameBytes = c.MaxFrameBytes
	cfg.ConnectTimeout = c.ConnectTimeout
	cfg.WriteTimeout = c.WriteTimeout
	return cfg
}

func parseDuration(key, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
