package session

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"time"

	"github.com/danmuck/sendit/internal/protocol/frame"
	"github.com/danmuck/sendit/internal/protocol/segment"
)

// Conn binds one net.Conn to a frame decoder. Reads and sends must each be
// serialized by the caller; one reader and one sender may run concurrently.
type Conn struct {
	conn net.Conn
	cfg  Config
	dec  *frame.Decoder
	bw   *bufio.Writer
}

func NewConn(c net.Conn, cfg Config) *Conn {
	return &Conn{
		conn: c,
		cfg:  cfg,
		dec:  frame.NewDecoder(bufio.NewReader(c), cfg.FrameOptions()),
		bw:   bufio.NewWriter(c),
	}
}

// Dial opens a TCP connection to addr bounded by ctx and cfg.ConnectTimeout.
func Dial(ctx context.Context, addr string, cfg Config) (*Conn, error) {
	d := net.Dialer{Timeout: cfg.ConnectTimeout}
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("session: dial %s: %w", addr, err)
	}
	return NewConn(c, cfg), nil
}

// ReadFrame waits for the next frame. io.EOF means the peer closed cleanly
// between frames; any other error leaves the stream desynchronized.
func (c *Conn) ReadFrame() ([]segment.Segment, error) {
	if c.cfg.ReadTimeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout)); err != nil {
			return nil, err
		}
	}
	return c.dec.Decode()
}

// Send writes the encoder's pending segments as one frame and clears them
// once the frame has been flushed. On failure the encoder keeps its
// segments and the connection should be dropped.
func (c *Conn) Send(enc *frame.Encoder) error {
	if err := c.send(enc); err != nil {
		return err
	}
	enc.Clear()
	return nil
}

// SendWithoutClearing writes the pending segments as one frame and leaves
// them queued for another send.
func (c *Conn) SendWithoutClearing(enc *frame.Encoder) error {
	return c.send(enc)
}

func (c *Conn) send(enc *frame.Encoder) error {
	if c.cfg.WriteTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
			return err
		}
	}
	if err := enc.EncodeWithoutClearing(c.bw); err != nil {
		c.bw.Reset(c.conn)
		return err
	}
	if err := c.bw.Flush(); err != nil {
		c.bw.Reset(c.conn)
		return fmt.Errorf("session: flush frame: %w", err)
	}
	return nil
}

// FrameOptions reports the wire options encoders for this connection must use.
func (c *Conn) FrameOptions() frame.Options {
	return c.cfg.FrameOptions()
}

func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

func (c *Conn) Close() error {
	return c.conn.Close()
}
