// Package server runs a TCP frame server: one decode loop per accepted
// connection, each with its own session.Conn.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/danmuck/sendit/internal/observability"
	"github.com/danmuck/sendit/internal/protocol/frame"
	"github.com/danmuck/sendit/internal/protocol/segment"
	"github.com/danmuck/sendit/internal/protocol/session"
	"github.com/rs/zerolog"
)

// Handler receives every decoded frame. Returning an error drops the
// connection the frame arrived on.
type Handler interface {
	HandleFrame(remote string, segs []segment.Segment) error
}

type HandlerFunc func(remote string, segs []segment.Segment) error

func (f HandlerFunc) HandleFrame(remote string, segs []segment.Segment) error {
	return f(remote, segs)
}

// LogHandler logs the readable form of every frame.
func LogHandler(logger zerolog.Logger) Handler {
	return HandlerFunc(func(remote string, segs []segment.Segment) error {
		logger.Info().
			Str("remote", remote).
			Int("segments", len(segs)).
			Strs("data", segment.Readable(segs)).
			Msg("frame received")
		return nil
	})
}

type Config struct {
	Name    string
	Addr    string
	Session session.Config
}

type Server struct {
	cfg     Config
	handler Handler
	logger  zerolog.Logger

	active atomic.Int64
	wg     sync.WaitGroup
	mu     sync.Mutex
	conns  map[*session.Conn]struct{}
}

func New(cfg Config, h Handler, logger zerolog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		handler: h,
		logger:  logger.With().Str("node", cfg.Name).Logger(),
		conns:   make(map[*session.Conn]struct{}),
	}
}

// ActiveConns reports connections currently inside a decode loop.
func (s *Server) ActiveConns() int64 {
	return s.active.Load()
}

func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", strings.TrimSpace(s.cfg.Addr))
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then closes every open
// connection and waits for their loops to exit. It returns nil on a
// ctx-driven shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("server listening")

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		}
		_ = ln.Close()
	}()

	for {
		c, err := ln.Accept()
		if err != nil {
			s.closeConns()
			s.wg.Wait()
			if ctx.Err() != nil {
				s.logger.Info().Msg("server stopped")
				return nil
			}
			return err
		}
		conn := session.NewConn(c, s.cfg.Session)
		s.track(conn)
		s.wg.Add(1)
		go s.handleConn(ctx, conn)
	}
}

// handleConn decodes frames until the peer closes, a read fails, or the
// handler rejects a frame.
func (s *Server) handleConn(ctx context.Context, conn *session.Conn) {
	defer s.wg.Done()
	defer s.untrack(conn)

	remote := conn.RemoteAddr()
	active := s.active.Add(1)
	observability.ConnOpened(s.cfg.Name)
	s.logger.Info().Str("remote", remote).Int64("active_clients", active).Msg("client connected")
	defer func() {
		_ = conn.Close()
		remaining := s.active.Add(-1)
		observability.ConnClosed(s.cfg.Name)
		s.logger.Info().Str("remote", remote).Int64("active_clients", remaining).Msg("client disconnected")
	}()

	for {
		segs, err := conn.ReadFrame()
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
			case ctx.Err() != nil:
			default:
				observability.RecordFrameError(s.cfg.Name, observability.DirectionIn)
				s.logger.Warn().Str("remote", remote).Err(err).Msg("frame decode failed")
			}
			return
		}
		observability.RecordFrame(s.cfg.Name, observability.DirectionIn, len(segs), frame.TotalSize(segs))
		if err := s.handler.HandleFrame(remote, segs); err != nil {
			s.logger.Warn().Str("remote", remote).Err(err).Msg("frame rejected by handler")
			return
		}
	}
}

func (s *Server) track(conn *session.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[conn] = struct{}{}
}

func (s *Server) untrack(conn *session.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
	}
}
