package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/danmuck/sendit/internal/config"
	"github.com/danmuck/sendit/internal/logging"
	"github.com/danmuck/sendit/internal/observability"
	"github.com/danmuck/sendit/internal/protocol/frame"
	"github.com/danmuck/sendit/internal/protocol/session"
	"github.com/rs/zerolog/log"
)

type options struct {
	configPath string
	addr       string
	stdin      bool
	lines      bool
	repeat     int
	segments   []string
}

// node labels the client's outbound frame metrics.
const node = "sendit"

var errNothingToSend = errors.New("nothing to send: pass segments as arguments or use -stdin/-lines")

func main() {
	opts := parseFlags()
	logging.ConfigureRuntime()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, opts, os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "sendit: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "client config path (defaults apply when empty)")
	flag.StringVar(&opts.addr, "addr", "", "server address override")
	flag.BoolVar(&opts.stdin, "stdin", false, "append standard input, one segment per read chunk")
	flag.BoolVar(&opts.lines, "lines", false, "append standard input, one segment per line")
	flag.IntVar(&opts.repeat, "repeat", 1, "send the same frame this many times")
	flag.Parse()
	opts.segments = flag.Args()
	return opts
}

func loadConfig(opts options) (config.ClientConfig, error) {
	cfg := config.DefaultClientConfig()
	if strings.TrimSpace(opts.configPath) != "" {
		loaded, err := config.LoadClientConfig(opts.configPath)
		if err != nil {
			return config.ClientConfig{}, err
		}
		cfg = loaded
	}
	if v := strings.TrimSpace(opts.addr); v != "" {
		cfg.Addr = v
	}
	if err := config.ValidateClientConfig(cfg); err != nil {
		return config.ClientConfig{}, err
	}
	return cfg, nil
}

func run(ctx context.Context, opts options, stdin io.Reader) error {
	if opts.repeat < 1 {
		return fmt.Errorf("repeat must be at least 1, got %d", opts.repeat)
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	enc := frame.NewEncoder(cfg.Session().FrameOptions())
	if err := fill(enc, opts, stdin); err != nil {
		return err
	}
	if enc.Len() == 0 {
		return errNothingToSend
	}

	conn, err := session.Dial(ctx, cfg.Addr, cfg.Session())
	if err != nil {
		return err
	}
	defer conn.Close()
	return send(conn, enc, opts.repeat)
}

// fill queues argument segments first, then standard input when requested.
func fill(enc *frame.Encoder, opts options, stdin io.Reader) error {
	for _, s := range opts.segments {
		enc.AddText(s)
	}
	switch {
	case opts.lines:
		sc := bufio.NewScanner(stdin)
		for sc.Scan() {
			enc.AddText(sc.Text())
		}
		if err := sc.Err(); err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	case opts.stdin:
		if _, err := io.Copy(frame.NewSegmentWriter(enc), stdin); err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	}
	return nil
}

func send(conn *session.Conn, enc *frame.Encoder, repeat int) error {
	segments, total := enc.Len(), enc.TotalSize()
	for i := 1; i <= repeat; i++ {
		sendFrame := conn.SendWithoutClearing
		if i == repeat {
			sendFrame = conn.Send
		}
		if err := sendFrame(enc); err != nil {
			observability.RecordFrameError(node, observability.DirectionOut)
			return fmt.Errorf("send frame %d: %w", i, err)
		}
		observability.RecordFrame(node, observability.DirectionOut, segments, total)
	}
	log.Info().
		Str("remote", conn.RemoteAddr()).
		Int("segments", segments).
		Uint64("total_size", total).
		Int("repeat", repeat).
		Msg("frame sent")
	return nil
}
