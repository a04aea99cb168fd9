package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/danmuck/sendit/internal/config"
	"github.com/danmuck/sendit/internal/logging"
	"github.com/danmuck/sendit/internal/observability"
	"github.com/danmuck/sendit/internal/server"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "", "server config path (defaults apply when empty)")
	addr := flag.String("addr", "", "listen address override")
	flag.Parse()

	logging.ConfigureRuntime()
	cfg, err := loadConfig(*configPath, *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "senditd: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "senditd: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path, addrOverride string) (config.ServerConfig, error) {
	cfg := config.DefaultServerConfig()
	if strings.TrimSpace(path) != "" {
		loaded, err := config.LoadServerConfig(path)
		if err != nil {
			return config.ServerConfig{}, err
		}
		cfg = loaded
	}
	if v := strings.TrimSpace(addrOverride); v != "" {
		cfg.Addr = v
	}
	if err := config.ValidateServerConfig(cfg); err != nil {
		return config.ServerConfig{}, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg config.ServerConfig) error {
	if cfg.MetricsAddr != "" {
		go serveOps(ctx, cfg)
	}
	srv := server.New(server.Config{
		Name:    cfg.Name,
		Addr:    cfg.Addr,
		Session: cfg.Session(),
	}, server.LogHandler(log.Logger), log.Logger)
	return srv.ListenAndServe(ctx)
}

// serveOps exposes /health and /metrics until ctx is done.
func serveOps(ctx context.Context, cfg config.ServerConfig) {
	httpSrv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           observability.NewRouter(cfg.Name, log.Logger, cfg.CorsOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("node", cfg.Name).Str("addr", cfg.MetricsAddr).Msg("ops endpoint listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Str("node", cfg.Name).Err(err).Msg("ops endpoint failed")
	}
}
