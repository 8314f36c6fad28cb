// Command resources-server serves text documents from a directory or a Redis
// hash over stdio.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ggoodman/mcp-stdio-go/examples/resources"
	"github.com/ggoodman/mcp-stdio-go/internal/logctx"
	"github.com/ggoodman/mcp-stdio-go/stdio"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("resources-server", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := resources.LoadConfig()
	if err != nil {
		return err
	}
	logger := logctx.NewLogger(os.Stderr, logctx.ParseLevel(cfg.LogLevel))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := resources.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("close store", slog.String("err", err.Error()))
		}
	}()

	srv, err := resources.NewServer(store)
	if err != nil {
		return err
	}
	logger.Info("resources backend", slog.String("backend", cfg.Backend), slog.String("dir", cfg.Dir))

	opts := append(cfg.HandlerOptions(), stdio.WithLogger(logger))
	return stdio.NewHandler(srv, opts...).Serve(ctx)
}
