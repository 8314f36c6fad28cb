// Command prompts-server serves the summarize and improve prompt templates
// over stdio.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ggoodman/mcp-stdio-go/examples/prompts"
	"github.com/ggoodman/mcp-stdio-go/internal/logctx"
	"github.com/ggoodman/mcp-stdio-go/stdio"
)

func main() {
	cfg, err := prompts.LoadConfig()
	if err != nil {
		slog.Error("load config", slog.String("err", err.Error()))
		os.Exit(1)
	}
	logger := logctx.NewLogger(os.Stderr, logctx.ParseLevel(cfg.LogLevel))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := prompts.NewServer()
	if err != nil {
		logger.Error("build server", slog.String("err", err.Error()))
		os.Exit(1)
	}

	opts := append(cfg.HandlerOptions(), stdio.WithLogger(logger))
	if err := stdio.NewHandler(srv, opts...).Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("serve", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
