package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/haclabs/haccare/internal/index"
	"github.com/haclabs/haccare/internal/logging"
	"github.com/haclabs/haccare/internal/openx"
	"github.com/haclabs/haccare/internal/scanner/cli"
	"github.com/haclabs/haccare/internal/scanner/config"
	"github.com/haclabs/haccare/internal/services"
)

func main() {

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := logging.NewTextLogger(os.Stderr, level)
	slog.SetDefault(logger.Slog())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := cfg.IndexOptions()
	opts.Logger = logger.With("component", "index")
	idx, err := index.Open(ctx, opts)
	if err != nil {
		log.Fatalf("index: %v", err)
	}

	svc := services.NewScannerService(idx, openx.NewOpener(), openx.NewBell(os.Stdout), logger)
	cli.NewApp(svc, os.Stdin, os.Stdout, logger).Run(ctx)

}
