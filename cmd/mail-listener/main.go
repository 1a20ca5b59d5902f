package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tarifario/internal/config"
	"tarifario/internal/ingest"
	"tarifario/internal/listener"
	"tarifario/internal/logging"
	"tarifario/internal/pipeline"
	"tarifario/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	must(err)
	defer func() { _ = logger.Sync() }()

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	processor := pipeline.NewProcessingService(db, ingest.NewService(db, logger), logger)
	svc := listener.NewService(db, processor, cfg, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
