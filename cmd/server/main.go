// Package main is the entry point for the completionist server.
//
// main stays minimal: read configuration, build a logger, hand both to the
// server package. All actual wiring lives in internal/server.
package main

import (
	"log/slog"
	"os"

	"github.com/sakif/completionist/internal/config"
	"github.com/sakif/completionist/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
