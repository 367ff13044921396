// Package main implements the entry point for the vocal API server, which
// turns voice recordings into calendar changes and currently occurring
// events into spoken reminders.
package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/phrazzld/vocal-api/internal/config"
	"github.com/phrazzld/vocal-api/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg := logger.Setup(cfg.Server)
	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	ctx := context.Background()
	app, err := newApplication(ctx, cfg, logg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
