package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/vocal-api/internal/config"
	"github.com/phrazzld/vocal-api/internal/joblock"
	"github.com/phrazzld/vocal-api/internal/jobstatus"
	"github.com/phrazzld/vocal-api/internal/platform/gemini"
	"github.com/phrazzld/vocal-api/internal/platform/googlecal"
	"github.com/phrazzld/vocal-api/internal/platform/speech"
	"github.com/phrazzld/vocal-api/internal/retry"
	"github.com/phrazzld/vocal-api/internal/series"
	"github.com/phrazzld/vocal-api/internal/service"
	"github.com/phrazzld/vocal-api/internal/service/auth"
	"github.com/phrazzld/vocal-api/internal/storage"
	"github.com/phrazzld/vocal-api/internal/store"
	"github.com/phrazzld/vocal-api/internal/task"
)

// application holds the long-lived dependencies of the running server.
type application struct {
	config *config.Config
	logger *slog.Logger

	jwtService auth.JWTService
	disk       *storage.Disk
	janitor    *storage.Janitor
	runner     *task.Runner
	resolver   *series.Resolver

	audioService    *service.AudioService
	reminderService *service.ReminderService
}

// newApplication wires every component together.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.disk, err = storage.NewDisk(cfg.Storage.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize artifact storage: %w", err)
	}

	statuses := jobstatus.New(logger.With("component", "jobstatus"))

	app.janitor, err = storage.NewJanitor(app.disk, statuses, cfg.Storage.SweepSchedule,
		cfg.Storage.MaxArtifactAge, logger.With("component", "janitor"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize artifact janitor: %w", err)
	}

	// Remote calendar store, with transient failures retried.
	calStore, err := googlecal.New(ctx, cfg.Calendar, logger.With("component", "calendar"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize calendar store: %w", err)
	}
	retryCfg := retry.DefaultConfig()
	if cfg.Worker.RetryAttempts > 0 {
		retryCfg.MaxAttempts = cfg.Worker.RetryAttempts
	}
	if cfg.Worker.RetryBaseDelay > 0 {
		retryCfg.BaseDelay = cfg.Worker.RetryBaseDelay
	}
	retryingStore := store.NewRetrying(calStore, retryCfg)

	llm, err := gemini.NewClient(ctx, logger.With("component", "llm"), cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	logger.Info("LLM client initialized")

	synth := speech.New(cfg.Speech, logger.With("component", "speech"))
	if !synth.Enabled() {
		logger.Info("speech synthesis disabled, reminder jobs will carry text only")
	}

	// Provider calls share the store's retry budget.
	transcriber := service.NewRetryingTranscriber(llm, retryCfg)
	extractor := service.NewRetryingExtractor(llm, retryCfg)
	composer := service.NewRetryingComposer(llm, retryCfg)
	synthesizer := service.NewRetryingSynthesizer(synth, retryCfg)

	app.resolver = series.NewResolver(retryingStore, logger.With("component", "resolver"))

	locks := joblock.New(logger.With("component", "joblock"))
	app.runner = task.NewRunner(task.RunnerConfig{
		WorkerCount: cfg.Worker.Count,
		QueueSize:   cfg.Worker.QueueSize,
	}, logger.With("component", "task_runner"))

	app.audioService = service.NewAudioService(
		retryingStore,
		app.resolver,
		transcriber,
		extractor,
		statuses,
		locks,
		app.runner,
		logger.With("component", "audio_service"),
	)
	app.reminderService = service.NewReminderService(
		retryingStore,
		app.resolver,
		composer,
		synthesizer,
		statuses,
		locks,
		app.runner,
		app.disk,
		logger.With("component", "reminder_service"),
	)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts background processing and the HTTP server, then blocks until
// shutdown.
func (app *application) Run(ctx context.Context) error {
	app.runner.Start()
	app.janitor.Start()

	router := app.setupRouter()
	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops background work in dependency order.
func (app *application) cleanup() {
	app.janitor.Stop()
	app.runner.Stop()
	app.resolver.Close()
}
