package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/nguyentantai21042004/sonote/internal/config"
	"github.com/nguyentantai21042004/sonote/internal/history"
	"github.com/nguyentantai21042004/sonote/internal/intake"
	"github.com/nguyentantai21042004/sonote/internal/logger"
	"github.com/nguyentantai21042004/sonote/internal/metrics"
	"github.com/nguyentantai21042004/sonote/internal/polisher"
	"github.com/nguyentantai21042004/sonote/internal/scheduler"
	"github.com/nguyentantai21042004/sonote/internal/staging"
	"github.com/nguyentantai21042004/sonote/internal/transcriber"
	"github.com/nguyentantai21042004/sonote/pkg/executor"
)

// Mock stage timings, roughly matching a short clip on a real backend.
const (
	mockUploadStep  = 150 * time.Millisecond
	mockPolishDelay = 800 * time.Millisecond
)

// app holds the wired components shared by every command.
type app struct {
	cfg       *config.Config
	log       logger.Logger
	history   history.Store
	metrics   *metrics.Prometheus
	validator *intake.Validator
	scheduler scheduler.Scheduler
	staging   *staging.Area
}

// newApp loads the config and wires the pipeline. Logs go to out.
func newApp(ctx context.Context, configPath string, out io.Writer) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log := logger.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format, out)
	log.Info(ctx, "========================================")
	log.Info(ctx, "sonote batch transcription")
	log.Info(ctx, "========================================")
	log.Info(ctx, "System: %s/%s", runtime.GOOS, runtime.GOARCH)
	log.Info(ctx, "Concurrent limit: %d", cfg.Scheduler.ConcurrentLimit)
	if cfg.Mock {
		log.Info(ctx, "Backend: mock")
	} else {
		log.Info(ctx, "Transcriber: %s %s", cfg.Transcriber.Provider, cfg.Transcriber.BaseURL)
		log.Info(ctx, "Polisher: %s", cfg.Polisher.Provider)
	}

	if err := ensureDirectories(cfg); err != nil {
		return nil, err
	}

	var (
		tr scheduler.Transcriber
		po scheduler.Polisher
	)
	if cfg.Mock {
		tr = transcriber.NewMock(mockUploadStep)
		po = polisher.NewMock(mockPolishDelay)
	} else {
		if cfg.Transcriber.Provider == config.ProviderWhisper {
			tr = transcriber.NewLocal(cfg.Transcriber, executor.New(), log)
		} else {
			tr = transcriber.New(cfg.Transcriber, log)
		}
		p, err := polisher.New(cfg.Polisher, log)
		if err != nil {
			return nil, fmt.Errorf("create polisher: %w", err)
		}
		po = p
	}

	area, err := staging.New(cfg.Paths.Uploads, log)
	if err != nil {
		return nil, err
	}

	store, err := history.New(ctx, cfg.History, log)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	m := metrics.New()
	sched := scheduler.New(cfg.Scheduler, scheduler.Deps{
		Transcriber: tr,
		Polisher:    po,
		Recorder:    store,
		Metrics:     m,
		Janitor:     area,
	}, log)

	return &app{
		cfg:       cfg,
		log:       log,
		history:   store,
		metrics:   m,
		validator: intake.New(cfg.Intake),
		scheduler: sched,
		staging:   area,
	}, nil
}

// Close stops the scheduler, then the history store it records into.
func (a *app) Close() {
	a.scheduler.Close()
	if err := a.history.Close(); err != nil {
		a.log.Error(context.Background(), "Failed to close history: %v", err)
	}
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Input,
		cfg.Paths.Uploads,
		cfg.Paths.Export,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
