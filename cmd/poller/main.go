package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/scoreline/internal/app"
	"github.com/riskibarqy/scoreline/internal/config"
	"github.com/riskibarqy/scoreline/internal/observability"
	"github.com/riskibarqy/scoreline/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdownUptrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}

	stopPyroscope, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}

	pprofSrv, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		logger.Error("start pprof", "error", err)
		os.Exit(1)
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	syncSchedules(ctx, application, logger)

	go runScheduleSyncLoop(ctx, application, cfg.ScheduleSyncInterval, logger)

	logger.Info("poller starting",
		"leagues", cfg.Leagues,
		"tick_interval", cfg.TickInterval.String(),
		"active_hours", cfg.ActiveHours,
	)

	runErr := application.Orchestrator.Run(ctx)
	if runErr != nil && ctx.Err() == nil {
		logger.Error("poller halted", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := observability.StopPprofServer(pprofSrv, logger, 5*time.Second); err != nil {
		logger.Error("stop pprof", "error", err)
	}
	if err := stopPyroscope(); err != nil {
		logger.Error("stop pyroscope", "error", err)
	}
	if err := shutdownUptrace(shutdownCtx); err != nil {
		logger.Error("shutdown uptrace", "error", err)
	}
	if err := application.Close(); err != nil {
		logger.Error("close app", "error", err)
	}

	logger.Info("poller stopped")
	if runErr != nil && ctx.Err() == nil {
		os.Exit(1)
	}
}

// runScheduleSyncLoop refreshes league schedules periodically so games added
// after startup still get tracked.
func runScheduleSyncLoop(ctx context.Context, application *app.App, interval time.Duration, logger *logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			syncSchedules(ctx, application, logger)
		}
	}
}

func syncSchedules(ctx context.Context, application *app.App, logger *logging.Logger) {
	result, err := application.ScheduleSync.SyncDate(ctx, time.Now())
	if err != nil {
		logger.ErrorContext(ctx, "schedule sync failed", "error", err)
		return
	}

	logger.InfoContext(ctx, "schedule sync complete",
		"leagues", result.Leagues,
		"games_seen", result.GamesSeen,
		"games_created", result.GamesCreated,
		"failed_leagues", result.Failed,
	)
}
