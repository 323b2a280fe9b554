package app

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"

	"github.com/riskibarqy/scoreline/internal/config"
	"github.com/riskibarqy/scoreline/internal/domain/apiusage"
	"github.com/riskibarqy/scoreline/internal/domain/feed"
	"github.com/riskibarqy/scoreline/internal/domain/game"
	"github.com/riskibarqy/scoreline/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/scoreline/internal/infrastructure/sources"
	"github.com/riskibarqy/scoreline/internal/platform/cache"
	"github.com/riskibarqy/scoreline/internal/platform/logging"
	"github.com/riskibarqy/scoreline/internal/platform/resilience"
	"github.com/riskibarqy/scoreline/internal/usecase"
)

// App wires the polling engine: storage, league source adapters, and the
// usecase components the daemon drives.
type App struct {
	Config config.Config
	Logger *logging.Logger
	DB     *sqlx.DB

	Games    game.Repository
	Usage    apiusage.Recorder
	Adapters map[string]feed.Adapter

	Scheduler    *usecase.IntervalScheduler
	Governor     *usecase.RateGovernor
	Reconciler   *usecase.Reconciler
	Orchestrator *usecase.Orchestrator
	ScheduleSync *usecase.ScheduleSyncService
	Snapshots    *usecase.SnapshotService
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	games := postgres.NewGameRepository(db)
	usage := postgres.NewUsageRecorder(db)

	adapters, err := buildAdapters(cfg, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.ActiveHoursTZ)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load active hours location %q: %w", cfg.ActiveHoursTZ, err)
	}
	activeHours, err := usecase.ParseActiveHours(cfg.ActiveHours, loc)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	scheduler := usecase.NewIntervalScheduler(usecase.SchedulerConfig{
		Thresholds: usecase.Thresholds(cfg.CloseThresholdByLeague),
		Intervals: usecase.Intervals{
			Close:         cfg.CloseInterval,
			Normal:        cfg.NormalInterval,
			ScheduledOnly: cfg.ScheduledOnlyInterval,
		},
		StartLead:      cfg.StartLead,
		FailureCeiling: cfg.FailureCeiling,
	}, logger)

	governor := usecase.NewRateGovernor(cfg.RateLimitByLeague)
	reconciler := usecase.NewReconciler(games, logger)

	orchestrator := usecase.NewOrchestrator(
		scheduler,
		governor,
		reconciler,
		adapters,
		usage,
		usecase.OrchestratorConfig{
			TickInterval: cfg.TickInterval,
			TickDeadline: cfg.TickDeadline,
			ActiveHours:  activeHours,
		},
		logger,
	)

	scheduleSync := usecase.NewScheduleSyncService(adapters, games, scheduler, governor, usage, logger)

	var snapshotCache *cache.Store
	if cfg.CacheEnabled {
		snapshotCache = cache.NewStore(cfg.CacheTTL)
	}
	snapshots := usecase.NewSnapshotService(games, snapshotCache, logger)

	return &App{
		Config:       cfg,
		Logger:       logger,
		DB:           db,
		Games:        games,
		Usage:        usage,
		Adapters:     adapters,
		Scheduler:    scheduler,
		Governor:     governor,
		Reconciler:   reconciler,
		Orchestrator: orchestrator,
		ScheduleSync: scheduleSync,
		Snapshots:    snapshots,
	}, nil
}

func (a *App) Close() error {
	a.Orchestrator.Close()
	return a.DB.Close()
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Open("postgres", dbURL,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dbNameFromURL(dbURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

func buildAdapters(cfg config.Config, logger *logging.Logger) (map[string]feed.Adapter, error) {
	breakers := resilience.NewBreakerSet(resilience.CircuitBreakerConfig{
		Enabled:          cfg.SourceCircuitEnabled,
		FailureThreshold: cfg.SourceCircuitFailureCount,
		OpenTimeout:      cfg.SourceCircuitOpenTimeout,
		HalfOpenMaxReq:   cfg.SourceCircuitHalfOpenMaxReq,
	})

	leagues := make(map[string]sources.LeagueConfig, len(cfg.Leagues))
	for _, league := range cfg.Leagues {
		leagues[league] = sources.LeagueConfig{
			BaseURL:    cfg.SourceBaseURLByLeague[league],
			Token:      cfg.SourceTokenByLeague[league],
			Timeout:    cfg.SourceTimeout,
			MaxRetries: cfg.SourceMaxRetries,
		}
	}

	return sources.NewRegistry(sources.RegistryConfig{
		Leagues:  leagues,
		Breakers: breakers,
		Logger:   logger,
	})
}
