package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/football-sync/external/footballdata"
	"github.com/riskibarqy/football-sync/internal/config"
	"github.com/riskibarqy/football-sync/internal/domain/competition"
	"github.com/riskibarqy/football-sync/internal/domain/match"
	"github.com/riskibarqy/football-sync/internal/domain/naturalkey"
	"github.com/riskibarqy/football-sync/internal/domain/syncrun"
	"github.com/riskibarqy/football-sync/internal/domain/team"
	"github.com/riskibarqy/football-sync/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/football-sync/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/football-sync/internal/interfaces/httpapi"
	"github.com/riskibarqy/football-sync/internal/platform/cache"
	idgen "github.com/riskibarqy/football-sync/internal/platform/id"
	"github.com/riskibarqy/football-sync/internal/platform/logging"
	"github.com/riskibarqy/football-sync/internal/usecase"
)

// App holds everything one process needs: the sync pipeline, the HTTP server
// in front of it and the optional cron scheduler.
type App struct {
	Pipeline  *usecase.SyncPipelineService
	Server    *http.Server
	Scheduler *Scheduler

	db *sqlx.DB
}

type repositories struct {
	keys         naturalkey.Repository
	competitions competition.Repository
	teams        team.Repository
	matches      match.Repository
	runs         syncrun.Repository
	db           *sqlx.DB
}

// New wires the application from cfg. Callers own the returned App and must
// Close it.
func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	repos, err := newRepositories(cfg)
	if err != nil {
		return nil, err
	}
	pipeline := buildPipeline(cfg, logger, clockwork.NewRealClock(), repos)
	lookup := usecase.NewEntityLookupService(repos.competitions, repos.teams, repos.matches)

	handler := httpapi.NewHandler(pipeline, lookup, logger.Named("httpapi"))
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.SyncAuthToken)

	out := &App{
		Pipeline: pipeline,
		Server: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		db: repos.db,
	}

	if cfg.SyncScheduleEnabled {
		scheduler, err := NewScheduler(pipeline, ScheduleConfig{
			All:     cfg.SyncCronAll,
			Matches: cfg.SyncCronMatches,
		}, logger.Named("scheduler"))
		if err != nil {
			_ = out.Close()
			return nil, fmt.Errorf("create scheduler: %w", err)
		}
		out.Scheduler = scheduler
	}

	return out, nil
}

// NewPipeline wires only the sync pipeline, for one-shot runs without the
// HTTP surface. The returned close func releases the database pool.
func NewPipeline(cfg config.Config, logger *logging.Logger) (*usecase.SyncPipelineService, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, err := newRepositories(cfg)
	if err != nil {
		return nil, nil, err
	}
	pipeline := buildPipeline(cfg, logger, clockwork.NewRealClock(), repos)

	return pipeline, func() error { return closeDB(repos.db) }, nil
}

func (a *App) Close() error {
	if a == nil {
		return nil
	}
	return closeDB(a.db)
}

// StopScheduler waits for a running cron job until ctx is done.
func (a *App) StopScheduler(ctx context.Context) {
	if a == nil || a.Scheduler == nil {
		return
	}
	a.Scheduler.Stop(ctx)
}

func buildPipeline(cfg config.Config, logger *logging.Logger, clock clockwork.Clock, repos repositories) *usecase.SyncPipelineService {
	provider := footballdata.NewClient(footballdata.ClientConfig{
		BaseURL:           cfg.FootballDataBaseURL,
		Token:             cfg.FootballDataAPIKey,
		Timeout:           cfg.FootballDataTimeout,
		MaxRetries:        cfg.FootballDataMaxRetries,
		RequestsPerMinute: cfg.FootballDataRequestsPerMinute,
		Logger:            logger.Named("footballdata"),
		CircuitBreaker:    cfg.FootballDataCircuitBreaker,
		Clock:             clock,
	})

	var hits *cache.Store[string]
	if cfg.NaturalKeyCacheTTL > 0 {
		hits = cache.NewStore[string](cfg.NaturalKeyCacheTTL, clock)
	}

	idGen := idgen.NewUUIDGenerator()
	resolver := usecase.NewNaturalKeyResolver(repos.keys, hits)
	upserter := usecase.NewUpsertEngine(repos.keys, idGen)
	syncLogger := logger.Named("sync")

	competitions := usecase.NewCompetitionSyncService(provider, upserter, syncLogger)
	teams := usecase.NewTeamSyncService(provider, repos.competitions, upserter, cfg.SyncWorkers, syncLogger)
	matches := usecase.NewMatchSyncService(provider, repos.competitions, resolver, upserter, clock, usecase.MatchSyncConfig{
		WindowDays: cfg.SyncMatchWindowDays,
		Workers:    cfg.SyncWorkers,
	}, syncLogger)

	return usecase.NewSyncPipelineService(
		competitions,
		teams,
		matches,
		repos.runs,
		idGen,
		clock,
		usecase.SyncPipelineConfig{RunTimeout: cfg.SyncRunTimeout},
		syncLogger,
	)
}

func newRepositories(cfg config.Config) (repositories, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		store := memory.NewStore()
		return repositories{
			keys:         store,
			competitions: memory.NewCompetitionRepository(store),
			teams:        memory.NewTeamRepository(store),
			matches:      memory.NewMatchRepository(store),
			runs:         memory.NewSyncRunRepository(),
		}, nil
	case config.StoreDriverPostgres, "":
		db, err := openDB(cfg)
		if err != nil {
			return repositories{}, err
		}
		return repositories{
			keys:         postgres.NewNaturalKeyRepository(db),
			competitions: postgres.NewCompetitionRepository(db),
			teams:        postgres.NewTeamRepository(db),
			matches:      postgres.NewMatchRepository(db),
			runs:         postgres.NewSyncRunRepository(db),
			db:           db,
		}, nil
	default:
		return repositories{}, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

func closeDB(db *sqlx.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}
