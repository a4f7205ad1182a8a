package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/football-sync/internal/domain/syncrun"
	"github.com/riskibarqy/football-sync/internal/platform/logging"
	"github.com/riskibarqy/football-sync/internal/usecase"
	"github.com/robfig/cron/v3"
)

const triggerCron = "cron"

// SyncRunner is satisfied by usecase.SyncPipelineService.
type SyncRunner interface {
	Run(ctx context.Context, input usecase.SyncRunInput) (usecase.SyncRunResult, error)
}

// ScheduleConfig holds standard five-field cron specs. An empty Matches spec
// leaves only the full run scheduled.
type ScheduleConfig struct {
	All     string
	Matches string
}

// Scheduler triggers pipeline runs on cron schedules in UTC. Runs share a
// base context that Stop cancels once its wait expires.
type Scheduler struct {
	cron     *cron.Cron
	pipeline SyncRunner
	logger   *logging.Logger

	baseCtx    context.Context
	cancelRuns context.CancelFunc

	mu      sync.Mutex
	running bool
}

func NewScheduler(pipeline SyncRunner, cfg ScheduleConfig, logger *logging.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = logging.Default()
	}

	cronLogger := cronLogAdapter{logger: logger}
	baseCtx, cancelRuns := context.WithCancel(context.Background())
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		pipeline:   pipeline,
		logger:     logger,
		baseCtx:    baseCtx,
		cancelRuns: cancelRuns,
	}

	if _, err := s.cron.AddJob(cfg.All, s.job(syncrun.StageAll)); err != nil {
		cancelRuns()
		return nil, fmt.Errorf("add %s schedule %q: %w", syncrun.StageAll, cfg.All, err)
	}
	if spec := strings.TrimSpace(cfg.Matches); spec != "" {
		if _, err := s.cron.AddJob(spec, s.job(syncrun.StageMatches)); err != nil {
			cancelRuns()
			return nil, fmt.Errorf("add %s schedule %q: %w", syncrun.StageMatches, spec, err)
		}
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.cron.Start()
	s.running = true
	s.logger.Info("sync scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop prevents new runs and waits for an in-flight one. When ctx ends first
// the in-flight run is cancelled and Stop waits for it to record its failure.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		s.cancelRuns()
		return
	}
	s.running = false
	s.mu.Unlock()

	done := s.cron.Stop().Done()
	select {
	case <-done:
		s.logger.Info("sync scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("sync scheduler stop timed out, cancelling run", "error", ctx.Err())
		s.cancelRuns()
		<-done
	}
	s.cancelRuns()
}

func (s *Scheduler) job(stage syncrun.Stage) cron.Job {
	return cron.FuncJob(func() {
		s.runStage(s.baseCtx, stage)
	})
}

func (s *Scheduler) runStage(ctx context.Context, stage syncrun.Stage) {
	result, err := s.pipeline.Run(ctx, usecase.SyncRunInput{Stage: stage, Trigger: triggerCron})
	switch {
	case errors.Is(err, usecase.ErrSyncInProgress):
		s.logger.Info("scheduled sync skipped", "stage", stage, "reason", "another run in progress")
	case err != nil:
		s.logger.Error("scheduled sync failed", "stage", stage, "run_id", result.RunID, "error", err)
	default:
		s.logger.Info("scheduled sync completed", "stage", stage, "run_id", result.RunID)
	}
}

// cronLogAdapter routes robfig/cron's logr-style calls into the service logger.
type cronLogAdapter struct {
	logger *logging.Logger
}

func (a cronLogAdapter) Info(msg string, keysAndValues ...any) {
	a.logger.Debug("cron: "+msg, keysAndValues...)
}

func (a cronLogAdapter) Error(err error, msg string, keysAndValues ...any) {
	a.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
