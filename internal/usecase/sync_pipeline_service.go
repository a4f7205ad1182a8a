package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/football-sync/internal/domain/syncrun"
	idgen "github.com/riskibarqy/football-sync/internal/platform/id"
	"github.com/riskibarqy/football-sync/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultListRunsLimit = 20
	maxListRunsLimit     = 100
)

// DefaultTrigger is recorded for runs whose caller names no trigger.
const DefaultTrigger = "manual"

var stageMessages = map[syncrun.Stage]string{
	syncrun.StageAll:          "Comprehensive sync completed",
	syncrun.StageCompetitions: "Competitions sync completed",
	syncrun.StageTeams:        "Teams sync completed",
	syncrun.StageMatches:      "Matches sync completed",
}

type SyncRunInput struct {
	Stage   syncrun.Stage
	Trigger string
}

type SyncRunResult struct {
	RunID                 string
	Stage                 syncrun.Stage
	Message               string
	Summary               SyncSummary
	DateRange             *DateWindow
	CompetitionsProcessed *int
	StartedAt             time.Time
	FinishedAt            time.Time
}

type SyncPipelineConfig struct {
	// RunTimeout bounds one invocation; zero means no deadline beyond the caller's.
	RunTimeout time.Duration
}

// SyncPipelineService runs the competition, team and match stages in that
// order. Only one run executes at a time per process.
type SyncPipelineService struct {
	competitions *CompetitionSyncService
	teams        *TeamSyncService
	matches      *MatchSyncService
	runs         syncrun.Repository
	idGen        idgen.Generator
	clock        clockwork.Clock
	cfg          SyncPipelineConfig
	logger       *logging.Logger
	running      atomic.Bool
}

func NewSyncPipelineService(
	competitions *CompetitionSyncService,
	teams *TeamSyncService,
	matches *MatchSyncService,
	runs syncrun.Repository,
	idGen idgen.Generator,
	clock clockwork.Clock,
	cfg SyncPipelineConfig,
	logger *logging.Logger,
) *SyncPipelineService {
	if logger == nil {
		logger = logging.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &SyncPipelineService{
		competitions: competitions,
		teams:        teams,
		matches:      matches,
		runs:         runs,
		idGen:        idGen,
		clock:        clock,
		cfg:          cfg,
		logger:       logger,
	}
}

// Run executes the requested stage, or all three for syncrun.StageAll. Record
// and per-competition failures only show up in the summary; an error means the
// run as a whole could not complete.
func (s *SyncPipelineService) Run(ctx context.Context, input SyncRunInput) (SyncRunResult, error) {
	stage := input.Stage
	if stage == "" {
		stage = syncrun.StageAll
	}
	message, ok := stageMessages[stage]
	if !ok {
		return SyncRunResult{}, fmt.Errorf("%w: unknown sync stage %q", ErrInvalidInput, stage)
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.SyncPipelineService.Run",
		attribute.String("stage", string(stage)),
		attribute.String("trigger", input.Trigger),
	)
	defer span.End()

	if !s.running.CompareAndSwap(false, true) {
		return SyncRunResult{}, fmt.Errorf("%w: stage=%s", ErrSyncInProgress, stage)
	}
	defer s.running.Store(false)

	if s.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()
	}

	result := SyncRunResult{
		Stage:     stage,
		Message:   message,
		StartedAt: s.clock.Now().UTC(),
	}
	runID, err := s.idGen.NewID()
	if err != nil {
		return SyncRunResult{}, fmt.Errorf("generate sync run id: %w", err)
	}
	result.RunID = runID

	trigger := strings.TrimSpace(input.Trigger)
	if trigger == "" {
		trigger = DefaultTrigger
	}
	logger := s.logger.With("run_id", runID, "stage", stage, "trigger", trigger)
	logger.InfoContext(ctx, "sync run started")

	s.recordStart(ctx, logger, syncrun.Run{
		ID:        runID,
		Stage:     stage,
		Trigger:   trigger,
		Status:    syncrun.StatusRunning,
		TraceID:   traceIDFromContext(ctx),
		StartedAt: result.StartedAt,
	})

	runErr := s.runStages(ctx, stage, &result)
	result.FinishedAt = s.clock.Now().UTC()

	finished := syncrun.Run{
		ID:         runID,
		Stage:      stage,
		Trigger:    trigger,
		Status:     syncrun.StatusCompleted,
		Summary:    result.Summary.AsMap(),
		TraceID:    traceIDFromContext(ctx),
		StartedAt:  result.StartedAt,
		FinishedAt: &result.FinishedAt,
	}
	if runErr != nil {
		finished.Status = syncrun.StatusFailed
		finished.ErrorMessage = runErr.Error()
	}
	s.recordFinish(ctx, logger, finished)

	if runErr != nil {
		logger.ErrorContext(ctx, "sync run failed", "error", runErr)
		return result, runErr
	}

	logger.InfoContext(ctx, "sync run completed",
		"duration_ms", result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
		"summary", result.Summary.AsMap(),
	)
	return result, nil
}

func (s *SyncPipelineService) runStages(ctx context.Context, stage syncrun.Stage, result *SyncRunResult) error {
	if stage == syncrun.StageAll || stage == syncrun.StageCompetitions {
		stats, err := s.competitions.Run(ctx)
		result.Summary.Competitions = &stats
		if err != nil {
			return fmt.Errorf("competition sync: %w", err)
		}
	}

	if stage == syncrun.StageAll || stage == syncrun.StageTeams {
		stats, err := s.teams.Run(ctx)
		result.Summary.Teams = &stats
		if err != nil {
			return fmt.Errorf("team sync: %w", err)
		}
	}

	if stage == syncrun.StageAll || stage == syncrun.StageMatches {
		matchResult, err := s.matches.Run(ctx)
		result.Summary.Matches = &matchResult.Stats
		result.DateRange = &matchResult.DateRange
		result.CompetitionsProcessed = &matchResult.CompetitionsProcessed
		if err != nil {
			return fmt.Errorf("match sync: %w", err)
		}
	}

	return nil
}

// recordStart and recordFinish detach from cancellation so a timed out run is
// still marked as failed.
func (s *SyncPipelineService) recordStart(ctx context.Context, logger *logging.Logger, run syncrun.Run) {
	if s.runs == nil {
		return
	}
	if err := s.runs.Start(context.WithoutCancel(ctx), run); err != nil {
		logger.WarnContext(ctx, "record sync run start failed", "error", err)
	}
}

func (s *SyncPipelineService) recordFinish(ctx context.Context, logger *logging.Logger, run syncrun.Run) {
	if s.runs == nil {
		return
	}
	if err := s.runs.Finish(context.WithoutCancel(ctx), run); err != nil {
		logger.WarnContext(ctx, "record sync run finish failed", "status", run.Status, "error", err)
	}
}

func (s *SyncPipelineService) GetRun(ctx context.Context, runID string) (syncrun.Run, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncPipelineService.GetRun")
	defer span.End()

	runID = strings.TrimSpace(runID)
	if runID == "" {
		return syncrun.Run{}, fmt.Errorf("%w: run id is required", ErrInvalidInput)
	}
	if s.runs == nil {
		return syncrun.Run{}, fmt.Errorf("%w: sync run history is not configured", ErrDependencyUnavailable)
	}

	run, found, err := s.runs.GetByID(ctx, runID)
	if err != nil {
		return syncrun.Run{}, fmt.Errorf("get sync run %s: %w", runID, err)
	}
	if !found {
		return syncrun.Run{}, fmt.Errorf("%w: sync run %s", ErrNotFound, runID)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. limit defaults to 20 and may not exceed 100.
func (s *SyncPipelineService) ListRuns(ctx context.Context, limit int) ([]syncrun.Run, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncPipelineService.ListRuns")
	defer span.End()

	if limit == 0 {
		limit = defaultListRunsLimit
	}
	if limit < 0 || limit > maxListRunsLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, maxListRunsLimit)
	}
	if s.runs == nil {
		return nil, fmt.Errorf("%w: sync run history is not configured", ErrDependencyUnavailable)
	}

	runs, err := s.runs.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	return runs, nil
}
