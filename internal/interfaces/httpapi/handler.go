package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/football-sync/internal/domain/competition"
	"github.com/riskibarqy/football-sync/internal/domain/match"
	"github.com/riskibarqy/football-sync/internal/domain/syncrun"
	"github.com/riskibarqy/football-sync/internal/domain/team"
	"github.com/riskibarqy/football-sync/internal/platform/logging"
	"github.com/riskibarqy/football-sync/internal/usecase"
)

// SyncPipeline is the part of usecase.SyncPipelineService the handlers call.
type SyncPipeline interface {
	Run(ctx context.Context, input usecase.SyncRunInput) (usecase.SyncRunResult, error)
	GetRun(ctx context.Context, runID string) (syncrun.Run, error)
	ListRuns(ctx context.Context, limit int) ([]syncrun.Run, error)
}

// EntityLookup is the part of usecase.EntityLookupService the handlers call.
type EntityLookup interface {
	GetCompetition(ctx context.Context, externalID string) (competition.Competition, error)
	GetTeam(ctx context.Context, externalID int64) (team.Team, error)
	GetMatch(ctx context.Context, externalID int64) (match.Match, error)
}

type Handler struct {
	pipeline  SyncPipeline
	lookup    EntityLookup
	logger    *logging.Logger
	validator *validator.Validate
}

// NewHandler accepts a nil lookup; the entity routes then answer 503.
func NewHandler(pipeline SyncPipeline, lookup EntityLookup, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		pipeline:  pipeline,
		lookup:    lookup,
		logger:    logger,
		validator: validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
