package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/football-sync/internal/domain/syncrun"
	"github.com/riskibarqy/football-sync/internal/usecase"
)

const (
	triggerHTTP   = "http"
	triggerHeader = "X-Sync-Trigger"
)

type syncRunResponse struct {
	Success               bool                `json:"success"`
	Message               string              `json:"message"`
	Stats                 usecase.SyncSummary `json:"stats"`
	RunID                 string              `json:"run_id"`
	DateRange             *usecase.DateWindow `json:"date_range,omitempty"`
	CompetitionsProcessed *int                `json:"competitions_processed,omitempty"`
}

type syncRunDTO struct {
	ID         string         `json:"id"`
	Stage      string         `json:"stage"`
	Trigger    string         `json:"trigger"`
	Status     string         `json:"status"`
	Summary    map[string]any `json:"summary"`
	Error      string         `json:"error,omitempty"`
	TraceID    string         `json:"trace_id,omitempty"`
	StartedAt  string         `json:"started_at"`
	FinishedAt *string        `json:"finished_at"`
}

type listSyncRunsRequest struct {
	Limit int `validate:"omitempty,min=1,max=100"`
}

type getSyncRunRequest struct {
	RunID string `validate:"required,uuid"`
}

func (h *Handler) RunSyncAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncAll")
	defer span.End()

	h.runStage(ctx, w, r, syncrun.StageAll)
}

func (h *Handler) RunSyncCompetitions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncCompetitions")
	defer span.End()

	h.runStage(ctx, w, r, syncrun.StageCompetitions)
}

func (h *Handler) RunSyncTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncTeams")
	defer span.End()

	h.runStage(ctx, w, r, syncrun.StageTeams)
}

func (h *Handler) RunSyncMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncMatches")
	defer span.End()

	h.runStage(ctx, w, r, syncrun.StageMatches)
}

// runStage keeps going after the caller disconnects; a half-finished stage
// would otherwise be recorded as failed for no upstream reason.
func (h *Handler) runStage(ctx context.Context, w http.ResponseWriter, r *http.Request, stage syncrun.Stage) {
	trigger := strings.TrimSpace(r.Header.Get(triggerHeader))
	if trigger == "" {
		trigger = triggerHTTP
	}

	result, err := h.pipeline.Run(context.WithoutCancel(ctx), usecase.SyncRunInput{
		Stage:   stage,
		Trigger: trigger,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "sync run failed", "stage", stage, "run_id", result.RunID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, syncRunResponse{
		Success:               true,
		Message:               result.Message,
		Stats:                 result.Summary,
		RunID:                 result.RunID,
		DateRange:             result.DateRange,
		CompetitionsProcessed: result.CompetitionsProcessed,
	})
}

func (h *Handler) ListSyncRuns(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSyncRuns")
	defer span.End()

	req := listSyncRunsRequest{}
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: limit must be an integer", usecase.ErrInvalidInput))
			return
		}
		if limit == 0 {
			writeError(ctx, w, fmt.Errorf("%w: limit must be between 1 and 100", usecase.ErrInvalidInput))
			return
		}
		req.Limit = limit
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	runs, err := h.pipeline.ListRuns(ctx, req.Limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list sync runs failed", "limit", req.Limit, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]syncRunDTO, 0, len(runs))
	for _, run := range runs {
		items = append(items, syncRunToDTO(run))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetSyncRun(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSyncRun")
	defer span.End()

	req := getSyncRunRequest{RunID: strings.TrimSpace(r.PathValue("runID"))}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	run, err := h.pipeline.GetRun(ctx, req.RunID)
	if err != nil {
		h.logger.WarnContext(ctx, "get sync run failed", "run_id", req.RunID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, syncRunToDTO(run))
}

func syncRunToDTO(run syncrun.Run) syncRunDTO {
	out := syncRunDTO{
		ID:        run.ID,
		Stage:     string(run.Stage),
		Trigger:   run.Trigger,
		Status:    string(run.Status),
		Summary:   run.Summary,
		Error:     run.ErrorMessage,
		TraceID:   run.TraceID,
		StartedAt: run.StartedAt.UTC().Format(time.RFC3339),
	}
	if out.Summary == nil {
		out.Summary = map[string]any{}
	}
	if run.FinishedAt != nil {
		finishedAt := run.FinishedAt.UTC().Format(time.RFC3339)
		out.FinishedAt = &finishedAt
	}
	return out
}
