package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/football-sync/internal/domain/syncrun"
	"github.com/riskibarqy/football-sync/internal/platform/logging"
	"github.com/riskibarqy/football-sync/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSyncToken = "s3cret"
	testRunID     = "0194f6a0-0000-7000-8000-0000000000aa"
)

type fakePipeline struct {
	mu       sync.Mutex
	inputs   []usecase.SyncRunInput
	ctxErrs  []error
	result   usecase.SyncRunResult
	runErr   error
	runs     []syncrun.Run
	listErr  error
	limits   []int
	getRunID string
}

func (f *fakePipeline) Run(ctx context.Context, input usecase.SyncRunInput) (usecase.SyncRunResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, input)
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	result := f.result
	result.Stage = input.Stage
	return result, f.runErr
}

func (f *fakePipeline) GetRun(_ context.Context, runID string) (syncrun.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getRunID = runID
	for _, run := range f.runs {
		if run.ID == runID {
			return run, nil
		}
	}
	return syncrun.Run{}, fmt.Errorf("%w: sync run %s", usecase.ErrNotFound, runID)
}

func (f *fakePipeline) ListRuns(_ context.Context, limit int) ([]syncrun.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = append(f.limits, limit)
	return f.runs, f.listErr
}

func newTestRouter(pipeline SyncPipeline) http.Handler {
	return NewRouter(NewHandler(pipeline, nil, logging.NewNop()), logging.NewNop(), []string{"*"}, testSyncToken)
}

func doRequest(t *testing.T, router http.Handler, method, target string, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("X-Auth-Token", token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body), "body=%s", rec.Body.String())
	}
	return rec, body
}

func premierLeagueResult() usecase.SyncRunResult {
	processed := 1
	return usecase.SyncRunResult{
		RunID:   testRunID,
		Message: "Comprehensive sync completed",
		Summary: usecase.SyncSummary{
			Competitions: &usecase.EntityStats{New: 1},
			Teams:        &usecase.EntityStats{New: 2},
			Matches:      &usecase.MatchStats{Processed: 1, New: 1},
		},
		DateRange: &usecase.DateWindow{
			From: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2026, 3, 21, 0, 0, 0, 0, time.UTC),
		},
		CompetitionsProcessed: &processed,
	}
}

func TestHealthz_NoTokenRequired(t *testing.T) {
	rec, body := doRequest(t, newTestRouter(&fakePipeline{}), http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
}

func TestRunSyncAll_ReturnsSummary(t *testing.T) {
	pipeline := &fakePipeline{result: premierLeagueResult()}
	rec, body := doRequest(t, newTestRouter(pipeline), http.MethodPost, "/v1/internal/sync/all", testSyncToken)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Comprehensive sync completed", body["message"])
	assert.Equal(t, testRunID, body["run_id"])
	assert.Equal(t, map[string]any{"from": "2026-03-14", "to": "2026-03-21"}, body["date_range"])

	stats, ok := body["stats"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"new": float64(1), "updated": float64(0), "errors": float64(0)}, stats["competitions"])
	assert.Equal(t, map[string]any{"new": float64(2), "updated": float64(0), "errors": float64(0)}, stats["teams"])
	assert.Equal(t, map[string]any{
		"processed": float64(1),
		"new":       float64(1),
		"updated":   float64(0),
		"skipped":   float64(0),
		"errors":    float64(0),
	}, stats["matches"])

	require.Len(t, pipeline.inputs, 1)
	assert.Equal(t, syncrun.StageAll, pipeline.inputs[0].Stage)
	assert.Equal(t, "http", pipeline.inputs[0].Trigger)
}

func TestRunSync_StageRoutes(t *testing.T) {
	tests := map[string]syncrun.Stage{
		"/v1/internal/sync/competitions": syncrun.StageCompetitions,
		"/v1/internal/sync/teams":        syncrun.StageTeams,
		"/v1/internal/sync/matches":      syncrun.StageMatches,
	}

	for path, stage := range tests {
		t.Run(string(stage), func(t *testing.T) {
			pipeline := &fakePipeline{result: usecase.SyncRunResult{RunID: testRunID}}
			rec, _ := doRequest(t, newTestRouter(pipeline), http.MethodPost, path, testSyncToken)

			require.Equal(t, http.StatusOK, rec.Code)
			require.Len(t, pipeline.inputs, 1)
			assert.Equal(t, stage, pipeline.inputs[0].Stage)
		})
	}
}

func TestRunSync_TriggerHeader(t *testing.T) {
	pipeline := &fakePipeline{}
	req := httptest.NewRequest(http.MethodPost, "/v1/internal/sync/matches", nil)
	req.Header.Set("X-Auth-Token", testSyncToken)
	req.Header.Set("X-Sync-Trigger", "github-actions")
	rec := httptest.NewRecorder()
	newTestRouter(pipeline).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "github-actions", pipeline.inputs[0].Trigger)
}

func TestRunSync_UnauthorizedHasNoSideEffects(t *testing.T) {
	pipeline := &fakePipeline{}
	router := newTestRouter(pipeline)

	for _, token := range []string{"", "wrong"} {
		rec, body := doRequest(t, router, http.MethodPost, "/v1/internal/sync/all", token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Unauthorized: Invalid or missing X-Auth-Token header", body["error"])
	}
	assert.Empty(t, pipeline.inputs)
}

func TestRunSync_UnconfiguredToken(t *testing.T) {
	pipeline := &fakePipeline{}
	router := NewRouter(NewHandler(pipeline, nil, logging.NewNop()), logging.NewNop(), []string{"*"}, "")

	rec, body := doRequest(t, router, http.MethodPost, "/v1/internal/sync/all", "anything")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Empty(t, pipeline.inputs)
}

func TestRunSync_FatalError(t *testing.T) {
	pipeline := &fakePipeline{runErr: fmt.Errorf("competition sync: %w", &usecase.FetchFailedError{
		Path:       "/competitions",
		StatusCode: http.StatusBadGateway,
	})}
	rec, body := doRequest(t, newTestRouter(pipeline), http.MethodPost, "/v1/internal/sync/all", testSyncToken)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "status=502")
}

func TestRunSync_InProgress(t *testing.T) {
	pipeline := &fakePipeline{runErr: fmt.Errorf("%w: stage=all", usecase.ErrSyncInProgress)}
	rec, _ := doRequest(t, newTestRouter(pipeline), http.MethodPost, "/v1/internal/sync/all", testSyncToken)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRunSync_DetachesFromRequestCancellation(t *testing.T) {
	pipeline := &fakePipeline{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/sync/all", nil).WithContext(ctx)
	req.Header.Set("X-Auth-Token", testSyncToken)
	newTestRouter(pipeline).ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, pipeline.ctxErrs, 1)
	assert.NoError(t, pipeline.ctxErrs[0])
}

func TestRunSync_MethodNotAllowed(t *testing.T) {
	pipeline := &fakePipeline{}
	req := httptest.NewRequest(http.MethodGet, "/v1/internal/sync/all", nil)
	req.Header.Set("X-Auth-Token", testSyncToken)
	rec := httptest.NewRecorder()
	newTestRouter(pipeline).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Empty(t, pipeline.inputs)
}

func TestListSyncRuns(t *testing.T) {
	finishedAt := time.Date(2026, 3, 14, 3, 0, 42, 0, time.UTC)
	pipeline := &fakePipeline{runs: []syncrun.Run{{
		ID:         testRunID,
		Stage:      syncrun.StageAll,
		Trigger:    "cron",
		Status:     syncrun.StatusCompleted,
		Summary:    map[string]any{"competitions": map[string]any{"new": 1}},
		StartedAt:  time.Date(2026, 3, 14, 3, 0, 0, 0, time.UTC),
		FinishedAt: &finishedAt,
	}}}
	router := newTestRouter(pipeline)

	rec, body := doRequest(t, router, http.MethodGet, "/v1/internal/sync/runs?limit=5", testSyncToken)
	require.Equal(t, http.StatusOK, rec.Code)
	items, ok := body["data"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "completed", item["status"])
	assert.Equal(t, "2026-03-14T03:00:42Z", item["finished_at"])

	rec, _ = doRequest(t, router, http.MethodGet, "/v1/internal/sync/runs", testSyncToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{5, 0}, pipeline.limits)
}

func TestListSyncRuns_InvalidLimit(t *testing.T) {
	pipeline := &fakePipeline{}
	router := newTestRouter(pipeline)

	for _, limit := range []string{"abc", "0", "-1", "101"} {
		rec, _ := doRequest(t, router, http.MethodGet, "/v1/internal/sync/runs?limit="+limit, testSyncToken)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", limit)
	}
	assert.Empty(t, pipeline.limits)
}

func TestGetSyncRun(t *testing.T) {
	pipeline := &fakePipeline{runs: []syncrun.Run{{
		ID:        testRunID,
		Stage:     syncrun.StageMatches,
		Status:    syncrun.StatusRunning,
		StartedAt: time.Date(2026, 3, 14, 3, 0, 0, 0, time.UTC),
	}}}
	router := newTestRouter(pipeline)

	rec, body := doRequest(t, router, http.MethodGet, "/v1/internal/sync/runs/"+testRunID, testSyncToken)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "running", data["status"])
	assert.Nil(t, data["finished_at"])
	assert.Equal(t, map[string]any{}, data["summary"])

	rec, _ = doRequest(t, router, http.MethodGet, "/v1/internal/sync/runs/0194f6a0-0000-7000-8000-0000000000ff", testSyncToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	pipeline.getRunID = ""
	rec, _ = doRequest(t, router, http.MethodGet, "/v1/internal/sync/runs/not-a-uuid", testSyncToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, pipeline.getRunID)
}

func TestRecoverPanic(t *testing.T) {
	handler := recoverPanic(logging.NewNop(), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
