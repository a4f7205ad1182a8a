package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/riskibarqy/football-sync/internal/domain/syncrun"
)

type SyncRunRepository struct {
	mu   sync.RWMutex
	runs map[string]syncrun.Run
}

func NewSyncRunRepository() *SyncRunRepository {
	return &SyncRunRepository{runs: make(map[string]syncrun.Run)}
}

func (r *SyncRunRepository) Start(_ context.Context, run syncrun.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.runs[run.ID]; exists {
		return fmt.Errorf("sync run %s already started", run.ID)
	}
	r.runs[run.ID] = cloneRun(run)
	return nil
}

func (r *SyncRunRepository) Finish(_ context.Context, run syncrun.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.runs[run.ID]; !exists {
		return fmt.Errorf("sync run %s not found", run.ID)
	}
	r.runs[run.ID] = cloneRun(run)
	return nil
}

func (r *SyncRunRepository) GetByID(_ context.Context, id string) (syncrun.Run, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return syncrun.Run{}, false, nil
	}
	return cloneRun(run), true, nil
}

func (r *SyncRunRepository) ListRecent(_ context.Context, limit int) ([]syncrun.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]syncrun.Run, 0, len(r.runs))
	for _, run := range r.runs {
		out = append(out, cloneRun(run))
	}
	slices.SortFunc(out, func(a, b syncrun.Run) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func cloneRun(run syncrun.Run) syncrun.Run {
	run.Summary = maps.Clone(run.Summary)
	if run.FinishedAt != nil {
		finishedAt := *run.FinishedAt
		run.FinishedAt = &finishedAt
	}
	return run
}
