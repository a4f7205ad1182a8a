package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/football-sync/internal/domain/competition"
	"github.com/sourcegraph/conc/panics"
)

// competitionTask syncs one competition and returns that competition's
// partial stats. A non-nil error aborts the whole stage.
type competitionTask[R any] func(ctx context.Context, comp competition.Competition) (R, error)

// forEachCompetition runs task for every competition on at most workers
// goroutines. Results keep the input order and each slot is written by exactly
// one task, so merging needs no locking. A panicking task is converted by
// onPanic into a result instead of taking the run down. The first task error
// cancels the remaining tasks and is returned; cancellation of ctx is
// returned even when it lands inside the last competition.
func forEachCompetition[R any](
	ctx context.Context,
	competitions []competition.Competition,
	workers int,
	task competitionTask[R],
	onPanic func(comp competition.Competition, err error) R,
) ([]R, error) {
	results := make([]R, len(competitions))
	if len(competitions) == 0 {
		return results, nil
	}

	if workers <= 1 || len(competitions) == 1 {
		for i, comp := range competitions {
			if err := ctx.Err(); err != nil {
				return results[:i], err
			}
			result, err := runCompetitionTask(ctx, comp, task, onPanic)
			results[i] = result
			if err != nil {
				return results[:i+1], err
			}
		}
		return results, ctx.Err()
	}

	pool, err := ants.NewPool(min(workers, len(competitions)))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		failOnce sync.Once
		firstErr error
	)
	for i, comp := range competitions {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			result, err := runCompetitionTask(taskCtx, comp, task, onPanic)
			results[i] = result
			if err != nil {
				failOnce.Do(func() {
					firstErr = err
					cancel()
				})
			}
		}); err != nil {
			wg.Done()
			cancel()
			wg.Wait()
			return nil, fmt.Errorf("submit competition %s to worker pool: %w", comp.Code, err)
		}
	}
	wg.Wait()

	if firstErr != nil && !errors.Is(firstErr, context.Canceled) {
		return results, firstErr
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, firstErr
}

func runCompetitionTask[R any](
	ctx context.Context,
	comp competition.Competition,
	task competitionTask[R],
	onPanic func(competition.Competition, error) R,
) (result R, err error) {
	var catcher panics.Catcher
	catcher.Try(func() {
		result, err = task(ctx, comp)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		return onPanic(comp, recovered.AsError()), nil
	}
	return result, err
}

// stageAbortError reports fetch failures that end the whole stage instead of
// skipping one competition: a missing credential fails every call alike, and
// a cancelled run must surface to the caller.
func stageAbortError(ctx context.Context, fetchErr error) error {
	if errors.Is(fetchErr, ErrMisconfigured) {
		return fetchErr
	}
	return ctx.Err()
}
