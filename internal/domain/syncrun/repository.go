package syncrun

import "context"

type Repository interface {
	Start(ctx context.Context, run Run) error
	Finish(ctx context.Context, run Run) error
	GetByID(ctx context.Context, id string) (Run, bool, error)
	ListRecent(ctx context.Context, limit int) ([]Run, error)
}
