package naturalkey

import "context"

// Repository is the generic row store behind natural-key resolution and upserts.
// Implementations must not return an error when FindID misses.
type Repository interface {
	FindID(ctx context.Context, entity Entity, externalID string) (string, bool, error)
	Insert(ctx context.Context, entity Entity, id, externalID string, fields Fields) error
	Update(ctx context.Context, entity Entity, id string, fields Fields) error
}
