package match

import "context"

type Repository interface {
	GetByExternalID(ctx context.Context, externalID int64) (Match, bool, error)
}
