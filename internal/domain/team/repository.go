package team

import "context"

type Repository interface {
	GetByExternalID(ctx context.Context, externalID int64) (Team, bool, error)
}
