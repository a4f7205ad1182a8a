package competition

import "context"

type Repository interface {
	// ListAddressable returns competitions that carry a non-empty code, ordered by name.
	ListAddressable(ctx context.Context) ([]Competition, error)
	GetByExternalID(ctx context.Context, externalID string) (Competition, bool, error)
}
