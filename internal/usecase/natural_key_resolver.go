package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/riskibarqy/football-sync/internal/domain/naturalkey"
	"github.com/riskibarqy/football-sync/internal/platform/cache"
	"go.opentelemetry.io/otel/attribute"
)

var errNaturalKeyMissing = errors.New("natural key not found")

// NaturalKeyResolver translates provider ids into internal row ids. A miss is
// reported as found=false with a nil error.
type NaturalKeyResolver struct {
	repo  naturalkey.Repository
	cache *cache.Store[string]
}

// NewNaturalKeyResolver wires an optional cache. Only hits are cached: external
// ids are never reassigned, so a resolved id cannot go stale, while a miss may
// turn into a hit as soon as the referenced row is synced.
func NewNaturalKeyResolver(repo naturalkey.Repository, hits *cache.Store[string]) *NaturalKeyResolver {
	return &NaturalKeyResolver{repo: repo, cache: hits}
}

func (r *NaturalKeyResolver) ResolveCompetition(ctx context.Context, externalID string) (string, bool, error) {
	return r.resolve(ctx, naturalkey.EntityCompetition, strings.TrimSpace(externalID))
}

func (r *NaturalKeyResolver) ResolveTeam(ctx context.Context, externalID int64) (string, bool, error) {
	if externalID <= 0 {
		return "", false, nil
	}
	return r.resolve(ctx, naturalkey.EntityTeam, strconv.FormatInt(externalID, 10))
}

func (r *NaturalKeyResolver) resolve(ctx context.Context, entity naturalkey.Entity, externalID string) (string, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NaturalKeyResolver.resolve",
		attribute.String("entity", string(entity)),
		attribute.String("external_id", externalID),
	)
	defer span.End()

	if externalID == "" {
		return "", false, nil
	}

	lookup := func(ctx context.Context) (string, error) {
		id, found, err := r.repo.FindID(ctx, entity, externalID)
		if err != nil {
			return "", fmt.Errorf("resolve %s external_id=%s: %w", entity, externalID, err)
		}
		if !found {
			return "", errNaturalKeyMissing
		}
		return id, nil
	}

	var (
		id  string
		err error
	)
	if r.cache != nil {
		id, err = r.cache.GetOrLoad(ctx, string(entity)+":"+externalID, lookup)
	} else {
		id, err = lookup(ctx)
	}

	switch {
	case errors.Is(err, errNaturalKeyMissing):
		return "", false, nil
	case err != nil:
		return "", false, err
	}
	return id, true, nil
}
