package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/football-sync/internal/domain/competition"
	"github.com/riskibarqy/football-sync/internal/domain/match"
	"github.com/riskibarqy/football-sync/internal/domain/team"
	"go.opentelemetry.io/otel/attribute"
)

// EntityLookupService reads synced rows back by provider id so an operator can
// check what a run wrote.
type EntityLookupService struct {
	competitions competition.Repository
	teams        team.Repository
	matches      match.Repository
}

func NewEntityLookupService(competitions competition.Repository, teams team.Repository, matches match.Repository) *EntityLookupService {
	return &EntityLookupService{
		competitions: competitions,
		teams:        teams,
		matches:      matches,
	}
}

func (s *EntityLookupService) GetCompetition(ctx context.Context, externalID string) (competition.Competition, error) {
	externalID = strings.TrimSpace(externalID)
	ctx, span := startUsecaseSpan(ctx, "usecase.EntityLookupService.GetCompetition",
		attribute.String("external_id", externalID),
	)
	defer span.End()

	if externalID == "" {
		return competition.Competition{}, fmt.Errorf("%w: competition external id is required", ErrInvalidInput)
	}
	if s.competitions == nil {
		return competition.Competition{}, fmt.Errorf("%w: competition store is not configured", ErrDependencyUnavailable)
	}

	out, found, err := s.competitions.GetByExternalID(ctx, externalID)
	if err != nil {
		return competition.Competition{}, fmt.Errorf("get competition external_id=%s: %w", externalID, err)
	}
	if !found {
		return competition.Competition{}, fmt.Errorf("%w: competition external_id=%s", ErrNotFound, externalID)
	}
	return out, nil
}

func (s *EntityLookupService) GetTeam(ctx context.Context, externalID int64) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EntityLookupService.GetTeam",
		attribute.Int64("external_id", externalID),
	)
	defer span.End()

	if externalID <= 0 {
		return team.Team{}, fmt.Errorf("%w: team external id must be positive", ErrInvalidInput)
	}
	if s.teams == nil {
		return team.Team{}, fmt.Errorf("%w: team store is not configured", ErrDependencyUnavailable)
	}

	out, found, err := s.teams.GetByExternalID(ctx, externalID)
	if err != nil {
		return team.Team{}, fmt.Errorf("get team external_id=%d: %w", externalID, err)
	}
	if !found {
		return team.Team{}, fmt.Errorf("%w: team external_id=%d", ErrNotFound, externalID)
	}
	return out, nil
}

// GetMatch returns the stored match. Team references stay nil until the
// referenced team has been synced.
func (s *EntityLookupService) GetMatch(ctx context.Context, externalID int64) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EntityLookupService.GetMatch",
		attribute.Int64("external_id", externalID),
	)
	defer span.End()

	if externalID <= 0 {
		return match.Match{}, fmt.Errorf("%w: match external id must be positive", ErrInvalidInput)
	}
	if s.matches == nil {
		return match.Match{}, fmt.Errorf("%w: match store is not configured", ErrDependencyUnavailable)
	}

	out, found, err := s.matches.GetByExternalID(ctx, externalID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match external_id=%d: %w", externalID, err)
	}
	if !found {
		return match.Match{}, fmt.Errorf("%w: match external_id=%d", ErrNotFound, externalID)
	}
	return out, nil
}
