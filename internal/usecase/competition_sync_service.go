package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/riskibarqy/football-sync/internal/domain/competition"
	"github.com/riskibarqy/football-sync/internal/domain/naturalkey"
	"github.com/riskibarqy/football-sync/internal/platform/logging"
)

type CompetitionSyncService struct {
	provider FootballDataProvider
	upserter *UpsertEngine
	logger   *logging.Logger
}

func NewCompetitionSyncService(provider FootballDataProvider, upserter *UpsertEngine, logger *logging.Logger) *CompetitionSyncService {
	if logger == nil {
		logger = logging.Default()
	}

	return &CompetitionSyncService{
		provider: provider,
		upserter: upserter,
		logger:   logger,
	}
}

// Run refreshes the competitions table. Failing to fetch the list is the only
// error returned; record failures are counted and skipped.
func (s *CompetitionSyncService) Run(ctx context.Context) (EntityStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionSyncService.Run")
	defer span.End()

	items, err := s.provider.FetchCompetitions(ctx)
	if err != nil {
		return EntityStats{}, fmt.Errorf("fetch competitions: %w", err)
	}

	stats := EntityStats{}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats = stats.Record(s.upsertOne(ctx, item))
	}

	s.logger.InfoContext(ctx, "competition sync finished",
		"fetched", len(items),
		"new", stats.New,
		"updated", stats.Updated,
		"errors", stats.Errors,
	)
	return stats, nil
}

func (s *CompetitionSyncService) upsertOne(ctx context.Context, item ExternalCompetition) UpsertOutcome {
	if err := validateRecord(item); err != nil {
		s.logger.WarnContext(ctx, "skip malformed competition", "external_id", item.ExternalID, "error", err)
		return OutcomeFailed
	}

	record := competition.Competition{
		ExternalID: strconv.FormatInt(item.ExternalID, 10),
		Name:       item.Name,
		Code:       item.Code,
		Type:       item.Type,
		Emblem:     item.Emblem,
		Plan:       item.Plan,
	}

	outcome, err := s.upserter.Upsert(ctx, naturalkey.EntityCompetition, record.ExternalID, record.Fields())
	if err != nil {
		s.logger.WarnContext(ctx, "upsert competition failed",
			"external_id", record.ExternalID,
			"code", record.Code,
			"error", err,
		)
	}
	return outcome
}
