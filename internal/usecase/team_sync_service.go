package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/riskibarqy/football-sync/internal/domain/competition"
	"github.com/riskibarqy/football-sync/internal/domain/naturalkey"
	"github.com/riskibarqy/football-sync/internal/domain/team"
	"github.com/riskibarqy/football-sync/internal/platform/logging"
)

type TeamSyncService struct {
	provider     FootballDataProvider
	competitions competition.Repository
	upserter     *UpsertEngine
	workers      int
	logger       *logging.Logger
}

func NewTeamSyncService(
	provider FootballDataProvider,
	competitions competition.Repository,
	upserter *UpsertEngine,
	workers int,
	logger *logging.Logger,
) *TeamSyncService {
	if logger == nil {
		logger = logging.Default()
	}

	return &TeamSyncService{
		provider:     provider,
		competitions: competitions,
		upserter:     upserter,
		workers:      workers,
		logger:       logger,
	}
}

// Run fetches the team list of every stored competition that has a code.
// Competitions whose fetch fails are skipped without touching the counters,
// except for a missing credential or a cancelled run, which end the stage.
func (s *TeamSyncService) Run(ctx context.Context) (EntityStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamSyncService.Run")
	defer span.End()

	competitions, err := s.competitions.ListAddressable(ctx)
	if err != nil {
		return EntityStats{}, fmt.Errorf("list competitions for team sync: %w", err)
	}

	partials, err := forEachCompetition(ctx, competitions, s.workers, s.syncCompetition,
		func(comp competition.Competition, err error) EntityStats {
			s.logger.ErrorContext(ctx, "team sync task panicked", "competition_code", comp.Code, "error", err)
			return EntityStats{}
		},
	)

	stats := EntityStats{}
	for _, partial := range partials {
		stats = stats.Merge(partial)
	}
	if err != nil {
		return stats, err
	}

	s.logger.InfoContext(ctx, "team sync finished",
		"competitions", len(competitions),
		"new", stats.New,
		"updated", stats.Updated,
		"errors", stats.Errors,
	)
	return stats, nil
}

func (s *TeamSyncService) syncCompetition(ctx context.Context, comp competition.Competition) (EntityStats, error) {
	items, err := s.provider.FetchTeams(ctx, comp.Code)
	if err != nil {
		if abortErr := stageAbortError(ctx, err); abortErr != nil {
			return EntityStats{}, fmt.Errorf("fetch teams competition=%s: %w", comp.Code, abortErr)
		}
		logFetchSkip(ctx, s.logger, "teams", comp, err)
		return EntityStats{}, nil
	}

	stats := EntityStats{}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats = stats.Record(s.upsertOne(ctx, comp, item))
	}
	return stats, nil
}

func (s *TeamSyncService) upsertOne(ctx context.Context, comp competition.Competition, item ExternalTeam) UpsertOutcome {
	if err := validateRecord(item); err != nil {
		s.logger.WarnContext(ctx, "skip malformed team",
			"competition_code", comp.Code,
			"external_id", item.ExternalID,
			"error", err,
		)
		return OutcomeFailed
	}

	record := team.Team{
		ExternalID: item.ExternalID,
		Name:       item.Name,
		ShortName:  item.ShortName,
		TLA:        item.TLA,
		Crest:      item.Crest,
		Address:    item.Address,
		Website:    item.Website,
		Founded:    item.Founded,
		ClubColors: item.ClubColors,
		Venue:      item.Venue,
	}

	externalID := strconv.FormatInt(record.ExternalID, 10)
	outcome, err := s.upserter.Upsert(ctx, naturalkey.EntityTeam, externalID, record.Fields())
	if err != nil {
		s.logger.WarnContext(ctx, "upsert team failed",
			"competition_code", comp.Code,
			"external_id", externalID,
			"error", err,
		)
	}
	return outcome
}

func logFetchSkip(ctx context.Context, logger *logging.Logger, resource string, comp competition.Competition, err error) {
	var fetchErr *FetchFailedError
	if errors.As(err, &fetchErr) && fetchErr.Forbidden() {
		logger.WarnContext(ctx, "skip competition, provider denied access (might be a paid tier competition)",
			"resource", resource,
			"competition_code", comp.Code,
			"plan", comp.Plan,
			"status", fetchErr.StatusCode,
		)
		return
	}
	logger.WarnContext(ctx, "skip competition, fetch failed",
		"resource", resource,
		"competition_code", comp.Code,
		"error", err,
	)
}
