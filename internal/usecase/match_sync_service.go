package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/football-sync/internal/domain/competition"
	"github.com/riskibarqy/football-sync/internal/domain/match"
	"github.com/riskibarqy/football-sync/internal/domain/naturalkey"
	"github.com/riskibarqy/football-sync/internal/platform/logging"
)

const (
	DefaultMatchWindowDays = 7
	providerDateLayout     = "2006-01-02"
)

// DateWindow is an inclusive range of calendar dates in UTC.
type DateWindow struct {
	From time.Time
	To   time.Time
}

func (w DateWindow) MarshalJSON() ([]byte, error) {
	return []byte(`{"from":"` + w.From.Format(providerDateLayout) + `","to":"` + w.To.Format(providerDateLayout) + `"}`), nil
}

type MatchSyncResult struct {
	Stats                 MatchStats
	DateRange             DateWindow
	CompetitionsProcessed int
}

type MatchSyncService struct {
	provider     FootballDataProvider
	competitions competition.Repository
	resolver     *NaturalKeyResolver
	upserter     *UpsertEngine
	clock        clockwork.Clock
	windowDays   int
	workers      int
	logger       *logging.Logger
}

type MatchSyncConfig struct {
	WindowDays int
	Workers    int
}

func NewMatchSyncService(
	provider FootballDataProvider,
	competitions competition.Repository,
	resolver *NaturalKeyResolver,
	upserter *UpsertEngine,
	clock clockwork.Clock,
	cfg MatchSyncConfig,
	logger *logging.Logger,
) *MatchSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = DefaultMatchWindowDays
	}

	return &MatchSyncService{
		provider:     provider,
		competitions: competitions,
		resolver:     resolver,
		upserter:     upserter,
		clock:        clock,
		windowDays:   cfg.WindowDays,
		workers:      cfg.Workers,
		logger:       logger,
	}
}

// Window returns [today, today+windowDays] for the current UTC date.
func (s *MatchSyncService) Window() DateWindow {
	now := s.clock.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return DateWindow{From: today, To: today.AddDate(0, 0, s.windowDays)}
}

// Run upserts the upcoming matches of every stored competition that has a
// code. Team references are resolved on every sighting, so a match written
// with a NULL side before its team existed is repaired by the next run that
// sees it again.
func (s *MatchSyncService) Run(ctx context.Context) (MatchSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchSyncService.Run")
	defer span.End()

	window := s.Window()
	competitions, err := s.competitions.ListAddressable(ctx)
	if err != nil {
		return MatchSyncResult{DateRange: window}, fmt.Errorf("list competitions for match sync: %w", err)
	}

	partials, err := forEachCompetition(ctx, competitions, s.workers,
		func(ctx context.Context, comp competition.Competition) (MatchStats, error) {
			return s.syncCompetition(ctx, comp, window)
		},
		func(comp competition.Competition, err error) MatchStats {
			s.logger.ErrorContext(ctx, "match sync task panicked", "competition_code", comp.Code, "error", err)
			return MatchStats{}.FetchFailed()
		},
	)

	result := MatchSyncResult{DateRange: window, CompetitionsProcessed: len(partials)}
	for _, partial := range partials {
		result.Stats = result.Stats.Merge(partial)
	}
	if err != nil {
		return result, err
	}

	s.logger.InfoContext(ctx, "match sync finished",
		"date_from", window.From.Format(providerDateLayout),
		"date_to", window.To.Format(providerDateLayout),
		"competitions", len(competitions),
		"processed", result.Stats.Processed,
		"new", result.Stats.New,
		"updated", result.Stats.Updated,
		"skipped", result.Stats.Skipped,
		"errors", result.Stats.Errors,
	)
	return result, nil
}

func (s *MatchSyncService) syncCompetition(ctx context.Context, comp competition.Competition, window DateWindow) (MatchStats, error) {
	items, err := s.provider.FetchMatches(ctx, comp.Code, window.From, window.To)
	if err != nil {
		if abortErr := stageAbortError(ctx, err); abortErr != nil {
			return MatchStats{}, fmt.Errorf("fetch matches competition=%s: %w", comp.Code, abortErr)
		}
		logFetchSkip(ctx, s.logger, "matches", comp, err)
		return MatchStats{}.FetchFailed(), nil
	}

	stats := MatchStats{}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats = stats.Record(s.upsertOne(ctx, comp, item))
	}
	return stats, nil
}

func (s *MatchSyncService) upsertOne(ctx context.Context, comp competition.Competition, item ExternalMatch) UpsertOutcome {
	logger := s.logger.With("competition_code", comp.Code, "external_id", item.ExternalID)

	if err := validateRecord(item); err != nil {
		logger.WarnContext(ctx, "skip malformed match", "error", err)
		return OutcomeFailed
	}

	kickoff, err := parseProviderDateTime(item.UTCDate)
	if err != nil {
		logger.WarnContext(ctx, "skip match with unparseable date", "utc_date", item.UTCDate, "error", err)
		return OutcomeFailed
	}

	homeID, err := s.resolveSide(ctx, item.HomeTeam)
	if err != nil {
		logger.WarnContext(ctx, "resolve home team failed", "error", err)
		return OutcomeFailed
	}
	awayID, err := s.resolveSide(ctx, item.AwayTeam)
	if err != nil {
		logger.WarnContext(ctx, "resolve away team failed", "error", err)
		return OutcomeFailed
	}

	record := match.Match{
		ExternalID:    item.ExternalID,
		CompetitionID: comp.ID,
		Status:        item.Status,
		MatchDate:     kickoff.Unix(),
		Stage:         item.Stage,
		Matchday:      item.Matchday,
		HomeTeamID:    homeID,
		AwayTeamID:    awayID,
	}

	outcome, err := s.upserter.Upsert(ctx, naturalkey.EntityMatch, strconv.FormatInt(record.ExternalID, 10),
		record.Fields(), WithInsertOnly(record.InsertFields()))
	if err != nil {
		logger.WarnContext(ctx, "upsert match failed", "error", err)
	}
	return outcome
}

// resolveSide returns nil when the team is undecided upstream or not stored yet.
func (s *MatchSyncService) resolveSide(ctx context.Context, side ExternalMatchSide) (*string, error) {
	if side.ExternalID <= 0 {
		return nil, nil
	}

	id, found, err := s.resolver.ResolveTeam(ctx, side.ExternalID)
	if err != nil {
		return nil, err
	}
	if !found {
		s.logger.DebugContext(ctx, "team not stored yet, writing null reference",
			"team_external_id", side.ExternalID,
			"team_name", side.Name,
		)
		return nil, nil
	}
	return &id, nil
}

func parseProviderDateTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	layouts := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unsupported datetime %q", ErrInvalidInput, raw)
}
