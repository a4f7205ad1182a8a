package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/football-sync/internal/domain/competition"
	"github.com/riskibarqy/football-sync/internal/domain/match"
	"github.com/riskibarqy/football-sync/internal/domain/team"
	qb "github.com/riskibarqy/football-sync/internal/platform/querybuilder"
)

type CompetitionRepository struct {
	db *sqlx.DB
}

func NewCompetitionRepository(db *sqlx.DB) *CompetitionRepository {
	return &CompetitionRepository{db: db}
}

func (r *CompetitionRepository) ListAddressable(ctx context.Context) ([]competition.Competition, error) {
	query, args, err := qb.Select("*").From("competitions").
		Where(qb.NotBlank("code")).
		OrderBy("name", "external_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select addressable competitions query: %w", err)
	}

	var rows []competitionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select addressable competitions: %w", err)
	}

	out := make([]competition.Competition, 0, len(rows))
	for _, row := range rows {
		out = append(out, competitionFromModel(row))
	}
	return out, nil
}

func (r *CompetitionRepository) GetByExternalID(ctx context.Context, externalID string) (competition.Competition, bool, error) {
	query, args, err := qb.Select("*").From("competitions").
		Where(qb.Eq("external_id", strings.TrimSpace(externalID))).
		Limit(1).
		ToSQL()
	if err != nil {
		return competition.Competition{}, false, fmt.Errorf("build select competition query: %w", err)
	}

	var row competitionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return competition.Competition{}, false, nil
		}
		return competition.Competition{}, false, fmt.Errorf("get competition external_id=%s: %w", externalID, err)
	}
	return competitionFromModel(row), true, nil
}

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetByExternalID(ctx context.Context, externalID int64) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(qb.Eq("external_id", externalID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build select team query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team external_id=%d: %w", externalID, err)
	}

	return team.Team{
		ID:         row.ID,
		ExternalID: row.ExternalID,
		Name:       row.Name,
		ShortName:  row.ShortName.String,
		TLA:        row.TLA.String,
		Crest:      row.Crest.String,
		Address:    row.Address.String,
		Website:    row.Website.String,
		Founded:    nullIntToPtr(row.Founded),
		ClubColors: row.ClubColors.String,
		Venue:      row.Venue.String,
	}, true, nil
}

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByExternalID(ctx context.Context, externalID int64) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("external_id", externalID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match external_id=%d: %w", externalID, err)
	}

	return match.Match{
		ID:            row.ID,
		ExternalID:    row.ExternalID,
		CompetitionID: row.CompetitionID,
		Status:        row.Status,
		MatchDate:     row.MatchDate,
		Stage:         row.Stage.String,
		Matchday:      nullIntToPtr(row.Matchday),
		HomeTeamID:    nullStringToPtr(row.HomeTeamID),
		AwayTeamID:    nullStringToPtr(row.AwayTeamID),
	}, true, nil
}

func competitionFromModel(row competitionTableModel) competition.Competition {
	return competition.Competition{
		ID:         row.ID,
		ExternalID: row.ExternalID,
		Name:       row.Name,
		Code:       row.Code.String,
		Type:       row.Type.String,
		Emblem:     row.Emblem.String,
		Plan:       row.Plan.String,
	}
}
