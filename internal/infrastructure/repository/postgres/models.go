package postgres

import (
	"database/sql"
	"time"
)

type competitionTableModel struct {
	ID         string         `db:"id"`
	ExternalID string         `db:"external_id"`
	Name       string         `db:"name"`
	Code       sql.NullString `db:"code"`
	Type       sql.NullString `db:"type"`
	Emblem     sql.NullString `db:"emblem"`
	Plan       sql.NullString `db:"plan"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

type teamTableModel struct {
	ID         string         `db:"id"`
	ExternalID int64          `db:"external_id"`
	Name       string         `db:"name"`
	ShortName  sql.NullString `db:"short_name"`
	TLA        sql.NullString `db:"tla"`
	Crest      sql.NullString `db:"crest"`
	Address    sql.NullString `db:"address"`
	Website    sql.NullString `db:"website"`
	Founded    sql.NullInt64  `db:"founded"`
	ClubColors sql.NullString `db:"club_colors"`
	Venue      sql.NullString `db:"venue"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

type matchTableModel struct {
	ID            string         `db:"id"`
	ExternalID    int64          `db:"external_id"`
	CompetitionID string         `db:"competition_id"`
	Status        string         `db:"status"`
	MatchDate     int64          `db:"match_date"`
	Stage         sql.NullString `db:"stage"`
	Matchday      sql.NullInt64  `db:"matchday"`
	HomeTeamID    sql.NullString `db:"home_team_id"`
	AwayTeamID    sql.NullString `db:"away_team_id"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

type syncRunTableModel struct {
	ID           string         `db:"id"`
	Stage        string         `db:"stage"`
	Trigger      string         `db:"trigger"`
	Status       string         `db:"status"`
	Summary      []byte         `db:"summary"`
	ErrorMessage sql.NullString `db:"error"`
	TraceID      sql.NullString `db:"trace_id"`
	StartedAt    time.Time      `db:"started_at"`
	FinishedAt   *time.Time     `db:"finished_at"`
}

type syncRunInsertModel struct {
	ID        string    `db:"id"`
	Stage     string    `db:"stage"`
	Trigger   string    `db:"trigger"`
	Status    string    `db:"status"`
	Summary   string    `db:"summary" cast:"jsonb"`
	TraceID   *string   `db:"trace_id"`
	StartedAt time.Time `db:"started_at"`
}
