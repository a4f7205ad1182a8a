package usecase

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// FootballDataProvider is the upstream source of competitions, teams and matches.
type FootballDataProvider interface {
	FetchCompetitions(ctx context.Context) ([]ExternalCompetition, error)
	FetchTeams(ctx context.Context, competitionCode string) ([]ExternalTeam, error)
	FetchMatches(ctx context.Context, competitionCode string, dateFrom, dateTo time.Time) ([]ExternalMatch, error)
}

type ExternalCompetition struct {
	ExternalID int64  `validate:"gt=0"`
	Name       string `validate:"required"`
	Code       string
	Type       string
	Emblem     string
	Plan       string
}

type ExternalTeam struct {
	ExternalID int64  `validate:"gt=0"`
	Name       string `validate:"required"`
	ShortName  string
	TLA        string
	Crest      string
	Address    string
	Website    string
	Founded    *int
	ClubColors string
	Venue      string
}

// ExternalMatchSide is a team reference inside a match. ExternalID is zero
// when the provider has not decided the participant yet.
type ExternalMatchSide struct {
	ExternalID int64
	Name       string
}

type ExternalMatch struct {
	ExternalID int64  `validate:"gt=0"`
	Status     string `validate:"required"`
	UTCDate    string `validate:"required"`
	Stage      string
	Matchday   *int
	HomeTeam   ExternalMatchSide
	AwayTeam   ExternalMatchSide
}

// FetchFailedError reports an upstream call that did not yield a decodable 2xx
// response. StatusCode is zero for transport failures.
type FetchFailedError struct {
	Path       string
	StatusCode int
	Err        error
}

func (e *FetchFailedError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("fetch %s failed: %v", e.Path, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s failed: status=%d: %v", e.Path, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s failed: status=%d", e.Path, e.StatusCode)
}

func (e *FetchFailedError) Unwrap() error {
	return e.Err
}

// Forbidden is true for competitions outside the account's subscription plan.
func (e *FetchFailedError) Forbidden() bool {
	return e.StatusCode == http.StatusForbidden
}

func (e *FetchFailedError) Transport() bool {
	return e.StatusCode == 0
}
