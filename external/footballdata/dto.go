package footballdata

import (
	"strings"

	"github.com/riskibarqy/football-sync/internal/usecase"
)

type competitionsEnvelope struct {
	Count        int              `json:"count"`
	Competitions []competitionDTO `json:"competitions"`
}

type competitionDTO struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Code   string `json:"code"`
	Type   string `json:"type"`
	Emblem string `json:"emblem"`
	Plan   string `json:"plan"`
}

type teamsEnvelope struct {
	Count int       `json:"count"`
	Teams []teamDTO `json:"teams"`
}

type teamDTO struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	ShortName  string `json:"shortName"`
	TLA        string `json:"tla"`
	Crest      string `json:"crest"`
	Address    string `json:"address"`
	Website    string `json:"website"`
	Founded    *int   `json:"founded"`
	ClubColors string `json:"clubColors"`
	Venue      string `json:"venue"`
}

type matchesEnvelope struct {
	Matches []matchDTO `json:"matches"`
}

type matchDTO struct {
	ID       int64      `json:"id"`
	Status   string     `json:"status"`
	UTCDate  string     `json:"utcDate"`
	Stage    string     `json:"stage"`
	Matchday *int       `json:"matchday"`
	HomeTeam teamRefDTO `json:"homeTeam"`
	AwayTeam teamRefDTO `json:"awayTeam"`
}

// teamRefDTO has a null id until the participant of a knockout tie is known.
type teamRefDTO struct {
	ID   *int64 `json:"id"`
	Name string `json:"name"`
}

func mapCompetition(item competitionDTO) usecase.ExternalCompetition {
	return usecase.ExternalCompetition{
		ExternalID: item.ID,
		Name:       strings.TrimSpace(item.Name),
		Code:       strings.TrimSpace(item.Code),
		Type:       strings.TrimSpace(item.Type),
		Emblem:     strings.TrimSpace(item.Emblem),
		Plan:       strings.TrimSpace(item.Plan),
	}
}

func mapTeam(item teamDTO) usecase.ExternalTeam {
	return usecase.ExternalTeam{
		ExternalID: item.ID,
		Name:       strings.TrimSpace(item.Name),
		ShortName:  strings.TrimSpace(item.ShortName),
		TLA:        strings.TrimSpace(item.TLA),
		Crest:      strings.TrimSpace(item.Crest),
		Address:    strings.TrimSpace(item.Address),
		Website:    strings.TrimSpace(item.Website),
		Founded:    item.Founded,
		ClubColors: strings.TrimSpace(item.ClubColors),
		Venue:      strings.TrimSpace(item.Venue),
	}
}

func mapMatch(item matchDTO) usecase.ExternalMatch {
	return usecase.ExternalMatch{
		ExternalID: item.ID,
		Status:     strings.TrimSpace(item.Status),
		UTCDate:    strings.TrimSpace(item.UTCDate),
		Stage:      strings.TrimSpace(item.Stage),
		Matchday:   item.Matchday,
		HomeTeam:   mapTeamRef(item.HomeTeam),
		AwayTeam:   mapTeamRef(item.AwayTeam),
	}
}

func mapTeamRef(ref teamRefDTO) usecase.ExternalMatchSide {
	side := usecase.ExternalMatchSide{Name: strings.TrimSpace(ref.Name)}
	if ref.ID != nil {
		side.ExternalID = *ref.ID
	}
	return side
}
