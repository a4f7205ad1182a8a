package match

import "github.com/riskibarqy/football-sync/internal/domain/naturalkey"

// Match is one fixture. Status is stored exactly as the provider sends it.
type Match struct {
	ID            string
	ExternalID    int64
	CompetitionID string
	Status        string
	MatchDate     int64
	Stage         string
	Matchday      *int
	HomeTeamID    *string
	AwayTeamID    *string
}

// Fields returns the columns refreshed on every sighting. CompetitionID is
// excluded because it is fixed at insert time; see InsertFields.
func (m Match) Fields() naturalkey.Fields {
	return naturalkey.Fields{
		"status":       m.Status,
		"match_date":   m.MatchDate,
		"stage":        nullableString(m.Stage),
		"matchday":     nullableInt(m.Matchday),
		"home_team_id": nullableRef(m.HomeTeamID),
		"away_team_id": nullableRef(m.AwayTeamID),
	}
}

func (m Match) InsertFields() naturalkey.Fields {
	return naturalkey.Fields{"competition_id": m.CompetitionID}
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableRef(value *string) any {
	if value == nil || *value == "" {
		return nil
	}
	return *value
}
