package team

import "github.com/riskibarqy/football-sync/internal/domain/naturalkey"

// Team is a club. It is not scoped to a competition; the same external id seen
// under several competitions is one row.
type Team struct {
	ID         string
	ExternalID int64
	Name       string
	ShortName  string
	TLA        string
	Crest      string
	Address    string
	Website    string
	Founded    *int
	ClubColors string
	Venue      string
}

func (t Team) Fields() naturalkey.Fields {
	var founded any
	if t.Founded != nil {
		founded = *t.Founded
	}

	return naturalkey.Fields{
		"name":        t.Name,
		"short_name":  t.ShortName,
		"tla":         t.TLA,
		"crest":       t.Crest,
		"address":     t.Address,
		"website":     t.Website,
		"founded":     founded,
		"club_colors": t.ClubColors,
		"venue":       t.Venue,
	}
}
