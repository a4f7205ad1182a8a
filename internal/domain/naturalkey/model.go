package naturalkey

import (
	"errors"
	"fmt"
	"maps"
)

var (
	ErrUnknownEntity       = errors.New("unknown entity type")
	ErrUnknownColumn       = errors.New("unknown column")
	ErrDuplicateExternalID = errors.New("external id already exists")
)

// Entity names one of the synced tables.
type Entity string

const (
	EntityCompetition Entity = "competition"
	EntityTeam        Entity = "team"
	EntityMatch       Entity = "match"
)

var writableColumns = map[Entity][]string{
	EntityCompetition: {"name", "code", "type", "emblem", "plan"},
	EntityTeam:        {"name", "short_name", "tla", "crest", "address", "website", "founded", "club_colors", "venue"},
	EntityMatch:       {"competition_id", "status", "match_date", "stage", "matchday", "home_team_id", "away_team_id"},
}

// Columns lists the mutable columns of e in table order.
func (e Entity) Columns() []string {
	return writableColumns[e]
}

func (e Entity) Validate() error {
	if _, ok := writableColumns[e]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEntity, string(e))
	}
	return nil
}

// Fields maps column names to values for one upsert. A nil value writes NULL.
type Fields map[string]any

// Validate rejects columns that e does not own.
func (f Fields) Validate(e Entity) error {
	if err := e.Validate(); err != nil {
		return err
	}
	for column := range f {
		if !e.allows(column) {
			return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, e, column)
		}
	}
	return nil
}

// Merge returns a new Fields with other layered over f.
func (f Fields) Merge(other Fields) Fields {
	out := make(Fields, len(f)+len(other))
	maps.Copy(out, f)
	maps.Copy(out, other)
	return out
}

func (e Entity) allows(column string) bool {
	for _, candidate := range writableColumns[e] {
		if candidate == column {
			return true
		}
	}
	return false
}
