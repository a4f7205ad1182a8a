package memory

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/riskibarqy/football-sync/internal/domain/competition"
	"github.com/riskibarqy/football-sync/internal/domain/match"
	"github.com/riskibarqy/football-sync/internal/domain/naturalkey"
	"github.com/riskibarqy/football-sync/internal/domain/team"
)

var ErrForeignKeyViolation = errors.New("referenced row does not exist")

// references lists the columns that point at another table's id.
var references = map[naturalkey.Entity]map[string]naturalkey.Entity{
	naturalkey.EntityMatch: {
		"competition_id": naturalkey.EntityCompetition,
		"home_team_id":   naturalkey.EntityTeam,
		"away_team_id":   naturalkey.EntityTeam,
	},
}

type row struct {
	id         string
	externalID string
	fields     naturalkey.Fields
}

type table struct {
	byID       map[string]*row
	byExternal map[string]string
}

// Store keeps competitions, teams and matches in process memory with the same
// uniqueness and reference rules as the database schema.
type Store struct {
	mu     sync.RWMutex
	tables map[naturalkey.Entity]*table
}

func NewStore() *Store {
	tables := make(map[naturalkey.Entity]*table, 3)
	for _, entity := range []naturalkey.Entity{naturalkey.EntityCompetition, naturalkey.EntityTeam, naturalkey.EntityMatch} {
		tables[entity] = &table{
			byID:       make(map[string]*row),
			byExternal: make(map[string]string),
		}
	}
	return &Store{tables: tables}
}

func (s *Store) FindID(_ context.Context, entity naturalkey.Entity, externalID string) (string, bool, error) {
	if err := entity.Validate(); err != nil {
		return "", false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.tables[entity].byExternal[strings.TrimSpace(externalID)]
	return id, ok, nil
}

func (s *Store) Insert(_ context.Context, entity naturalkey.Entity, id, externalID string, fields naturalkey.Fields) error {
	if err := fields.Validate(entity); err != nil {
		return err
	}
	externalID = strings.TrimSpace(externalID)
	if id == "" || externalID == "" {
		return fmt.Errorf("insert %s: id and external id are required", entity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tbl := s.tables[entity]
	if _, exists := tbl.byExternal[externalID]; exists {
		return fmt.Errorf("%w: %s %s", naturalkey.ErrDuplicateExternalID, entity, externalID)
	}
	if _, exists := tbl.byID[id]; exists {
		return fmt.Errorf("insert %s: id %s already exists", entity, id)
	}
	if err := s.checkReferences(entity, fields); err != nil {
		return err
	}

	tbl.byID[id] = &row{id: id, externalID: externalID, fields: maps.Clone(fields)}
	tbl.byExternal[externalID] = id
	return nil
}

func (s *Store) Update(_ context.Context, entity naturalkey.Entity, id string, fields naturalkey.Fields) error {
	if err := fields.Validate(entity); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.tables[entity].byID[id]
	if !ok {
		return fmt.Errorf("update %s: id %s not found", entity, id)
	}
	if err := s.checkReferences(entity, fields); err != nil {
		return err
	}

	merged := maps.Clone(current.fields)
	if merged == nil {
		merged = make(naturalkey.Fields, len(fields))
	}
	maps.Copy(merged, fields)
	current.fields = merged
	return nil
}

func (s *Store) checkReferences(entity naturalkey.Entity, fields naturalkey.Fields) error {
	for column, target := range references[entity] {
		value, ok := fields[column]
		if !ok || value == nil {
			continue
		}
		refID, _ := value.(string)
		if _, exists := s.tables[target].byID[refID]; !exists {
			return fmt.Errorf("%w: %s.%s=%v", ErrForeignKeyViolation, entity, column, value)
		}
	}
	return nil
}

// Count returns the number of rows stored for entity.
func (s *Store) Count(entity naturalkey.Entity) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tbl, ok := s.tables[entity]
	if !ok {
		return 0
	}
	return len(tbl.byID)
}

func (s *Store) lookup(entity naturalkey.Entity, externalID string) (row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tbl := s.tables[entity]
	id, ok := tbl.byExternal[externalID]
	if !ok {
		return row{}, false
	}
	found := tbl.byID[id]
	return row{id: found.id, externalID: found.externalID, fields: maps.Clone(found.fields)}, true
}

func (s *Store) rows(entity naturalkey.Entity) []row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tbl := s.tables[entity]
	out := make([]row, 0, len(tbl.byID))
	for _, item := range tbl.byID {
		out = append(out, row{id: item.id, externalID: item.externalID, fields: maps.Clone(item.fields)})
	}
	return out
}

type CompetitionRepository struct {
	store *Store
}

func NewCompetitionRepository(store *Store) *CompetitionRepository {
	return &CompetitionRepository{store: store}
}

func (r *CompetitionRepository) ListAddressable(_ context.Context) ([]competition.Competition, error) {
	out := make([]competition.Competition, 0)
	for _, item := range r.store.rows(naturalkey.EntityCompetition) {
		comp := competitionFromRow(item)
		if comp.Addressable() {
			out = append(out, comp)
		}
	}
	slices.SortFunc(out, func(a, b competition.Competition) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ExternalID, b.ExternalID)
	})
	return out, nil
}

func (r *CompetitionRepository) GetByExternalID(_ context.Context, externalID string) (competition.Competition, bool, error) {
	item, ok := r.store.lookup(naturalkey.EntityCompetition, strings.TrimSpace(externalID))
	if !ok {
		return competition.Competition{}, false, nil
	}
	return competitionFromRow(item), true, nil
}

type TeamRepository struct {
	store *Store
}

func NewTeamRepository(store *Store) *TeamRepository {
	return &TeamRepository{store: store}
}

func (r *TeamRepository) GetByExternalID(_ context.Context, externalID int64) (team.Team, bool, error) {
	item, ok := r.store.lookup(naturalkey.EntityTeam, strconv.FormatInt(externalID, 10))
	if !ok {
		return team.Team{}, false, nil
	}
	return team.Team{
		ID:         item.id,
		ExternalID: externalID,
		Name:       stringField(item.fields, "name"),
		ShortName:  stringField(item.fields, "short_name"),
		TLA:        stringField(item.fields, "tla"),
		Crest:      stringField(item.fields, "crest"),
		Address:    stringField(item.fields, "address"),
		Website:    stringField(item.fields, "website"),
		Founded:    intField(item.fields, "founded"),
		ClubColors: stringField(item.fields, "club_colors"),
		Venue:      stringField(item.fields, "venue"),
	}, true, nil
}

type MatchRepository struct {
	store *Store
}

func NewMatchRepository(store *Store) *MatchRepository {
	return &MatchRepository{store: store}
}

func (r *MatchRepository) GetByExternalID(_ context.Context, externalID int64) (match.Match, bool, error) {
	item, ok := r.store.lookup(naturalkey.EntityMatch, strconv.FormatInt(externalID, 10))
	if !ok {
		return match.Match{}, false, nil
	}

	var matchDate int64
	if v, ok := item.fields["match_date"].(int64); ok {
		matchDate = v
	}
	return match.Match{
		ID:            item.id,
		ExternalID:    externalID,
		CompetitionID: stringField(item.fields, "competition_id"),
		Status:        stringField(item.fields, "status"),
		MatchDate:     matchDate,
		Stage:         stringField(item.fields, "stage"),
		Matchday:      intField(item.fields, "matchday"),
		HomeTeamID:    refField(item.fields, "home_team_id"),
		AwayTeamID:    refField(item.fields, "away_team_id"),
	}, true, nil
}

func competitionFromRow(item row) competition.Competition {
	return competition.Competition{
		ID:         item.id,
		ExternalID: item.externalID,
		Name:       stringField(item.fields, "name"),
		Code:       stringField(item.fields, "code"),
		Type:       stringField(item.fields, "type"),
		Emblem:     stringField(item.fields, "emblem"),
		Plan:       stringField(item.fields, "plan"),
	}
}

func stringField(fields naturalkey.Fields, column string) string {
	value, _ := fields[column].(string)
	return value
}

func intField(fields naturalkey.Fields, column string) *int {
	value, ok := fields[column].(int)
	if !ok {
		return nil
	}
	return &value
}

func refField(fields naturalkey.Fields, column string) *string {
	value, ok := fields[column].(string)
	if !ok || value == "" {
		return nil
	}
	return &value
}
