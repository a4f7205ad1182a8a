package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/football-sync/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/football-sync/internal/platform/cache"
	idgen "github.com/riskibarqy/football-sync/internal/platform/id"
	"github.com/riskibarqy/football-sync/internal/platform/logging"
)

var harnessNow = time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)

// stubProvider serves canned upstream data keyed by competition code.
type stubProvider struct {
	mu sync.Mutex

	competitions    []ExternalCompetition
	competitionsErr error
	teams           map[string][]ExternalTeam
	teamErrs        map[string]error
	matches         map[string][]ExternalMatch
	matchErrs       map[string]error
	panicOn         map[string]bool
	// afterFetch runs outside the lock once a call is logged.
	afterFetch func(call string)

	calls   []string
	windows []DateWindow
}

func newStubProvider() *stubProvider {
	return &stubProvider{
		teams:     make(map[string][]ExternalTeam),
		teamErrs:  make(map[string]error),
		matches:   make(map[string][]ExternalMatch),
		matchErrs: make(map[string]error),
		panicOn:   make(map[string]bool),
	}
}

func (p *stubProvider) FetchCompetitions(_ context.Context) ([]ExternalCompetition, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, "competitions")
	if p.competitionsErr != nil {
		return nil, p.competitionsErr
	}
	return append([]ExternalCompetition(nil), p.competitions...), nil
}

func (p *stubProvider) FetchTeams(_ context.Context, code string) ([]ExternalTeam, error) {
	p.mu.Lock()
	p.calls = append(p.calls, "teams:"+code)
	shouldPanic := p.panicOn["teams:"+code]
	items, err := append([]ExternalTeam(nil), p.teams[code]...), p.teamErrs[code]
	afterFetch := p.afterFetch
	p.mu.Unlock()

	if afterFetch != nil {
		afterFetch("teams:" + code)
	}

	if shouldPanic {
		panic("teams payload exploded for " + code)
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (p *stubProvider) FetchMatches(_ context.Context, code string, dateFrom, dateTo time.Time) ([]ExternalMatch, error) {
	p.mu.Lock()
	p.calls = append(p.calls, "matches:"+code)
	p.windows = append(p.windows, DateWindow{From: dateFrom, To: dateTo})
	shouldPanic := p.panicOn["matches:"+code]
	items, err := append([]ExternalMatch(nil), p.matches[code]...), p.matchErrs[code]
	afterFetch := p.afterFetch
	p.mu.Unlock()

	if afterFetch != nil {
		afterFetch("matches:" + code)
	}

	if shouldPanic {
		panic("matches payload exploded for " + code)
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (p *stubProvider) setTeams(code string, items ...ExternalTeam) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.teams[code] = items
}

func (p *stubProvider) callLog() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

type syncHarness struct {
	store        *memory.Store
	competitions *memory.CompetitionRepository
	teamRepo     *memory.TeamRepository
	matchRepo    *memory.MatchRepository
	runs         *memory.SyncRunRepository

	competitionSync *CompetitionSyncService
	teamSync        *TeamSyncService
	matchSync       *MatchSyncService
	pipeline        *SyncPipelineService
}

func newSyncHarness(t *testing.T, provider FootballDataProvider, workers int) *syncHarness {
	t.Helper()

	clock := clockwork.NewFakeClockAt(harnessNow)
	logger := logging.NewNop()
	store := memory.NewStore()
	competitions := memory.NewCompetitionRepository(store)
	runs := memory.NewSyncRunRepository()
	ids := idgen.NewUUIDGenerator()

	upserter := NewUpsertEngine(store, ids)
	resolver := NewNaturalKeyResolver(store, cache.NewStore[string](time.Minute, clock))

	h := &syncHarness{
		store:        store,
		competitions: competitions,
		teamRepo:     memory.NewTeamRepository(store),
		matchRepo:    memory.NewMatchRepository(store),
		runs:         runs,
	}
	h.competitionSync = NewCompetitionSyncService(provider, upserter, logger)
	h.teamSync = NewTeamSyncService(provider, competitions, upserter, workers, logger)
	h.matchSync = NewMatchSyncService(provider, competitions, resolver, upserter, clock,
		MatchSyncConfig{WindowDays: DefaultMatchWindowDays, Workers: workers}, logger)
	h.pipeline = NewSyncPipelineService(h.competitionSync, h.teamSync, h.matchSync, runs, ids, clock,
		SyncPipelineConfig{}, logger)
	return h
}

func intPtr(v int) *int {
	return &v
}

func premierLeagueProvider() *stubProvider {
	provider := newStubProvider()
	provider.competitions = []ExternalCompetition{
		{ExternalID: 2021, Name: "Premier League", Code: "PL", Type: "LEAGUE", Plan: "TIER_ONE"},
	}
	provider.teams["PL"] = []ExternalTeam{
		{ExternalID: 57, Name: "Arsenal FC", ShortName: "Arsenal", TLA: "ARS", Founded: intPtr(1886)},
		{ExternalID: 65, Name: "Manchester City FC", ShortName: "Man City", TLA: "MCI", Founded: intPtr(1880)},
	}
	provider.matches["PL"] = []ExternalMatch{
		{
			ExternalID: 497001,
			Status:     "TIMED",
			UTCDate:    "2026-03-15T16:30:00Z",
			Stage:      "REGULAR_SEASON",
			Matchday:   intPtr(29),
			HomeTeam:   ExternalMatchSide{ExternalID: 57, Name: "Arsenal FC"},
			AwayTeam:   ExternalMatchSide{ExternalID: 65, Name: "Manchester City FC"},
		},
	}
	return provider
}
