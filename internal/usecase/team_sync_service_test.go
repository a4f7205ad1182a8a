package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/riskibarqy/football-sync/internal/domain/competition"
	"github.com/riskibarqy/football-sync/internal/domain/naturalkey"
	competitionmock "github.com/riskibarqy/football-sync/internal/mocks/domain/competition"
	"github.com/riskibarqy/football-sync/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTeamSyncService_NoCompetitionsMeansNoFetches(t *testing.T) {
	t.Parallel()

	provider := premierLeagueProvider()
	h := newSyncHarness(t, provider, 1)

	stats, err := h.teamSync.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, EntityStats{}, stats)
	assert.Empty(t, provider.callLog())
	assert.Zero(t, h.store.Count(naturalkey.EntityTeam))
}

func TestTeamSyncService_ForbiddenCompetitionIsSkippedUncounted(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := newStubProvider()
	provider.competitions = []ExternalCompetition{
		{ExternalID: 2021, Name: "Premier League", Code: "PL", Plan: "TIER_ONE"},
		{ExternalID: 2013, Name: "Campeonato Brasileiro Série A", Code: "BSA", Plan: "TIER_FOUR"},
	}
	provider.setTeams("PL", ExternalTeam{ExternalID: 57, Name: "Arsenal FC"})
	provider.teamErrs["BSA"] = &FetchFailedError{Path: "/competitions/BSA/teams", StatusCode: 403}
	h := newSyncHarness(t, provider, 1)

	_, err := h.competitionSync.Run(ctx)
	require.NoError(t, err)

	stats, err := h.teamSync.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, EntityStats{New: 1}, stats)
	assert.ElementsMatch(t, []string{"competitions", "teams:BSA", "teams:PL"}, provider.callLog())
}

func TestTeamSyncService_SameTeamInTwoCompetitionsIsOneRow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := newStubProvider()
	provider.competitions = []ExternalCompetition{
		{ExternalID: 2021, Name: "Premier League", Code: "PL"},
		{ExternalID: 2001, Name: "UEFA Champions League", Code: "CL"},
	}
	provider.setTeams("PL", ExternalTeam{ExternalID: 57, Name: "Arsenal FC"})
	provider.setTeams("CL", ExternalTeam{ExternalID: 57, Name: "Arsenal FC"})
	h := newSyncHarness(t, provider, 1)

	_, err := h.competitionSync.Run(ctx)
	require.NoError(t, err)

	stats, err := h.teamSync.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, EntityStats{New: 1, Updated: 1}, stats)
	assert.Equal(t, 1, h.store.Count(naturalkey.EntityTeam))
}

func TestTeamSyncService_ParallelWorkersMergeAllCompetitions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := newStubProvider()
	for i := range 12 {
		code := fmt.Sprintf("C%02d", i)
		provider.competitions = append(provider.competitions, ExternalCompetition{
			ExternalID: int64(3000 + i),
			Name:       "Competition " + code,
			Code:       code,
		})
		provider.setTeams(code,
			ExternalTeam{ExternalID: int64(10000 + i*10), Name: "Home " + code},
			ExternalTeam{ExternalID: int64(10001 + i*10), Name: "Away " + code},
		)
	}
	provider.teamErrs["C03"] = &FetchFailedError{Path: "/competitions/C03/teams", Err: errors.New("connection refused")}
	provider.panicOn["teams:C07"] = true
	h := newSyncHarness(t, provider, 4)

	_, err := h.competitionSync.Run(ctx)
	require.NoError(t, err)

	stats, err := h.teamSync.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, EntityStats{New: 20}, stats)
	assert.Equal(t, 20, h.store.Count(naturalkey.EntityTeam))
}

func TestTeamSyncService_ListFailureIsFatal(t *testing.T) {
	t.Parallel()

	listErr := errors.New("relation competitions does not exist")
	competitions := competitionmock.NewRepository(t)
	competitions.On("ListAddressable", mock.Anything).Return(nil, listErr).Once()

	svc := NewTeamSyncService(newStubProvider(), competitions, nil, 1, logging.NewNop())
	_, err := svc.Run(context.Background())
	assert.ErrorIs(t, err, listErr)
}

func TestTeamSyncService_InvalidTeamCountsAsError(t *testing.T) {
	t.Parallel()

	provider := newStubProvider()
	provider.setTeams("PL",
		ExternalTeam{ExternalID: 57, Name: "Arsenal FC"},
		ExternalTeam{ExternalID: 58, Name: ""},
	)
	competitions := competitionmock.NewRepository(t)
	competitions.On("ListAddressable", mock.Anything).
		Return([]competition.Competition{{ID: "comp-pl", ExternalID: "2021", Name: "Premier League", Code: "PL"}}, nil).
		Once()

	h := newSyncHarness(t, provider, 1)
	svc := NewTeamSyncService(provider, competitions, NewUpsertEngine(h.store, fixedIDGenerator{id: "team-57"}), 1, logging.NewNop())

	stats, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, EntityStats{New: 1, Errors: 1}, stats)
}

func TestTeamSyncService_CancelStopsParallelRun(t *testing.T) {
	t.Parallel()

	provider := newStubProvider()
	for i := range 6 {
		code := fmt.Sprintf("C%02d", i)
		provider.competitions = append(provider.competitions, ExternalCompetition{
			ExternalID: int64(4000 + i),
			Name:       "Competition " + code,
			Code:       code,
		})
		provider.setTeams(code, ExternalTeam{ExternalID: int64(20000 + i), Name: "Club " + code})
	}
	h := newSyncHarness(t, provider, 3)

	_, err := h.competitionSync.Run(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	provider.afterFetch = func(call string) {
		if call == "teams:C02" {
			cancel()
		}
	}

	stats, err := h.teamSync.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, stats.New, 6)
}

func TestTeamSyncService_MissingCredentialIsFatal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := premierLeagueProvider()
	provider.teamErrs["PL"] = fmt.Errorf("football-data api key is not configured: %w", ErrMisconfigured)
	h := newSyncHarness(t, provider, 1)

	_, err := h.competitionSync.Run(ctx)
	require.NoError(t, err)

	_, err = h.teamSync.Run(ctx)
	require.ErrorIs(t, err, ErrMisconfigured)
	assert.ErrorContains(t, err, "competition=PL")
}
