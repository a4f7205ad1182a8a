package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/football-sync/internal/domain/naturalkey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompetitionSyncService_PremierLeagueIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := newStubProvider()
	provider.competitions = []ExternalCompetition{{ExternalID: 2021, Name: "Premier League", Code: "PL"}}
	h := newSyncHarness(t, provider, 1)

	first, err := h.competitionSync.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, EntityStats{New: 1}, first)

	second, err := h.competitionSync.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, EntityStats{Updated: 1}, second)

	assert.Equal(t, 1, h.store.Count(naturalkey.EntityCompetition))
	stored, found, err := h.competitions.GetByExternalID(ctx, "2021")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "PL", stored.Code)
	assert.Equal(t, "Premier League", stored.Name)
}

func TestCompetitionSyncService_MalformedRecordDoesNotStopLoop(t *testing.T) {
	t.Parallel()

	provider := newStubProvider()
	provider.competitions = []ExternalCompetition{
		{ExternalID: 2021, Name: "Premier League", Code: "PL"},
		{ExternalID: 0, Name: "No Identifier"},
		{ExternalID: 2014, Name: "", Code: "PD"},
		{ExternalID: 2002, Name: "Bundesliga", Code: "BL1"},
	}
	h := newSyncHarness(t, provider, 1)

	stats, err := h.competitionSync.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, EntityStats{New: 2, Errors: 2}, stats)
	assert.Equal(t, 2, h.store.Count(naturalkey.EntityCompetition))
}

func TestCompetitionSyncService_CompetitionWithoutCodeIsStoredButNotAddressable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := newStubProvider()
	provider.competitions = []ExternalCompetition{
		{ExternalID: 2021, Name: "Premier League", Code: "PL"},
		{ExternalID: 2199, Name: "Regional Cup"},
	}
	h := newSyncHarness(t, provider, 1)

	stats, err := h.competitionSync.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.New)

	addressable, err := h.competitions.ListAddressable(ctx)
	require.NoError(t, err)
	require.Len(t, addressable, 1)
	assert.Equal(t, "PL", addressable[0].Code)
}

func TestCompetitionSyncService_FetchFailureIsFatal(t *testing.T) {
	t.Parallel()

	provider := newStubProvider()
	provider.competitionsErr = &FetchFailedError{Path: "/competitions", StatusCode: 500}
	h := newSyncHarness(t, provider, 1)

	stats, err := h.competitionSync.Run(context.Background())
	require.Error(t, err)

	var fetchErr *FetchFailedError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, 500, fetchErr.StatusCode)
	assert.Equal(t, EntityStats{}, stats)
	assert.Zero(t, h.store.Count(naturalkey.EntityCompetition))
}
