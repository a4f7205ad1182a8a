package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/football-sync/internal/domain/naturalkey"
	naturalkeymock "github.com/riskibarqy/football-sync/internal/mocks/domain/naturalkey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixedIDGenerator struct {
	id  string
	err error
}

func (g fixedIDGenerator) NewID() (string, error) {
	return g.id, g.err
}

func TestUpsertEngine_InsertsWhenExternalIDUnknown(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := naturalkeymock.NewRepository(t)
	engine := NewUpsertEngine(repo, fixedIDGenerator{id: "0194-team"})
	fields := naturalkey.Fields{"name": "Arsenal FC", "tla": "ARS"}

	repo.On("FindID", mock.Anything, naturalkey.EntityTeam, "57").Return("", false, nil).Once()
	repo.On("Insert", mock.Anything, naturalkey.EntityTeam, "0194-team", "57", fields).Return(nil).Once()

	outcome, err := engine.Upsert(ctx, naturalkey.EntityTeam, "57", fields)
	require.NoError(t, err)
	assert.Equal(t, OutcomeInserted, outcome)
}

func TestUpsertEngine_UpdatesExistingRowWithoutInsertOnlyFields(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := naturalkeymock.NewRepository(t)
	engine := NewUpsertEngine(repo, fixedIDGenerator{id: "unused"})
	fields := naturalkey.Fields{"status": "FINISHED", "home_team_id": nil}

	repo.On("FindID", mock.Anything, naturalkey.EntityMatch, "497001").Return("match-1", true, nil).Once()
	repo.On("Update", mock.Anything, naturalkey.EntityMatch, "match-1", fields).Return(nil).Once()

	outcome, err := engine.Upsert(ctx, naturalkey.EntityMatch, "497001", fields,
		WithInsertOnly(naturalkey.Fields{"competition_id": "comp-1"}))
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, outcome)
}

func TestUpsertEngine_InsertCarriesInsertOnlyFields(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := naturalkeymock.NewRepository(t)
	engine := NewUpsertEngine(repo, fixedIDGenerator{id: "match-1"})

	repo.On("FindID", mock.Anything, naturalkey.EntityMatch, "497001").Return("", false, nil).Once()
	repo.On("Insert", mock.Anything, naturalkey.EntityMatch, "match-1", "497001",
		naturalkey.Fields{"status": "TIMED", "competition_id": "comp-1"}).Return(nil).Once()

	outcome, err := engine.Upsert(ctx, naturalkey.EntityMatch, "497001", naturalkey.Fields{"status": "TIMED"},
		WithInsertOnly(naturalkey.Fields{"competition_id": "comp-1"}))
	require.NoError(t, err)
	assert.Equal(t, OutcomeInserted, outcome)
}

func TestUpsertEngine_RejectsUnknownColumnBeforeTouchingStore(t *testing.T) {
	t.Parallel()

	repo := naturalkeymock.NewRepository(t)
	engine := NewUpsertEngine(repo, fixedIDGenerator{id: "x"})

	outcome, err := engine.Upsert(context.Background(), naturalkey.EntityCompetition, "2021",
		naturalkey.Fields{"name": "Premier League", "id": "injected"})
	assert.Equal(t, OutcomeFailed, outcome)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, naturalkey.ErrUnknownColumn)
	repo.AssertNotCalled(t, "FindID", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpsertEngine_FailureOutcomes(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("connection reset")

	tests := []struct {
		name  string
		setup func(repo *naturalkeymock.Repository)
		want  error
	}{
		{
			name: "lookup fails",
			setup: func(repo *naturalkeymock.Repository) {
				repo.On("FindID", mock.Anything, naturalkey.EntityTeam, "65").Return("", false, storeErr).Once()
			},
			want: storeErr,
		},
		{
			name: "lost insert race",
			setup: func(repo *naturalkeymock.Repository) {
				repo.On("FindID", mock.Anything, naturalkey.EntityTeam, "65").Return("", false, nil).Once()
				repo.On("Insert", mock.Anything, naturalkey.EntityTeam, "team-65", "65", mock.Anything).
					Return(naturalkey.ErrDuplicateExternalID).Once()
			},
			want: naturalkey.ErrDuplicateExternalID,
		},
		{
			name: "update fails",
			setup: func(repo *naturalkeymock.Repository) {
				repo.On("FindID", mock.Anything, naturalkey.EntityTeam, "65").Return("team-65", true, nil).Once()
				repo.On("Update", mock.Anything, naturalkey.EntityTeam, "team-65", mock.Anything).Return(storeErr).Once()
			},
			want: storeErr,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo := naturalkeymock.NewRepository(t)
			tc.setup(repo)
			engine := NewUpsertEngine(repo, fixedIDGenerator{id: "team-65"})

			outcome, err := engine.Upsert(context.Background(), naturalkey.EntityTeam, "65", naturalkey.Fields{"name": "Manchester City FC"})
			assert.Equal(t, OutcomeFailed, outcome)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUpsertEngine_BlankExternalID(t *testing.T) {
	t.Parallel()

	engine := NewUpsertEngine(naturalkeymock.NewRepository(t), fixedIDGenerator{id: "x"})
	outcome, err := engine.Upsert(context.Background(), naturalkey.EntityTeam, "  ", naturalkey.Fields{"name": "x"})
	assert.Equal(t, OutcomeFailed, outcome)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
