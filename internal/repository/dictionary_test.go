package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/domain"
)

func TestDictionary_States(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	s := domain.State{Code: "archived", Name: "Archived"}
	require.NoError(t, fx.dict.SaveState(ctx, &s))
	assert.Equal(t, int64(4), s.ID)

	got, err := fx.dict.FindStateByID(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "Archived", got.Name)

	s.Name = "Archive"
	require.NoError(t, fx.dict.SaveState(ctx, &s))
	got, err = fx.dict.FindStateByID(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "Archive", got.Name)

	require.NoError(t, fx.dict.DeleteState(ctx, 4))
	_, err = fx.dict.FindStateByID(ctx, 4)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, fx.dict.SaveState(ctx, &domain.State{Code: "", Name: "x"}), domain.ErrInvalidArgument)
}

func TestDictionary_ReferencedEntriesAreProtected(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	// state 1 belongs to template 1
	assert.ErrorIs(t, fx.dict.DeleteState(ctx, 1), domain.ErrReferentialIntegrity)
	// decision 2 is in the decision map
	assert.ErrorIs(t, fx.dict.DeleteDecision(ctx, 2), domain.ErrReferentialIntegrity)

	pid, err := fx.trajectory.InitProcess(ctx, 1, "sku-1", fx.actor.ID)
	require.NoError(t, err)
	_, err = fx.trajectory.AppendTransition(ctx, domain.AppendRequest{ProcessID: pid, ExpectedPosition: 1, DecisionID: 1, ActorID: fx.actor.ID, NextStateID: 2})
	require.NoError(t, err)

	err = fx.dict.SaveState(ctx, &domain.State{ID: 1, Code: "draft", Name: "Renamed"})
	assert.ErrorIs(t, err, domain.ErrReferentialIntegrity)
	err = fx.dict.SaveDecision(ctx, &domain.Decision{ID: 1, Code: "submit", Name: "Renamed"})
	assert.ErrorIs(t, err, domain.ErrReferentialIntegrity)

	// unused ones can still change
	require.NoError(t, fx.dict.SaveDecision(ctx, &domain.Decision{ID: 2, Code: "approve", Name: "Approve it"}))
}

func TestDictionary_DuplicateCode(t *testing.T) {
	fx := newFixture(t)
	err := fx.dict.SaveState(context.Background(), &domain.State{Code: "draft", Name: "Again"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
