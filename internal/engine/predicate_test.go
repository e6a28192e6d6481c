package engine

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/domain"
)

func paramRepoWith(value *domain.ParameterValue, constraint *domain.ParameterConstraint) *MockParameterRepo {
	return &MockParameterRepo{
		FindParameterFunc: func(ctx context.Context, id int64) (*domain.Parameter, error) {
			return &domain.Parameter{ID: id, Code: "weight", Type: domain.ParameterNumber}, nil
		},
		FindProductFunc: func(ctx context.Context, id string) (*domain.Product, error) {
			return &domain.Product{ID: id, ClassID: 3}, nil
		},
		FindValueFunc: func(ctx context.Context, productID string, parameterID int64) (*domain.ParameterValue, error) {
			if value == nil {
				return nil, domain.ErrNotFound
			}
			return value, nil
		},
		FindConstraintFunc: func(ctx context.Context, classID, parameterID int64) (*domain.ParameterConstraint, error) {
			if constraint == nil {
				return nil, domain.ErrNotFound
			}
			return constraint, nil
		},
	}
}

func TestPredicateEvaluator_Empty(t *testing.T) {
	e := NewPredicateEvaluator(&MockTrajectoryStore{}, &MockParameterRepo{})
	ok, err := e.Evaluate(context.Background(), domain.EmptyPredicate(1), 10, "p-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPredicateEvaluator_VisitedState(t *testing.T) {
	traj := newMemoryTrajectory()
	traj.seed(10, 1, 7)
	e := NewPredicateEvaluator(traj, &MockParameterRepo{})
	ctx := context.Background()

	ok, err := e.Evaluate(ctx, domain.VisitedState(1, 2), 10, "p-1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = traj.AppendTransition(ctx, domain.AppendRequest{ProcessID: 10, ExpectedPosition: 1, DecisionID: 1, ActorID: 7, NextStateID: 2})
	require.NoError(t, err)
	_, err = traj.AppendTransition(ctx, domain.AppendRequest{ProcessID: 10, ExpectedPosition: 2, DecisionID: 3, ActorID: 7, NextStateID: 5})
	require.NoError(t, err)

	// stays true after the process left the state
	ok, err = e.Evaluate(ctx, domain.VisitedState(1, 2), 10, "p-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.Evaluate(ctx, domain.UsedDecision(2, 3), 10, "p-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.Evaluate(ctx, domain.UsedDecision(2, 4), 10, "p-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPredicateEvaluator_TrajectoryErrorPropagates(t *testing.T) {
	boom := errors.New("db down")
	e := NewPredicateEvaluator(&MockTrajectoryStore{
		HasUsedDecisionFunc: func(ctx context.Context, processID, decisionID int64) (bool, error) {
			return false, boom
		},
	}, &MockParameterRepo{})

	_, err := e.Evaluate(context.Background(), domain.UsedDecision(1, 1), 10, "p-1")
	assert.ErrorIs(t, err, boom)
}

func TestPredicateEvaluator_ParameterValid(t *testing.T) {
	ctx := context.Background()
	pred := domain.ParameterValid(5, 42)
	val := func(s string) *domain.ParameterValue {
		return &domain.ParameterValue{ProductID: "p-1", ParameterID: 42, Val: sql.NullString{String: s, Valid: true}}
	}
	rng := &domain.ParameterConstraint{
		ClassID:     3,
		ParameterID: 42,
		MinVal:      sql.NullString{String: "1", Valid: true},
		MaxVal:      sql.NullString{String: "10", Valid: true},
	}

	tests := []struct {
		name string
		repo *MockParameterRepo
		want bool
	}{
		{"missing value is satisfied", paramRepoWith(nil, rng), true},
		{"empty value is satisfied", paramRepoWith(val(""), rng), true},
		{"value in range", paramRepoWith(val("5"), rng), true},
		{"value out of range", paramRepoWith(val("11"), rng), false},
		{"no constraint for class", paramRepoWith(val("1000"), nil), true},
		{"unparsable value", paramRepoWith(val("heavy"), nil), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewPredicateEvaluator(&MockTrajectoryStore{}, tt.repo)
			ok, err := e.Evaluate(ctx, pred, 10, "p-1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestPredicateEvaluator_ParameterMissingReferences(t *testing.T) {
	ctx := context.Background()

	noParam := paramRepoWith(nil, nil)
	noParam.FindParameterFunc = nil
	e := NewPredicateEvaluator(&MockTrajectoryStore{}, noParam)
	ok, err := e.Evaluate(ctx, domain.ParameterValid(1, 42), 10, "p-1")
	require.NoError(t, err)
	assert.False(t, ok, "missing parameter definition")

	noProduct := paramRepoWith(nil, nil)
	noProduct.FindProductFunc = nil
	e = NewPredicateEvaluator(&MockTrajectoryStore{}, noProduct)
	ok, err = e.Evaluate(ctx, domain.ParameterValid(1, 42), 10, "p-1")
	require.NoError(t, err)
	assert.False(t, ok, "missing subject")
}

func TestPredicateEvaluator_UsesClassConstraint(t *testing.T) {
	var gotClass int64
	repo := paramRepoWith(&domain.ParameterValue{Val: sql.NullString{String: "3", Valid: true}}, nil)
	repo.FindConstraintFunc = func(ctx context.Context, classID, parameterID int64) (*domain.ParameterConstraint, error) {
		gotClass = classID
		return nil, domain.ErrNotFound
	}
	e := NewPredicateEvaluator(&MockTrajectoryStore{}, repo)
	e.Validate = func(param domain.Parameter, value string, c *domain.ParameterConstraint) bool {
		assert.Nil(t, c)
		assert.Equal(t, "3", value)
		return false
	}

	ok, err := e.Evaluate(context.Background(), domain.ParameterValid(1, 42), 10, "p-1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(3), gotClass)
}

func TestPredicateEvaluator_ParameterStorageError(t *testing.T) {
	boom := errors.New("timeout")
	repo := paramRepoWith(nil, nil)
	repo.FindValueFunc = func(ctx context.Context, productID string, parameterID int64) (*domain.ParameterValue, error) {
		return nil, boom
	}
	e := NewPredicateEvaluator(&MockTrajectoryStore{}, repo)
	_, err := e.Evaluate(context.Background(), domain.ParameterValid(1, 42), 10, "p-1")
	assert.ErrorIs(t, err, boom)
}
