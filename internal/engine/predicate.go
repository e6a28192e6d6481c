package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/domain"
)

// PredicateEvaluator decides whether one predicate holds for a process and
// its subject product. It never writes.
type PredicateEvaluator struct {
	Trajectory TrajectoryReader
	Parameters ParameterRepo
	Validate   ValidateFunc
}

func NewPredicateEvaluator(trajectory TrajectoryReader, parameters ParameterRepo) *PredicateEvaluator {
	return &PredicateEvaluator{
		Trajectory: trajectory,
		Parameters: parameters,
		Validate:   ValidateParameter,
	}
}

func (e *PredicateEvaluator) Evaluate(ctx context.Context, p domain.Predicate, processID int64, subjectID string) (bool, error) {
	switch p.Kind {
	case domain.PredicateEmpty:
		return true, nil
	case domain.PredicateVisitedState:
		ok, err := e.Trajectory.HasVisitedState(ctx, processID, p.Ref)
		if err != nil {
			return false, fmt.Errorf("predicate %d visited state %d: %w", p.ID, p.Ref, err)
		}
		return ok, nil
	case domain.PredicateUsedDecision:
		ok, err := e.Trajectory.HasUsedDecision(ctx, processID, p.Ref)
		if err != nil {
			return false, fmt.Errorf("predicate %d used decision %d: %w", p.ID, p.Ref, err)
		}
		return ok, nil
	case domain.PredicateParameterValid:
		ok, err := e.parameterValid(ctx, p.Ref, subjectID)
		if err != nil {
			return false, fmt.Errorf("predicate %d parameter %d: %w", p.ID, p.Ref, err)
		}
		return ok, nil
	}
	return false, nil
}

func (e *PredicateEvaluator) parameterValid(ctx context.Context, parameterID int64, subjectID string) (bool, error) {
	param, err := e.Parameters.FindParameter(ctx, parameterID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	product, err := e.Parameters.FindProduct(ctx, subjectID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	// an unset value does not block the guard
	value, err := e.Parameters.FindValue(ctx, product.ID, param.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if !value.Val.Valid || value.Val.String == "" {
		return true, nil
	}

	var constraint *domain.ParameterConstraint
	c, err := e.Parameters.FindConstraint(ctx, product.ClassID, param.ID)
	switch {
	case err == nil:
		constraint = c
	case !errors.Is(err, domain.ErrNotFound):
		return false, err
	}

	validate := e.Validate
	if validate == nil {
		validate = ValidateParameter
	}
	return validate(*param, value.Val.String, constraint), nil
}
