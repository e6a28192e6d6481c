package engine

import (
	"context"

	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/domain"
)

// DecisionMap answers which state a decision leads to from a given state of
// a template.
type DecisionMap interface {
	NextState(ctx context.Context, templateID, stateID, decisionID int64) (int64, bool, error)
	DecisionsFrom(ctx context.Context, templateID, stateID int64) ([]domain.DecisionMapEntry, error)
}

// GuardBindings returns the guard function bound to a template state, if any.
type GuardBindings interface {
	GuardFor(ctx context.Context, templateID, stateID int64) (int64, bool, error)
}

// DNFRepo reads formula rows and predicates.
type DNFRepo interface {
	FindFormulaRows(ctx context.Context, functionID int64) ([]domain.FormulaRow, error)
	// FindPredicatesByIDs loads the given predicates in one query. Ids with no
	// row are absent from the result.
	FindPredicatesByIDs(ctx context.Context, ids []int64) (map[int64]domain.Predicate, error)
}

// TrajectoryReader answers the history questions asked by predicates.
type TrajectoryReader interface {
	HasVisitedState(ctx context.Context, processID, stateID int64) (bool, error)
	HasUsedDecision(ctx context.Context, processID, decisionID int64) (bool, error)
}

// TrajectoryStore is the append-only log of process steps.
type TrajectoryStore interface {
	TrajectoryReader
	CurrentStep(ctx context.Context, processID int64) (*domain.TrajectoryStep, error)
	History(ctx context.Context, processID int64) ([]domain.TrajectoryStep, error)
	AppendTransition(ctx context.Context, req domain.AppendRequest) (*domain.TrajectoryStep, error)
	InitProcess(ctx context.Context, templateID int64, subjectID string, actorID int64) (int64, error)
	DeleteProcess(ctx context.Context, processID int64) error
}

// ParameterRepo reads product parameter definitions, values and constraints.
// Absent rows are reported as domain.ErrNotFound.
type ParameterRepo interface {
	FindParameter(ctx context.Context, parameterID int64) (*domain.Parameter, error)
	FindProduct(ctx context.Context, productID string) (*domain.Product, error)
	FindValue(ctx context.Context, productID string, parameterID int64) (*domain.ParameterValue, error)
	FindConstraint(ctx context.Context, classID, parameterID int64) (*domain.ParameterConstraint, error)
}

type ProcessRepo interface {
	FindByID(ctx context.Context, processID int64) (*domain.Process, error)
}

type StateRepo interface {
	FindStateByID(ctx context.Context, stateID int64) (*domain.State, error)
}

// AccessChecker reports whether an actor may act on a template state.
type AccessChecker interface {
	CanActOn(ctx context.Context, actorID, templateID, stateID int64) (bool, error)
}

// ValidateFunc is the type specific validity check of a parameter value. A
// nil constraint means the class sets no limits.
type ValidateFunc func(param domain.Parameter, value string, constraint *domain.ParameterConstraint) bool

type predicateChecker interface {
	Evaluate(ctx context.Context, p domain.Predicate, processID int64, subjectID string) (bool, error)
}

type formulaChecker interface {
	EvaluateFormula(ctx context.Context, formulaID, processID int64, subjectID string) (bool, error)
}

type transitionAuthorizer interface {
	Authorize(ctx context.Context, req AuthorizationRequest) (AuthorizationResult, error)
}
