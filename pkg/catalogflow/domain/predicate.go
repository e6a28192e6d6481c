package domain

import (
	"database/sql"
	"errors"
	"fmt"
)

type PredicateKind int

const (
	PredicateEmpty PredicateKind = iota
	PredicateVisitedState
	PredicateUsedDecision
	PredicateParameterValid
)

func (k PredicateKind) String() string {
	switch k {
	case PredicateVisitedState:
		return "visited_state"
	case PredicateUsedDecision:
		return "used_decision"
	case PredicateParameterValid:
		return "parameter_valid"
	default:
		return "empty"
	}
}

var ErrPredicateAmbiguous = errors.New("predicate has more than one discriminator")

// Predicate is an atomic guard condition. Ref holds the state, decision or
// parameter id depending on Kind and is zero for PredicateEmpty.
type Predicate struct {
	ID   int64
	Kind PredicateKind
	Ref  int64
}

func VisitedState(id, stateID int64) Predicate {
	return Predicate{ID: id, Kind: PredicateVisitedState, Ref: stateID}
}

func UsedDecision(id, decisionID int64) Predicate {
	return Predicate{ID: id, Kind: PredicateUsedDecision, Ref: decisionID}
}

func ParameterValid(id, parameterID int64) Predicate {
	return Predicate{ID: id, Kind: PredicateParameterValid, Ref: parameterID}
}

func EmptyPredicate(id int64) Predicate {
	return Predicate{ID: id, Kind: PredicateEmpty}
}

// PredicateRow is the storage shape of a predicate: three nullable
// discriminator columns of which at most one is set.
type PredicateRow struct {
	ID          int64         `db:"id"`
	StateID     sql.NullInt64 `db:"state_id"`
	DecisionID  sql.NullInt64 `db:"decision_id"`
	ParameterID sql.NullInt64 `db:"parameter_id"`
}

// Predicate converts the row to its tagged form.
func (r PredicateRow) Predicate() (Predicate, error) {
	set := 0
	for _, c := range []sql.NullInt64{r.StateID, r.DecisionID, r.ParameterID} {
		if c.Valid {
			set++
		}
	}
	if set > 1 {
		return Predicate{}, fmt.Errorf("predicate %d: %w", r.ID, ErrPredicateAmbiguous)
	}
	switch {
	case r.StateID.Valid:
		return VisitedState(r.ID, r.StateID.Int64), nil
	case r.DecisionID.Valid:
		return UsedDecision(r.ID, r.DecisionID.Int64), nil
	case r.ParameterID.Valid:
		return ParameterValid(r.ID, r.ParameterID.Int64), nil
	}
	return EmptyPredicate(r.ID), nil
}

// Row converts a tagged predicate back to its storage shape.
func (p Predicate) Row() PredicateRow {
	row := PredicateRow{ID: p.ID}
	ref := sql.NullInt64{Int64: p.Ref, Valid: true}
	switch p.Kind {
	case PredicateVisitedState:
		row.StateID = ref
	case PredicateUsedDecision:
		row.DecisionID = ref
	case PredicateParameterValid:
		row.ParameterID = ref
	}
	return row
}

// FormulaRow places a predicate into conjunction Conjunction of disjunction
// group Disjunction of formula FunctionID.
type FormulaRow struct {
	FunctionID  int64 `db:"function_id"`
	Disjunction int   `db:"disjunction"`
	Conjunction int   `db:"conjunction"`
	PredicateID int64 `db:"predicate_id"`
}
