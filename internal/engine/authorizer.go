package engine

import (
	"context"
	"fmt"
)

const (
	ReasonTransitionUndefined = "transition undefined for this decision"
	ReasonGuardNotSatisfied   = "guard condition not satisfied"
)

type AuthorizationRequest struct {
	TemplateID int64
	StateID    int64
	DecisionID int64
	ProcessID  int64
	SubjectID  string
}

type AuthorizationResult struct {
	Allowed     bool
	NextStateID int64
	Reason      string
}

// Authorizer decides whether a decision may be applied: the decision map
// must define the transition and the guard bound to the current state, if
// any, must hold.
type Authorizer struct {
	DecisionMap DecisionMap
	Guards      GuardBindings
	Formulas    formulaChecker
}

func NewAuthorizer(decisionMap DecisionMap, guards GuardBindings, formulas *FormulaEvaluator) *Authorizer {
	return &Authorizer{
		DecisionMap: decisionMap,
		Guards:      guards,
		Formulas:    formulas,
	}
}

func (a *Authorizer) Authorize(ctx context.Context, req AuthorizationRequest) (AuthorizationResult, error) {
	next, ok, err := a.DecisionMap.NextState(ctx, req.TemplateID, req.StateID, req.DecisionID)
	if err != nil {
		return AuthorizationResult{}, fmt.Errorf("decision map lookup: %w", err)
	}
	if !ok {
		return AuthorizationResult{Reason: ReasonTransitionUndefined}, nil
	}

	guardID, bound, err := a.Guards.GuardFor(ctx, req.TemplateID, req.StateID)
	if err != nil {
		return AuthorizationResult{}, fmt.Errorf("guard lookup: %w", err)
	}
	if !bound {
		return AuthorizationResult{Allowed: true, NextStateID: next}, nil
	}

	holds, err := a.Formulas.EvaluateFormula(ctx, guardID, req.ProcessID, req.SubjectID)
	if err != nil {
		return AuthorizationResult{}, fmt.Errorf("guard %d: %w", guardID, err)
	}
	if !holds {
		return AuthorizationResult{NextStateID: next, Reason: ReasonGuardNotSatisfied}, nil
	}
	return AuthorizationResult{Allowed: true, NextStateID: next}, nil
}
