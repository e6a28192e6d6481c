package controllers

import (
	"context"

	"github.com/RealZimboGuy/catalogflow/internal/engine"
	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/domain"
)

type ActorAuthenticator interface {
	Authenticate(ctx context.Context, actorID int64, apiKey string) (*domain.Actor, error)
}

// ProcessDriver is the part of engine.Driver the process endpoints use.
type ProcessDriver interface {
	StartProcess(ctx context.Context, templateID int64, subjectID string, actorID int64) (int64, error)
	Process(ctx context.Context, processID int64) (*domain.Process, error)
	CurrentState(ctx context.Context, processID int64) (*domain.TrajectoryStep, error)
	History(ctx context.Context, processID int64) ([]domain.TrajectoryStep, error)
	AvailableDecisions(ctx context.Context, processID int64) ([]domain.DecisionMapEntry, error)
	SubmitDecision(ctx context.Context, processID, decisionID, actorID int64) (engine.TransitionOutcome, error)
	Check(ctx context.Context, processID, decisionID int64) (engine.AuthorizationResult, error)
	DeleteProcess(ctx context.Context, processID int64) error
}

type ProcessFinder interface {
	FindBySubject(ctx context.Context, subjectID string) ([]domain.Process, error)
}

type FormulaEvaluator interface {
	EvaluateFormula(ctx context.Context, formulaID, processID int64, subjectID string) (bool, error)
}

type DNFAdmin interface {
	ListGuardFunctions(ctx context.Context) ([]domain.GuardFunction, error)
	FindGuardFunction(ctx context.Context, functionID int64) (*domain.GuardFunction, error)
	SaveGuardFunction(ctx context.Context, f *domain.GuardFunction) error
	ListPredicates(ctx context.Context) ([]domain.Predicate, error)
	SavePredicate(ctx context.Context, p *domain.Predicate) error
	DeletePredicate(ctx context.Context, predicateID int64) error
	FindFormulaRows(ctx context.Context, functionID int64) ([]domain.FormulaRow, error)
	ReplaceFormula(ctx context.Context, functionID int64, rows []domain.FormulaRow) error
	DeleteFormula(ctx context.Context, functionID int64) error
}

type DictionaryAdmin interface {
	ListStates(ctx context.Context) ([]domain.State, error)
	SaveState(ctx context.Context, s *domain.State) error
	DeleteState(ctx context.Context, stateID int64) error
	ListDecisions(ctx context.Context) ([]domain.Decision, error)
	SaveDecision(ctx context.Context, d *domain.Decision) error
	DeleteDecision(ctx context.Context, decisionID int64) error
}

type TemplateAdmin interface {
	ListTemplates(ctx context.Context) ([]domain.ProcessTemplate, error)
	FindTemplate(ctx context.Context, templateID int64) (*domain.ProcessTemplate, error)
	SaveTemplate(ctx context.Context, t *domain.ProcessTemplate) error
	TemplateStates(ctx context.Context, templateID int64) ([]domain.TemplateState, error)
	SaveTemplateState(ctx context.Context, ts domain.TemplateState) error
	ListDecisionMap(ctx context.Context, templateID int64) ([]domain.DecisionMapEntry, error)
	SaveDecisionMapEntry(ctx context.Context, e domain.DecisionMapEntry) error
	DeleteDecisionMapEntry(ctx context.Context, templateID, stateID, decisionID int64) error
}

type ProductAdmin interface {
	ListClasses(ctx context.Context) ([]domain.ProductClass, error)
	SaveClass(ctx context.Context, c *domain.ProductClass) error
	ListParameters(ctx context.Context) ([]domain.Parameter, error)
	SaveParameter(ctx context.Context, p *domain.Parameter) error
	FindProduct(ctx context.Context, productID string) (*domain.Product, error)
	SaveProduct(ctx context.Context, p domain.Product) error
	SaveConstraint(ctx context.Context, c domain.ParameterConstraint) error
	ListValues(ctx context.Context, productID string) ([]domain.ParameterValue, error)
	SaveValue(ctx context.Context, v domain.ParameterValue) error
}
