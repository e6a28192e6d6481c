package engine

import (
	"context"
	"sync"
	"time"

	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/domain"
)

// MockTrajectoryStore implements TrajectoryStore for testing
type MockTrajectoryStore struct {
	HasVisitedStateFunc  func(ctx context.Context, processID, stateID int64) (bool, error)
	HasUsedDecisionFunc  func(ctx context.Context, processID, decisionID int64) (bool, error)
	CurrentStepFunc      func(ctx context.Context, processID int64) (*domain.TrajectoryStep, error)
	HistoryFunc          func(ctx context.Context, processID int64) ([]domain.TrajectoryStep, error)
	AppendTransitionFunc func(ctx context.Context, req domain.AppendRequest) (*domain.TrajectoryStep, error)
	InitProcessFunc      func(ctx context.Context, templateID int64, subjectID string, actorID int64) (int64, error)
	DeleteProcessFunc    func(ctx context.Context, processID int64) error
}

func (m *MockTrajectoryStore) HasVisitedState(ctx context.Context, processID, stateID int64) (bool, error) {
	if m.HasVisitedStateFunc != nil {
		return m.HasVisitedStateFunc(ctx, processID, stateID)
	}
	return false, nil
}
func (m *MockTrajectoryStore) HasUsedDecision(ctx context.Context, processID, decisionID int64) (bool, error) {
	if m.HasUsedDecisionFunc != nil {
		return m.HasUsedDecisionFunc(ctx, processID, decisionID)
	}
	return false, nil
}
func (m *MockTrajectoryStore) CurrentStep(ctx context.Context, processID int64) (*domain.TrajectoryStep, error) {
	if m.CurrentStepFunc != nil {
		return m.CurrentStepFunc(ctx, processID)
	}
	return nil, domain.ErrNotFound
}
func (m *MockTrajectoryStore) History(ctx context.Context, processID int64) ([]domain.TrajectoryStep, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, processID)
	}
	return nil, nil
}
func (m *MockTrajectoryStore) AppendTransition(ctx context.Context, req domain.AppendRequest) (*domain.TrajectoryStep, error) {
	if m.AppendTransitionFunc != nil {
		return m.AppendTransitionFunc(ctx, req)
	}
	return &domain.TrajectoryStep{ProcessID: req.ProcessID, Position: req.ExpectedPosition + 1, StateID: req.NextStateID, ActorID: req.ActorID}, nil
}
func (m *MockTrajectoryStore) InitProcess(ctx context.Context, templateID int64, subjectID string, actorID int64) (int64, error) {
	if m.InitProcessFunc != nil {
		return m.InitProcessFunc(ctx, templateID, subjectID, actorID)
	}
	return 1, nil
}
func (m *MockTrajectoryStore) DeleteProcess(ctx context.Context, processID int64) error {
	if m.DeleteProcessFunc != nil {
		return m.DeleteProcessFunc(ctx, processID)
	}
	return nil
}

// MockParameterRepo implements ParameterRepo for testing
type MockParameterRepo struct {
	FindParameterFunc  func(ctx context.Context, parameterID int64) (*domain.Parameter, error)
	FindProductFunc    func(ctx context.Context, productID string) (*domain.Product, error)
	FindValueFunc      func(ctx context.Context, productID string, parameterID int64) (*domain.ParameterValue, error)
	FindConstraintFunc func(ctx context.Context, classID, parameterID int64) (*domain.ParameterConstraint, error)
}

func (m *MockParameterRepo) FindParameter(ctx context.Context, parameterID int64) (*domain.Parameter, error) {
	if m.FindParameterFunc != nil {
		return m.FindParameterFunc(ctx, parameterID)
	}
	return nil, domain.ErrNotFound
}
func (m *MockParameterRepo) FindProduct(ctx context.Context, productID string) (*domain.Product, error) {
	if m.FindProductFunc != nil {
		return m.FindProductFunc(ctx, productID)
	}
	return nil, domain.ErrNotFound
}
func (m *MockParameterRepo) FindValue(ctx context.Context, productID string, parameterID int64) (*domain.ParameterValue, error) {
	if m.FindValueFunc != nil {
		return m.FindValueFunc(ctx, productID, parameterID)
	}
	return nil, domain.ErrNotFound
}
func (m *MockParameterRepo) FindConstraint(ctx context.Context, classID, parameterID int64) (*domain.ParameterConstraint, error) {
	if m.FindConstraintFunc != nil {
		return m.FindConstraintFunc(ctx, classID, parameterID)
	}
	return nil, domain.ErrNotFound
}

// MockDNFRepo implements DNFRepo for testing
type MockDNFRepo struct {
	FindFormulaRowsFunc     func(ctx context.Context, functionID int64) ([]domain.FormulaRow, error)
	FindPredicatesByIDsFunc func(ctx context.Context, ids []int64) (map[int64]domain.Predicate, error)
}

func (m *MockDNFRepo) FindFormulaRows(ctx context.Context, functionID int64) ([]domain.FormulaRow, error) {
	if m.FindFormulaRowsFunc != nil {
		return m.FindFormulaRowsFunc(ctx, functionID)
	}
	return nil, nil
}
func (m *MockDNFRepo) FindPredicatesByIDs(ctx context.Context, ids []int64) (map[int64]domain.Predicate, error) {
	if m.FindPredicatesByIDsFunc != nil {
		return m.FindPredicatesByIDsFunc(ctx, ids)
	}
	return map[int64]domain.Predicate{}, nil
}

// MockProcessRepo implements ProcessRepo for testing
type MockProcessRepo struct {
	FindByIDFunc func(ctx context.Context, processID int64) (*domain.Process, error)
}

func (m *MockProcessRepo) FindByID(ctx context.Context, processID int64) (*domain.Process, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, processID)
	}
	return nil, domain.ErrNotFound
}

// MockStateRepo implements StateRepo for testing
type MockStateRepo struct {
	FindStateByIDFunc func(ctx context.Context, stateID int64) (*domain.State, error)
}

func (m *MockStateRepo) FindStateByID(ctx context.Context, stateID int64) (*domain.State, error) {
	if m.FindStateByIDFunc != nil {
		return m.FindStateByIDFunc(ctx, stateID)
	}
	return &domain.State{ID: stateID, Name: "state"}, nil
}

// MockAccessChecker implements AccessChecker for testing
type MockAccessChecker struct {
	CanActOnFunc func(ctx context.Context, actorID, templateID, stateID int64) (bool, error)
}

func (m *MockAccessChecker) CanActOn(ctx context.Context, actorID, templateID, stateID int64) (bool, error) {
	if m.CanActOnFunc != nil {
		return m.CanActOnFunc(ctx, actorID, templateID, stateID)
	}
	return true, nil
}

// MockFormulaChecker implements formulaChecker and counts calls.
type MockFormulaChecker struct {
	mu                  sync.Mutex
	calls               int
	EvaluateFormulaFunc func(ctx context.Context, formulaID, processID int64, subjectID string) (bool, error)
}

func (m *MockFormulaChecker) EvaluateFormula(ctx context.Context, formulaID, processID int64, subjectID string) (bool, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.EvaluateFormulaFunc != nil {
		return m.EvaluateFormulaFunc(ctx, formulaID, processID, subjectID)
	}
	return true, nil
}

func (m *MockFormulaChecker) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// memoryTrajectory is a TrajectoryStore with the same compare-and-append
// semantics as the SQL store.
type memoryTrajectory struct {
	mu    sync.Mutex
	steps map[int64][]domain.TrajectoryStep
	now   time.Time
}

func newMemoryTrajectory() *memoryTrajectory {
	return &memoryTrajectory{
		steps: make(map[int64][]domain.TrajectoryStep),
		now:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memoryTrajectory) seed(processID, stateID, actorID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps[processID] = []domain.TrajectoryStep{{ProcessID: processID, Position: 1, StateID: stateID, ActorID: actorID, DateTime: m.now}}
}

func (m *memoryTrajectory) HasVisitedState(_ context.Context, processID, stateID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.steps[processID] {
		if s.StateID == stateID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryTrajectory) HasUsedDecision(_ context.Context, processID, decisionID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.steps[processID] {
		if s.DecisionID.Valid && s.DecisionID.Int64 == decisionID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryTrajectory) CurrentStep(_ context.Context, processID int64) (*domain.TrajectoryStep, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	steps := m.steps[processID]
	if len(steps) == 0 {
		return nil, domain.ErrNotFound
	}
	last := steps[len(steps)-1]
	return &last, nil
}

func (m *memoryTrajectory) History(_ context.Context, processID int64) ([]domain.TrajectoryStep, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.TrajectoryStep(nil), m.steps[processID]...), nil
}

func (m *memoryTrajectory) AppendTransition(_ context.Context, req domain.AppendRequest) (*domain.TrajectoryStep, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	steps := m.steps[req.ProcessID]
	if len(steps) == 0 || steps[len(steps)-1].Position != req.ExpectedPosition || steps[len(steps)-1].DecisionID.Valid {
		return nil, &domain.ConflictError{ProcessID: req.ProcessID, ExpectedPosition: req.ExpectedPosition}
	}
	steps[len(steps)-1].DecisionID.Int64 = req.DecisionID
	steps[len(steps)-1].DecisionID.Valid = true
	next := domain.TrajectoryStep{
		ProcessID: req.ProcessID,
		Position:  req.ExpectedPosition + 1,
		StateID:   req.NextStateID,
		ActorID:   req.ActorID,
		DateTime:  m.now,
	}
	m.steps[req.ProcessID] = append(steps, next)
	return &next, nil
}

func (m *memoryTrajectory) InitProcess(context.Context, int64, string, int64) (int64, error) {
	return 0, domain.ErrNoInitialState
}

func (m *memoryTrajectory) DeleteProcess(_ context.Context, processID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.steps, processID)
	return nil
}
