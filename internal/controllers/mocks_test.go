package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/RealZimboGuy/catalogflow/internal/engine"
	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/domain"
)

const (
	testActorID = int64(7)
	testAPIKey  = "secret"
)

type MockActorAuthenticator struct {
	AuthenticateFunc func(ctx context.Context, actorID int64, apiKey string) (*domain.Actor, error)
}

func (m *MockActorAuthenticator) Authenticate(ctx context.Context, actorID int64, apiKey string) (*domain.Actor, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, actorID, apiKey)
	}
	if actorID == testActorID && apiKey == testAPIKey {
		return &domain.Actor{ID: testActorID, Name: "moderator", Enabled: true}, nil
	}
	return nil, domain.ErrAccessDenied
}

type MockProcessDriver struct {
	StartProcessFunc       func(ctx context.Context, templateID int64, subjectID string, actorID int64) (int64, error)
	ProcessFunc            func(ctx context.Context, processID int64) (*domain.Process, error)
	CurrentStateFunc       func(ctx context.Context, processID int64) (*domain.TrajectoryStep, error)
	HistoryFunc            func(ctx context.Context, processID int64) ([]domain.TrajectoryStep, error)
	AvailableDecisionsFunc func(ctx context.Context, processID int64) ([]domain.DecisionMapEntry, error)
	SubmitDecisionFunc     func(ctx context.Context, processID, decisionID, actorID int64) (engine.TransitionOutcome, error)
	CheckFunc              func(ctx context.Context, processID, decisionID int64) (engine.AuthorizationResult, error)
	DeleteProcessFunc      func(ctx context.Context, processID int64) error
}

func (m *MockProcessDriver) StartProcess(ctx context.Context, templateID int64, subjectID string, actorID int64) (int64, error) {
	if m.StartProcessFunc != nil {
		return m.StartProcessFunc(ctx, templateID, subjectID, actorID)
	}
	return 1, nil
}
func (m *MockProcessDriver) Process(ctx context.Context, processID int64) (*domain.Process, error) {
	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, processID)
	}
	return &domain.Process{ID: processID, TemplateID: 1, SubjectID: "sku-1"}, nil
}
func (m *MockProcessDriver) CurrentState(ctx context.Context, processID int64) (*domain.TrajectoryStep, error) {
	if m.CurrentStateFunc != nil {
		return m.CurrentStateFunc(ctx, processID)
	}
	return &domain.TrajectoryStep{ProcessID: processID, Position: 1, StateID: 1, ActorID: testActorID}, nil
}
func (m *MockProcessDriver) History(ctx context.Context, processID int64) ([]domain.TrajectoryStep, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, processID)
	}
	return nil, nil
}
func (m *MockProcessDriver) AvailableDecisions(ctx context.Context, processID int64) ([]domain.DecisionMapEntry, error) {
	if m.AvailableDecisionsFunc != nil {
		return m.AvailableDecisionsFunc(ctx, processID)
	}
	return nil, nil
}
func (m *MockProcessDriver) SubmitDecision(ctx context.Context, processID, decisionID, actorID int64) (engine.TransitionOutcome, error) {
	if m.SubmitDecisionFunc != nil {
		return m.SubmitDecisionFunc(ctx, processID, decisionID, actorID)
	}
	return engine.TransitionOutcome{ProcessID: processID}, nil
}
func (m *MockProcessDriver) Check(ctx context.Context, processID, decisionID int64) (engine.AuthorizationResult, error) {
	if m.CheckFunc != nil {
		return m.CheckFunc(ctx, processID, decisionID)
	}
	return engine.AuthorizationResult{}, nil
}
func (m *MockProcessDriver) DeleteProcess(ctx context.Context, processID int64) error {
	if m.DeleteProcessFunc != nil {
		return m.DeleteProcessFunc(ctx, processID)
	}
	return nil
}

type MockProcessFinder struct {
	FindBySubjectFunc func(ctx context.Context, subjectID string) ([]domain.Process, error)
}

func (m *MockProcessFinder) FindBySubject(ctx context.Context, subjectID string) ([]domain.Process, error) {
	if m.FindBySubjectFunc != nil {
		return m.FindBySubjectFunc(ctx, subjectID)
	}
	return nil, nil
}

type MockAccessChecker struct {
	CanActOnFunc func(ctx context.Context, actorID, templateID, stateID int64) (bool, error)
}

func (m *MockAccessChecker) CanActOn(ctx context.Context, actorID, templateID, stateID int64) (bool, error) {
	if m.CanActOnFunc != nil {
		return m.CanActOnFunc(ctx, actorID, templateID, stateID)
	}
	return true, nil
}

// authedRequest builds a request carrying valid actor credentials.
func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("X-Actor-Id", "7")
	req.Header.Set("X-API-Key", testAPIKey)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

type routable interface {
	RegisterRoutes(mux *http.ServeMux)
}

func serve(c routable, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	c.RegisterRoutes(mux)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}
