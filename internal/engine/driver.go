package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/RealZimboGuy/catalogflow/internal/metrics"
	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/domain"
)

// TransitionOutcome describes the step a successful decision produced.
type TransitionOutcome struct {
	ProcessID    int64  `json:"processId"`
	Position     int    `json:"position"`
	NewStateID   int64  `json:"newStateId"`
	NewStateName string `json:"newStateName"`
}

// Driver runs decision submissions end to end and exposes the process read
// operations used by the API.
type Driver struct {
	Processes   ProcessRepo
	Trajectory  TrajectoryStore
	DecisionMap DecisionMap
	Authorizer  transitionAuthorizer
	States      StateRepo
	// Access is optional. When nil every actor may act on every state.
	Access  AccessChecker
	Metrics *metrics.Metrics

	locks processLocks
}

func NewDriver(processes ProcessRepo, trajectory TrajectoryStore, decisionMap DecisionMap, authorizer *Authorizer, states StateRepo, access AccessChecker, m *metrics.Metrics) *Driver {
	return &Driver{
		Processes:   processes,
		Trajectory:  trajectory,
		DecisionMap: decisionMap,
		Authorizer:  authorizer,
		States:      states,
		Access:      access,
		Metrics:     m,
	}
}

// SubmitDecision applies decisionID to the current state of the process on
// behalf of actorID.
func (d *Driver) SubmitDecision(ctx context.Context, processID, decisionID, actorID int64) (TransitionOutcome, error) {
	out, err := d.submit(ctx, processID, decisionID, actorID)
	outcome := outcomeOf(err)
	d.Metrics.RecordDecision(outcome)

	attrs := []any{"process_id", processID, "decision_id", decisionID, "actor_id", actorID, "outcome", outcome}
	switch outcome {
	case metrics.OutcomeApplied:
		slog.InfoContext(ctx, "decision applied", append(attrs, "state_id", out.NewStateID, "position", out.Position)...)
	case metrics.OutcomeError:
		slog.ErrorContext(ctx, "decision failed", append(attrs, "error", err)...)
	default:
		slog.InfoContext(ctx, "decision not applied", append(attrs, "reason", err.Error())...)
	}
	return out, err
}

func (d *Driver) submit(ctx context.Context, processID, decisionID, actorID int64) (TransitionOutcome, error) {
	proc, err := d.Processes.FindByID(ctx, processID)
	if err != nil {
		return TransitionOutcome{}, fmt.Errorf("load process %d: %w", processID, err)
	}

	// Held from reading the current step until the append. Submissions from
	// other instances are stopped by the expected position check in storage.
	unlock := d.locks.lock(processID)
	appended, err := d.advance(ctx, proc, decisionID, actorID)
	unlock()
	if err != nil {
		return TransitionOutcome{}, err
	}

	out := TransitionOutcome{
		ProcessID:  processID,
		Position:   appended.Position,
		NewStateID: appended.StateID,
	}
	// the step is committed, a failed name lookup only degrades the answer
	state, err := d.States.FindStateByID(ctx, appended.StateID)
	if err != nil {
		slog.WarnContext(ctx, "state name lookup failed", "state_id", appended.StateID, "error", err)
		return out, nil
	}
	out.NewStateName = state.Name
	return out, nil
}

// advance checks the decision against the current step and appends the next
// one.
func (d *Driver) advance(ctx context.Context, proc *domain.Process, decisionID, actorID int64) (*domain.TrajectoryStep, error) {
	step, err := d.currentStep(ctx, proc.ID)
	if err != nil {
		return nil, err
	}

	if d.Access != nil {
		ok, err := d.Access.CanActOn(ctx, actorID, proc.TemplateID, step.StateID)
		if err != nil {
			return nil, fmt.Errorf("check state access: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("actor %d in state %d: %w", actorID, step.StateID, domain.ErrAccessDenied)
		}
	}

	// decisions not legal from here are rejected before any guard runs
	legal, err := d.DecisionMap.DecisionsFrom(ctx, proc.TemplateID, step.StateID)
	if err != nil {
		return nil, fmt.Errorf("load decisions from state %d: %w", step.StateID, err)
	}
	if !containsDecision(legal, decisionID) {
		return nil, &domain.PolicyRejection{Reason: ReasonTransitionUndefined}
	}

	res, err := d.Authorizer.Authorize(ctx, AuthorizationRequest{
		TemplateID: proc.TemplateID,
		StateID:    step.StateID,
		DecisionID: decisionID,
		ProcessID:  proc.ID,
		SubjectID:  proc.SubjectID,
	})
	if err != nil {
		return nil, err
	}
	if !res.Allowed {
		return nil, &domain.PolicyRejection{Reason: res.Reason}
	}

	return d.Trajectory.AppendTransition(ctx, domain.AppendRequest{
		ProcessID:        proc.ID,
		ExpectedPosition: step.Position,
		DecisionID:       decisionID,
		ActorID:          actorID,
		NextStateID:      res.NextStateID,
	})
}

// Check runs the authorizer for decisionID against the current state without
// recording anything.
func (d *Driver) Check(ctx context.Context, processID, decisionID int64) (AuthorizationResult, error) {
	proc, err := d.Processes.FindByID(ctx, processID)
	if err != nil {
		return AuthorizationResult{}, fmt.Errorf("load process %d: %w", processID, err)
	}
	step, err := d.currentStep(ctx, processID)
	if err != nil {
		return AuthorizationResult{}, err
	}
	return d.Authorizer.Authorize(ctx, AuthorizationRequest{
		TemplateID: proc.TemplateID,
		StateID:    step.StateID,
		DecisionID: decisionID,
		ProcessID:  proc.ID,
		SubjectID:  proc.SubjectID,
	})
}

// StartProcess creates a process for subjectID in the initial state of the
// template.
func (d *Driver) StartProcess(ctx context.Context, templateID int64, subjectID string, actorID int64) (int64, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return 0, fmt.Errorf("subject is required: %w", domain.ErrInvalidArgument)
	}
	id, err := d.Trajectory.InitProcess(ctx, templateID, subjectID, actorID)
	if err != nil {
		return 0, fmt.Errorf("start process for template %d: %w", templateID, err)
	}
	d.Metrics.RecordProcessStarted()
	slog.InfoContext(ctx, "process started",
		"process_id", id, "template_id", templateID, "subject_id", subjectID, "actor_id", actorID)
	return id, nil
}

func (d *Driver) Process(ctx context.Context, processID int64) (*domain.Process, error) {
	return d.Processes.FindByID(ctx, processID)
}

// CurrentState returns the last step of the process, or nil when it has none.
func (d *Driver) CurrentState(ctx context.Context, processID int64) (*domain.TrajectoryStep, error) {
	if _, err := d.Processes.FindByID(ctx, processID); err != nil {
		return nil, err
	}
	step, err := d.Trajectory.CurrentStep(ctx, processID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return step, nil
}

func (d *Driver) History(ctx context.Context, processID int64) ([]domain.TrajectoryStep, error) {
	if _, err := d.Processes.FindByID(ctx, processID); err != nil {
		return nil, err
	}
	return d.Trajectory.History(ctx, processID)
}

// AvailableDecisions lists the decision map entries leaving the current state.
func (d *Driver) AvailableDecisions(ctx context.Context, processID int64) ([]domain.DecisionMapEntry, error) {
	proc, err := d.Processes.FindByID(ctx, processID)
	if err != nil {
		return nil, err
	}
	step, err := d.currentStep(ctx, processID)
	if err != nil {
		return nil, err
	}
	return d.DecisionMap.DecisionsFrom(ctx, proc.TemplateID, step.StateID)
}

func (d *Driver) DeleteProcess(ctx context.Context, processID int64) error {
	if _, err := d.Processes.FindByID(ctx, processID); err != nil {
		return err
	}
	if err := d.Trajectory.DeleteProcess(ctx, processID); err != nil {
		return fmt.Errorf("delete process %d: %w", processID, err)
	}
	slog.InfoContext(ctx, "process deleted", "process_id", processID)
	return nil
}

func (d *Driver) currentStep(ctx context.Context, processID int64) (*domain.TrajectoryStep, error) {
	step, err := d.Trajectory.CurrentStep(ctx, processID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("process %d: %w", processID, domain.ErrNoTrajectory)
	}
	if err != nil {
		return nil, fmt.Errorf("load current step of process %d: %w", processID, err)
	}
	return step, nil
}

func containsDecision(entries []domain.DecisionMapEntry, decisionID int64) bool {
	for _, e := range entries {
		if e.DecisionID == decisionID {
			return true
		}
	}
	return false
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeApplied
	case domain.IsPolicyRejection(err):
		return metrics.OutcomeRejected
	case domain.IsConflict(err):
		return metrics.OutcomeConflict
	case errors.Is(err, domain.ErrAccessDenied):
		return metrics.OutcomeDenied
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrNoTrajectory):
		return metrics.OutcomeNotFound
	}
	return metrics.OutcomeError
}
