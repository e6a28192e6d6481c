package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/core"
	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/domain"
)

const stepColumns = "process_id, position, state_id, decision_id, actor_id, date_time"

// TrajectoryRepository stores the ordered step log of every process.
type TrajectoryRepository struct {
	db    *DB
	clock core.Clock
}

func NewTrajectoryRepository(db *DB, clock core.Clock) *TrajectoryRepository {
	return &TrajectoryRepository{db: db, clock: clock}
}

func (r *TrajectoryRepository) HasVisitedState(ctx context.Context, processID, stateID int64) (bool, error) {
	n, err := r.countSteps(ctx, "state_id", processID, stateID)
	return n > 0, err
}

func (r *TrajectoryRepository) HasUsedDecision(ctx context.Context, processID, decisionID int64) (bool, error) {
	n, err := r.countSteps(ctx, "decision_id", processID, decisionID)
	return n > 0, err
}

func (r *TrajectoryRepository) countSteps(ctx context.Context, column string, processID, id int64) (int, error) {
	var n int
	query := r.db.Rebind("SELECT COUNT(1) FROM trajectory WHERE process_id = ? AND " + column + " = ?")
	if err := r.db.GetContext(ctx, &n, query, processID, id); err != nil {
		return 0, fmt.Errorf("count trajectory %s: %w", column, err)
	}
	return n, nil
}

// CurrentStep returns the step with the highest position.
func (r *TrajectoryRepository) CurrentStep(ctx context.Context, processID int64) (*domain.TrajectoryStep, error) {
	return lastStep(ctx, r.db, processID)
}

func lastStep(ctx context.Context, q sqlx.ExtContext, processID int64) (*domain.TrajectoryStep, error) {
	var step domain.TrajectoryStep
	query := q.Rebind("SELECT " + stepColumns + " FROM trajectory WHERE process_id = ? ORDER BY position DESC LIMIT 1")
	err := sqlx.GetContext(ctx, q, &step, query, processID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("trajectory of process %d", processID)
	}
	if err != nil {
		return nil, fmt.Errorf("load current step: %w", err)
	}
	return &step, nil
}

func (r *TrajectoryRepository) History(ctx context.Context, processID int64) ([]domain.TrajectoryStep, error) {
	steps := []domain.TrajectoryStep{}
	query := r.db.Rebind("SELECT " + stepColumns + " FROM trajectory WHERE process_id = ? ORDER BY position ASC")
	if err := r.db.SelectContext(ctx, &steps, query, processID); err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return steps, nil
}

// AppendTransition records the decision on the current step and appends the
// next one. It fails with a ConflictError when the trajectory is no longer at
// req.ExpectedPosition.
func (r *TrajectoryRepository) AppendTransition(ctx context.Context, req domain.AppendRequest) (*domain.TrajectoryStep, error) {
	conflict := &domain.ConflictError{ProcessID: req.ProcessID, ExpectedPosition: req.ExpectedPosition}
	next := domain.TrajectoryStep{
		ProcessID: req.ProcessID,
		Position:  req.ExpectedPosition + 1,
		StateID:   req.NextStateID,
		ActorID:   req.ActorID,
		DateTime:  r.clock.Now().UTC(),
	}

	err := r.db.inTx(ctx, func(tx *sqlx.Tx) error {
		last, err := lastStep(ctx, tx, req.ProcessID)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("process %d: %w", req.ProcessID, domain.ErrNoTrajectory)
		}
		if err != nil {
			return err
		}
		if last.Position != req.ExpectedPosition || last.DecisionID.Valid {
			return conflict
		}

		res, err := tx.ExecContext(ctx, tx.Rebind(
			"UPDATE trajectory SET decision_id = ? WHERE process_id = ? AND position = ? AND decision_id IS NULL"),
			req.DecisionID, req.ProcessID, req.ExpectedPosition)
		if err != nil {
			return fmt.Errorf("record decision: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n != 1 {
			return conflict
		}

		_, err = tx.ExecContext(ctx, tx.Rebind(
			"INSERT INTO trajectory ("+stepColumns+") VALUES (?, ?, ?, ?, ?, ?)"),
			next.ProcessID, next.Position, next.StateID, next.DecisionID, next.ActorID, next.DateTime)
		if isUniqueViolation(err) {
			return conflict
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("append step: %w", domain.ErrReferentialIntegrity)
		}
		if err != nil {
			return fmt.Errorf("append step: %w", err)
		}
		return nil
	})
	if err != nil {
		if !domain.IsConflict(err) {
			slog.ErrorContext(ctx, "Failed to append transition", "process_id", req.ProcessID, "error", err)
		}
		return nil, err
	}
	return &next, nil
}

// InitProcess creates a process in the single initial state of its template.
func (r *TrajectoryRepository) InitProcess(ctx context.Context, templateID int64, subjectID string, actorID int64) (int64, error) {
	var processID int64
	err := r.db.inTx(ctx, func(tx *sqlx.Tx) error {
		var exists int
		if err := tx.GetContext(ctx, &exists, tx.Rebind("SELECT COUNT(1) FROM process_templates WHERE id = ?"), templateID); err != nil {
			return fmt.Errorf("load template: %w", err)
		}
		if exists == 0 {
			return domain.NotFoundf("template %d", templateID)
		}

		var initial []int64
		err := tx.SelectContext(ctx, &initial, tx.Rebind(
			"SELECT state_id FROM template_states WHERE template_id = ? AND is_initial = ?"), templateID, true)
		if err != nil {
			return fmt.Errorf("load initial state: %w", err)
		}
		switch len(initial) {
		case 0:
			return fmt.Errorf("template %d: %w", templateID, domain.ErrNoInitialState)
		case 1:
		default:
			return fmt.Errorf("template %d: %w", templateID, domain.ErrAmbiguousInitialState)
		}

		now := r.clock.Now().UTC()
		processID, err = r.db.insertReturningID(ctx, tx,
			"INSERT INTO processes (template_id, subject_id, created) VALUES (?, ?, ?)",
			templateID, subjectID, now)
		if err != nil {
			return fmt.Errorf("insert process: %w", err)
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(
			"INSERT INTO trajectory ("+stepColumns+") VALUES (?, ?, ?, ?, ?, ?)"),
			processID, 1, initial[0], nil, actorID, now)
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert first step: %w", domain.ErrReferentialIntegrity)
		}
		if err != nil {
			return fmt.Errorf("insert first step: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return processID, nil
}

// DeleteProcess removes the process together with its trajectory.
func (r *TrajectoryRepository) DeleteProcess(ctx context.Context, processID int64) error {
	return r.db.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM trajectory WHERE process_id = ?"), processID); err != nil {
			return fmt.Errorf("delete trajectory: %w", err)
		}
		res, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM processes WHERE id = ?"), processID)
		if err != nil {
			return fmt.Errorf("delete process: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.NotFoundf("process %d", processID)
		}
		return nil
	})
}
