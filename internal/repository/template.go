package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/domain"
)

// TemplateRepository stores process templates, their states and the
// decision map. It is the SQL backed DecisionMap and GuardBindings.
type TemplateRepository struct {
	db *DB
}

func NewTemplateRepository(db *DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) NextState(ctx context.Context, templateID, stateID, decisionID int64) (int64, bool, error) {
	var next int64
	err := r.db.GetContext(ctx, &next, r.db.Rebind(
		"SELECT next_state_id FROM decision_map WHERE template_id = ? AND state_id = ? AND decision_id = ?"),
		templateID, stateID, decisionID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup decision map: %w", err)
	}
	return next, true, nil
}

func (r *TemplateRepository) DecisionsFrom(ctx context.Context, templateID, stateID int64) ([]domain.DecisionMapEntry, error) {
	out := []domain.DecisionMapEntry{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(
		"SELECT template_id, state_id, decision_id, next_state_id FROM decision_map WHERE template_id = ? AND state_id = ? ORDER BY decision_id"),
		templateID, stateID)
	if err != nil {
		return nil, fmt.Errorf("list decisions from state: %w", err)
	}
	return out, nil
}

func (r *TemplateRepository) GuardFor(ctx context.Context, templateID, stateID int64) (int64, bool, error) {
	var guard sql.NullInt64
	err := r.db.GetContext(ctx, &guard, r.db.Rebind(
		"SELECT guard_function_id FROM template_states WHERE template_id = ? AND state_id = ?"),
		templateID, stateID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup guard: %w", err)
	}
	return guard.Int64, guard.Valid, nil
}

func (r *TemplateRepository) FindTemplate(ctx context.Context, templateID int64) (*domain.ProcessTemplate, error) {
	var t domain.ProcessTemplate
	err := r.db.GetContext(ctx, &t, r.db.Rebind(
		"SELECT id, code, name, class_id FROM process_templates WHERE id = ?"), templateID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("template %d", templateID)
	}
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}
	return &t, nil
}

func (r *TemplateRepository) ListTemplates(ctx context.Context) ([]domain.ProcessTemplate, error) {
	out := []domain.ProcessTemplate{}
	if err := r.db.SelectContext(ctx, &out, "SELECT id, code, name, class_id FROM process_templates ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return out, nil
}

// SaveTemplate inserts or updates a template by id. A zero id is assigned the
// next free one.
func (r *TemplateRepository) SaveTemplate(ctx context.Context, t *domain.ProcessTemplate) error {
	return r.db.inTx(ctx, func(tx *sqlx.Tx) error {
		if t.ID == 0 {
			id, err := nextID(ctx, tx, "process_templates")
			if err != nil {
				return fmt.Errorf("assign template id: %w", err)
			}
			t.ID = id
		}
		query := r.db.Dialect.upsert("process_templates",
			[]string{"id", "code", "name", "class_id"}, []string{"id"}, []string{"code", "name", "class_id"})
		_, err := tx.ExecContext(ctx, tx.Rebind(query), t.ID, t.Code, t.Name, t.ClassID)
		return classifyWrite("save template", err)
	})
}

func (r *TemplateRepository) TemplateStates(ctx context.Context, templateID int64) ([]domain.TemplateState, error) {
	out := []domain.TemplateState{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(
		"SELECT template_id, state_id, is_initial, guard_function_id FROM template_states WHERE template_id = ? ORDER BY state_id"),
		templateID)
	if err != nil {
		return nil, fmt.Errorf("list template states: %w", err)
	}
	return out, nil
}

// SaveTemplateState adds a state to a template or updates its initial flag
// and guard binding.
func (r *TemplateRepository) SaveTemplateState(ctx context.Context, ts domain.TemplateState) error {
	query := r.db.Dialect.upsert("template_states",
		[]string{"template_id", "state_id", "is_initial", "guard_function_id"},
		[]string{"template_id", "state_id"},
		[]string{"is_initial", "guard_function_id"})
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query), ts.TemplateID, ts.StateID, ts.Initial, ts.GuardFunctionID)
	return classifyWrite("save template state", err)
}

func (r *TemplateRepository) ListDecisionMap(ctx context.Context, templateID int64) ([]domain.DecisionMapEntry, error) {
	out := []domain.DecisionMapEntry{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(
		"SELECT template_id, state_id, decision_id, next_state_id FROM decision_map WHERE template_id = ? ORDER BY state_id, decision_id"),
		templateID)
	if err != nil {
		return nil, fmt.Errorf("list decision map: %w", err)
	}
	return out, nil
}

// SaveDecisionMapEntry defines or redirects one transition. Both states must
// belong to the template.
func (r *TemplateRepository) SaveDecisionMapEntry(ctx context.Context, e domain.DecisionMapEntry) error {
	query := r.db.Dialect.upsert("decision_map",
		[]string{"template_id", "state_id", "decision_id", "next_state_id"},
		[]string{"template_id", "state_id", "decision_id"},
		[]string{"next_state_id"})
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query), e.TemplateID, e.StateID, e.DecisionID, e.NextStateID)
	return classifyWrite("save decision map entry", err)
}

func (r *TemplateRepository) DeleteDecisionMapEntry(ctx context.Context, templateID, stateID, decisionID int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(
		"DELETE FROM decision_map WHERE template_id = ? AND state_id = ? AND decision_id = ?"),
		templateID, stateID, decisionID)
	if err != nil {
		return fmt.Errorf("delete decision map entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundf("transition %d/%d/%d", templateID, stateID, decisionID)
	}
	return nil
}

// classifyWrite maps constraint violations of a write to domain errors.
func classifyWrite(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case isForeignKeyViolation(err):
		return fmt.Errorf("%s: %w", op, domain.ErrReferentialIntegrity)
	case isUniqueViolation(err), isCheckViolation(err):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrInvalidArgument, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
