package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/domain"
)

// DictionaryRepository stores the state and decision dictionaries.
type DictionaryRepository struct {
	db *DB
}

func NewDictionaryRepository(db *DB) *DictionaryRepository {
	return &DictionaryRepository{db: db}
}

type reference struct {
	table, column string
}

var (
	stateReferences = []reference{
		{"trajectory", "state_id"},
		{"template_states", "state_id"},
		{"predicates", "state_id"},
	}
	decisionReferences = []reference{
		{"trajectory", "decision_id"},
		{"decision_map", "decision_id"},
		{"predicates", "decision_id"},
	}
)

func (r *DictionaryRepository) FindStateByID(ctx context.Context, stateID int64) (*domain.State, error) {
	var s domain.State
	err := r.db.GetContext(ctx, &s, r.db.Rebind("SELECT id, code, name FROM states WHERE id = ?"), stateID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("state %d", stateID)
	}
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	return &s, nil
}

func (r *DictionaryRepository) ListStates(ctx context.Context) ([]domain.State, error) {
	out := []domain.State{}
	if err := r.db.SelectContext(ctx, &out, "SELECT id, code, name FROM states ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list states: %w", err)
	}
	return out, nil
}

// SaveState inserts a state, or renames one that no trajectory refers to.
func (r *DictionaryRepository) SaveState(ctx context.Context, s *domain.State) error {
	return r.saveEntry(ctx, "states", stateReferences[:1], &s.ID, s.Code, s.Name)
}

func (r *DictionaryRepository) DeleteState(ctx context.Context, stateID int64) error {
	return r.deleteEntry(ctx, "states", stateReferences, stateID)
}

func (r *DictionaryRepository) FindDecisionByID(ctx context.Context, decisionID int64) (*domain.Decision, error) {
	var d domain.Decision
	err := r.db.GetContext(ctx, &d, r.db.Rebind("SELECT id, code, name FROM decisions WHERE id = ?"), decisionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("decision %d", decisionID)
	}
	if err != nil {
		return nil, fmt.Errorf("load decision: %w", err)
	}
	return &d, nil
}

func (r *DictionaryRepository) ListDecisions(ctx context.Context) ([]domain.Decision, error) {
	out := []domain.Decision{}
	if err := r.db.SelectContext(ctx, &out, "SELECT id, code, name FROM decisions ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	return out, nil
}

// SaveDecision inserts a decision, or renames one that no trajectory refers
// to.
func (r *DictionaryRepository) SaveDecision(ctx context.Context, d *domain.Decision) error {
	return r.saveEntry(ctx, "decisions", decisionReferences[:1], &d.ID, d.Code, d.Name)
}

func (r *DictionaryRepository) DeleteDecision(ctx context.Context, decisionID int64) error {
	return r.deleteEntry(ctx, "decisions", decisionReferences, decisionID)
}

// saveEntry upserts an id/code/name row. Rows referenced by any of freeze are
// immutable.
func (r *DictionaryRepository) saveEntry(ctx context.Context, table string, freeze []reference, id *int64, code, name string) error {
	if code == "" || name == "" {
		return fmt.Errorf("%s: code and name are required: %w", table, domain.ErrInvalidArgument)
	}
	return r.db.inTx(ctx, func(tx *sqlx.Tx) error {
		if *id == 0 {
			next, err := nextID(ctx, tx, table)
			if err != nil {
				return fmt.Errorf("assign %s id: %w", table, err)
			}
			*id = next
		} else if err := ensureUnreferenced(ctx, tx, freeze, *id); err != nil {
			return err
		}
		query := r.db.Dialect.upsert(table, []string{"id", "code", "name"}, []string{"id"}, []string{"code", "name"})
		_, err := tx.ExecContext(ctx, tx.Rebind(query), *id, code, name)
		return classifyWrite("save "+table, err)
	})
}

func (r *DictionaryRepository) deleteEntry(ctx context.Context, table string, refs []reference, id int64) error {
	return r.db.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := ensureUnreferenced(ctx, tx, refs, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM "+table+" WHERE id = ?"), id)
		if err != nil {
			return classifyWrite("delete from "+table, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.NotFoundf("%s %d", table, id)
		}
		return nil
	})
}

func ensureUnreferenced(ctx context.Context, ext sqlx.ExtContext, refs []reference, id int64) error {
	for _, ref := range refs {
		n, err := countRefs(ctx, ext, ref.table, ref.column, id)
		if err != nil {
			return fmt.Errorf("count %s references: %w", ref.table, err)
		}
		if n > 0 {
			return fmt.Errorf("%d used by %s: %w", id, ref.table, domain.ErrReferentialIntegrity)
		}
	}
	return nil
}
