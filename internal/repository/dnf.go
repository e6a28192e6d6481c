package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/domain"
)

// DNFRepository stores guard functions, predicates and formula rows.
type DNFRepository struct {
	db *DB
}

func NewDNFRepository(db *DB) *DNFRepository {
	return &DNFRepository{db: db}
}

func (r *DNFRepository) FindFormulaRows(ctx context.Context, functionID int64) ([]domain.FormulaRow, error) {
	out := []domain.FormulaRow{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(
		"SELECT function_id, disjunction, conjunction, predicate_id FROM formula_rows WHERE function_id = ? ORDER BY disjunction, conjunction, predicate_id"),
		functionID)
	if err != nil {
		return nil, fmt.Errorf("load formula rows: %w", err)
	}
	return out, nil
}

// FindPredicatesByIDs loads the given predicates in one query. Rows that
// carry more than one discriminator are skipped and so treated as missing.
func (r *DNFRepository) FindPredicatesByIDs(ctx context.Context, ids []int64) (map[int64]domain.Predicate, error) {
	out := make(map[int64]domain.Predicate, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In("SELECT id, state_id, decision_id, parameter_id FROM predicates WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	var rows []domain.PredicateRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load predicates: %w", err)
	}
	for _, row := range rows {
		p, err := row.Predicate()
		if err != nil {
			slog.WarnContext(ctx, "skipping malformed predicate", "predicate_id", row.ID, "error", err)
			continue
		}
		out[p.ID] = p
	}
	return out, nil
}

func (r *DNFRepository) ListPredicates(ctx context.Context) ([]domain.Predicate, error) {
	var rows []domain.PredicateRow
	if err := r.db.SelectContext(ctx, &rows, "SELECT id, state_id, decision_id, parameter_id FROM predicates ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list predicates: %w", err)
	}
	out := make([]domain.Predicate, 0, len(rows))
	for _, row := range rows {
		p, err := row.Predicate()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// SavePredicate inserts a new predicate. A zero id is assigned the next free
// one.
func (r *DNFRepository) SavePredicate(ctx context.Context, p *domain.Predicate) error {
	return r.db.inTx(ctx, func(tx *sqlx.Tx) error {
		if p.ID == 0 {
			id, err := nextID(ctx, tx, "predicates")
			if err != nil {
				return fmt.Errorf("assign predicate id: %w", err)
			}
			p.ID = id
		}
		row := p.Row()
		_, err := tx.ExecContext(ctx, tx.Rebind(
			"INSERT INTO predicates (id, state_id, decision_id, parameter_id) VALUES (?, ?, ?, ?)"),
			row.ID, row.StateID, row.DecisionID, row.ParameterID)
		return classifyWrite("save predicate", err)
	})
}

// DeletePredicate removes a predicate no formula refers to.
func (r *DNFRepository) DeletePredicate(ctx context.Context, predicateID int64) error {
	return r.db.inTx(ctx, func(tx *sqlx.Tx) error {
		refs, err := countRefs(ctx, tx, "formula_rows", "predicate_id", predicateID)
		if err != nil {
			return fmt.Errorf("count predicate references: %w", err)
		}
		if refs > 0 {
			return fmt.Errorf("predicate %d used by %d formula rows: %w", predicateID, refs, domain.ErrReferentialIntegrity)
		}
		res, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM predicates WHERE id = ?"), predicateID)
		if err != nil {
			return classifyWrite("delete predicate", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.NotFoundf("predicate %d", predicateID)
		}
		return nil
	})
}

func (r *DNFRepository) ListGuardFunctions(ctx context.Context) ([]domain.GuardFunction, error) {
	out := []domain.GuardFunction{}
	if err := r.db.SelectContext(ctx, &out, "SELECT id, name FROM guard_functions ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list guard functions: %w", err)
	}
	return out, nil
}

func (r *DNFRepository) FindGuardFunction(ctx context.Context, functionID int64) (*domain.GuardFunction, error) {
	var f domain.GuardFunction
	err := r.db.GetContext(ctx, &f, r.db.Rebind("SELECT id, name FROM guard_functions WHERE id = ?"), functionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("guard function %d", functionID)
	}
	if err != nil {
		return nil, fmt.Errorf("load guard function: %w", err)
	}
	return &f, nil
}

func (r *DNFRepository) SaveGuardFunction(ctx context.Context, f *domain.GuardFunction) error {
	return r.db.inTx(ctx, func(tx *sqlx.Tx) error {
		if f.ID == 0 {
			id, err := nextID(ctx, tx, "guard_functions")
			if err != nil {
				return fmt.Errorf("assign guard function id: %w", err)
			}
			f.ID = id
		}
		query := r.db.Dialect.upsert("guard_functions", []string{"id", "name"}, []string{"id"}, []string{"name"})
		_, err := tx.ExecContext(ctx, tx.Rebind(query), f.ID, f.Name)
		return classifyWrite("save guard function", err)
	})
}

// ReplaceFormula swaps all rows of a formula in one transaction.
func (r *DNFRepository) ReplaceFormula(ctx context.Context, functionID int64, rows []domain.FormulaRow) error {
	return r.db.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM formula_rows WHERE function_id = ?"), functionID); err != nil {
			return fmt.Errorf("clear formula: %w", err)
		}
		insert := tx.Rebind("INSERT INTO formula_rows (function_id, disjunction, conjunction, predicate_id) VALUES (?, ?, ?, ?)")
		for _, row := range rows {
			if _, err := tx.ExecContext(ctx, insert, functionID, row.Disjunction, row.Conjunction, row.PredicateID); err != nil {
				return classifyWrite("insert formula row", err)
			}
		}
		return nil
	})
}

func (r *DNFRepository) DeleteFormula(ctx context.Context, functionID int64) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM formula_rows WHERE function_id = ?"), functionID)
	if err != nil {
		return fmt.Errorf("delete formula: %w", err)
	}
	return nil
}
