package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/domain"
)

type ProcessRepository struct {
	db *DB
}

func NewProcessRepository(db *DB) *ProcessRepository {
	return &ProcessRepository{db: db}
}

func (r *ProcessRepository) FindByID(ctx context.Context, processID int64) (*domain.Process, error) {
	var p domain.Process
	err := r.db.GetContext(ctx, &p, r.db.Rebind(
		"SELECT id, template_id, subject_id, created FROM processes WHERE id = ?"), processID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("process %d", processID)
	}
	if err != nil {
		return nil, fmt.Errorf("load process: %w", err)
	}
	return &p, nil
}

// FindBySubject lists the processes of a product, newest first.
func (r *ProcessRepository) FindBySubject(ctx context.Context, subjectID string) ([]domain.Process, error) {
	out := []domain.Process{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(
		"SELECT id, template_id, subject_id, created FROM processes WHERE subject_id = ? ORDER BY id DESC"), subjectID)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}
	return out, nil
}
