package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/domain"
)

// ParameterRepository stores product classes, products, parameter
// definitions, class constraints and product values.
type ParameterRepository struct {
	db *DB
}

func NewParameterRepository(db *DB) *ParameterRepository {
	return &ParameterRepository{db: db}
}

func (r *ParameterRepository) FindParameter(ctx context.Context, parameterID int64) (*domain.Parameter, error) {
	var p domain.Parameter
	err := r.db.GetContext(ctx, &p, r.db.Rebind("SELECT id, code, name, type FROM parameters WHERE id = ?"), parameterID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("parameter %d", parameterID)
	}
	if err != nil {
		return nil, fmt.Errorf("load parameter: %w", err)
	}
	return &p, nil
}

func (r *ParameterRepository) FindProduct(ctx context.Context, productID string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, r.db.Rebind("SELECT id, name, class_id FROM products WHERE id = ?"), productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("product %s", productID)
	}
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	return &p, nil
}

func (r *ParameterRepository) FindValue(ctx context.Context, productID string, parameterID int64) (*domain.ParameterValue, error) {
	var v domain.ParameterValue
	err := r.db.GetContext(ctx, &v, r.db.Rebind(
		"SELECT product_id, parameter_id, val, note FROM product_parameters WHERE product_id = ? AND parameter_id = ?"),
		productID, parameterID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("value of parameter %d for product %s", parameterID, productID)
	}
	if err != nil {
		return nil, fmt.Errorf("load parameter value: %w", err)
	}
	return &v, nil
}

// FindConstraint returns the constraint defined for exactly this class.
func (r *ParameterRepository) FindConstraint(ctx context.Context, classID, parameterID int64) (*domain.ParameterConstraint, error) {
	var c domain.ParameterConstraint
	err := r.db.GetContext(ctx, &c, r.db.Rebind(
		"SELECT class_id, parameter_id, min_val, max_val, pattern, allowed_values FROM parameter_constraints WHERE class_id = ? AND parameter_id = ?"),
		classID, parameterID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("constraint of parameter %d for class %d", parameterID, classID)
	}
	if err != nil {
		return nil, fmt.Errorf("load parameter constraint: %w", err)
	}
	return &c, nil
}

func (r *ParameterRepository) ListValues(ctx context.Context, productID string) ([]domain.ParameterValue, error) {
	if _, err := r.FindProduct(ctx, productID); err != nil {
		return nil, err
	}
	out := []domain.ParameterValue{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(
		"SELECT product_id, parameter_id, val, note FROM product_parameters WHERE product_id = ? ORDER BY parameter_id"),
		productID)
	if err != nil {
		return nil, fmt.Errorf("list parameter values: %w", err)
	}
	return out, nil
}

// SaveValue sets the value of one parameter of a product.
func (r *ParameterRepository) SaveValue(ctx context.Context, v domain.ParameterValue) error {
	query := r.db.Dialect.upsert("product_parameters",
		[]string{"product_id", "parameter_id", "val", "note"},
		[]string{"product_id", "parameter_id"},
		[]string{"val", "note"})
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query), v.ProductID, v.ParameterID, v.Val, v.Note)
	return classifyWrite("save parameter value", err)
}

func (r *ParameterRepository) SaveParameter(ctx context.Context, p *domain.Parameter) error {
	if !p.Type.Valid() {
		return fmt.Errorf("parameter type %q: %w", p.Type, domain.ErrInvalidArgument)
	}
	return r.db.inTx(ctx, func(tx *sqlx.Tx) error {
		if p.ID == 0 {
			id, err := nextID(ctx, tx, "parameters")
			if err != nil {
				return fmt.Errorf("assign parameter id: %w", err)
			}
			p.ID = id
		}
		query := r.db.Dialect.upsert("parameters",
			[]string{"id", "code", "name", "type"}, []string{"id"}, []string{"code", "name", "type"})
		_, err := tx.ExecContext(ctx, tx.Rebind(query), p.ID, p.Code, p.Name, p.Type)
		return classifyWrite("save parameter", err)
	})
}

func (r *ParameterRepository) SaveClass(ctx context.Context, c *domain.ProductClass) error {
	return r.db.inTx(ctx, func(tx *sqlx.Tx) error {
		if c.ID == 0 {
			id, err := nextID(ctx, tx, "product_classes")
			if err != nil {
				return fmt.Errorf("assign class id: %w", err)
			}
			c.ID = id
		}
		query := r.db.Dialect.upsert("product_classes",
			[]string{"id", "code", "name", "parent_id"}, []string{"id"}, []string{"code", "name", "parent_id"})
		_, err := tx.ExecContext(ctx, tx.Rebind(query), c.ID, c.Code, c.Name, c.ParentID)
		return classifyWrite("save product class", err)
	})
}

func (r *ParameterRepository) SaveProduct(ctx context.Context, p domain.Product) error {
	query := r.db.Dialect.upsert("products",
		[]string{"id", "name", "class_id"}, []string{"id"}, []string{"name", "class_id"})
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query), p.ID, p.Name, p.ClassID)
	return classifyWrite("save product", err)
}

func (r *ParameterRepository) SaveConstraint(ctx context.Context, c domain.ParameterConstraint) error {
	query := r.db.Dialect.upsert("parameter_constraints",
		[]string{"class_id", "parameter_id", "min_val", "max_val", "pattern", "allowed_values"},
		[]string{"class_id", "parameter_id"},
		[]string{"min_val", "max_val", "pattern", "allowed_values"})
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query), c.ClassID, c.ParameterID, c.MinVal, c.MaxVal, c.Pattern, c.AllowedValues)
	return classifyWrite("save parameter constraint", err)
}

func (r *ParameterRepository) ListParameters(ctx context.Context) ([]domain.Parameter, error) {
	out := []domain.Parameter{}
	if err := r.db.SelectContext(ctx, &out, "SELECT id, code, name, type FROM parameters ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list parameters: %w", err)
	}
	return out, nil
}

func (r *ParameterRepository) ListClasses(ctx context.Context) ([]domain.ProductClass, error) {
	out := []domain.ProductClass{}
	if err := r.db.SelectContext(ctx, &out, "SELECT id, code, name, parent_id FROM product_classes ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list product classes: %w", err)
	}
	return out, nil
}
