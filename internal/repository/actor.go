package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/core"
	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/domain"
)

// ActorRepository stores actors, their groups and the states each group may
// act on.
type ActorRepository struct {
	db    *DB
	clock core.Clock
}

func NewActorRepository(db *DB, clock core.Clock) *ActorRepository {
	return &ActorRepository{db: db, clock: clock}
}

// Save creates an actor. A non empty apiKey is stored as a bcrypt hash.
func (r *ActorRepository) Save(ctx context.Context, name, apiKey string) (*domain.Actor, error) {
	if name == "" {
		return nil, fmt.Errorf("actor name is required: %w", domain.ErrInvalidArgument)
	}
	a := domain.Actor{Name: name, Created: r.clock.Now().UTC(), Enabled: true}
	if apiKey != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash api key: %w", err)
		}
		a.ApiKeyHash = sql.NullString{String: string(hash), Valid: true}
	}
	id, err := r.db.insertReturningID(ctx, r.db,
		"INSERT INTO actors (name, api_key_hash, created, enabled) VALUES (?, ?, ?, ?)",
		a.Name, a.ApiKeyHash, a.Created, a.Enabled)
	if err != nil {
		return nil, classifyWrite("save actor", err)
	}
	a.ID = id
	return &a, nil
}

func (r *ActorRepository) FindByID(ctx context.Context, actorID int64) (*domain.Actor, error) {
	var a domain.Actor
	err := r.db.GetContext(ctx, &a, r.db.Rebind(
		"SELECT id, name, api_key_hash, created, enabled FROM actors WHERE id = ?"), actorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("actor %d", actorID)
	}
	if err != nil {
		return nil, fmt.Errorf("load actor: %w", err)
	}
	return &a, nil
}

func (r *ActorRepository) FindByName(ctx context.Context, name string) (*domain.Actor, error) {
	var a domain.Actor
	err := r.db.GetContext(ctx, &a, r.db.Rebind(
		"SELECT id, name, api_key_hash, created, enabled FROM actors WHERE name = ?"), name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("actor %s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("load actor: %w", err)
	}
	return &a, nil
}

// Authenticate returns the enabled actor whose key matches apiKey.
func (r *ActorRepository) Authenticate(ctx context.Context, actorID int64, apiKey string) (*domain.Actor, error) {
	a, err := r.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !a.Enabled || !a.ApiKeyHash.Valid {
		return nil, domain.ErrAccessDenied
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.ApiKeyHash.String), []byte(apiKey)); err != nil {
		return nil, domain.ErrAccessDenied
	}
	return a, nil
}

func (r *ActorRepository) SaveGroup(ctx context.Context, name string) (*domain.ActorGroup, error) {
	id, err := r.db.insertReturningID(ctx, r.db, "INSERT INTO actor_groups (name) VALUES (?)", name)
	if err != nil {
		return nil, classifyWrite("save actor group", err)
	}
	return &domain.ActorGroup{ID: id, Name: name}, nil
}

func (r *ActorRepository) FindGroupByName(ctx context.Context, name string) (*domain.ActorGroup, error) {
	var g domain.ActorGroup
	err := r.db.GetContext(ctx, &g, r.db.Rebind("SELECT id, name FROM actor_groups WHERE name = ?"), name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("actor group %s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("load actor group: %w", err)
	}
	return &g, nil
}

func (r *ActorRepository) AddMember(ctx context.Context, groupID, actorID int64) error {
	query := r.db.Dialect.upsert("group_members", []string{"group_id", "actor_id"}, []string{"group_id", "actor_id"}, nil)
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query), groupID, actorID)
	return classifyWrite("add group member", err)
}

// GrantAccess lets the members of a group act on a template state.
func (r *ActorRepository) GrantAccess(ctx context.Context, groupID, templateID, stateID int64) error {
	query := r.db.Dialect.upsert("state_access",
		[]string{"group_id", "template_id", "state_id"}, []string{"group_id", "template_id", "state_id"}, nil)
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query), groupID, templateID, stateID)
	return classifyWrite("grant state access", err)
}

func (r *ActorRepository) CanActOn(ctx context.Context, actorID, templateID, stateID int64) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`
		SELECT COUNT(1)
		FROM state_access sa
		JOIN group_members gm ON gm.group_id = sa.group_id
		WHERE gm.actor_id = ? AND sa.template_id = ? AND sa.state_id = ?`),
		actorID, templateID, stateID)
	if err != nil {
		return false, fmt.Errorf("check state access: %w", err)
	}
	return n > 0, nil
}
