package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/RealZimboGuy/catalogflow/internal/config"
	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/domain"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	s := config.Settings{
		DatabaseType:        config.DATABASE_TYPE_SQLLITE,
		DatabaseSqlLiteFile: filepath.Join(t.TempDir(), "catalogflow_test.db"),
	}
	require.NoError(t, RunMigrations(s))
	db, err := Open(context.Background(), s)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type testFixture struct {
	db         *DB
	dict       *DictionaryRepository
	templates  *TemplateRepository
	trajectory *TrajectoryRepository
	processes  *ProcessRepository
	dnf        *DNFRepository
	params     *ParameterRepository
	actors     *ActorRepository
	actor      *domain.Actor
}

// newFixture builds template 1 with states draft(1, initial), moderation(2),
// published(3) and transitions 1 -submit-> 2 -approve-> 3.
func newFixture(t *testing.T) *testFixture {
	t.Helper()
	ctx := context.Background()
	db := newTestDB(t)
	clock := fixedClock{testNow}
	fx := &testFixture{
		db:         db,
		dict:       NewDictionaryRepository(db),
		templates:  NewTemplateRepository(db),
		trajectory: NewTrajectoryRepository(db, clock),
		processes:  NewProcessRepository(db),
		dnf:        NewDNFRepository(db),
		params:     NewParameterRepository(db),
		actors:     NewActorRepository(db, clock),
	}

	for _, s := range []domain.State{{ID: 1, Code: "draft", Name: "Draft"}, {ID: 2, Code: "moderation", Name: "Moderation"}, {ID: 3, Code: "published", Name: "Published"}} {
		require.NoError(t, fx.dict.SaveState(ctx, &s))
	}
	for _, d := range []domain.Decision{{ID: 1, Code: "submit", Name: "Submit"}, {ID: 2, Code: "approve", Name: "Approve"}} {
		require.NoError(t, fx.dict.SaveDecision(ctx, &d))
	}
	require.NoError(t, fx.templates.SaveTemplate(ctx, &domain.ProcessTemplate{ID: 1, Code: "inclusion", Name: "Catalog inclusion"}))
	require.NoError(t, fx.templates.SaveTemplateState(ctx, domain.TemplateState{TemplateID: 1, StateID: 1, Initial: true}))
	require.NoError(t, fx.templates.SaveTemplateState(ctx, domain.TemplateState{TemplateID: 1, StateID: 2}))
	require.NoError(t, fx.templates.SaveTemplateState(ctx, domain.TemplateState{TemplateID: 1, StateID: 3}))
	require.NoError(t, fx.templates.SaveDecisionMapEntry(ctx, domain.DecisionMapEntry{TemplateID: 1, StateID: 1, DecisionID: 1, NextStateID: 2}))
	require.NoError(t, fx.templates.SaveDecisionMapEntry(ctx, domain.DecisionMapEntry{TemplateID: 1, StateID: 2, DecisionID: 2, NextStateID: 3}))

	actor, err := fx.actors.Save(ctx, "moderator", "secret")
	require.NoError(t, err)
	fx.actor = actor
	return fx
}

func nullInt(v int64) sql.NullInt64 { return sql.NullInt64{Int64: v, Valid: true} }

func nullStr(v string) sql.NullString { return sql.NullString{String: v, Valid: true} }
