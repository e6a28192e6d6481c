package catalogflow

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RealZimboGuy/catalogflow/internal/config"
)

func newApp(t *testing.T, mutate func(*config.Settings)) *App {
	t.Helper()
	s := config.Settings{
		DatabaseType:        config.DATABASE_TYPE_SQLLITE,
		DatabaseSqlLiteFile: filepath.Join(t.TempDir(), "app.db"),
		EnforceStateAccess:  true,
		MetricsEnabled:      true,
	}
	if mutate != nil {
		mutate(&s)
	}
	app, err := New(context.Background(), s, nil)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app
}

func TestApp_HealthAndMetrics(t *testing.T) {
	app := newApp(t, nil)
	srv := httptest.NewServer(app.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/states")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestApp_MetricsDisabled(t *testing.T) {
	app := newApp(t, func(s *config.Settings) { s.MetricsEnabled = false })
	assert.Nil(t, app.Registry)
	assert.Nil(t, app.Metrics)

	srv := httptest.NewServer(app.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestApp_StateAccessToggle(t *testing.T) {
	enforced := newApp(t, nil)
	assert.NotNil(t, enforced.accessChecker())
	assert.NotNil(t, enforced.Driver.Access)

	open := newApp(t, func(s *config.Settings) { s.EnforceStateAccess = false })
	assert.Nil(t, open.accessChecker())
	assert.Nil(t, open.Driver.Access)
}

func TestApp_SeedTwice(t *testing.T) {
	app := newApp(t, nil)
	ctx := context.Background()
	require.NoError(t, app.Seed(ctx))
	require.NoError(t, app.Seed(ctx))

	templates, err := app.Templates.ListTemplates(ctx)
	require.NoError(t, err)
	assert.Len(t, templates, 2)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"WARNING": slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}
