package catalogflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/RealZimboGuy/catalogflow/internal/config"
	"github.com/RealZimboGuy/catalogflow/internal/controllers"
	"github.com/RealZimboGuy/catalogflow/internal/engine"
	"github.com/RealZimboGuy/catalogflow/internal/metrics"
	"github.com/RealZimboGuy/catalogflow/internal/repository"
	"github.com/RealZimboGuy/catalogflow/internal/seed"
	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/core"
)

// App is a fully wired catalogflow instance over one database.
type App struct {
	Settings config.Settings
	DB       *repository.DB
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Dictionary *repository.DictionaryRepository
	Templates  *repository.TemplateRepository
	Trajectory *repository.TrajectoryRepository
	Processes  *repository.ProcessRepository
	DNF        *repository.DNFRepository
	Parameters *repository.ParameterRepository
	Actors     *repository.ActorRepository

	Formulas *engine.FormulaEvaluator
	Driver   *engine.Driver
}

// New migrates the configured database, opens it and wires the engine on
// top of the SQL repositories.
func New(ctx context.Context, s config.Settings, clock core.Clock) (*App, error) {
	if err := repository.RunMigrations(s); err != nil {
		return nil, err
	}
	db, err := repository.Open(ctx, s)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = core.NewRealClock()
	}

	app := &App{
		Settings:   s,
		DB:         db,
		Dictionary: repository.NewDictionaryRepository(db),
		Templates:  repository.NewTemplateRepository(db),
		Trajectory: repository.NewTrajectoryRepository(db, clock),
		Processes:  repository.NewProcessRepository(db),
		DNF:        repository.NewDNFRepository(db),
		Parameters: repository.NewParameterRepository(db),
		Actors:     repository.NewActorRepository(db, clock),
	}
	if s.MetricsEnabled {
		app.Registry = prometheus.NewRegistry()
		app.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		app.Metrics = metrics.InitMetrics(app.Registry)
	}

	predicates := engine.NewPredicateEvaluator(app.Trajectory, app.Parameters)
	app.Formulas = engine.NewFormulaEvaluator(app.DNF, predicates, s.GuardParallel, app.Metrics)
	authorizer := engine.NewAuthorizer(app.Templates, app.Templates, app.Formulas)
	app.Driver = engine.NewDriver(app.Processes, app.Trajectory, app.Templates, authorizer, app.Dictionary, app.accessChecker(), app.Metrics)
	return app, nil
}

// accessChecker returns nil when state access is not enforced.
func (a *App) accessChecker() engine.AccessChecker {
	if !a.Settings.EnforceStateAccess {
		return nil
	}
	return a.Actors
}

// Seed writes the built-in templates, dictionaries and decision map.
func (a *App) Seed(ctx context.Context) error {
	return seed.Apply(ctx, a.Dictionary, a.Templates, a.Actors)
}

// RegisterRoutes adds the API, health and metrics endpoints to mux.
func (a *App) RegisterRoutes(mux *http.ServeMux) {
	controllers.NewProcessController(a.Driver, a.Processes, a.accessChecker(), a.Actors).RegisterRoutes(mux)
	controllers.NewDNFController(a.DNF, a.Formulas, a.Actors).RegisterRoutes(mux)
	controllers.NewDictionaryController(a.Dictionary, a.Actors).RegisterRoutes(mux)
	controllers.NewTemplateController(a.Templates, a.Actors).RegisterRoutes(mux)
	controllers.NewProductController(a.Parameters, a.Actors).RegisterRoutes(mux)

	mux.HandleFunc("GET /health", a.handleHealth)
	if a.Registry != nil {
		mux.Handle("GET /metrics", metrics.Handler(a.Registry))
	}
}

// Handler returns the routed API wrapped in request metrics.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	a.RegisterRoutes(mux)
	return a.Metrics.Middleware(mux)
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.DB.PingContext(ctx); err != nil {
		slog.ErrorContext(ctx, "Health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (a *App) Close() error {
	return a.DB.Close()
}

// Start boots catalogflow and serves HTTP until ctx is cancelled.
func Start(ctx context.Context, s config.Settings) error {
	app, err := New(ctx, s, nil)
	if err != nil {
		return err
	}
	defer app.Close()

	if s.SeedOnStart {
		if err := app.Seed(ctx); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	srv := &http.Server{
		Addr:              ":" + s.ServerWebPort,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "addr", srv.Addr,
			"enforce_state_access", s.EnforceStateAccess, "guard_parallel", s.GuardParallel)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		slog.Error("HTTP server failed", "error", err)
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// SetupLogger installs a tint handler on the default slog logger.
func SetupLogger(level string) {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      parseLevel(level),
			TimeFormat: time.RFC3339Nano,
		}),
	))
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	}
	return slog.LevelInfo
}
