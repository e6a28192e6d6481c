package common

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RealZimboGuy/catalogflow/internal/config"
	"github.com/RealZimboGuy/catalogflow/internal/engine"
	"github.com/RealZimboGuy/catalogflow/internal/seed"
	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow"
	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/models"
	"github.com/RealZimboGuy/catalogflow/test/integration"
)

// Catalog decisions and states used by the scenarios, as seeded.
const (
	decisionSubmit  = 1
	decisionApprove = 2
	decisionPause   = 6
	decisionArchive = 8

	stateDraft      = 1
	stateModeration = 2
	statePublished  = 3
)

// Env is a running catalogflow server with two actors: Admin belongs to the
// seeded admin group, Outsider to no group.
type Env struct {
	App      *catalogflow.App
	Server   *httptest.Server
	Clock    *integration.FakeClock
	Admin    *Client
	Outsider *Client
}

// StartEnv boots catalogflow against the database in s, seeds it and serves
// it on a test server.
func StartEnv(t *testing.T, s config.Settings) *Env {
	t.Helper()
	ctx := t.Context()
	clock := integration.NewFakeClock(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))

	app, err := catalogflow.New(ctx, s, clock)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	require.NoError(t, app.Seed(ctx))

	admin, err := app.Actors.Save(ctx, "moderator", "moderator-key")
	require.NoError(t, err)
	outsider, err := app.Actors.Save(ctx, "visitor", "visitor-key")
	require.NoError(t, err)
	group, err := app.Actors.FindGroupByName(ctx, seed.AdminGroup)
	require.NoError(t, err)
	require.NoError(t, app.Actors.AddMember(ctx, group.ID, admin.ID))

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)

	return &Env{
		App:      app,
		Server:   srv,
		Clock:    clock,
		Admin:    NewClient(srv.URL, admin.ID, "moderator-key"),
		Outsider: NewClient(srv.URL, outsider.ID, "visitor-key"),
	}
}

func (e *Env) startProcess(t *testing.T, subject string) int64 {
	t.Helper()
	var created models.CreateProcessResponse
	e.Admin.DoJSON(t, http.MethodPost, "/api/processes",
		models.CreateProcessRequest{TemplateID: seed.TemplateCatalogInclusion, SubjectID: subject},
		http.StatusCreated, &created)
	return created.ID
}

func (e *Env) decide(t *testing.T, c *Client, processID, decisionID int64) (int, []byte) {
	t.Helper()
	e.Clock.Add(time.Minute)
	return c.Do(t, http.MethodPost, fmt.Sprintf("/api/processes/%d/decide", processID), models.DecideRequest{DecisionID: decisionID})
}

func (e *Env) trajectory(t *testing.T, processID int64) []models.TrajectoryStepApi {
	t.Helper()
	var steps []models.TrajectoryStepApi
	e.Admin.DoJSON(t, http.MethodGet, fmt.Sprintf("/api/processes/%d/trajectory", processID), nil, http.StatusOK, &steps)
	return steps
}

// RunLifecycle walks a catalog inclusion process from draft to published,
// checking rejections leave the trajectory untouched.
func RunLifecycle(t *testing.T, e *Env) {
	id := e.startProcess(t, "sku-lifecycle")

	var current models.TrajectoryStepApi
	e.Admin.DoJSON(t, http.MethodGet, fmt.Sprintf("/api/processes/%d/current", id), nil, http.StatusOK, &current)
	assert.Equal(t, int64(stateDraft), current.StateID)
	assert.Equal(t, 1, current.Position)

	var available []models.DecisionMapEntryApi
	e.Admin.DoJSON(t, http.MethodGet, fmt.Sprintf("/api/processes/%d/decisions", id), nil, http.StatusOK, &available)
	assert.Len(t, available, 2)

	status, _ := e.decide(t, e.Outsider, id, decisionSubmit)
	assert.Equal(t, http.StatusForbidden, status)

	status, raw := e.decide(t, e.Admin, id, decisionApprove)
	require.Equal(t, http.StatusUnprocessableEntity, status, string(raw))
	assert.Contains(t, string(raw), engine.ReasonTransitionUndefined)
	assert.Len(t, e.trajectory(t, id), 1)

	var outcome engine.TransitionOutcome
	status, raw = e.decide(t, e.Admin, id, decisionSubmit)
	require.Equal(t, http.StatusOK, status, string(raw))
	require.NoError(t, json.Unmarshal(raw, &outcome))
	assert.Equal(t, int64(stateModeration), outcome.NewStateID)
	assert.Equal(t, 2, outcome.Position)

	status, raw = e.decide(t, e.Admin, id, decisionApprove)
	require.Equal(t, http.StatusOK, status, string(raw))

	steps := e.trajectory(t, id)
	require.Len(t, steps, 3)
	assert.Equal(t, []int64{stateDraft, stateModeration, statePublished}, []int64{steps[0].StateID, steps[1].StateID, steps[2].StateID})
	require.NotNil(t, steps[0].DecisionID)
	require.NotNil(t, steps[1].DecisionID)
	assert.Equal(t, int64(decisionSubmit), *steps[0].DecisionID)
	assert.Equal(t, int64(decisionApprove), *steps[1].DecisionID)
	assert.Nil(t, steps[2].DecisionID)
	assert.True(t, steps[1].DateTime.After(steps[0].DateTime))

	var procs []models.ProcessApiResponse
	e.Admin.DoJSON(t, http.MethodGet, "/api/processes?subject=sku-lifecycle", nil, http.StatusOK, &procs)
	require.Len(t, procs, 1)
	require.NotNil(t, procs[0].CurrentStateID)
	assert.Equal(t, int64(statePublished), *procs[0].CurrentStateID)

	status, _ = e.Admin.Do(t, http.MethodDelete, fmt.Sprintf("/api/processes/%d", id), nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = e.Admin.Do(t, http.MethodGet, fmt.Sprintf("/api/processes/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, status)
}

// RunParameterGuard binds a guard on the draft state that requires a valid
// weight parameter and checks submissions follow the product data.
func RunParameterGuard(t *testing.T, e *Env) {
	var class models.ProductClassApi
	e.Admin.DoJSON(t, http.MethodPost, "/api/classes", models.ProductClassApi{Code: "phones", Name: "Phones"}, http.StatusOK, &class)
	var weight models.ParameterApi
	e.Admin.DoJSON(t, http.MethodPost, "/api/parameters", models.ParameterApi{Code: "weight", Name: "Weight", Type: "number"}, http.StatusOK, &weight)
	lo, hi := "100", "300"
	e.Admin.DoJSON(t, http.MethodPut, fmt.Sprintf("/api/classes/%d/constraints/%d", class.ID, weight.ID),
		models.ConstraintApi{MinVal: &lo, MaxVal: &hi}, http.StatusOK, nil)
	e.Admin.DoJSON(t, http.MethodPost, "/api/products", models.ProductApi{ID: "sku-guard", Name: "Phone", ClassID: class.ID}, http.StatusOK, nil)

	heavy := "500"
	e.Admin.DoJSON(t, http.MethodPut, fmt.Sprintf("/api/products/sku-guard/parameters/%d", weight.ID),
		models.ParameterValueApi{Value: &heavy}, http.StatusOK, nil)

	var fn struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	e.Admin.DoJSON(t, http.MethodPost, "/api/dnf/functions", map[string]string{"name": "weight within limits"}, http.StatusOK, &fn)
	var pred models.PredicateApi
	e.Admin.DoJSON(t, http.MethodPost, "/api/dnf/predicates", models.PredicateApi{ParameterID: &weight.ID}, http.StatusCreated, &pred)
	e.Admin.DoJSON(t, http.MethodPost, fmt.Sprintf("/api/dnf/formulas/%d", fn.ID),
		models.FormulaApi{Rows: []models.FormulaRowApi{{Disjunction: 1, Conjunction: 1, PredicateID: pred.ID}}}, http.StatusOK, nil)
	e.Admin.DoJSON(t, http.MethodPost, fmt.Sprintf("/api/templates/%d/states", seed.TemplateCatalogInclusion),
		models.TemplateStateApi{StateID: stateDraft, Initial: true, GuardFunctionID: &fn.ID}, http.StatusOK, nil)

	id := e.startProcess(t, "sku-guard")

	var check models.AuthorizeResponse
	e.Admin.DoJSON(t, http.MethodGet, fmt.Sprintf("/api/processes/%d/authorize?decision=%d", id, decisionSubmit), nil, http.StatusOK, &check)
	assert.False(t, check.Allowed)
	assert.Equal(t, engine.ReasonGuardNotSatisfied, check.Reason)

	status, raw := e.decide(t, e.Admin, id, decisionSubmit)
	require.Equal(t, http.StatusUnprocessableEntity, status, string(raw))
	assert.Contains(t, string(raw), engine.ReasonGuardNotSatisfied)
	assert.Len(t, e.trajectory(t, id), 1)

	fits := "150"
	e.Admin.DoJSON(t, http.MethodPut, fmt.Sprintf("/api/products/sku-guard/parameters/%d", weight.ID),
		models.ParameterValueApi{Value: &fits}, http.StatusOK, nil)

	var eval models.EvaluateResponse
	e.Admin.DoJSON(t, http.MethodGet, fmt.Sprintf("/api/dnf/formulas/%d/evaluate?process=%d&subject=sku-guard", fn.ID, id), nil, http.StatusOK, &eval)
	assert.True(t, eval.Result)

	status, raw = e.decide(t, e.Admin, id, decisionSubmit)
	require.Equal(t, http.StatusOK, status, string(raw))

	// the formula still references the predicate
	status, _ = e.Admin.Do(t, http.MethodDelete, fmt.Sprintf("/api/dnf/predicates/%d", pred.ID), nil)
	assert.Equal(t, http.StatusConflict, status)

	e.Admin.DoJSON(t, http.MethodPost, fmt.Sprintf("/api/templates/%d/states", seed.TemplateCatalogInclusion),
		models.TemplateStateApi{StateID: stateDraft, Initial: true}, http.StatusOK, nil)
}

// RunConcurrentDecisions submits the same decision twice at once. Exactly
// one is applied; the other loses the race or finds the transition gone.
func RunConcurrentDecisions(t *testing.T, e *Env) {
	id := e.startProcess(t, "sku-race")
	for _, d := range []int64{decisionSubmit, decisionApprove} {
		status, raw := e.decide(t, e.Admin, id, d)
		require.Equal(t, http.StatusOK, status, string(raw))
	}

	const racers = 2
	statuses := make([]int, racers)
	var wg sync.WaitGroup
	for i := range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			statuses[i], _ = e.Admin.Do(t, http.MethodPost, fmt.Sprintf("/api/processes/%d/decide", id), models.DecideRequest{DecisionID: decisionPause})
		}()
	}
	wg.Wait()

	applied := 0
	for _, s := range statuses {
		switch s {
		case http.StatusOK:
			applied++
		case http.StatusConflict, http.StatusUnprocessableEntity:
		default:
			t.Errorf("unexpected status %d", s)
		}
	}
	assert.Equal(t, 1, applied, "statuses %v", statuses)
	assert.Len(t, e.trajectory(t, id), 4)

	// archive is defined from paused
	status, raw := e.decide(t, e.Admin, id, decisionArchive)
	require.Equal(t, http.StatusOK, status, string(raw))
}

// RunOperationalEndpoints checks health and the decision metrics.
func RunOperationalEndpoints(t *testing.T, e *Env) {
	resp, err := http.Get(e.Server.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(e.Server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := new(strings.Builder)
	_, err = io.Copy(body, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), `catalogflow_decisions_total{outcome="applied"}`)
	assert.Contains(t, body.String(), "catalogflow_processes_started_total")
}

// RunAll runs every scenario against one environment.
func RunAll(t *testing.T, e *Env) {
	t.Run("lifecycle", func(t *testing.T) { RunLifecycle(t, e) })
	t.Run("parameter guard", func(t *testing.T) { RunParameterGuard(t, e) })
	t.Run("concurrent decisions", func(t *testing.T) { RunConcurrentDecisions(t, e) })
	t.Run("operational endpoints", func(t *testing.T) { RunOperationalEndpoints(t, e) })
}
