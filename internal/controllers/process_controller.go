package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/RealZimboGuy/catalogflow/internal/engine"
	"github.com/RealZimboGuy/catalogflow/internal/util"
	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/core"
	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/domain"
	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/models"
)

// ProcessController serves process lifecycle endpoints.
type ProcessController struct {
	AuthController
	Driver    ProcessDriver
	Processes ProcessFinder
	// Access is nil when state access is not enforced.
	Access engine.AccessChecker
}

func NewProcessController(driver ProcessDriver, processes ProcessFinder, access engine.AccessChecker, actors ActorAuthenticator) *ProcessController {
	return &ProcessController{
		Driver:         driver,
		Processes:      processes,
		Access:         access,
		AuthController: AuthController{Actors: actors},
	}
}

func (c *ProcessController) handleCreateProcess(w http.ResponseWriter, r *http.Request) {
	req, err := util.DecodeJSONBody[models.CreateProcessRequest](r)
	if err != nil {
		badRequest(w, "invalid JSON payload")
		return
	}
	if req.TemplateID <= 0 || strings.TrimSpace(req.SubjectID) == "" {
		badRequest(w, "templateId and subjectId are required")
		return
	}
	actorID, _ := core.ActorIDFromContext(r.Context())

	id, err := c.Driver.StartProcess(r.Context(), req.TemplateID, req.SubjectID, actorID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusCreated, models.CreateProcessResponse{ID: id})
}

// handleListProcesses lists the processes of one subject, optionally of one
// template.
func (c *ProcessController) handleListProcesses(w http.ResponseWriter, r *http.Request) {
	subject := strings.TrimSpace(r.URL.Query().Get("subject"))
	if subject == "" {
		badRequest(w, "subject is required")
		return
	}
	templateID, filter, err := util.QueryInt64(r, "template")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	procs, err := c.Processes.FindBySubject(r.Context(), subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]models.ProcessApiResponse, 0, len(procs))
	for _, p := range procs {
		if filter && p.TemplateID != templateID {
			continue
		}
		current, err := c.Driver.CurrentState(r.Context(), p.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		out = append(out, mapProcess(p, current))
	}
	util.WriteJSONResponse(w, http.StatusOK, out)
}

func (c *ProcessController) handleGetProcess(w http.ResponseWriter, r *http.Request) {
	id, err := util.PathInt64(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	proc, err := c.Driver.Process(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	current, err := c.Driver.CurrentState(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, mapProcess(*proc, current))
}

func (c *ProcessController) handleDeleteProcess(w http.ResponseWriter, r *http.Request) {
	id, err := util.PathInt64(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := c.Driver.DeleteProcess(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *ProcessController) handleGetTrajectory(w http.ResponseWriter, r *http.Request) {
	id, err := util.PathInt64(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	steps, err := c.Driver.History(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]models.TrajectoryStepApi, 0, len(steps))
	for _, s := range steps {
		out = append(out, mapStep(s))
	}
	util.WriteJSONResponse(w, http.StatusOK, out)
}

func (c *ProcessController) handleGetCurrent(w http.ResponseWriter, r *http.Request) {
	id, err := util.PathInt64(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	step, err := c.Driver.CurrentState(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if step == nil {
		writeError(w, r, domain.ErrNoTrajectory)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, mapStep(*step))
}

func (c *ProcessController) handleGetDecisions(w http.ResponseWriter, r *http.Request) {
	id, err := util.PathInt64(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	entries, err := c.Driver.AvailableDecisions(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, mapDecisionMap(entries))
}

func (c *ProcessController) handleDecide(w http.ResponseWriter, r *http.Request) {
	id, err := util.PathInt64(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	req, err := util.DecodeJSONBody[models.DecideRequest](r)
	if err != nil || req.DecisionID <= 0 {
		badRequest(w, "decisionId is required")
		return
	}
	actorID, _ := core.ActorIDFromContext(r.Context())

	outcome, err := c.Driver.SubmitDecision(r.Context(), id, req.DecisionID, actorID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, outcome)
}

// handleAuthorize is a dry run of a decision: nothing is recorded.
func (c *ProcessController) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	id, err := util.PathInt64(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	decisionID, ok, err := util.QueryInt64(r, "decision")
	if err != nil || !ok {
		badRequest(w, "decision is required")
		return
	}
	res, err := c.Driver.Check(r.Context(), id, decisionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, models.AuthorizeResponse{
		Allowed:     res.Allowed,
		NextStateID: res.NextStateID,
		Reason:      res.Reason,
	})
}

// handleGetAccess reports whether the caller may act on the current state of
// the process.
func (c *ProcessController) handleGetAccess(w http.ResponseWriter, r *http.Request) {
	id, err := util.PathInt64(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	proc, err := c.Driver.Process(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	step, err := c.Driver.CurrentState(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if step == nil {
		util.WriteJSONResponse(w, http.StatusOK, models.AccessResponse{Reason: "process has no trajectory"})
		return
	}
	if c.Access == nil {
		util.WriteJSONResponse(w, http.StatusOK, models.AccessResponse{HasAccess: true, Reason: "state access is not enforced"})
		return
	}

	actorID, _ := core.ActorIDFromContext(r.Context())
	ok, err := c.Access.CanActOn(r.Context(), actorID, proc.TemplateID, step.StateID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := models.AccessResponse{HasAccess: ok}
	if !ok {
		resp.Reason = "no group of the actor has access to the current state"
		slog.DebugContext(r.Context(), "Access check negative", "process_id", id, "state_id", step.StateID, "actor_id", actorID)
	}
	util.WriteJSONResponse(w, http.StatusOK, resp)
}
