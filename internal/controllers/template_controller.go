package controllers

import (
	"net/http"
	"strings"

	"github.com/RealZimboGuy/catalogflow/internal/util"
	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/domain"
	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/models"
)

// TemplateController administers process templates, their states and their
// decision maps.
type TemplateController struct {
	AuthController
	Templates TemplateAdmin
}

func NewTemplateController(templates TemplateAdmin, actors ActorAuthenticator) *TemplateController {
	return &TemplateController{Templates: templates, AuthController: AuthController{Actors: actors}}
}

func (c *TemplateController) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := c.Templates.ListTemplates(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]models.TemplateApi, 0, len(templates))
	for _, t := range templates {
		out = append(out, mapTemplate(t))
	}
	util.WriteJSONResponse(w, http.StatusOK, out)
}

func (c *TemplateController) handleSaveTemplate(w http.ResponseWriter, r *http.Request) {
	req, err := util.DecodeJSONBody[models.TemplateApi](r)
	if err != nil {
		badRequest(w, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Code) == "" || strings.TrimSpace(req.Name) == "" {
		badRequest(w, "code and name are required")
		return
	}
	t := domain.ProcessTemplate{ID: req.ID, Code: req.Code, Name: req.Name, ClassID: nullInt64(req.ClassID)}
	if err := c.Templates.SaveTemplate(r.Context(), &t); err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, mapTemplate(t))
}

func (c *TemplateController) handleListStates(w http.ResponseWriter, r *http.Request) {
	id, err := util.PathInt64(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if _, err := c.Templates.FindTemplate(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	states, err := c.Templates.TemplateStates(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]models.TemplateStateApi, 0, len(states))
	for _, ts := range states {
		out = append(out, mapTemplateState(ts))
	}
	util.WriteJSONResponse(w, http.StatusOK, out)
}

// handleSaveState adds a state to the template or updates its initial flag
// and guard binding.
func (c *TemplateController) handleSaveState(w http.ResponseWriter, r *http.Request) {
	id, err := util.PathInt64(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	req, err := util.DecodeJSONBody[models.TemplateStateApi](r)
	if err != nil || req.StateID <= 0 {
		badRequest(w, "stateId is required")
		return
	}
	ts := domain.TemplateState{
		TemplateID:      id,
		StateID:         req.StateID,
		Initial:         req.Initial,
		GuardFunctionID: nullInt64(req.GuardFunctionID),
	}
	if err := c.Templates.SaveTemplateState(r.Context(), ts); err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, mapTemplateState(ts))
}

func (c *TemplateController) handleListDecisionMap(w http.ResponseWriter, r *http.Request) {
	id, err := util.PathInt64(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if _, err := c.Templates.FindTemplate(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	entries, err := c.Templates.ListDecisionMap(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, mapDecisionMap(entries))
}

func (c *TemplateController) handleSaveDecisionMapEntry(w http.ResponseWriter, r *http.Request) {
	id, err := util.PathInt64(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	req, err := util.DecodeJSONBody[models.DecisionMapEntryApi](r)
	if err != nil || req.StateID <= 0 || req.DecisionID <= 0 || req.NextStateID <= 0 {
		badRequest(w, "stateId, decisionId and nextStateId are required")
		return
	}
	entry := domain.DecisionMapEntry{TemplateID: id, StateID: req.StateID, DecisionID: req.DecisionID, NextStateID: req.NextStateID}
	if err := c.Templates.SaveDecisionMapEntry(r.Context(), entry); err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, req)
}

// handleDeleteDecisionMapEntry removes the edge named by the state and
// decision query parameters.
func (c *TemplateController) handleDeleteDecisionMapEntry(w http.ResponseWriter, r *http.Request) {
	id, err := util.PathInt64(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	stateID, okState, errState := util.QueryInt64(r, "state")
	decisionID, okDecision, errDecision := util.QueryInt64(r, "decision")
	if errState != nil || errDecision != nil || !okState || !okDecision {
		badRequest(w, "state and decision are required")
		return
	}
	if err := c.Templates.DeleteDecisionMapEntry(r.Context(), id, stateID, decisionID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
