package controllers

import (
	"net/http"

	"github.com/RealZimboGuy/catalogflow/internal/util"
	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/domain"
)

type DictionaryController struct {
	AuthController
	Dictionary DictionaryAdmin
}

func NewDictionaryController(dict DictionaryAdmin, actors ActorAuthenticator) *DictionaryController {
	return &DictionaryController{Dictionary: dict, AuthController: AuthController{Actors: actors}}
}

func (c *DictionaryController) handleListStates(w http.ResponseWriter, r *http.Request) {
	states, err := c.Dictionary.ListStates(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, states)
}

func (c *DictionaryController) handleSaveState(w http.ResponseWriter, r *http.Request) {
	s, err := util.DecodeJSONBody[domain.State](r)
	if err != nil {
		badRequest(w, "invalid JSON payload")
		return
	}
	if err := c.Dictionary.SaveState(r.Context(), &s); err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, s)
}

func (c *DictionaryController) handleDeleteState(w http.ResponseWriter, r *http.Request) {
	id, err := util.PathInt64(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := c.Dictionary.DeleteState(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *DictionaryController) handleListDecisions(w http.ResponseWriter, r *http.Request) {
	decisions, err := c.Dictionary.ListDecisions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, decisions)
}

func (c *DictionaryController) handleSaveDecision(w http.ResponseWriter, r *http.Request) {
	d, err := util.DecodeJSONBody[domain.Decision](r)
	if err != nil {
		badRequest(w, "invalid JSON payload")
		return
	}
	if err := c.Dictionary.SaveDecision(r.Context(), &d); err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, d)
}

func (c *DictionaryController) handleDeleteDecision(w http.ResponseWriter, r *http.Request) {
	id, err := util.PathInt64(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := c.Dictionary.DeleteDecision(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
