package controllers

import (
	"net/http"
	"strings"

	"github.com/RealZimboGuy/catalogflow/internal/util"
	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/domain"
	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/models"
)

// DNFController administers guard functions, predicates and formula rows.
type DNFController struct {
	AuthController
	DNF      DNFAdmin
	Formulas FormulaEvaluator
}

func NewDNFController(dnf DNFAdmin, formulas FormulaEvaluator, actors ActorAuthenticator) *DNFController {
	return &DNFController{DNF: dnf, Formulas: formulas, AuthController: AuthController{Actors: actors}}
}

func (c *DNFController) handleListFunctions(w http.ResponseWriter, r *http.Request) {
	fns, err := c.DNF.ListGuardFunctions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, fns)
}

func (c *DNFController) handleSaveFunction(w http.ResponseWriter, r *http.Request) {
	fn, err := util.DecodeJSONBody[domain.GuardFunction](r)
	if err != nil {
		badRequest(w, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(fn.Name) == "" {
		badRequest(w, "name is required")
		return
	}
	if err := c.DNF.SaveGuardFunction(r.Context(), &fn); err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, fn)
}

func (c *DNFController) handleListPredicates(w http.ResponseWriter, r *http.Request) {
	preds, err := c.DNF.ListPredicates(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]models.PredicateApi, 0, len(preds))
	for _, p := range preds {
		out = append(out, mapPredicate(p))
	}
	util.WriteJSONResponse(w, http.StatusOK, out)
}

func (c *DNFController) handleCreatePredicate(w http.ResponseWriter, r *http.Request) {
	req, err := util.DecodeJSONBody[models.PredicateApi](r)
	if err != nil {
		badRequest(w, "invalid JSON payload")
		return
	}
	p, err := predicateFromApi(req)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := c.DNF.SavePredicate(r.Context(), &p); err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusCreated, mapPredicate(p))
}

func (c *DNFController) handleDeletePredicate(w http.ResponseWriter, r *http.Request) {
	id, err := util.PathInt64(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := c.DNF.DeletePredicate(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *DNFController) handleGetFormula(w http.ResponseWriter, r *http.Request) {
	fnID, err := util.PathInt64(r, "funcId")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if _, err := c.DNF.FindGuardFunction(r.Context(), fnID); err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := c.DNF.FindFormulaRows(r.Context(), fnID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := models.FormulaApi{FunctionID: fnID, Rows: make([]models.FormulaRowApi, 0, len(rows))}
	for _, row := range rows {
		out.Rows = append(out.Rows, models.FormulaRowApi{Disjunction: row.Disjunction, Conjunction: row.Conjunction, PredicateID: row.PredicateID})
	}
	util.WriteJSONResponse(w, http.StatusOK, out)
}

// handleReplaceFormula swaps every row of the formula for the posted ones.
func (c *DNFController) handleReplaceFormula(w http.ResponseWriter, r *http.Request) {
	fnID, err := util.PathInt64(r, "funcId")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	req, err := util.DecodeJSONBody[models.FormulaApi](r)
	if err != nil {
		badRequest(w, "invalid JSON payload")
		return
	}
	if _, err := c.DNF.FindGuardFunction(r.Context(), fnID); err != nil {
		writeError(w, r, err)
		return
	}
	rows := make([]domain.FormulaRow, 0, len(req.Rows))
	for _, row := range req.Rows {
		if row.Disjunction < 1 || row.Conjunction < 1 || row.PredicateID <= 0 {
			badRequest(w, "disjunction, conjunction and predicateId must be positive")
			return
		}
		rows = append(rows, domain.FormulaRow{FunctionID: fnID, Disjunction: row.Disjunction, Conjunction: row.Conjunction, PredicateID: row.PredicateID})
	}
	if err := c.DNF.ReplaceFormula(r.Context(), fnID, rows); err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, models.OkResponse{OK: true})
}

func (c *DNFController) handleDeleteFormula(w http.ResponseWriter, r *http.Request) {
	fnID, err := util.PathInt64(r, "funcId")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := c.DNF.DeleteFormula(r.Context(), fnID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *DNFController) handleEvaluateFormula(w http.ResponseWriter, r *http.Request) {
	fnID, err := util.PathInt64(r, "funcId")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	processID, _, err := util.QueryInt64(r, "process")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	subject := r.URL.Query().Get("subject")

	ok, err := c.Formulas.EvaluateFormula(r.Context(), fnID, processID, subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, models.EvaluateResponse{
		FunctionID: fnID,
		ProcessID:  processID,
		SubjectID:  subject,
		Result:     ok,
	})
}
