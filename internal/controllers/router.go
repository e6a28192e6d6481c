package controllers

import "net/http"

// RegisterRoutes wires the HTTP routes for this controller.
func (c *ProcessController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/processes", c.RequireAuth(c.handleCreateProcess))
	mux.HandleFunc("GET /api/processes", c.RequireAuth(c.handleListProcesses))
	mux.HandleFunc("GET /api/processes/{id}", c.RequireAuth(c.handleGetProcess))
	mux.HandleFunc("DELETE /api/processes/{id}", c.RequireAuth(c.handleDeleteProcess))
	mux.HandleFunc("GET /api/processes/{id}/trajectory", c.RequireAuth(c.handleGetTrajectory))
	mux.HandleFunc("GET /api/processes/{id}/current", c.RequireAuth(c.handleGetCurrent))
	mux.HandleFunc("GET /api/processes/{id}/decisions", c.RequireAuth(c.handleGetDecisions))
	mux.HandleFunc("POST /api/processes/{id}/decide", c.RequireAuth(c.handleDecide))
	mux.HandleFunc("GET /api/processes/{id}/authorize", c.RequireAuth(c.handleAuthorize))
	mux.HandleFunc("GET /api/processes/{id}/access", c.RequireAuth(c.handleGetAccess))
}
func (c *DNFController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/dnf/functions", c.RequireAuth(c.handleListFunctions))
	mux.HandleFunc("POST /api/dnf/functions", c.RequireAuth(c.handleSaveFunction))
	mux.HandleFunc("GET /api/dnf/predicates", c.RequireAuth(c.handleListPredicates))
	mux.HandleFunc("POST /api/dnf/predicates", c.RequireAuth(c.handleCreatePredicate))
	mux.HandleFunc("DELETE /api/dnf/predicates/{id}", c.RequireAuth(c.handleDeletePredicate))
	mux.HandleFunc("GET /api/dnf/formulas/{funcId}", c.RequireAuth(c.handleGetFormula))
	mux.HandleFunc("POST /api/dnf/formulas/{funcId}", c.RequireAuth(c.handleReplaceFormula))
	mux.HandleFunc("DELETE /api/dnf/formulas/{funcId}", c.RequireAuth(c.handleDeleteFormula))
	mux.HandleFunc("GET /api/dnf/formulas/{funcId}/evaluate", c.RequireAuth(c.handleEvaluateFormula))
}
func (c *DictionaryController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/states", c.RequireAuth(c.handleListStates))
	mux.HandleFunc("POST /api/states", c.RequireAuth(c.handleSaveState))
	mux.HandleFunc("DELETE /api/states/{id}", c.RequireAuth(c.handleDeleteState))
	mux.HandleFunc("GET /api/decisions", c.RequireAuth(c.handleListDecisions))
	mux.HandleFunc("POST /api/decisions", c.RequireAuth(c.handleSaveDecision))
	mux.HandleFunc("DELETE /api/decisions/{id}", c.RequireAuth(c.handleDeleteDecision))
}
func (c *TemplateController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/templates", c.RequireAuth(c.handleListTemplates))
	mux.HandleFunc("POST /api/templates", c.RequireAuth(c.handleSaveTemplate))
	mux.HandleFunc("GET /api/templates/{id}/states", c.RequireAuth(c.handleListStates))
	mux.HandleFunc("POST /api/templates/{id}/states", c.RequireAuth(c.handleSaveState))
	mux.HandleFunc("GET /api/templates/{id}/decisions", c.RequireAuth(c.handleListDecisionMap))
	mux.HandleFunc("POST /api/templates/{id}/decisions", c.RequireAuth(c.handleSaveDecisionMapEntry))
	mux.HandleFunc("DELETE /api/templates/{id}/decisions", c.RequireAuth(c.handleDeleteDecisionMapEntry))
}
func (c *ProductController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/classes", c.RequireAuth(c.handleListClasses))
	mux.HandleFunc("POST /api/classes", c.RequireAuth(c.handleSaveClass))
	mux.HandleFunc("PUT /api/classes/{id}/constraints/{parId}", c.RequireAuth(c.handleSaveConstraint))
	mux.HandleFunc("GET /api/parameters", c.RequireAuth(c.handleListParameters))
	mux.HandleFunc("POST /api/parameters", c.RequireAuth(c.handleSaveParameter))
	mux.HandleFunc("POST /api/products", c.RequireAuth(c.handleSaveProduct))
	mux.HandleFunc("GET /api/products/{id}", c.RequireAuth(c.handleGetProduct))
	mux.HandleFunc("GET /api/products/{id}/parameters", c.RequireAuth(c.handleListValues))
	mux.HandleFunc("PUT /api/products/{id}/parameters/{parId}", c.RequireAuth(c.handleSaveValue))
}
