package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/RealZimboGuy/catalogflow/internal/util"
	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/domain"
	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/models"
)

// statusFor maps domain errors to HTTP status codes. Anything unrecognised
// is a server fault.
func statusFor(err error) int {
	var rejection *domain.PolicyRejection
	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &rejection):
		return http.StatusUnprocessableEntity
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrReferentialIntegrity):
		return http.StatusConflict
	case errors.Is(err, domain.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNoTrajectory), errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidTemplate):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := models.ErrorResponse{Error: err.Error()}
	var rejection *domain.PolicyRejection
	if errors.As(err, &rejection) {
		resp.Reason = rejection.Reason
	}
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		resp.Error = "internal server error"
	}
	util.WriteJSONResponse(w, status, resp)
}

func badRequest(w http.ResponseWriter, msg string) {
	util.WriteJSONResponse(w, http.StatusBadRequest, models.ErrorResponse{Error: msg})
}
