package handlers

import (
	"errors"
	"net/http"

	"github.com/nusakarya/construction-api/internal/httpx"
	"github.com/nusakarya/construction-api/internal/services"
)

// writeServiceError maps service errors onto the JSON error envelope.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", ve.Violations)
		return
	}
	var ib *services.InsufficientBalanceError
	if errors.As(err, &ib) {
		httpx.JSONError(w, http.StatusBadRequest, "insufficient_balance", map[string]any{
			"accountName":     ib.AccountName,
			"currentBalance":  ib.Available,
			"requestedAmount": ib.Required,
			"shortfall":       ib.Shortfall(),
		})
		return
	}
	switch {
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, services.ErrInvalidTransition):
		httpx.JSONError(w, http.StatusConflict, "invalid_transition", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
