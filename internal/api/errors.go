package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/vaultflow/internal/api/shared"
	"github.com/phrazzld/vaultflow/internal/flow"
	"github.com/phrazzld/vaultflow/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, flow.ErrFlowNotFound):
		return http.StatusNotFound

	case errors.Is(err, flow.ErrFlowClosed),
		errors.Is(err, flow.ErrNoScreen):
		return http.StatusConflict

	case errors.Is(err, flow.ErrInvalidEntry),
		errors.Is(err, flow.ErrInvalidIntent),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	case errors.Is(err, flow.ErrTooManyFlows):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err that never
// includes internal details.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return "An unexpected error occurred"
	case errors.Is(err, flow.ErrFlowNotFound):
		return "Flow not found"
	case errors.Is(err, flow.ErrFlowClosed):
		return "Flow is closed"
	case errors.Is(err, flow.ErrNoScreen):
		return "Flow has no screen"
	case errors.Is(err, flow.ErrInvalidEntry):
		return "Invalid entry"
	case errors.Is(err, flow.ErrInvalidIntent):
		return "Intent must name a screen"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid state data"
	case errors.Is(err, flow.ErrTooManyFlows):
		return "Too many active flows, try again later"
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the response for err.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}

// SanitizeValidationError turns a validation error into a message naming the
// offending field and rule, without echoing the submitted value.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, "Invalid "+fe.Field()+": "+getValidationTagMessage(fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "max":
		return "too long"
	case "min":
		return "too short"
	case "url":
		return "invalid URL"
	default:
		return "validation failed"
	}
}
