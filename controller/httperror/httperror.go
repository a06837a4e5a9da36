package httperror

import (
	"errors"
	"fmt"
	"net/http"

	"choretracker/scheduler"
	"choretracker/services"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Status maps a service error onto its HTTP status and stable code.
// Unknown errors are internal failures.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, services.ErrDuplicateUsername):
		return http.StatusConflict, "duplicate_username"
	case errors.Is(err, scheduler.ErrResetInProgress):
		return http.StatusConflict, "reset_in_progress"
	case errors.Is(err, services.ErrNotAssigned):
		return http.StatusUnprocessableEntity, "not_assigned"
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	default:
		return http.StatusInternalServerError, "store_failure"
	}
}

// Abort writes the error body and records err on the context for the
// request logger. Internal details are not sent to the client.
func Abort(c *gin.Context, err error) {
	status, code := Status(err)
	_ = c.Error(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	c.AbortWithStatusJSON(status, Response{Error: message, Code: code})
}

// BadRequest reports a binding or parsing failure as invalid input.
func BadRequest(c *gin.Context, err error) {
	Abort(c, fmt.Errorf("%w: %v", services.ErrInvalidInput, err))
}
