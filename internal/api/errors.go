package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/ticketdesk/backend/internal/forms"
	"github.com/pageza/ticketdesk/backend/internal/service"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

const (
	msgInvalidBody = "invalid request body"
	msgInternal    = "internal server error"
)

// RespondError maps err to a status code and JSON body and aborts the chain.
// Unexpected errors are logged and reported without detail.
func RespondError(c *gin.Context, log *slog.Logger, err error) {
	var fieldErrs forms.FieldErrors
	status := http.StatusInternalServerError
	body := ErrorResponse{Error: msgInternal}

	switch {
	case errors.As(err, &fieldErrs):
		status = http.StatusBadRequest
		body = ErrorResponse{Error: "validation failed", Fields: fieldErrs}
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		body.Error = "Invalid email or password"
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidToken):
		status = http.StatusUnauthorized
		body.Error = "unauthorized"
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
		body.Error = "forbidden"
	case errors.Is(err, service.ErrTicketNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrUserNotFound):
		status = http.StatusNotFound
		body.Error = err.Error()
	case errors.Is(err, service.ErrDuplicateEmail),
		errors.Is(err, service.ErrDuplicateName),
		errors.Is(err, service.ErrCategoryInUse):
		status = http.StatusConflict
		body.Error = err.Error()
	default:
		log.Error("request failed",
			"error", err,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"request_id", GetRequestContext(c).RequestID,
		)
	}

	c.AbortWithStatusJSON(status, body)
}

func respondBadBody(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidBody})
}
