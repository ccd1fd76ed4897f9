package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/pdfdesk/backend/internal/model"
	"github.com/pdfdesk/backend/internal/service"
)

const serverErrorMessage = "Something went wrong"

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, model.Response{
		Success:    true,
		StatusCode: status,
		Message:    message,
		Data:       data,
	})
}

func abortWith(c *gin.Context, status int, message string, fields map[string]string) {
	c.AbortWithStatusJSON(status, model.ErrorResponse{
		Success:    false,
		StatusCode: status,
		Message:    message,
		Errors:     fields,
	})
}

// writeError maps service and validation failures to the error envelope.
// Unknown errors are logged and answered with a generic 500.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	var authErr *service.AuthError
	if errors.As(err, &authErr) {
		abortWith(c, statusForKind(authErr.Kind), authErr.Message, nil)
		return
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for field, ferr := range verrs {
			fields[field] = ferr.Error()
		}
		abortWith(c, http.StatusBadRequest, "Validation error", fields)
		return
	}

	logger.ErrorContext(c.Request.Context(), "request failed",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"error", err,
	)
	abortWith(c, http.StatusInternalServerError, serverErrorMessage, nil)
}

func statusForKind(kind service.ErrorKind) int {
	switch kind {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindInvalidInput:
		return http.StatusBadRequest
	case service.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// bindJSON decodes and validates a request body. It writes the 400 itself
// and reports whether the handler may continue.
func bindJSON(c *gin.Context, logger *slog.Logger, req validation.Validatable) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		abortWith(c, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	if err := req.Validate(); err != nil {
		writeError(c, logger, err)
		return false
	}
	return true
}
