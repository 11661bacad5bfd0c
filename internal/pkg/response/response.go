package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mathtutor/internal/pkg/apperr"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"code":    code,
		"error":   message,
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"code":    code,
		"error":   message,
		"details": details,
	})
}

// AbortError writes the error body and stops the handler chain.
func AbortError(c *gin.Context, statusCode int, code string, message string) {
	Error(c, statusCode, code, message)
	c.Abort()
}

// Status maps an application error to its HTTP status.
func Status(err error) int {
	switch {
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrInvalidState), errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FromError writes the uniform error body for a service error. Internal
// errors are recorded on the gin context for the error logger and their
// message is not exposed.
func FromError(c *gin.Context, err error) {
	status := Status(err)
	code := apperr.Kind(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		Error(c, status, code, "Internal server error")
		return
	}

	var vErr *apperr.ValidationError
	if errors.As(err, &vErr) && vErr.HasErrors() {
		ErrorWithDetails(c, status, code, vErr.Error(), vErr.FieldErrors)
		return
	}
	Error(c, status, code, err.Error())
}
