package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/logger"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

// StatusFor maps a service error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrProviderTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrProvider):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes err with its mapped status.
func abortWithError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Warn("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, errorResponse{Detail: err.Error()})
}

func abortWithDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, errorResponse{Detail: detail})
}
