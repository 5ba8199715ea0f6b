package utils

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	services "github.com/gatherly/gatherly-api/services"
)

// RespondWithError writes the uniform error envelope.
func RespondWithError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// RespondServiceError maps a service error kind onto an HTTP status. Errors
// that wrap none of the known kinds are internal: the client gets a generic
// message, never the error text.
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		RespondWithError(c, http.StatusNotFound, serviceErrorMessage(err, services.ErrNotFound))
	case errors.Is(err, services.ErrForbidden):
		RespondWithError(c, http.StatusForbidden, serviceErrorMessage(err, services.ErrForbidden))
	case errors.Is(err, services.ErrConflict):
		RespondWithError(c, http.StatusConflict, serviceErrorMessage(err, services.ErrConflict))
	case errors.Is(err, services.ErrInvalidInput):
		RespondWithError(c, http.StatusBadRequest, serviceErrorMessage(err, services.ErrInvalidInput))
	default:
		RespondWithError(c, http.StatusInternalServerError, "internal server error")
	}
}

// serviceErrorMessage strips the kind prefix so clients see the reason, not
// the taxonomy.
func serviceErrorMessage(err, kind error) string {
	return strings.TrimPrefix(err.Error(), kind.Error()+": ")
}
