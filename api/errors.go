package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/tablebooking/internal/domain"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps domain errors onto HTTP status codes. Contention, validation
// and authorization failures each get their own code so clients can tell
// "pick another table" from "log in".
func statusFor(err error) int {
	switch {
	case domain.IsContention(err):
		return http.StatusConflict
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrReservationNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		// store details stay in the logs
		message = "internal server error"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorResponse{Error: message})
}
