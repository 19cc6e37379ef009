package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ridecoach/internal/analysis"
	"ridecoach/internal/service"
	"ridecoach/internal/store"
	"ridecoach/internal/strava"
)

var errBadID = errors.New("id must be a positive integer")

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	var apiErr *strava.APIError
	switch {
	case errors.Is(err, store.ErrActivityNotFound),
		errors.Is(err, store.ErrAnalysisNotFound),
		errors.Is(err, store.ErrGoalNotFound),
		errors.Is(err, strava.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadID),
		errors.Is(err, store.ErrInvalidGoal),
		errors.Is(err, service.ErrNotARide):
		return http.StatusBadRequest
	case analysis.IsContractViolation(err):
		return http.StatusUnprocessableEntity
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail writes {"error": ...} with the status for err
func fail(c *gin.Context, err error) {
	failWith(c, statusFor(err), err)
}

func failWith(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
