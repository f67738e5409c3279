package handler

import (
	"errors"
	"net/http"

	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/logger"
	"complaintdesk/backend/internal/models"

	"github.com/gin-gonic/gin"
)

var errInvalidID = errors.New("invalid complaint id")

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrNotPending):
		return http.StatusConflict
	case errors.Is(err, models.ErrEmptyReply),
		errors.Is(err, complaint.ErrInvalidFilter),
		errors.Is(err, errInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrBackendUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": "..."} with the matching status.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Component("api").WithError(err).WithField("path", c.FullPath()).Error("Request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
