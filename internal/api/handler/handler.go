// Package handler exposes the operator dashboard API over gin.
package handler

import (
	"context"
	"net/http"

	"complaintdesk/backend/internal/chathub"
	"complaintdesk/backend/internal/dispatch"
	"complaintdesk/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// ComplaintService is the operator query surface.
type ComplaintService interface {
	List(ctx context.Context, f models.ComplaintFilter) ([]models.Complaint, error)
	Get(ctx context.Context, id uint) (*models.Complaint, error)
	Delete(ctx context.Context, id uint) (*models.Complaint, error)
}

// ReplyDispatcher sends operator replies.
type ReplyDispatcher interface {
	Reply(ctx context.Context, id uint, text string, att dispatch.Attachment) (*models.Complaint, error)
}

// Handler holds the dependencies of the HTTP routes.
type Handler struct {
	Hub            *chathub.ManagerService
	Complaints     ComplaintService
	Dispatcher     ReplyDispatcher
	Auth           *Auth
	UploadDir      string
	MaxUploadBytes int64
}

func NewHandler(hub *chathub.ManagerService, complaints ComplaintService, dispatcher ReplyDispatcher, auth *Auth, uploadDir string, maxUploadBytes int64) *Handler {
	return &Handler{
		Hub:            hub,
		Complaints:     complaints,
		Dispatcher:     dispatcher,
		Auth:           auth,
		UploadDir:      uploadDir,
		MaxUploadBytes: maxUploadBytes,
	}
}

// RegisterRoutes mounts every route on r.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.Static("/uploads", h.UploadDir)

	r.POST("/api/auth/token", h.CreateToken)

	api := r.Group("/api", h.RequireOperator())
	api.GET("/complaints", h.ListComplaints)
	api.GET("/complaints/:id", h.GetComplaint)
	api.POST("/complaints/:id/reply", h.ReplyComplaint)
	api.DELETE("/complaints/:id", h.DeleteComplaint)

	r.GET("/ws", h.RequireOperator(), h.ServeWebSocket)
}
