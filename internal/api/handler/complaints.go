package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/dispatch"

	"github.com/gin-gonic/gin"
)

type replyRequest struct {
	ReplyText         string `json:"replyText" form:"replyText"`
	PastedImageBase64 string `json:"pastedImageBase64" form:"pastedImageBase64"`
}

// ListComplaints handles GET /api/complaints?status=&start=&end=&q=
func (h *Handler) ListComplaints(c *gin.Context) {
	f, err := complaint.ParseFilter(c.Query("status"), c.Query("start"), c.Query("end"), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	rows, err := h.Complaints.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) GetComplaint(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	row, err := h.Complaints.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// ReplyComplaint accepts multipart (replyText, pastedImageBase64, file) or JSON.
func (h *Handler) ReplyComplaint(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	}

	var req replyRequest
	var att dispatch.Attachment

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBind(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if file, err := c.FormFile("file"); err == nil {
			dst := filepath.Join(h.UploadDir, dispatch.UploadName(file.Filename))
			if err := c.SaveUploadedFile(file, dst); err != nil {
				respondError(c, fmt.Errorf("save upload: %w", err))
				return
			}
			att.UploadPath = dst
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	att.InlineData = req.PastedImageBase64

	updated, err := h.Dispatcher.Reply(c.Request.Context(), id, req.ReplyText, att)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "updated": updated})
}

func (h *Handler) DeleteComplaint(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if _, err := h.Complaints.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %q", errInvalidID, c.Param("id"))
	}
	return uint(id), nil
}
