// Package handler exposes the snapshot export/import endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campaign_audio_backend/internal/snapshot/service"
	"campaign_audio_backend/platform/httpkit"
)

// Handler handles HTTP requests for snapshots.
type Handler struct {
	svc       *service.Service
	maxUpload int64
}

// New creates a new snapshot handler.
func New(svc *service.Service, maxUpload int64) *Handler {
	return &Handler{svc: svc, maxUpload: maxUpload}
}

// Export streams the snapshot archive for a generation. The staging area
// is removed after the response has been written.
// GET /api/v1/export/package/:generation_no
func (h *Handler) Export(c *gin.Context) {
	archive, cleanup, err := h.svc.Export(c.Request.Context(), c.Param("generation_no"))
	if httpkit.HandleError(c, err) {
		return
	}
	defer cleanup()

	c.FileAttachment(archive.Path, archive.Filename)
}

// Import replaces all campaign state with an uploaded snapshot archive.
// This cannot be undone except by a prior export.
// POST /api/v1/import/upload
func (h *Handler) Import(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "archive file is required", nil)
		return
	}
	if h.maxUpload > 0 && header.Size > h.maxUpload {
		httpkit.Error(c, http.StatusBadRequest, "archive exceeds the upload size limit", nil)
		return
	}

	file, err := header.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "cannot read uploaded file", nil)
		return
	}
	defer file.Close()

	result, err := h.svc.Import(c.Request.Context(), file, header.Size)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
