// Package handler exposes the campaign HTTP endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campaign_audio_backend/internal/campaigns/service"
	"campaign_audio_backend/internal/campaigns/transport"
	"campaign_audio_backend/platform/httpkit"
	"campaign_audio_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for campaigns.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new campaigns handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Upload ingests a campaign lead CSV and queues audio generation.
// POST /api/v1/campaigns/upload
func (h *Handler) Upload(c *gin.Context) {
	var req transport.UploadRequest
	if err := c.ShouldBind(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "csv file is required", nil)
		return
	}
	file, err := header.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "cannot read uploaded file", nil)
		return
	}
	defer file.Close()

	result, err := h.svc.Upload(c.Request.Context(), req, header.Filename, file)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// AudioStatus returns the generation status for one lead.
// GET /api/v1/campaigns/audio/:phone_number
func (h *Handler) AudioStatus(c *gin.Context) {
	result, err := h.svc.AudioStatus(c.Request.Context(), c.Param("phone_number"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListLeads returns a page of leads.
// GET /api/v1/campaigns/leads
func (h *Handler) ListLeads(c *gin.Context) {
	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.ListLeads(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DeleteLeads removes leads and their generated audio.
// POST /api/v1/campaigns/leads/delete
func (h *Handler) DeleteLeads(c *gin.Context) {
	var req transport.DeleteLeadsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.DeleteLeads(c.Request.Context(), req.IDs)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
