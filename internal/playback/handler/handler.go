// Package handler exposes the dialer-facing playback endpoints.
package handler

import (
	"github.com/gin-gonic/gin"

	"campaign_audio_backend/internal/playback/service"
	"campaign_audio_backend/platform/httpkit"
)

// Handler handles the dialer playback requests.
type Handler struct {
	svc *service.Service
}

// New creates a new playback handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RandomAudio picks a random completed lead for a generation.
// GET /api/v1/dialer/random_audio/:generation_no/:audio_type
func (h *Handler) RandomAudio(c *gin.Context) {
	result, err := h.svc.RandomAudio(c.Request.Context(), c.Param("generation_no"), c.Param("audio_type"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// SpecificAudio re-resolves a lead by its key.
// GET /api/v1/dialer/specific_audio/:lead_key/:audio_type
func (h *Handler) SpecificAudio(c *gin.Context) {
	result, err := h.svc.SpecificAudio(c.Request.Context(), c.Param("lead_key"), c.Param("audio_type"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
