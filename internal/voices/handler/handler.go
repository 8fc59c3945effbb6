// Package handler exposes the voice pool HTTP endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"campaign_audio_backend/internal/voices/service"
	"campaign_audio_backend/internal/voices/transport"
	"campaign_audio_backend/platform/httpkit"
	"campaign_audio_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidGroupID   = "invalid voice group id"
	msgInvalidVoiceID   = "invalid voice id"
)

// Handler handles HTTP requests for the voice pool.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new voices handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// CreateGroup creates a voice group.
// POST /api/v1/voices/groups
func (h *Handler) CreateGroup(c *gin.Context) {
	var req transport.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	group, err := h.svc.CreateGroup(c.Request.Context(), req.Name, req.Description)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToGroupResponse(group))
}

// ListGroups returns all voice groups with their voices.
// GET /api/v1/voices/groups
func (h *Handler) ListGroups(c *gin.Context) {
	groups, err := h.svc.ListGroups(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	resp := transport.ListGroupsResponse{Groups: make([]transport.VoiceGroupResponse, 0, len(groups))}
	for _, g := range groups {
		resp.Groups = append(resp.Groups, transport.ToGroupResponse(g))
	}
	httpkit.OK(c, resp)
}

// DeleteGroup removes a group with its voices and files.
// DELETE /api/v1/voices/groups/:id
func (h *Handler) DeleteGroup(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidGroupID, nil)
		return
	}
	if err := h.svc.DeleteGroup(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"deleted": true})
}

// UploadVoice stores an uploaded voice asset in a group.
// POST /api/v1/voices/groups/:id/voices
func (h *Handler) UploadVoice(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidGroupID, nil)
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "voice file is required", nil)
		return
	}

	voice, err := h.svc.UploadVoice(c.Request.Context(), groupID, c.PostForm("name"), header)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToVoiceResponse(voice))
}

// DeleteVoice removes a single voice and its file.
// DELETE /api/v1/voices/:id
func (h *Handler) DeleteVoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidVoiceID, nil)
		return
	}
	if err := h.svc.DeleteVoice(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"deleted": true})
}

// ToggleVoice flips a voice's active flag.
// POST /api/v1/voices/:id/toggle
func (h *Handler) ToggleVoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidVoiceID, nil)
		return
	}
	voice, err := h.svc.ToggleVoice(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToVoiceResponse(voice))
}
