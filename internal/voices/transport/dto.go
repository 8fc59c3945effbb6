package transport

import (
	"time"

	"github.com/google/uuid"

	"campaign_audio_backend/internal/voices/repository"
)

type CreateGroupRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

type VoiceResponse struct {
	ID        uuid.UUID `json:"id"`
	GroupID   uuid.UUID `json:"groupId"`
	Name      string    `json:"name"`
	Filename  string    `json:"filename"`
	IsActive  bool      `json:"isActive"`
	CreatedAt string    `json:"createdAt"`
}

type VoiceGroupResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	CreatedAt   string          `json:"createdAt"`
	Voices      []VoiceResponse `json:"voices"`
}

type ListGroupsResponse struct {
	Groups []VoiceGroupResponse `json:"groups"`
}

// ToVoiceResponse maps a repository voice to its API shape.
func ToVoiceResponse(v repository.Voice) VoiceResponse {
	return VoiceResponse{
		ID:        v.ID,
		GroupID:   v.GroupID,
		Name:      v.Name,
		Filename:  v.Filename,
		IsActive:  v.IsActive,
		CreatedAt: v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToGroupResponse maps a repository group, voices included.
func ToGroupResponse(g repository.VoiceGroup) VoiceGroupResponse {
	voices := make([]VoiceResponse, 0, len(g.Voices))
	for _, v := range g.Voices {
		voices = append(voices, ToVoiceResponse(v))
	}
	return VoiceGroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedAt:   g.CreatedAt.UTC().Format(time.RFC3339),
		Voices:      voices,
	}
}
