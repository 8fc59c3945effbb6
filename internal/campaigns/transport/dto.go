package transport

import (
	"time"

	"github.com/google/uuid"

	"campaign_audio_backend/internal/campaigns/domain"
	"campaign_audio_backend/internal/campaigns/repository"
)

// UploadRequest carries the multipart form fields of a campaign upload.
// The CSV file itself travels as the "file" part.
type UploadRequest struct {
	CampaignName      string `form:"campaign_name" validate:"required,min=1,max=200"`
	GenerationNo      string `form:"generation_no" validate:"max=100"`
	VoiceGroupID      string `form:"voice_group_id" validate:"required,uuid"`
	TemplateNoAMD     string `form:"template_no_amd"`
	TemplateAMD       string `form:"template_amd"`
	TemplateTransfer  string `form:"template_transfer"`
	TemplateVoicemail string `form:"template_voicemail"`
	LLMEnabled        bool   `form:"llm_enabled"`
}

// UploadResponse reports how the batch fared. Queued plus QueueFailed
// always equals Leads.
type UploadResponse struct {
	CampaignName string `json:"campaignName"`
	Leads        int    `json:"leads"`
	Queued       int    `json:"queued"`
	QueueFailed  int    `json:"queueFailed"`
}

// TranscriptResponse is one recorded input/output text pair.
type TranscriptResponse struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// LeadAudioResponse is the per-lead generation status with playback URLs
// for every variant that has audio.
type LeadAudioResponse struct {
	PhoneNumber string            `json:"phoneNumber"`
	Status      string            `json:"status"`
	AudioURLs   map[string]string `json:"audioUrls"`
}

type LeadResponse struct {
	ID           uuid.UUID      `json:"id"`
	PhoneNumber  string         `json:"phoneNumber"`
	CampaignName string         `json:"campaignName"`
	GenerationNo *string        `json:"generationNo,omitempty"`
	Status       string         `json:"status"`
	LeadData     map[string]any `json:"leadData"`
	CreatedAt    string         `json:"createdAt"`
}

type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type ListLeadsRequest struct {
	Page     int `form:"page" validate:"omitempty,min=1"`
	PageSize int `form:"pageSize" validate:"omitempty,min=1,max=500"`
}

type DeleteLeadsRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1"`
}

type DeleteLeadsResponse struct {
	Deleted int `json:"deleted"`
}

// ToLeadResponse maps a stored lead to its API shape.
func ToLeadResponse(lead repository.Lead) LeadResponse {
	return LeadResponse{
		ID:           lead.ID,
		PhoneNumber:  lead.PhoneNumber,
		CampaignName: lead.CampaignName,
		GenerationNo: lead.GenerationNo,
		Status:       string(lead.Status),
		LeadData:     lead.LeadData,
		CreatedAt:    lead.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToLeadAudioResponse maps a lead to its audio status, resolving playback
// URLs against the public base URL. Variants without audio are omitted.
func ToLeadAudioResponse(lead repository.Lead, baseURL string) LeadAudioResponse {
	urls := make(map[string]string)
	for _, variant := range domain.Variants {
		if url := domain.AudioURL(baseURL, lead.AudioFilename(variant)); url != nil {
			urls[string(variant)] = *url
		}
	}
	return LeadAudioResponse{
		PhoneNumber: lead.PhoneNumber,
		Status:      string(lead.Status),
		AudioURLs:   urls,
	}
}
