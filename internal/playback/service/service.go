// Package service implements the dialer playback resolution protocol.
package service

import (
	"context"

	"campaign_audio_backend/internal/campaigns/domain"
	"campaign_audio_backend/internal/playback/repository"
	"campaign_audio_backend/platform/apperr"
	"campaign_audio_backend/platform/phone"
)

// LeadReader is the read-only lead port of the resolver.
type LeadReader interface {
	RandomCompleted(ctx context.Context, generationNo string) (repository.PlaybackLead, error)
	GetByPhone(ctx context.Context, phoneNumber string) (repository.PlaybackLead, error)
}

// Config narrows the application config to what the resolver needs.
type Config interface {
	GetPublicBaseURL() string
	GetPhoneRegion() string
}

// Selection is the answer to the first dialer call. LeadKey is the
// lead's phone number; the dialer caches it for the rest of the call.
type Selection struct {
	AudioURL *string `json:"audio_url"`
	LeadKey  string  `json:"lead_key"`
}

// Resolution is the answer to a follow-up dialer call.
type Resolution struct {
	AudioURL *string `json:"audio_url"`
}

// Service resolves playback URLs for the dialer. It holds no session
// state between the two calls of the protocol.
type Service struct {
	repo    LeadReader
	baseURL string
	region  string
}

// New creates a new playback service.
func New(repo LeadReader, cfg Config) *Service {
	return &Service{repo: repo, baseURL: cfg.GetPublicBaseURL(), region: cfg.GetPhoneRegion()}
}

// RandomAudio picks a random COMPLETED lead of the generation and returns
// the requested variant's URL with the lead key.
func (s *Service) RandomAudio(ctx context.Context, generationNo, audioType string) (Selection, error) {
	variant, err := domain.ParseVariant(audioType)
	if err != nil {
		return Selection{}, apperr.Validation(err.Error())
	}
	if generationNo == "" {
		return Selection{}, apperr.Validation("generation_no is required")
	}

	lead, err := s.repo.RandomCompleted(ctx, generationNo)
	if err != nil {
		return Selection{}, err
	}
	return Selection{
		AudioURL: domain.AudioURL(s.baseURL, lead.AudioFilename(variant)),
		LeadKey:  lead.PhoneNumber,
	}, nil
}

// SpecificAudio re-resolves a lead by the key handed out by RandomAudio
// and returns the requested variant's URL. The key is canonicalized the
// same way ingestion canonicalizes phone numbers, so keys survive a
// round-trip through dialer configuration.
func (s *Service) SpecificAudio(ctx context.Context, leadKey, audioType string) (Resolution, error) {
	variant, err := domain.ParseVariant(audioType)
	if err != nil {
		return Resolution{}, apperr.Validation(err.Error())
	}

	canonical := phone.Canonical(leadKey, s.region)
	if canonical == "" {
		return Resolution{}, apperr.Validation("lead_key is required")
	}

	lead, err := s.repo.GetByPhone(ctx, canonical)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{AudioURL: domain.AudioURL(s.baseURL, lead.AudioFilename(variant))}, nil
}
