// Package service holds the campaign ingestion business logic.
package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"campaign_audio_backend/internal/campaigns/repository"
	"campaign_audio_backend/internal/campaigns/transport"
	"campaign_audio_backend/internal/jobs"
	"campaign_audio_backend/platform/apperr"
	"campaign_audio_backend/platform/logger"
	"campaign_audio_backend/platform/phone"
)

// LeadRepo is the lead persistence port.
type LeadRepo interface {
	ReplaceBatch(ctx context.Context, leads []repository.NewLead) ([]uuid.UUID, []string, error)
	GetByPhone(ctx context.Context, phoneNumber string) (repository.Lead, error)
	List(ctx context.Context, limit, offset int) ([]repository.Lead, int, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int, []string, error)
}

// VoicePool answers the dispatch preconditions against the voice store.
type VoicePool interface {
	GroupExists(ctx context.Context, id uuid.UUID) (bool, error)
	HasActiveVoice(ctx context.Context, groupID uuid.UUID) (bool, error)
}

// AudioRemover removes generated audio files left orphaned by lead
// replacement or deletion.
type AudioRemover interface {
	RemoveAudio(filename string)
}

// StoreLocker serializes audio tree access against snapshot imports.
type StoreLocker interface {
	Shared() (func(), error)
}

// Config narrows the application config to what the service needs.
type Config interface {
	GetPublicBaseURL() string
	GetPhoneRegion() string
}

// Service implements campaign upload, status and lead management.
type Service struct {
	repo       LeadRepo
	voices     VoicePool
	store      AudioRemover
	lock       StoreLocker
	dispatcher jobs.LeadDispatcher
	log        *logger.Logger
	baseURL    string
	region     string
}

// New creates a new campaigns service.
func New(repo LeadRepo, voices VoicePool, store AudioRemover, lock StoreLocker, dispatcher jobs.LeadDispatcher, cfg Config, log *logger.Logger) *Service {
	return &Service{
		repo:       repo,
		voices:     voices,
		store:      store,
		lock:       lock,
		dispatcher: dispatcher,
		log:        log,
		baseURL:    cfg.GetPublicBaseURL(),
		region:     cfg.GetPhoneRegion(),
	}
}

// Upload ingests a lead CSV for a campaign and queues one audio
// generation job per lead. Preconditions are checked before anything is
// written: the file must be a .csv, the voice group must exist and hold
// an active voice, and the no-AMD and AMD templates must be non-empty.
// Existing leads sharing a phone number with the batch are replaced and
// their audio files removed.
func (s *Service) Upload(ctx context.Context, req transport.UploadRequest, filename string, file io.Reader) (transport.UploadResponse, error) {
	groupID, err := uuid.Parse(req.VoiceGroupID)
	if err != nil {
		return transport.UploadResponse{}, apperr.Validation("invalid voice group id")
	}
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return transport.UploadResponse{}, apperr.Validation("file must be a .csv")
	}
	if strings.TrimSpace(req.TemplateNoAMD) == "" {
		return transport.UploadResponse{}, apperr.Validation("no-AMD template is required")
	}
	if strings.TrimSpace(req.TemplateAMD) == "" {
		return transport.UploadResponse{}, apperr.Validation("AMD template is required")
	}

	exists, err := s.voices.GroupExists(ctx, groupID)
	if err != nil {
		return transport.UploadResponse{}, err
	}
	if !exists {
		return transport.UploadResponse{}, apperr.Validation("voice group not found")
	}
	active, err := s.voices.HasActiveVoice(ctx, groupID)
	if err != nil {
		return transport.UploadResponse{}, err
	}
	if !active {
		return transport.UploadResponse{}, apperr.Validation("voice group has no active voices")
	}

	leads, err := ParseLeads(file, strings.TrimSpace(req.CampaignName), strings.TrimSpace(req.GenerationNo), s.region)
	if err != nil {
		return transport.UploadResponse{}, err
	}

	// The shared lock keeps a concurrent snapshot import from swapping the
	// audio tree under the replacement.
	release, err := s.lock.Shared()
	if err != nil {
		return transport.UploadResponse{}, fmt.Errorf("acquire store lock: %w", err)
	}
	defer release()

	ids, orphaned, err := s.repo.ReplaceBatch(ctx, leads)
	if err != nil {
		return transport.UploadResponse{}, err
	}
	for _, filename := range orphaned {
		s.store.RemoveAudio(filename)
	}

	payload := jobs.LeadAudioPayload{
		VoiceGroupID:      groupID.String(),
		TemplateNoAMD:     req.TemplateNoAMD,
		TemplateAMD:       req.TemplateAMD,
		TemplateTransfer:  req.TemplateTransfer,
		TemplateVoicemail: req.TemplateVoicemail,
		LLMEnabled:        req.LLMEnabled,
	}

	resp := transport.UploadResponse{
		CampaignName: strings.TrimSpace(req.CampaignName),
		Leads:        len(ids),
	}
	for _, id := range ids {
		payload.LeadID = id.String()
		if err := s.dispatcher.EnqueueLeadAudio(ctx, payload); err != nil {
			resp.QueueFailed++
			s.log.Error("enqueue failed", "lead_id", id.String(), "error", err.Error())
			continue
		}
		resp.Queued++
		s.log.JobEvent("queued", id.String())
	}
	return resp, nil
}

// AudioStatus returns the generation status and playback URLs for the
// lead with the given phone number. The lookup canonicalizes the phone
// the same way ingestion does.
func (s *Service) AudioStatus(ctx context.Context, rawPhone string) (transport.LeadAudioResponse, error) {
	canonical := phone.Canonical(rawPhone, s.region)
	if canonical == "" {
		return transport.LeadAudioResponse{}, apperr.Validation("phone number is required")
	}
	lead, err := s.repo.GetByPhone(ctx, canonical)
	if err != nil {
		return transport.LeadAudioResponse{}, err
	}
	return transport.ToLeadAudioResponse(lead, s.baseURL), nil
}

// ListLeads returns a page of leads ordered by newest first.
func (s *Service) ListLeads(ctx context.Context, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 50
	}

	leads, total, err := s.repo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	resp := transport.LeadListResponse{
		Items:    make([]transport.LeadResponse, 0, len(leads)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for _, lead := range leads {
		resp.Items = append(resp.Items, transport.ToLeadResponse(lead))
	}
	resp.TotalPages = (total + pageSize - 1) / pageSize
	return resp, nil
}

// DeleteLeads removes the given leads and their generated audio files.
func (s *Service) DeleteLeads(ctx context.Context, ids []uuid.UUID) (transport.DeleteLeadsResponse, error) {
	deleted, files, err := s.repo.DeleteByIDs(ctx, ids)
	if err != nil {
		return transport.DeleteLeadsResponse{}, err
	}
	for _, filename := range files {
		s.store.RemoveAudio(filename)
	}
	return transport.DeleteLeadsResponse{Deleted: deleted}, nil
}
