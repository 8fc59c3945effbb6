// Package service holds the voice pool business logic.
package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"

	"campaign_audio_backend/internal/voices/repository"
	"campaign_audio_backend/platform/apperr"
	"campaign_audio_backend/platform/logger"
)

// allowedAudioTypes lists the upload content types accepted for voice assets.
var allowedAudioTypes = map[string]struct{}{
	"audio/wav":   {},
	"audio/x-wav": {},
	"audio/mpeg":  {},
	"audio/mp3":   {},
}

// VoiceRepo is the voice pool persistence port.
type VoiceRepo interface {
	CreateGroup(ctx context.Context, name string, description *string) (repository.VoiceGroup, error)
	GetGroup(ctx context.Context, id uuid.UUID) (repository.VoiceGroup, error)
	ListGroupsWithVoices(ctx context.Context) ([]repository.VoiceGroup, error)
	DeleteGroup(ctx context.Context, id uuid.UUID) ([]string, error)
	CreateVoice(ctx context.Context, groupID uuid.UUID, name, filename, filepath string) (repository.Voice, error)
	DeleteVoice(ctx context.Context, id uuid.UUID) (string, error)
	ToggleActive(ctx context.Context, id uuid.UUID) (repository.Voice, error)
	GroupExists(ctx context.Context, id uuid.UUID) (bool, error)
	HasActiveVoice(ctx context.Context, groupID uuid.UUID) (bool, error)
}

// VoiceStore persists uploaded voice files and removes them again.
type VoiceStore interface {
	SaveVoice(r io.Reader, originalName string) (filename, path string, err error)
	RemovePath(path string)
}

// Service implements voice group and voice management.
type Service struct {
	repo  VoiceRepo
	store VoiceStore
	log   *logger.Logger
}

// New creates a new voice service.
func New(repo VoiceRepo, store VoiceStore, log *logger.Logger) *Service {
	return &Service{repo: repo, store: store, log: log}
}

// CreateGroup registers a new named voice pool.
func (s *Service) CreateGroup(ctx context.Context, name string, description *string) (repository.VoiceGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return repository.VoiceGroup{}, apperr.Validation("group name is required")
	}
	return s.repo.CreateGroup(ctx, name, description)
}

// ListGroups returns all voice groups with their voices.
func (s *Service) ListGroups(ctx context.Context) ([]repository.VoiceGroup, error) {
	return s.repo.ListGroupsWithVoices(ctx)
}

// DeleteGroup removes a group, its voices and their stored files.
func (s *Service) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	paths, err := s.repo.DeleteGroup(ctx, id)
	if err != nil {
		return err
	}
	for _, path := range paths {
		s.store.RemovePath(path)
	}
	return nil
}

// UploadVoice validates and stores an uploaded voice asset in a group.
// The voice starts active.
func (s *Service) UploadVoice(ctx context.Context, groupID uuid.UUID, name string, header *multipart.FileHeader) (repository.Voice, error) {
	if _, err := s.repo.GetGroup(ctx, groupID); err != nil {
		return repository.Voice{}, err
	}

	contentType := header.Header.Get("Content-Type")
	if _, ok := allowedAudioTypes[contentType]; !ok {
		return repository.Voice{}, apperr.Validation(fmt.Sprintf("unsupported audio type %q", contentType))
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = header.Filename
	}

	file, err := header.Open()
	if err != nil {
		return repository.Voice{}, apperr.BadRequest("cannot read uploaded file")
	}
	defer file.Close()

	filename, path, err := s.store.SaveVoice(file, header.Filename)
	if err != nil {
		return repository.Voice{}, fmt.Errorf("store voice file: %w", err)
	}

	voice, err := s.repo.CreateVoice(ctx, groupID, name, filename, path)
	if err != nil {
		s.store.RemovePath(path)
		return repository.Voice{}, err
	}
	return voice, nil
}

// DeleteVoice removes a voice and its stored file.
func (s *Service) DeleteVoice(ctx context.Context, id uuid.UUID) error {
	path, err := s.repo.DeleteVoice(ctx, id)
	if err != nil {
		return err
	}
	s.store.RemovePath(path)
	return nil
}

// ToggleVoice flips a voice's active flag.
func (s *Service) ToggleVoice(ctx context.Context, id uuid.UUID) (repository.Voice, error) {
	return s.repo.ToggleActive(ctx, id)
}

// GroupExists reports whether the group id is known.
func (s *Service) GroupExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.repo.GroupExists(ctx, id)
}

// HasActiveVoice reports whether a group can serve synthesis jobs.
func (s *Service) HasActiveVoice(ctx context.Context, groupID uuid.UUID) (bool, error) {
	return s.repo.HasActiveVoice(ctx, groupID)
}
