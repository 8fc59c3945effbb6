// Package service implements campaign snapshot export and import.
package service

import (
	"context"

	campaignrepo "campaign_audio_backend/internal/campaigns/repository"
	"campaign_audio_backend/platform/logger"
)

// SnapshotRepo is the lead persistence port of the snapshot engine.
type SnapshotRepo interface {
	ListByGeneration(ctx context.Context, generationNo string) ([]campaignrepo.Lead, error)
	ReplaceAll(ctx context.Context, leads []campaignrepo.Lead, swapFiles func() error) error
}

// FileStore is the audio tree port of the snapshot engine.
type FileStore interface {
	CopyAudioTo(filename, dstDir string) error
	ReplaceAudioTree(srcDir string) error
}

// Locker serializes snapshot work against the rest of the pipeline.
// Export shares the store with live traffic; import takes it exclusively.
type Locker interface {
	Shared() (func(), error)
	Exclusive() (func(), error)
}

// Service implements snapshot export and import.
type Service struct {
	repo  SnapshotRepo
	store FileStore
	lock  Locker
	log   *logger.Logger
}

// New creates a new snapshot service.
func New(repo SnapshotRepo, store FileStore, lock Locker, log *logger.Logger) *Service {
	return &Service{repo: repo, store: store, lock: lock, log: log}
}
