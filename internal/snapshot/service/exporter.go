package service

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	campaignrepo "campaign_audio_backend/internal/campaigns/repository"
	"campaign_audio_backend/platform/apperr"
	"campaign_audio_backend/platform/sanitize"
)

// exportCopyConcurrency bounds parallel audio copies during staging.
const exportCopyConcurrency = 8

// Archive is a finished export package on disk.
type Archive struct {
	// Path is the absolute location of the zip file.
	Path string
	// Filename is the download name derived from campaign, generation
	// and timestamp.
	Filename string
}

// Export stages every lead of a generation with its referenced audio
// files into a temporary directory and zips the result. The live tree is
// never touched; referenced files missing from it are skipped. The
// returned cleanup removes the whole staging area, archive included, and
// must run only after the archive has been fully delivered.
func (s *Service) Export(ctx context.Context, generationNo string) (Archive, func(), error) {
	if generationNo == "" {
		return Archive{}, nil, apperr.Validation("generation_no is required")
	}

	leads, err := s.repo.ListByGeneration(ctx, generationNo)
	if err != nil {
		return Archive{}, nil, err
	}
	if len(leads) == 0 {
		return Archive{}, nil, apperr.NotFound("no leads for generation " + generationNo)
	}

	// Export only reads the live tree, so it shares the lock with writers
	// and only an import blocks it.
	release, err := s.lock.Shared()
	if err != nil {
		return Archive{}, nil, fmt.Errorf("acquire store lock: %w", err)
	}
	defer release()

	staging, err := os.MkdirTemp("", "campaign-export-*")
	if err != nil {
		return Archive{}, nil, fmt.Errorf("create staging dir: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(staging); err != nil {
			s.log.FileCleanupError(staging, err)
		}
	}

	if err := s.stage(ctx, staging, leads); err != nil {
		cleanup()
		return Archive{}, nil, err
	}

	name := fmt.Sprintf("%s_%s_%s.zip",
		sanitize.FilenameOr(leads[0].CampaignName, "campaign"),
		generationNo,
		time.Now().UTC().Format("20060102_150405"),
	)
	archivePath := filepath.Join(staging, name)
	if err := writeArchive(archivePath, staging, name); err != nil {
		cleanup()
		return Archive{}, nil, fmt.Errorf("write archive: %w", err)
	}

	return Archive{Path: archivePath, Filename: name}, cleanup, nil
}

// stage writes the dump file and copies every distinct referenced audio
// file into the staging area.
func (s *Service) stage(ctx context.Context, staging string, leads []campaignrepo.Lead) error {
	dump, err := os.Create(filepath.Join(staging, DumpFilename))
	if err != nil {
		return fmt.Errorf("create dump file: %w", err)
	}
	if err := WriteDump(dump, leads); err != nil {
		dump.Close()
		return err
	}
	if err := dump.Close(); err != nil {
		return fmt.Errorf("close dump file: %w", err)
	}

	audioDir := filepath.Join(staging, ArchiveAudioDir)
	if err := os.Mkdir(audioDir, 0o755); err != nil {
		return fmt.Errorf("create staging audio dir: %w", err)
	}

	referenced := make(map[string]struct{})
	for i := range leads {
		for _, filename := range leads[i].ReferencedFiles() {
			referenced[filename] = struct{}{}
		}
	}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(exportCopyConcurrency)
	for filename := range referenced {
		group.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := s.store.CopyAudioTo(filename, audioDir); err != nil {
				if errors.Is(err, os.ErrNotExist) {
					s.log.Warn("export skipping missing audio file", "filename", filename)
					return nil
				}
				return fmt.Errorf("copy %s: %w", filename, err)
			}
			return nil
		})
	}
	return group.Wait()
}

// writeArchive zips the staging directory into dst, the archive file
// itself excluded.
func writeArchive(dst, staging, archiveName string) error {
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()

	w := zip.NewWriter(f)
	err = filepath.WalkDir(staging, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(staging, path)
		if err != nil {
			return err
		}
		if rel == archiveName {
			return nil
		}

		entry, err := w.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(entry, src)
		return err
	})
	if err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return f.Close()
}
