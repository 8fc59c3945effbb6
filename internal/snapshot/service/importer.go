package service

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"campaign_audio_backend/platform/apperr"
)

// maxArchiveFileSize caps a single extracted archive entry.
const maxArchiveFileSize = 1 << 30

// ImportResult reports what an import reconstructed.
type ImportResult struct {
	Leads      int `json:"leads"`
	AudioFiles int `json:"audioFiles"`
}

// Import replaces the entire live campaign state with the archive's
// contents. This is destructive and cannot be undone except by a prior
// export. The whole operation runs under the exclusive store lock:
// truncate and bulk insert share one transaction, and the audio tree
// swap runs inside that transaction window so a copy failure still rolls
// the rows back. Already-wiped audio files are the accepted cost of a
// swap failure.
func (s *Service) Import(ctx context.Context, archive io.ReaderAt, size int64) (ImportResult, error) {
	extracted, err := extract(archive, size)
	if err != nil {
		return ImportResult{}, err
	}
	defer func() {
		if err := os.RemoveAll(extracted); err != nil {
			s.log.FileCleanupError(extracted, err)
		}
	}()

	dumpPath := filepath.Join(extracted, DumpFilename)
	dump, err := os.Open(dumpPath)
	if err != nil {
		return ImportResult{}, apperr.Validation("archive is missing " + DumpFilename)
	}
	leads, err := ReadDump(dump)
	dump.Close()
	if err != nil {
		return ImportResult{}, err
	}
	if len(leads) == 0 {
		return ImportResult{}, apperr.Validation("archive contains no leads")
	}

	release, err := s.lock.Exclusive()
	if err != nil {
		return ImportResult{}, fmt.Errorf("acquire exclusive store lock: %w", err)
	}
	defer release()

	audioDir := filepath.Join(extracted, ArchiveAudioDir)
	err = s.repo.ReplaceAll(ctx, leads, func() error {
		return s.store.ReplaceAudioTree(audioDir)
	})
	if err != nil {
		return ImportResult{}, err
	}

	result := ImportResult{Leads: len(leads)}
	if entries, err := os.ReadDir(audioDir); err == nil {
		result.AudioFiles = len(entries)
	}
	s.log.Info("campaign state replaced from snapshot", "leads", result.Leads, "audio_files", result.AudioFiles)
	return result, nil
}

// extract unpacks the archive into a fresh temporary directory. Entry
// names are confined to that directory; anything trying to escape it
// fails the import.
func extract(archive io.ReaderAt, size int64) (string, error) {
	reader, err := zip.NewReader(archive, size)
	if err != nil {
		return "", apperr.Validation("not a valid zip archive")
	}

	dir, err := os.MkdirTemp("", "campaign-import-*")
	if err != nil {
		return "", fmt.Errorf("create extraction dir: %w", err)
	}

	for _, file := range reader.File {
		if err := extractFile(dir, file); err != nil {
			os.RemoveAll(dir)
			return "", err
		}
	}
	return dir, nil
}

func extractFile(dir string, file *zip.File) error {
	dst, err := safeJoin(dir, file.Name)
	if err != nil {
		return err
	}
	if file.FileInfo().IsDir() {
		return os.MkdirAll(dst, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open archive entry %s: %w", file.Name, err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create extracted file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, io.LimitReader(src, maxArchiveFileSize)); err != nil {
		return fmt.Errorf("extract %s: %w", file.Name, err)
	}
	return out.Close()
}

// safeJoin resolves an archive entry name inside dir, rejecting absolute
// names and traversal.
func safeJoin(dir, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", apperr.Validation(fmt.Sprintf("archive entry %q escapes the extraction directory", name))
	}
	return filepath.Join(dir, cleaned), nil
}
