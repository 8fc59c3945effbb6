// Package audiostore owns the on-disk audio and voice file trees. Every file
// under these trees is referenced by a lead or voice row; row deletion drives
// best-effort file removal here.
package audiostore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"campaign_audio_backend/platform/logger"

	"github.com/google/uuid"
)

// Store manages the generated-audio tree and the uploaded-voice tree.
type Store struct {
	audioDir string
	voiceDir string
	log      *logger.Logger
}

// Config defines the configuration surface the store needs.
type Config interface {
	GetAudioStoragePath() string
	GetVoiceStoragePath() string
}

// New creates a Store rooted at the configured paths. Call Init before use.
func New(cfg Config, log *logger.Logger) *Store {
	return &Store{
		audioDir: cfg.GetAudioStoragePath(),
		voiceDir: cfg.GetVoiceStoragePath(),
		log:      log,
	}
}

// Init creates the storage directories. This is an explicit startup step,
// never a side effect of construction.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return fmt.Errorf("create audio dir: %w", err)
	}
	if err := os.MkdirAll(s.voiceDir, 0o755); err != nil {
		return fmt.Errorf("create voice dir: %w", err)
	}
	return nil
}

// AudioDir returns the root of the generated-audio tree.
func (s *Store) AudioDir() string { return s.audioDir }

// VoiceDir returns the root of the uploaded-voice tree.
func (s *Store) VoiceDir() string { return s.voiceDir }

// AudioPath resolves a stored audio filename to its absolute path.
// Filenames carrying path separators are rejected.
func (s *Store) AudioPath(filename string) (string, error) {
	if err := validateFilename(filename); err != nil {
		return "", err
	}
	return filepath.Join(s.audioDir, filename), nil
}

// SaveAudio writes generated audio bytes under the given filename.
func (s *Store) SaveAudio(filename string, data []byte) error {
	path, err := s.AudioPath(filename)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// SaveVoice stores an uploaded voice asset under a collision-free filename
// derived from a fresh UUID; the original basename is preserved as a suffix.
// Returns the stored filename and its absolute path.
func (s *Store) SaveVoice(r io.Reader, originalName string) (string, string, error) {
	base := filepath.Base(strings.TrimSpace(originalName))
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "voice"
	}
	filename := fmt.Sprintf("%s_%s", uuid.New().String(), base)
	path := filepath.Join(s.voiceDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", "", fmt.Errorf("create voice file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", "", fmt.Errorf("write voice file: %w", err)
	}
	return filename, path, nil
}

// RemoveAudio deletes a generated audio file, best-effort. A missing file or
// filesystem error is logged and swallowed so data deletion is never blocked.
func (s *Store) RemoveAudio(filename string) {
	path, err := s.AudioPath(filename)
	if err != nil {
		return
	}
	s.removeBestEffort(path)
}

// RemovePath deletes an arbitrary stored file path, best-effort.
func (s *Store) RemovePath(path string) {
	s.removeBestEffort(path)
}

func (s *Store) removeBestEffort(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		if s.log != nil {
			s.log.FileCleanupError(path, err)
		}
	}
}

// ReplaceAudioTree removes the entire live audio tree, recreates it empty and
// copies every regular file from srcDir into it. Used by snapshot import only;
// callers must hold the exclusive store lock.
func (s *Store) ReplaceAudioTree(srcDir string) error {
	if err := os.RemoveAll(s.audioDir); err != nil {
		return fmt.Errorf("wipe audio dir: %w", err)
	}
	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return fmt.Errorf("recreate audio dir: %w", err)
	}

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read import audio dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		src := filepath.Join(srcDir, entry.Name())
		dst := filepath.Join(s.audioDir, entry.Name())
		if err := copyFile(src, dst); err != nil {
			return fmt.Errorf("copy %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// CopyAudioTo copies one stored audio file into dstDir, keeping its name.
// Returns os.ErrNotExist when the source file is gone.
func (s *Store) CopyAudioTo(filename, dstDir string) error {
	src, err := s.AudioPath(filename)
	if err != nil {
		return err
	}
	return copyFile(src, filepath.Join(dstDir, filename))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

func validateFilename(filename string) error {
	if filename == "" {
		return fmt.Errorf("empty filename")
	}
	if strings.ContainsAny(filename, `/\`) || filename != filepath.Base(filename) {
		return fmt.Errorf("invalid filename %q", filename)
	}
	return nil
}
