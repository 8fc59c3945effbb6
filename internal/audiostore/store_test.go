package audiostore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"campaign_audio_backend/platform/logger"
)

type storeConfig struct {
	audioDir string
	voiceDir string
}

func (c storeConfig) GetAudioStoragePath() string { return c.audioDir }
func (c storeConfig) GetVoiceStoragePath() string { return c.voiceDir }

func newTestStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	store := New(storeConfig{
		audioDir: filepath.Join(root, "audio"),
		voiceDir: filepath.Join(root, "voices"),
	}, logger.New("development"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return store
}

func TestSaveAudio_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	if err := store.SaveAudio("lead_no_amd.wav", []byte("RIFF")); err != nil {
		t.Fatalf("SaveAudio: %v", err)
	}

	path, err := store.AudioPath("lead_no_amd.wav")
	if err != nil {
		t.Fatalf("AudioPath: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "RIFF" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestAudioPath_RejectsTraversal(t *testing.T) {
	store := newTestStore(t)
	for _, name := range []string{"", "../escape.wav", "a/b.wav", `a\b.wav`} {
		if _, err := store.AudioPath(name); err == nil {
			t.Errorf("AudioPath(%q) must fail", name)
		}
	}
}

func TestSaveVoice_CollisionFreeNames(t *testing.T) {
	store := newTestStore(t)

	name1, path1, err := store.SaveVoice(strings.NewReader("a"), "anna.wav")
	if err != nil {
		t.Fatalf("SaveVoice: %v", err)
	}
	name2, _, err := store.SaveVoice(strings.NewReader("b"), "anna.wav")
	if err != nil {
		t.Fatalf("SaveVoice: %v", err)
	}
	if name1 == name2 {
		t.Fatal("stored names must not collide for equal uploads")
	}
	if !strings.HasSuffix(name1, "_anna.wav") {
		t.Fatalf("original basename must be preserved as suffix: %s", name1)
	}
	if _, err := os.Stat(path1); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
}

func TestRemoveAudio_MissingFileIsSilent(t *testing.T) {
	store := newTestStore(t)
	store.RemoveAudio("never_existed.wav")
}

func TestReplaceAudioTree(t *testing.T) {
	store := newTestStore(t)
	if err := store.SaveAudio("old.wav", []byte("old")); err != nil {
		t.Fatalf("SaveAudio: %v", err)
	}

	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "new.wav"), []byte("new"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	if err := store.ReplaceAudioTree(src); err != nil {
		t.Fatalf("ReplaceAudioTree: %v", err)
	}

	if _, err := os.Stat(filepath.Join(store.AudioDir(), "old.wav")); !os.IsNotExist(err) {
		t.Fatal("old tree must be wiped")
	}
	data, err := os.ReadFile(filepath.Join(store.AudioDir(), "new.wav"))
	if err != nil || string(data) != "new" {
		t.Fatalf("new tree not in place: %v %q", err, data)
	}
}

func TestReplaceAudioTree_MissingSourceLeavesEmptyTree(t *testing.T) {
	store := newTestStore(t)
	if err := store.SaveAudio("old.wav", []byte("old")); err != nil {
		t.Fatalf("SaveAudio: %v", err)
	}

	if err := store.ReplaceAudioTree(filepath.Join(t.TempDir(), "absent")); err != nil {
		t.Fatalf("missing source must yield an empty tree, got %v", err)
	}
	entries, err := os.ReadDir(store.AudioDir())
	if err != nil {
		t.Fatalf("read audio dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty tree, got %d entries", len(entries))
	}
}

func TestCopyAudioTo(t *testing.T) {
	store := newTestStore(t)
	if err := store.SaveAudio("x.wav", []byte("RIFF")); err != nil {
		t.Fatalf("SaveAudio: %v", err)
	}

	dst := t.TempDir()
	if err := store.CopyAudioTo("x.wav", dst); err != nil {
		t.Fatalf("CopyAudioTo: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "x.wav")); err != nil {
		t.Fatalf("copy missing: %v", err)
	}

	if err := store.CopyAudioTo("absent.wav", dst); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist for missing source, got %v", err)
	}
}
