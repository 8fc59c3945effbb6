package service

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	campaignrepo "campaign_audio_backend/internal/campaigns/repository"
	"campaign_audio_backend/platform/apperr"
	"campaign_audio_backend/platform/logger"
)

type fakeSnapshotRepo struct {
	leads      []campaignrepo.Lead
	replaced   []campaignrepo.Lead
	swapCalled bool
}

func (f *fakeSnapshotRepo) ListByGeneration(context.Context, string) ([]campaignrepo.Lead, error) {
	return f.leads, nil
}

func (f *fakeSnapshotRepo) ReplaceAll(_ context.Context, leads []campaignrepo.Lead, swapFiles func() error) error {
	f.replaced = leads
	if swapFiles != nil {
		f.swapCalled = true
		return swapFiles()
	}
	return nil
}

type fakeFileStore struct {
	missing     map[string]bool
	replacedDir string
}

func (f *fakeFileStore) CopyAudioTo(filename, dstDir string) error {
	if f.missing[filename] {
		return os.ErrNotExist
	}
	return os.WriteFile(filepath.Join(dstDir, filename), []byte("RIFF"), 0o644)
}

func (f *fakeFileStore) ReplaceAudioTree(srcDir string) error {
	f.replacedDir = srcDir
	return nil
}

type fakeLocker struct {
	shared, exclusive int
}

func (f *fakeLocker) Shared() (func(), error) {
	f.shared++
	return func() { f.shared-- }, nil
}

func (f *fakeLocker) Exclusive() (func(), error) {
	f.exclusive++
	return func() { f.exclusive-- }, nil
}

func newTestService(repo *fakeSnapshotRepo, store *fakeFileStore, lock *fakeLocker) *Service {
	return New(repo, store, lock, logger.New("development"))
}

func archiveEntries(t *testing.T, path string) map[string]bool {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer r.Close()

	entries := make(map[string]bool)
	for _, f := range r.File {
		entries[f.Name] = true
	}
	return entries
}

func TestExport_ProducesDumpAndAudio(t *testing.T) {
	lead := sampleLead()
	repo := &fakeSnapshotRepo{leads: []campaignrepo.Lead{lead}}
	lock := &fakeLocker{}
	svc := newTestService(repo, &fakeFileStore{}, lock)

	archive, cleanup, err := svc.Export(context.Background(), "g1")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	defer cleanup()

	entries := archiveEntries(t, archive.Path)
	if !entries[DumpFilename] {
		t.Fatalf("archive missing %s: %v", DumpFilename, entries)
	}
	if !entries["audio/x_no_amd.wav"] {
		t.Fatalf("archive missing referenced audio: %v", entries)
	}
	if entries[archive.Filename] {
		t.Fatal("archive must not contain itself")
	}
	if lock.shared != 0 {
		t.Fatal("shared lock not released")
	}
}

func TestExport_ArchiveNameCarriesCampaignAndGeneration(t *testing.T) {
	lead := sampleLead()
	lead.CampaignName = "spring/sale:v2"
	repo := &fakeSnapshotRepo{leads: []campaignrepo.Lead{lead}}
	svc := newTestService(repo, &fakeFileStore{}, &fakeLocker{})

	archive, cleanup, err := svc.Export(context.Background(), "g1")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	defer cleanup()

	name := archive.Filename
	if filepath.Ext(name) != ".zip" {
		t.Fatalf("unexpected extension: %s", name)
	}
	for _, c := range []string{"/", ":"} {
		if bytes.Contains([]byte(name), []byte(c)) {
			t.Fatalf("archive name %q not sanitized", name)
		}
	}
}

func TestExport_SkipsMissingAudioFiles(t *testing.T) {
	repo := &fakeSnapshotRepo{leads: []campaignrepo.Lead{sampleLead()}}
	store := &fakeFileStore{missing: map[string]bool{"x_no_amd.wav": true}}
	svc := newTestService(repo, store, &fakeLocker{})

	archive, cleanup, err := svc.Export(context.Background(), "g1")
	if err != nil {
		t.Fatalf("missing audio must not fail the export: %v", err)
	}
	defer cleanup()

	entries := archiveEntries(t, archive.Path)
	if entries["audio/x_no_amd.wav"] {
		t.Fatal("missing file must be skipped, not fabricated")
	}
	if !entries[DumpFilename] {
		t.Fatal("dump must still be present")
	}
}

func TestExport_UnknownGeneration(t *testing.T) {
	svc := newTestService(&fakeSnapshotRepo{}, &fakeFileStore{}, &fakeLocker{})
	_, _, err := svc.Export(context.Background(), "nope")
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func buildArchive(t *testing.T, withDump bool, extra map[string][]byte) (*bytes.Reader, int64) {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	if withDump {
		var dump bytes.Buffer
		if err := WriteDump(&dump, []campaignrepo.Lead{sampleLead()}); err != nil {
			t.Fatalf("WriteDump: %v", err)
		}
		entry, err := w.Create(DumpFilename)
		if err != nil {
			t.Fatalf("create dump entry: %v", err)
		}
		if _, err := entry.Write(dump.Bytes()); err != nil {
			t.Fatalf("write dump entry: %v", err)
		}
	}
	for name, data := range extra {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := entry.Write(data); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return bytes.NewReader(buf.Bytes()), int64(buf.Len())
}

func TestImport_ReplacesStateUnderExclusiveLock(t *testing.T) {
	repo := &fakeSnapshotRepo{}
	store := &fakeFileStore{}
	lock := &fakeLocker{}
	svc := newTestService(repo, store, lock)

	archive, size := buildArchive(t, true, map[string][]byte{"audio/x_no_amd.wav": []byte("RIFF")})
	result, err := svc.Import(context.Background(), archive, size)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Leads != 1 {
		t.Fatalf("unexpected lead count %d", result.Leads)
	}
	if len(repo.replaced) != 1 {
		t.Fatal("rows were not reconstructed")
	}
	if !repo.swapCalled {
		t.Fatal("audio tree swap must run inside the transaction window")
	}
	if store.replacedDir == "" {
		t.Fatal("audio tree was not replaced")
	}
	if lock.exclusive != 0 {
		t.Fatal("exclusive lock not released")
	}
}

func TestImport_RejectsArchiveWithoutDump(t *testing.T) {
	svc := newTestService(&fakeSnapshotRepo{}, &fakeFileStore{}, &fakeLocker{})
	archive, size := buildArchive(t, false, map[string][]byte{"audio/x.wav": []byte("RIFF")})

	_, err := svc.Import(context.Background(), archive, size)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestImport_RejectsEscapingEntries(t *testing.T) {
	repo := &fakeSnapshotRepo{}
	svc := newTestService(repo, &fakeFileStore{}, &fakeLocker{})
	archive, size := buildArchive(t, true, map[string][]byte{"../evil.sh": []byte("#!/bin/sh")})

	_, err := svc.Import(context.Background(), archive, size)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for traversal entry, got %v", err)
	}
	if len(repo.replaced) != 0 {
		t.Fatal("nothing may be replaced when extraction fails")
	}
}

func TestImport_RejectsGarbage(t *testing.T) {
	svc := newTestService(&fakeSnapshotRepo{}, &fakeFileStore{}, &fakeLocker{})
	data := bytes.NewReader([]byte("not a zip"))
	if _, err := svc.Import(context.Background(), data, int64(data.Len())); apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
