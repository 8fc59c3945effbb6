package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/google/uuid"

	"campaign_audio_backend/internal/voices/repository"
	"campaign_audio_backend/platform/apperr"
	"campaign_audio_backend/platform/logger"
)

type fakeVoiceRepo struct {
	groups       map[uuid.UUID]repository.VoiceGroup
	voices       []repository.Voice
	deletedPaths []string
}

func (f *fakeVoiceRepo) CreateGroup(_ context.Context, name string, description *string) (repository.VoiceGroup, error) {
	for _, g := range f.groups {
		if g.Name == name {
			return repository.VoiceGroup{}, apperr.Conflict("voice group exists")
		}
	}
	group := repository.VoiceGroup{ID: uuid.New(), Name: name, Description: description}
	if f.groups == nil {
		f.groups = make(map[uuid.UUID]repository.VoiceGroup)
	}
	f.groups[group.ID] = group
	return group, nil
}

func (f *fakeVoiceRepo) GetGroup(_ context.Context, id uuid.UUID) (repository.VoiceGroup, error) {
	group, ok := f.groups[id]
	if !ok {
		return repository.VoiceGroup{}, apperr.NotFound("voice group not found")
	}
	return group, nil
}

func (f *fakeVoiceRepo) ListGroupsWithVoices(context.Context) ([]repository.VoiceGroup, error) {
	groups := make([]repository.VoiceGroup, 0, len(f.groups))
	for _, g := range f.groups {
		groups = append(groups, g)
	}
	return groups, nil
}

func (f *fakeVoiceRepo) DeleteGroup(_ context.Context, id uuid.UUID) ([]string, error) {
	if _, ok := f.groups[id]; !ok {
		return nil, apperr.NotFound("voice group not found")
	}
	delete(f.groups, id)
	return []string{"/voices/a.wav", "/voices/b.wav"}, nil
}

func (f *fakeVoiceRepo) CreateVoice(_ context.Context, groupID uuid.UUID, name, filename, filepath string) (repository.Voice, error) {
	voice := repository.Voice{ID: uuid.New(), GroupID: groupID, Name: name, Filename: filename, Filepath: filepath, IsActive: true}
	f.voices = append(f.voices, voice)
	return voice, nil
}

func (f *fakeVoiceRepo) DeleteVoice(_ context.Context, id uuid.UUID) (string, error) {
	return "/voices/a.wav", nil
}

func (f *fakeVoiceRepo) ToggleActive(_ context.Context, id uuid.UUID) (repository.Voice, error) {
	return repository.Voice{ID: id, IsActive: false}, nil
}

func (f *fakeVoiceRepo) GroupExists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.groups[id]
	return ok, nil
}

func (f *fakeVoiceRepo) HasActiveVoice(context.Context, uuid.UUID) (bool, error) {
	return len(f.voices) > 0, nil
}

type fakeVoiceStore struct {
	saved   []string
	removed []string
}

func (f *fakeVoiceStore) SaveVoice(r io.Reader, originalName string) (string, string, error) {
	io.Copy(io.Discard, r)
	f.saved = append(f.saved, originalName)
	return "uuid_" + originalName, "/voices/uuid_" + originalName, nil
}

func (f *fakeVoiceStore) RemovePath(path string) {
	f.removed = append(f.removed, path)
}

func newTestService(repo *fakeVoiceRepo, store *fakeVoiceStore) *Service {
	return New(repo, store, logger.New("development"))
}

func fileHeader(t *testing.T, filename, contentType string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	part.Write([]byte("RIFF fake audio"))
	w.Close()

	reader := multipart.NewReader(&buf, w.Boundary())
	form, err := reader.ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["file"][0]
}

func TestUploadVoice_AcceptedContentTypes(t *testing.T) {
	for _, contentType := range []string{"audio/wav", "audio/x-wav", "audio/mpeg", "audio/mp3"} {
		repo := &fakeVoiceRepo{}
		group, _ := repo.CreateGroup(context.Background(), "pool", nil)
		store := &fakeVoiceStore{}
		svc := newTestService(repo, store)

		voice, err := svc.UploadVoice(context.Background(), group.ID, "anna", fileHeader(t, "anna.wav", contentType))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", contentType, err)
		}
		if !voice.IsActive {
			t.Fatalf("%s: new voices must start active", contentType)
		}
	}
}

func TestUploadVoice_RejectsOtherContentTypes(t *testing.T) {
	repo := &fakeVoiceRepo{}
	group, _ := repo.CreateGroup(context.Background(), "pool", nil)
	store := &fakeVoiceStore{}
	svc := newTestService(repo, store)

	_, err := svc.UploadVoice(context.Background(), group.ID, "anna", fileHeader(t, "anna.ogg", "audio/ogg"))
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(store.saved) != 0 {
		t.Fatal("rejected upload must not be stored")
	}
}

func TestUploadVoice_UnknownGroup(t *testing.T) {
	svc := newTestService(&fakeVoiceRepo{}, &fakeVoiceStore{})
	_, err := svc.UploadVoice(context.Background(), uuid.New(), "anna", fileHeader(t, "anna.wav", "audio/wav"))
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUploadVoice_FallsBackToOriginalFilename(t *testing.T) {
	repo := &fakeVoiceRepo{}
	group, _ := repo.CreateGroup(context.Background(), "pool", nil)
	svc := newTestService(repo, &fakeVoiceStore{})

	voice, err := svc.UploadVoice(context.Background(), group.ID, "  ", fileHeader(t, "anna.wav", "audio/wav"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if voice.Name != "anna.wav" {
		t.Fatalf("expected fallback to original filename, got %q", voice.Name)
	}
}

func TestCreateGroup_DuplicateName(t *testing.T) {
	repo := &fakeVoiceRepo{}
	svc := newTestService(repo, &fakeVoiceStore{})

	if _, err := svc.CreateGroup(context.Background(), "pool", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := svc.CreateGroup(context.Background(), "pool", nil)
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateGroup_RequiresName(t *testing.T) {
	svc := newTestService(&fakeVoiceRepo{}, &fakeVoiceStore{})
	if _, err := svc.CreateGroup(context.Background(), "   ", nil); apperr.GetKind(err) != apperr.KindValidation {
		t.Fatal("expected validation error for blank name")
	}
}

func TestDeleteGroup_RemovesVoiceFiles(t *testing.T) {
	repo := &fakeVoiceRepo{}
	group, _ := repo.CreateGroup(context.Background(), "pool", nil)
	store := &fakeVoiceStore{}
	svc := newTestService(repo, store)

	if err := svc.DeleteGroup(context.Background(), group.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.removed) != 2 {
		t.Fatalf("expected voice files removed, got %v", store.removed)
	}
}

func TestDeleteVoice_RemovesFile(t *testing.T) {
	store := &fakeVoiceStore{}
	svc := newTestService(&fakeVoiceRepo{}, store)

	if err := svc.DeleteVoice(context.Background(), uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.removed) != 1 {
		t.Fatalf("expected file removal, got %v", store.removed)
	}
}
