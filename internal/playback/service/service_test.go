package service

import (
	"context"
	"testing"

	"campaign_audio_backend/internal/playback/repository"
	"campaign_audio_backend/platform/apperr"
)

type fakeLeadReader struct {
	random  repository.PlaybackLead
	byPhone map[string]repository.PlaybackLead
	randErr error
}

func (f *fakeLeadReader) RandomCompleted(_ context.Context, generationNo string) (repository.PlaybackLead, error) {
	if f.randErr != nil {
		return repository.PlaybackLead{}, f.randErr
	}
	return f.random, nil
}

func (f *fakeLeadReader) GetByPhone(_ context.Context, phoneNumber string) (repository.PlaybackLead, error) {
	lead, ok := f.byPhone[phoneNumber]
	if !ok {
		return repository.PlaybackLead{}, apperr.NotFound("unknown lead key")
	}
	return lead, nil
}

type resolverConfig struct{}

func (resolverConfig) GetPublicBaseURL() string { return "http://example.com" }
func (resolverConfig) GetPhoneRegion() string   { return "US" }

func TestRandomAudio_ReturnsURLAndLeadKey(t *testing.T) {
	filename := "lead1_no_amd.wav"
	repo := &fakeLeadReader{random: repository.PlaybackLead{
		PhoneNumber: "+14155552671",
		Status:      "COMPLETED",
		NoAMD:       &filename,
	}}
	svc := New(repo, resolverConfig{})

	sel, err := svc.RandomAudio(context.Background(), "g1", "NO_AMD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel.LeadKey != "+14155552671" {
		t.Fatalf("unexpected lead key %s", sel.LeadKey)
	}
	if sel.AudioURL == nil || *sel.AudioURL != "http://example.com/audio/lead1_no_amd.wav" {
		t.Fatalf("unexpected URL %v", sel.AudioURL)
	}
}

func TestRandomAudio_MissingVariantYieldsNullURL(t *testing.T) {
	repo := &fakeLeadReader{random: repository.PlaybackLead{PhoneNumber: "+14155552671"}}
	svc := New(repo, resolverConfig{})

	sel, err := svc.RandomAudio(context.Background(), "g1", "voicemail")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel.AudioURL != nil {
		t.Fatalf("expected null URL for ungenerated variant, got %s", *sel.AudioURL)
	}
	if sel.LeadKey == "" {
		t.Fatal("lead key must still be returned")
	}
}

func TestRandomAudio_RejectsUnknownAudioType(t *testing.T) {
	svc := New(&fakeLeadReader{}, resolverConfig{})
	_, err := svc.RandomAudio(context.Background(), "g1", "greeting")
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRandomAudio_NoEligibleLead(t *testing.T) {
	repo := &fakeLeadReader{randErr: apperr.NotFound("no completed lead for generation g9")}
	svc := New(repo, resolverConfig{})
	_, err := svc.RandomAudio(context.Background(), "g9", "amd")
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSpecificAudio_CanonicalizesLeadKey(t *testing.T) {
	filename := "lead1_transfer.wav"
	repo := &fakeLeadReader{byPhone: map[string]repository.PlaybackLead{
		"+14155552671": {PhoneNumber: "+14155552671", Transfer: &filename},
	}}
	svc := New(repo, resolverConfig{})

	res, err := svc.SpecificAudio(context.Background(), "(415) 555-2671", "transfer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.AudioURL == nil || *res.AudioURL != "http://example.com/audio/lead1_transfer.wav" {
		t.Fatalf("unexpected URL %v", res.AudioURL)
	}
}

func TestSpecificAudio_UnknownKey(t *testing.T) {
	svc := New(&fakeLeadReader{}, resolverConfig{})
	_, err := svc.SpecificAudio(context.Background(), "+14155550000", "amd")
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
