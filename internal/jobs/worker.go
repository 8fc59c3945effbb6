package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"campaign_audio_backend/internal/campaigns/domain"
	campaignrepo "campaign_audio_backend/internal/campaigns/repository"
	"campaign_audio_backend/internal/tts"
	voicerepo "campaign_audio_backend/internal/voices/repository"
	"campaign_audio_backend/platform/config"
	"campaign_audio_backend/platform/logger"
)

// LeadStore is the lead persistence port of the worker.
type LeadStore interface {
	ClaimProcessing(ctx context.Context, id uuid.UUID) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (campaignrepo.Lead, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, params campaignrepo.CompletionParams) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID) (bool, error)
}

// VoiceSource supplies the active voices of a group.
type VoiceSource interface {
	ListActiveVoices(ctx context.Context, groupID uuid.UUID) ([]voicerepo.Voice, error)
}

// AudioSaver persists generated audio into the live tree.
type AudioSaver interface {
	SaveAudio(filename string, data []byte) error
	RemoveAudio(filename string)
}

// StoreLocker serializes audio writes against snapshot imports.
type StoreLocker interface {
	Shared() (func(), error)
}

// VoicePicker selects one voice from a non-empty slice. Swapped in tests.
type VoicePicker func(voices []voicerepo.Voice) voicerepo.Voice

// Worker consumes lead audio generation tasks.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	leads  LeadStore
	voices VoiceSource
	synth  tts.Synthesizer
	store  AudioSaver
	lock   StoreLocker
	pick   VoicePicker
	log    *logger.Logger
}

// NewWorker creates the asynq worker for audio generation tasks.
func NewWorker(cfg config.QueueConfig, leads LeadStore, voices VoiceSource, synth tts.Synthesizer, store AudioSaver, lock StoreLocker, pick VoicePicker, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}
	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		leads:  leads,
		voices: voices,
		synth:  synth,
		store:  store,
		lock:   lock,
		pick:   pick,
		log:    log,
	}
	mux.HandleFunc(TaskLeadAudio, w.HandleLeadAudio)

	return w, nil
}

// Run serves tasks until the context is canceled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("audio worker stopped", "error", err)
	}
}

// HandleLeadAudio generates every requested variant for one lead.
//
// The lead is claimed PROCESSING first; a failed claim means another
// execution already handled it (or its row was replaced) and the task is
// dropped as stale. Any later failure marks the lead FAILED before the
// error is returned, so a retried task finds no PENDING row and no-ops.
func (w *Worker) HandleLeadAudio(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadAudioPayload(task)
	if err != nil {
		return err
	}
	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return fmt.Errorf("invalid lead id %q: %w", payload.LeadID, err)
	}
	groupID, err := uuid.Parse(payload.VoiceGroupID)
	if err != nil {
		return fmt.Errorf("invalid voice group id %q: %w", payload.VoiceGroupID, err)
	}

	claimed, err := w.leads.ClaimProcessing(ctx, leadID)
	if err != nil {
		return err
	}
	if !claimed {
		w.log.JobEvent("stale_claim_dropped", payload.LeadID)
		return nil
	}

	if err := w.generate(ctx, leadID, groupID, payload); err != nil {
		if _, failErr := w.leads.MarkFailed(ctx, leadID); failErr != nil {
			w.log.DatabaseError("mark lead failed", failErr)
		}
		w.log.JobEvent("generation_failed", payload.LeadID)
		return err
	}
	w.log.JobEvent("completed", payload.LeadID)
	return nil
}

func (w *Worker) generate(ctx context.Context, leadID, groupID uuid.UUID, payload LeadAudioPayload) error {
	lead, err := w.leads.GetByID(ctx, leadID)
	if err != nil {
		return err
	}

	voices, err := w.voices.ListActiveVoices(ctx, groupID)
	if err != nil {
		return err
	}
	if len(voices) == 0 {
		return fmt.Errorf("voice group %s has no active voices", groupID)
	}
	voice := w.pick(voices)

	templates := map[domain.Variant]string{
		domain.VariantNoAMD:     payload.TemplateNoAMD,
		domain.VariantAMD:       payload.TemplateAMD,
		domain.VariantTransfer:  payload.TemplateTransfer,
		domain.VariantVoicemail: payload.TemplateVoicemail,
	}

	params := campaignrepo.CompletionParams{
		AudioFilenames: make(map[domain.Variant]string),
		Transcripts:    make(map[domain.Variant]campaignrepo.Transcript),
	}

	// The shared lock keeps a snapshot import from wiping the tree while
	// variant files land in it.
	release, err := w.lock.Shared()
	if err != nil {
		return fmt.Errorf("acquire store lock: %w", err)
	}
	defer release()

	var saved []string
	cleanup := func() {
		for _, filename := range saved {
			w.store.RemoveAudio(filename)
		}
	}

	for _, variant := range domain.Variants {
		tpl := templates[variant]
		if tpl == "" {
			continue
		}
		text := RenderTemplate(tpl, lead.LeadData)
		if text == "" {
			continue
		}

		result, err := w.synth.Synthesize(ctx, tts.SynthesisRequest{
			Text:       text,
			VoicePath:  voice.Filepath,
			LLMEnabled: payload.LLMEnabled,
		})
		if err != nil {
			cleanup()
			return fmt.Errorf("synthesize %s variant: %w", variant, err)
		}

		filename := fmt.Sprintf("%s_%s.wav", leadID, variant)
		if err := w.store.SaveAudio(filename, result.Audio); err != nil {
			cleanup()
			return fmt.Errorf("save %s audio: %w", variant, err)
		}
		saved = append(saved, filename)

		params.AudioFilenames[variant] = filename
		if payload.LLMEnabled {
			params.Transcripts[variant] = campaignrepo.Transcript{
				Input:  result.InputText,
				Output: result.OutputText,
			}
		}
	}

	if len(params.AudioFilenames) == 0 {
		return fmt.Errorf("no variant produced audio for lead %s", leadID)
	}

	ok, err := w.leads.MarkCompleted(ctx, leadID, params)
	if err != nil {
		cleanup()
		return err
	}
	if !ok {
		// The row left PROCESSING underneath us, most likely replaced by a
		// re-ingestion. The generated files belong to nobody.
		cleanup()
		w.log.JobEvent("stale_completion_dropped", leadID.String())
	}
	return nil
}
