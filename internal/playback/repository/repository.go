// Package repository implements the read-only lead lookups the dialer needs.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"campaign_audio_backend/internal/campaigns/domain"
	"campaign_audio_backend/platform/apperr"
)

const playbackColumns = `phone_number, status,
	audio_filename_no_amd, audio_filename_amd, audio_filename_transfer, audio_filename_voicemail`

// PlaybackLead is the slice of a lead the dialer protocol needs.
type PlaybackLead struct {
	PhoneNumber string
	Status      domain.Status
	NoAMD       *string
	AMD         *string
	Transfer    *string
	Voicemail   *string
}

// AudioFilename returns the stored filename for a variant, nil when that
// variant was never generated.
func (l *PlaybackLead) AudioFilename(variant domain.Variant) *string {
	switch variant {
	case domain.VariantNoAMD:
		return l.NoAMD
	case domain.VariantAMD:
		return l.AMD
	case domain.VariantTransfer:
		return l.Transfer
	case domain.VariantVoicemail:
		return l.Voicemail
	}
	return nil
}

// Repo implements the playback lead reader.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new playback repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// RandomCompleted picks one COMPLETED lead of the generation uniformly at
// random. Two simultaneous calls may pick the same lead; the dialer
// protocol tolerates that.
func (r *Repo) RandomCompleted(ctx context.Context, generationNo string) (PlaybackLead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+playbackColumns+`
		FROM leads
		WHERE generation_no = $1 AND status = $2
		ORDER BY random()
		LIMIT 1`,
		generationNo, domain.StatusCompleted,
	)
	return scan(row, "no completed lead for generation "+generationNo)
}

// GetByPhone resolves a lead by its stable key, the phone number.
func (r *Repo) GetByPhone(ctx context.Context, phoneNumber string) (PlaybackLead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+playbackColumns+`
		FROM leads
		WHERE phone_number = $1`,
		phoneNumber,
	)
	return scan(row, "unknown lead key")
}

func scan(row pgx.Row, notFound string) (PlaybackLead, error) {
	var lead PlaybackLead
	err := row.Scan(&lead.PhoneNumber, &lead.Status, &lead.NoAMD, &lead.AMD, &lead.Transfer, &lead.Voicemail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PlaybackLead{}, apperr.NotFound(notFound)
		}
		return PlaybackLead{}, fmt.Errorf("query playback lead: %w", err)
	}
	return lead, nil
}
