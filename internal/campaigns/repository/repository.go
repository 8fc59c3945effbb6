// Package repository implements the lead store on PostgreSQL. It is the
// system of record for leads; all status transitions go through the guarded
// updates here so concurrent worker reports can never regress a row.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"campaign_audio_backend/internal/campaigns/domain"
	"campaign_audio_backend/platform/apperr"
)

const leadNotFoundMessage = "lead not found"

const leadColumns = `id, phone_number, campaign_name, generation_no, lead_data, status,
	audio_filename_no_amd, audio_filename_amd, audio_filename_transfer, audio_filename_voicemail,
	llm_input_no_amd, llm_output_no_amd, llm_input_amd, llm_output_amd,
	llm_input_transfer, llm_output_transfer, llm_input_voicemail, llm_output_voicemail,
	created_at, updated_at`

// Lead is one contact row in a campaign.
type Lead struct {
	ID           uuid.UUID
	PhoneNumber  string
	CampaignName string
	GenerationNo *string
	LeadData     map[string]any
	Status       domain.Status

	AudioFilenameNoAMD     *string
	AudioFilenameAMD       *string
	AudioFilenameTransfer  *string
	AudioFilenameVoicemail *string

	LLMInputNoAMD      *string
	LLMOutputNoAMD     *string
	LLMInputAMD        *string
	LLMOutputAMD       *string
	LLMInputTransfer   *string
	LLMOutputTransfer  *string
	LLMInputVoicemail  *string
	LLMOutputVoicemail *string

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// AudioFilename returns the stored filename for a variant, or nil.
func (l *Lead) AudioFilename(variant domain.Variant) *string {
	switch variant {
	case domain.VariantNoAMD:
		return l.AudioFilenameNoAMD
	case domain.VariantAMD:
		return l.AudioFilenameAMD
	case domain.VariantTransfer:
		return l.AudioFilenameTransfer
	case domain.VariantVoicemail:
		return l.AudioFilenameVoicemail
	}
	return nil
}

// ReferencedFiles lists every non-empty audio filename on the lead.
func (l *Lead) ReferencedFiles() []string {
	files := make([]string, 0, len(domain.Variants))
	for _, variant := range domain.Variants {
		if name := l.AudioFilename(variant); name != nil && *name != "" {
			files = append(files, *name)
		}
	}
	return files
}

// NewLead carries the fields of a lead about to be ingested.
type NewLead struct {
	PhoneNumber  string
	CampaignName string
	GenerationNo *string
	LeadData     map[string]any
}

// Transcript is one input/output text pair recorded for a variant when
// language-generation assistance is enabled.
type Transcript struct {
	Input  string
	Output string
}

// CompletionParams carries a worker's terminal report for a lead.
type CompletionParams struct {
	AudioFilenames map[domain.Variant]string
	Transcripts    map[domain.Variant]Transcript
}

// Repo implements the lead store.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new lead repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ReplaceBatch deletes any existing lead whose phone number appears in the
// batch, then inserts the batch as PENDING rows, all in one transaction.
// It returns the new lead ids and the audio filenames orphaned by the
// replaced rows so the caller can remove them best-effort after commit.
func (r *Repo) ReplaceBatch(ctx context.Context, leads []NewLead) ([]uuid.UUID, []string, error) {
	if len(leads) == 0 {
		return nil, nil, apperr.Validation("no valid leads to insert")
	}

	phones := make([]string, 0, len(leads))
	for _, lead := range leads {
		phones = append(phones, lead.PhoneNumber)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin replace batch: %w", err)
	}
	defer tx.Rollback(ctx)

	orphaned, err := collectReferencedFiles(ctx, tx, phones)
	if err != nil {
		return nil, nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM leads WHERE phone_number = ANY($1)`, phones); err != nil {
		return nil, nil, fmt.Errorf("delete replaced leads: %w", err)
	}

	batch := &pgx.Batch{}
	ids := make([]uuid.UUID, 0, len(leads))
	for _, lead := range leads {
		data, err := json.Marshal(lead.LeadData)
		if err != nil {
			return nil, nil, fmt.Errorf("encode lead data: %w", err)
		}
		id := uuid.New()
		ids = append(ids, id)
		batch.Queue(`
			INSERT INTO leads (id, phone_number, campaign_name, generation_no, lead_data, status)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			id, lead.PhoneNumber, lead.CampaignName, lead.GenerationNo, data, domain.StatusPending,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range leads {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return nil, nil, fmt.Errorf("insert lead: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return nil, nil, fmt.Errorf("close insert batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit replace batch: %w", err)
	}
	return ids, orphaned, nil
}

func collectReferencedFiles(ctx context.Context, tx pgx.Tx, phones []string) ([]string, error) {
	rows, err := tx.Query(ctx, `
		SELECT audio_filename_no_amd, audio_filename_amd, audio_filename_transfer, audio_filename_voicemail
		FROM leads WHERE phone_number = ANY($1)`, phones)
	if err != nil {
		return nil, fmt.Errorf("select replaced lead files: %w", err)
	}
	defer rows.Close()

	var files []string
	for rows.Next() {
		names := make([]*string, 4)
		if err := rows.Scan(&names[0], &names[1], &names[2], &names[3]); err != nil {
			return nil, fmt.Errorf("scan replaced lead files: %w", err)
		}
		for _, name := range names {
			if name != nil && *name != "" {
				files = append(files, *name)
			}
		}
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate replaced lead files: %w", rows.Err())
	}
	return files, nil
}

// GetByID retrieves a lead by id.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	return r.getOne(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
}

// GetByPhone retrieves a lead by its unique phone number.
func (r *Repo) GetByPhone(ctx context.Context, phone string) (Lead, error) {
	return r.getOne(ctx, `SELECT `+leadColumns+` FROM leads WHERE phone_number = $1`, phone)
}

func (r *Repo) getOne(ctx context.Context, query string, arg any) (Lead, error) {
	row := r.pool.QueryRow(ctx, query, arg)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

// List returns leads newest-first with the total row count.
func (r *Repo) List(ctx context.Context, limit, offset int) ([]Lead, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+leadColumns+` FROM leads ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := make([]Lead, 0, limit)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("iterate leads: %w", rows.Err())
	}
	return leads, total, nil
}

// DeleteByIDs removes leads and returns how many rows went away together
// with the audio filenames they referenced.
func (r *Repo) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int, []string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT audio_filename_no_amd, audio_filename_amd, audio_filename_transfer, audio_filename_voicemail
		FROM leads WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, nil, fmt.Errorf("select leads for delete: %w", err)
	}
	var files []string
	for rows.Next() {
		names := make([]*string, 4)
		if err := rows.Scan(&names[0], &names[1], &names[2], &names[3]); err != nil {
			rows.Close()
			return 0, nil, fmt.Errorf("scan leads for delete: %w", err)
		}
		for _, name := range names {
			if name != nil && *name != "" {
				files = append(files, *name)
			}
		}
	}
	rows.Close()
	if rows.Err() != nil {
		return 0, nil, fmt.Errorf("iterate leads for delete: %w", rows.Err())
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, nil, fmt.Errorf("delete leads: %w", err)
	}
	return int(tag.RowsAffected()), files, nil
}

// ClaimProcessing moves a PENDING lead to PROCESSING. Returns false when the
// row is gone or already claimed, in which case the caller must treat its
// report as stale and do nothing.
func (r *Repo) ClaimProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3`,
		id, domain.StatusProcessing, domain.StatusPending)
	if err != nil {
		return false, fmt.Errorf("claim lead: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkCompleted records a worker's successful result. The status guard keeps
// duplicate or late reports from touching a terminal row.
func (r *Repo) MarkCompleted(ctx context.Context, id uuid.UUID, params CompletionParams) (bool, error) {
	file := func(v domain.Variant) *string {
		if name, ok := params.AudioFilenames[v]; ok && name != "" {
			return &name
		}
		return nil
	}
	transcript := func(v domain.Variant) (*string, *string) {
		if t, ok := params.Transcripts[v]; ok {
			return &t.Input, &t.Output
		}
		return nil, nil
	}

	inNoAMD, outNoAMD := transcript(domain.VariantNoAMD)
	inAMD, outAMD := transcript(domain.VariantAMD)
	inTransfer, outTransfer := transcript(domain.VariantTransfer)
	inVoicemail, outVoicemail := transcript(domain.VariantVoicemail)

	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET status = $2,
			audio_filename_no_amd = $3, audio_filename_amd = $4,
			audio_filename_transfer = $5, audio_filename_voicemail = $6,
			llm_input_no_amd = $7, llm_output_no_amd = $8,
			llm_input_amd = $9, llm_output_amd = $10,
			llm_input_transfer = $11, llm_output_transfer = $12,
			llm_input_voicemail = $13, llm_output_voicemail = $14,
			updated_at = now()
		WHERE id = $1 AND status = $15`,
		id, domain.StatusCompleted,
		file(domain.VariantNoAMD), file(domain.VariantAMD),
		file(domain.VariantTransfer), file(domain.VariantVoicemail),
		inNoAMD, outNoAMD, inAMD, outAMD,
		inTransfer, outTransfer, inVoicemail, outVoicemail,
		domain.StatusProcessing)
	if err != nil {
		return false, fmt.Errorf("mark lead completed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkFailed records a worker error. Same staleness guard as MarkCompleted.
func (r *Repo) MarkFailed(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3`,
		id, domain.StatusFailed, domain.StatusProcessing)
	if err != nil {
		return false, fmt.Errorf("mark lead failed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (Lead, error) {
	var lead Lead
	var data []byte
	var status string
	if err := row.Scan(
		&lead.ID, &lead.PhoneNumber, &lead.CampaignName, &lead.GenerationNo, &data, &status,
		&lead.AudioFilenameNoAMD, &lead.AudioFilenameAMD, &lead.AudioFilenameTransfer, &lead.AudioFilenameVoicemail,
		&lead.LLMInputNoAMD, &lead.LLMOutputNoAMD, &lead.LLMInputAMD, &lead.LLMOutputAMD,
		&lead.LLMInputTransfer, &lead.LLMOutputTransfer, &lead.LLMInputVoicemail, &lead.LLMOutputVoicemail,
		&lead.CreatedAt, &lead.UpdatedAt,
	); err != nil {
		return Lead{}, err
	}

	parsed, err := domain.ParseStatus(status)
	if err != nil {
		return Lead{}, err
	}
	lead.Status = parsed

	if len(data) > 0 {
		if err := json.Unmarshal(data, &lead.LeadData); err != nil {
			return Lead{}, fmt.Errorf("decode lead data: %w", err)
		}
	}
	return lead, nil
}
