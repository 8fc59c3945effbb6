// Package repository implements the snapshot reads and the destructive
// whole-store reload.
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	campaignrepo "campaign_audio_backend/internal/campaigns/repository"
)

// Repo implements snapshot persistence.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new snapshot repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ListByGeneration returns every lead of a generation, all columns, in
// insertion order.
func (r *Repo) ListByGeneration(ctx context.Context, generationNo string) ([]campaignrepo.Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, phone_number, campaign_name, generation_no, lead_data, status,
			audio_filename_no_amd, audio_filename_amd, audio_filename_transfer, audio_filename_voicemail,
			llm_input_no_amd, llm_output_no_amd, llm_input_amd, llm_output_amd,
			llm_input_transfer, llm_output_transfer, llm_input_voicemail, llm_output_voicemail,
			created_at, updated_at
		FROM leads
		WHERE generation_no = $1
		ORDER BY created_at`,
		generationNo,
	)
	if err != nil {
		return nil, fmt.Errorf("list generation leads: %w", err)
	}
	defer rows.Close()

	leads := make([]campaignrepo.Lead, 0)
	for rows.Next() {
		var lead campaignrepo.Lead
		var data []byte
		err := rows.Scan(
			&lead.ID, &lead.PhoneNumber, &lead.CampaignName, &lead.GenerationNo, &data, &lead.Status,
			&lead.AudioFilenameNoAMD, &lead.AudioFilenameAMD, &lead.AudioFilenameTransfer, &lead.AudioFilenameVoicemail,
			&lead.LLMInputNoAMD, &lead.LLMOutputNoAMD, &lead.LLMInputAMD, &lead.LLMOutputAMD,
			&lead.LLMInputTransfer, &lead.LLMOutputTransfer, &lead.LLMInputVoicemail, &lead.LLMOutputVoicemail,
			&lead.CreatedAt, &lead.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan generation lead: %w", err)
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &lead.LeadData); err != nil {
				return nil, fmt.Errorf("decode lead data: %w", err)
			}
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate generation leads: %w", rows.Err())
	}
	return leads, nil
}

// ReplaceAll wipes the entire lead table, identity reset included, and
// bulk-inserts the given rows with their original identities preserved.
// The given tree swap runs inside the same transaction window so a copy
// failure still rolls the rows back.
func (r *Repo) ReplaceAll(ctx context.Context, leads []campaignrepo.Lead, swapFiles func() error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE TABLE leads RESTART IDENTITY`); err != nil {
		return fmt.Errorf("truncate leads: %w", err)
	}

	copyRows := make([][]any, 0, len(leads))
	for _, lead := range leads {
		data, err := json.Marshal(lead.LeadData)
		if err != nil {
			return fmt.Errorf("encode lead data: %w", err)
		}
		copyRows = append(copyRows, []any{
			lead.ID, lead.PhoneNumber, lead.CampaignName, lead.GenerationNo, data, string(lead.Status),
			lead.AudioFilenameNoAMD, lead.AudioFilenameAMD, lead.AudioFilenameTransfer, lead.AudioFilenameVoicemail,
			lead.LLMInputNoAMD, lead.LLMOutputNoAMD, lead.LLMInputAMD, lead.LLMOutputAMD,
			lead.LLMInputTransfer, lead.LLMOutputTransfer, lead.LLMInputVoicemail, lead.LLMOutputVoicemail,
			lead.CreatedAt, lead.UpdatedAt,
		})
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"leads"},
		[]string{
			"id", "phone_number", "campaign_name", "generation_no", "lead_data", "status",
			"audio_filename_no_amd", "audio_filename_amd", "audio_filename_transfer", "audio_filename_voicemail",
			"llm_input_no_amd", "llm_output_no_amd", "llm_input_amd", "llm_output_amd",
			"llm_input_transfer", "llm_output_transfer", "llm_input_voicemail", "llm_output_voicemail",
			"created_at", "updated_at",
		},
		pgx.CopyFromRows(copyRows),
	)
	if err != nil {
		return fmt.Errorf("bulk insert leads: %w", err)
	}

	if swapFiles != nil {
		if err := swapFiles(); err != nil {
			return fmt.Errorf("replace audio tree: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}
