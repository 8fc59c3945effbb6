package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"campaign_audio_backend/internal/campaigns/domain"
	campaignrepo "campaign_audio_backend/internal/campaigns/repository"
	"campaign_audio_backend/platform/apperr"
)

// DumpFilename is the mandatory data file at the archive root.
const DumpFilename = "leads.csv"

// ArchiveAudioDir is the archive directory holding referenced audio files.
const ArchiveAudioDir = "audio"

var dumpHeader = []string{
	"id", "phone_number", "campaign_name", "generation_no", "lead_data", "status",
	"audio_filename_no_amd", "audio_filename_amd", "audio_filename_transfer", "audio_filename_voicemail",
	"llm_input_no_amd", "llm_output_no_amd", "llm_input_amd", "llm_output_amd",
	"llm_input_transfer", "llm_output_transfer", "llm_input_voicemail", "llm_output_voicemail",
	"created_at", "updated_at",
}

// WriteDump encodes every column of every lead into the dump file. A
// decode of the output reconstructs the rows verbatim, empty optional
// strings excepted.
func WriteDump(w io.Writer, leads []campaignrepo.Lead) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(dumpHeader); err != nil {
		return fmt.Errorf("write dump header: %w", err)
	}
	for _, lead := range leads {
		data, err := json.Marshal(lead.LeadData)
		if err != nil {
			return fmt.Errorf("encode lead data: %w", err)
		}
		record := []string{
			lead.ID.String(), lead.PhoneNumber, lead.CampaignName, deref(lead.GenerationNo), string(data), string(lead.Status),
			deref(lead.AudioFilenameNoAMD), deref(lead.AudioFilenameAMD), deref(lead.AudioFilenameTransfer), deref(lead.AudioFilenameVoicemail),
			deref(lead.LLMInputNoAMD), deref(lead.LLMOutputNoAMD), deref(lead.LLMInputAMD), deref(lead.LLMOutputAMD),
			deref(lead.LLMInputTransfer), deref(lead.LLMOutputTransfer), deref(lead.LLMInputVoicemail), deref(lead.LLMOutputVoicemail),
			lead.CreatedAt.UTC().Format(time.RFC3339Nano), formatTime(lead.UpdatedAt),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write dump row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadDump decodes a dump file back into lead rows, identities and
// statuses preserved.
func ReadDump(r io.Reader) ([]campaignrepo.Lead, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, apperr.Validation("dump file is empty")
	}
	if len(header) != len(dumpHeader) {
		return nil, apperr.Validation(fmt.Sprintf("dump has %d columns, expected %d", len(header), len(dumpHeader)))
	}

	leads := make([]campaignrepo.Lead, 0)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperr.Validation(fmt.Sprintf("malformed dump at line %d", line))
		}

		lead, err := decodeRecord(record)
		if err != nil {
			return nil, apperr.Validation(fmt.Sprintf("invalid dump row at line %d: %v", line, err))
		}
		leads = append(leads, lead)
	}
	return leads, nil
}

func decodeRecord(record []string) (campaignrepo.Lead, error) {
	var lead campaignrepo.Lead

	id, err := uuid.Parse(record[0])
	if err != nil {
		return lead, fmt.Errorf("bad id: %w", err)
	}
	status, err := domain.ParseStatus(record[5])
	if err != nil {
		return lead, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, record[18])
	if err != nil {
		return lead, fmt.Errorf("bad created_at: %w", err)
	}

	lead.ID = id
	lead.PhoneNumber = record[1]
	lead.CampaignName = record[2]
	lead.GenerationNo = ref(record[3])
	lead.Status = status
	lead.CreatedAt = createdAt

	if record[4] != "" {
		if err := json.Unmarshal([]byte(record[4]), &lead.LeadData); err != nil {
			return lead, fmt.Errorf("bad lead_data: %w", err)
		}
	}
	if record[19] != "" {
		updatedAt, err := time.Parse(time.RFC3339Nano, record[19])
		if err != nil {
			return lead, fmt.Errorf("bad updated_at: %w", err)
		}
		lead.UpdatedAt = &updatedAt
	}

	lead.AudioFilenameNoAMD = ref(record[6])
	lead.AudioFilenameAMD = ref(record[7])
	lead.AudioFilenameTransfer = ref(record[8])
	lead.AudioFilenameVoicemail = ref(record[9])
	lead.LLMInputNoAMD = ref(record[10])
	lead.LLMOutputNoAMD = ref(record[11])
	lead.LLMInputAMD = ref(record[12])
	lead.LLMOutputAMD = ref(record[13])
	lead.LLMInputTransfer = ref(record[14])
	lead.LLMOutputTransfer = ref(record[15])
	lead.LLMInputVoicemail = ref(record[16])
	lead.LLMOutputVoicemail = ref(record[17])

	return lead, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ref(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
