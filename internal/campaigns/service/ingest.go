package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"campaign_audio_backend/internal/campaigns/repository"
	"campaign_audio_backend/platform/apperr"
	"campaign_audio_backend/platform/phone"
)

// phoneAliases are the header names recognized as the phone column,
// compared case-insensitively after trimming.
var phoneAliases = map[string]struct{}{
	"phone":        {},
	"phone number": {},
	"phone_number": {},
}

// ParseLeads reads a lead CSV and returns one NewLead per distinct phone
// number. Rows without a usable phone are skipped; when a phone repeats,
// the last row wins. Every column, the phone column included, is carried
// into the lead's data map for template rendering.
func ParseLeads(r io.Reader, campaignName, generationNo, region string) ([]repository.NewLead, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, apperr.Validation("csv file is empty")
		}
		return nil, apperr.Validation("cannot read csv header")
	}

	phoneIdx := -1
	columns := make([]string, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		columns[i] = name
		if _, ok := phoneAliases[strings.ToLower(name)]; ok && phoneIdx < 0 {
			phoneIdx = i
		}
	}
	if phoneIdx < 0 {
		return nil, apperr.Validation("csv has no phone column (expected a header named \"phone\" or \"phone number\")")
	}

	var gen *string
	if generationNo != "" {
		gen = &generationNo
	}

	leads := make([]repository.NewLead, 0)
	seen := make(map[string]int)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperr.Validation(fmt.Sprintf("malformed csv at line %d", line))
		}
		if phoneIdx >= len(record) {
			continue
		}

		canonical := phone.Canonical(record[phoneIdx], region)
		if canonical == "" {
			continue
		}

		data := make(map[string]any, len(columns))
		for i, name := range columns {
			if name == "" || i >= len(record) {
				continue
			}
			// Empty cells become nulls so template rendering can tell a
			// missing value from a blank one.
			if value := strings.TrimSpace(record[i]); value != "" {
				data[name] = value
			} else {
				data[name] = nil
			}
		}

		lead := repository.NewLead{
			PhoneNumber:  canonical,
			CampaignName: campaignName,
			GenerationNo: gen,
			LeadData:     data,
		}
		if i, ok := seen[canonical]; ok {
			leads[i] = lead
			continue
		}
		seen[canonical] = len(leads)
		leads = append(leads, lead)
	}

	if len(leads) == 0 {
		return nil, apperr.Validation("csv contains no rows with a usable phone number")
	}
	return leads, nil
}
