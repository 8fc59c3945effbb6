// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Canonical normalizes a phone number to E.164 for the given region.
// If the value cannot be parsed as a valid number, the trimmed input is
// returned unchanged. Ingestion and lead-key lookup must both go through
// this function so that replace-by-phone and key resolution agree.
func Canonical(input, region string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, region)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}
