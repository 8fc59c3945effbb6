package domain

import (
	"fmt"
	"strings"
)

// Variant names one of the four message variants a lead may carry audio for.
type Variant string

const (
	VariantNoAMD     Variant = "no_amd"
	VariantAMD       Variant = "amd"
	VariantTransfer  Variant = "transfer"
	VariantVoicemail Variant = "voicemail"
)

// Variants lists all variants in canonical order.
var Variants = []Variant{VariantNoAMD, VariantAMD, VariantTransfer, VariantVoicemail}

// ParseVariant resolves a dialer-supplied audio type, case-insensitively.
func ParseVariant(value string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(value))) {
	case VariantNoAMD:
		return VariantNoAMD, nil
	case VariantAMD:
		return VariantAMD, nil
	case VariantTransfer:
		return VariantTransfer, nil
	case VariantVoicemail:
		return VariantVoicemail, nil
	}
	return "", fmt.Errorf("unknown audio type %q", value)
}

// AudioURL builds the public URL for a stored audio filename. A nil filename
// (variant never generated) yields nil rather than an error.
func AudioURL(baseURL string, filename *string) *string {
	if filename == nil || *filename == "" {
		return nil
	}
	url := fmt.Sprintf("%s/audio/%s", strings.TrimRight(baseURL, "/"), *filename)
	return &url
}
