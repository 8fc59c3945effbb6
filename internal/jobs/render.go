package jobs

import (
	"fmt"
	"regexp"
	"strings"
)

var templateToken = regexp.MustCompile(`\{([^{}]+)\}`)

// RenderTemplate substitutes {column} tokens with values from the lead's
// data map. Token names match columns after trimming. A token with no
// matching column renders empty so unresolved placeholders are never
// spoken aloud.
func RenderTemplate(tpl string, data map[string]any) string {
	return templateToken.ReplaceAllStringFunc(tpl, func(token string) string {
		key := strings.TrimSpace(token[1 : len(token)-1])
		value, ok := data[key]
		if !ok || value == nil {
			return ""
		}
		return fmt.Sprintf("%v", value)
	})
}
