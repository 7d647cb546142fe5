package workflow

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderPattern matches {key} and {key|fallback} tokens.
var placeholderPattern = regexp.MustCompile(`\{(\w+)(?:\|([^}]*))?\}`)

// ReplacePlaceholders substitutes {key} and {key|fallback} tokens in template
// text. Two field families get special treatment: session_location renders as
// "-" when empty or still holding a stock value ("Studio", "TBD"), and any
// key containing "phone" renders as "-" when empty. Unknown keys without a
// fallback keep their literal token so broken templates stay visible.
func ReplacePlaceholders(text string, data map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := placeholderPattern.FindStringSubmatch(match)
		key, fallback := groups[1], groups[2]
		value := data[key]

		if key == "session_location" {
			if strings.TrimSpace(value) == "" || value == "Studio" || value == "TBD" {
				return "-"
			}
			return value
		}

		if strings.Contains(key, "phone") {
			if strings.TrimSpace(value) == "" {
				return "-"
			}
			return value
		}

		if value != "" {
			return value
		}
		if fallback != "" {
			return fallback
		}
		return match
	})
}

// flattenEntityData converts the notification's entity payload into the
// string map consumed by ReplacePlaceholders. Nested values stringify with
// their default formatting; nils drop out.
func flattenEntityData(entityData map[string]any) map[string]string {
	data := make(map[string]string, len(entityData))
	for key, value := range entityData {
		if value == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			data[key] = v
		case float64:
			data[key] = strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", v), "0"), ".")
		default:
			data[key] = fmt.Sprintf("%v", v)
		}
	}
	return data
}
