package utils

import "strings"

// ToStringSlice keeps the non-blank strings of a decoded JSON array,
// trimmed, in order. Other element types are skipped.
func ToStringSlice(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
