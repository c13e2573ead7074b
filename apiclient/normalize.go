package apiclient

import "strings"

// FirstString returns the first key in keys whose value in m is a
// non-empty string. Values of any other type are skipped, never converted.
// The backend is not consistent about field names, so callers list the
// accepted names in order of preference.
func FirstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
