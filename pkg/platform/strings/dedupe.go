// Package strings holds small string-slice helpers shared across the
// service layer.
package strings

import "strings"

// DedupeAndTrim trims every element, drops blanks, and removes duplicates
// while preserving first-occurrence order. Comparison is case-sensitive:
// official document names differing only in case are distinct entries.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
