package ai

import "strings"

// SplitHints parses free-form vocabulary hints into a word-boost list.
// Entries may be separated by commas or newlines; blanks and duplicates
// are dropped, original casing is preserved.
func SplitHints(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})

	seen := make(map[string]struct{}, len(fields))
	var hints []string
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		key := strings.ToLower(f)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		hints = append(hints, f)
	}
	return hints
}
