package pipeline

import "strings"

// NormalizeText collapses all whitespace runs to single spaces and trims the
// ends. Embedding the normalized form keeps content hashes stable across
// sources that differ only in formatting.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
