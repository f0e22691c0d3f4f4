package normalization

import (
	"strings"
)

// Label lowercases and trims a concept label so lookups are
// case-insensitive regardless of how the graph was authored.
func Label(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// Collapse trims and squeezes interior runs of whitespace to one space.
func Collapse(input string) string {
	return strings.Join(strings.Fields(input), " ")
}
