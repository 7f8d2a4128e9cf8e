package ai

import "strings"

const (
	// MaxPromptFiles caps how many file paths an LLM detector includes.
	MaxPromptFiles = 50
	// MaxExcerptBytes caps a single manifest excerpt.
	MaxExcerptBytes = 4096
)

// TruncateFiles keeps the first max paths and, when any were dropped,
// appends a single "… and more" marker (without a count).
func TruncateFiles(paths []string, max int) []string {
	if max <= 0 {
		max = MaxPromptFiles
	}
	if len(paths) <= max {
		return paths
	}
	out := make([]string, max, max+1)
	copy(out, paths[:max])
	return append(out, "… and more")
}

// Excerpt caps content at max bytes on a line boundary where possible.
func Excerpt(content string, max int) string {
	if max <= 0 {
		max = MaxExcerptBytes
	}
	if len(content) <= max {
		return content
	}
	cut := content[:max]
	if idx := strings.LastIndexByte(cut, '\n'); idx > max/2 {
		cut = cut[:idx]
	}
	return cut + "\n…(truncated)"
}
