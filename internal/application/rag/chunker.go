package rag

import (
	"strings"
	"unicode/utf8"
)

// ChunkText packs the non-empty trimmed lines of text into chunks of at most
// maxChars characters, joining lines with a space. A line longer than maxChars
// becomes a chunk of its own.
func ChunkText(text string, maxChars int) []string {
	var chunks []string
	var current []string
	size := 0

	for _, line := range strings.Split(text, "\n") {
		p := strings.TrimSpace(line)
		if p == "" {
			continue
		}
		n := utf8.RuneCountInString(p)
		if size+n+1 > maxChars && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = []string{p}
			size = n
			continue
		}
		current = append(current, p)
		size += n + 1
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}
