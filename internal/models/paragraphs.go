package models

import "strings"

// paragraphSep is the blank-line delimiter used by AboutInfo.AboutText and
// BlogPost.BlogContent.
const paragraphSep = "\n\n"

// Paragraphs splits blank-line delimited text into trimmed, non-empty
// paragraphs.
func Paragraphs(text string) []string {
	parts := strings.Split(text, paragraphSep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// JoinParagraphs is the inverse of Paragraphs.
func JoinParagraphs(paragraphs []string) string {
	return strings.Join(paragraphs, paragraphSep)
}
