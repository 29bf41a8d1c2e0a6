package processor

import (
	"regexp"
	"strings"
)

var reManyNewlines = regexp.MustCompile(`\n{3,}`)

// NarrationScript prepares story text for the narration endpoint:
//  1. everything after the first "---" delimiter is dropped (some generation
//     prompts echo the request block after a horizontal rule),
//  2. heading lines are dropped (headings read badly aloud),
//  3. runs of 3+ newlines collapse to 2,
//  4. the result is hard-capped at maxChars characters to keep TTS latency
//     bounded. Truncation is silent; it is never an error.
func NarrationScript(text string, maxChars int) string {
	if i := strings.Index(text, "---"); i >= 0 {
		text = text[:i]
	}

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		kept = append(kept, line)
	}
	text = strings.Join(kept, "\n")

	text = reManyNewlines.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	if maxChars > 0 {
		if runes := []rune(text); len(runes) > maxChars {
			text = string(runes[:maxChars])
		}
	}
	return text
}
