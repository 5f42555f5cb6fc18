package convert

import (
	"path/filepath"
	"strings"
	"time"
)

// ConvoSuffix marks generated conversation files, e.g. "talk-CONVO.md".
const ConvoSuffix = "-CONVO"

// OutputPath derives the podcast file name for an input. Conversations
// read from stdin ("-" or "") are named after the current time. Names are
// relative to the working directory.
func OutputPath(input string, now time.Time) string {
	if input == "" || input == "-" {
		return "podcast_" + now.Format("20060102_150405") + ".mp3"
	}
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.TrimSuffix(stem, ConvoSuffix)
	return stem + "-podcast.mp3"
}

// ConvoPath names the conversation file generated for a document title.
func ConvoPath(title string) string {
	return sanitizeFilename(title) + ConvoSuffix + ".md"
}

func sanitizeFilename(s string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
			b.WriteRune(r)
			lastDash = false
		case !lastDash && b.Len() > 0:
			b.WriteByte('-')
			lastDash = true
		}
	}
	out := strings.Trim(b.String(), "-.")
	if out == "" {
		return "conversation"
	}
	if len(out) > 80 {
		out = strings.TrimRight(out[:80], "-.")
	}
	return out
}
