package signals

import (
	"fmt"
	"strings"
	"time"
)

// MaxTranscriptBodyChars caps each message body inside the oracle prompt,
// independently of the MaxBodyChars storage cap.
const MaxTranscriptBodyChars = 2000

// BuildTranscript formats a thread for the oracle: one block per message
// with a 1-based ordinal, direction, timestamp, response latency, subject,
// and capped body. Latency is included only when both the message and its
// predecessor carry timestamps.
func BuildTranscript(t Thread) string {
	blocks := make([]string, 0, len(t.Messages))
	for i, m := range t.Messages {
		date := "unknown"
		if m.SentAt != nil {
			date = m.SentAt.UTC().Format(time.RFC3339)
		}

		latency := ""
		if i > 0 && m.SentAt != nil && t.Messages[i-1].SentAt != nil {
			hours := m.SentAt.Sub(*t.Messages[i-1].SentAt).Hours()
			latency = fmt.Sprintf(" | Response time: %.1fh", hours)
		}

		body := m.Body
		if r := []rune(body); len(r) > MaxTranscriptBodyChars {
			body = string(r[:MaxTranscriptBodyChars])
		}

		blocks = append(blocks, fmt.Sprintf(
			"EMAIL %d of %d:\nDirection: %s | Date: %s%s\nSubject: %s\n\n%s\n",
			i+1, len(t.Messages), m.Direction, date, latency, t.Subject, body,
		))
	}
	return strings.Join(blocks, "\n---\n\n")
}

// buildPrompt is the user message that accompanies the system instructions.
func buildPrompt(t Thread) string {
	return fmt.Sprintf("Analyze this email thread (%d emails).\n\n%s", len(t.Messages), BuildTranscript(t))
}
