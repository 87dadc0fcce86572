package signals

import (
	"net/mail"
	"strings"
	"time"
)

// MaxBodyChars caps stored body text per message.
const MaxBodyChars = 5000

// SourceMessage is one raw record yielded by a mailbox source. Fields the
// source could not extract are left zero; extraction problems never surface
// here as errors.
type SourceMessage struct {
	SenderName    string
	SenderAddress string
	Recipients    []string
	Subject       string
	Body          string
	SentAt        *time.Time
	Folder        string
}

// Message is a normalized mailbox message. Immutable once built; downstream
// stages read it but never modify it.
type Message struct {
	SenderName    string
	SenderAddress string
	Recipients    []string
	Subject       string
	Body          string
	SentAt        *time.Time
	Folder        string
	WordCount     int
}

// ParseAddress reduces a `"Display Name <addr>"` header value to a bare
// lower-cased, trimmed address. When no angle-bracket address can be parsed
// it falls back to the raw string, lower-cased and trimmed.
func ParseAddress(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if a, err := mail.ParseAddress(raw); err == nil && a.Address != "" {
		return strings.ToLower(strings.TrimSpace(a.Address))
	}
	return strings.ToLower(raw)
}

// Normalize canonicalizes one source record into a Message. The second
// return is false when the record has neither subject nor body and should
// be discarded.
func Normalize(src SourceMessage) (Message, bool) {
	subject := src.Subject
	body := src.Body
	if subject == "" && body == "" {
		return Message{}, false
	}

	if r := []rune(body); len(r) > MaxBodyChars {
		body = string(r[:MaxBodyChars])
	}

	recipients := make([]string, 0, len(src.Recipients))
	for _, r := range src.Recipients {
		if strings.TrimSpace(r) == "" {
			continue
		}
		recipients = append(recipients, ParseAddress(r))
	}

	return Message{
		SenderName:    strings.TrimSpace(src.SenderName),
		SenderAddress: ParseAddress(src.SenderAddress),
		Recipients:    recipients,
		Subject:       subject,
		Body:          body,
		SentAt:        src.SentAt,
		Folder:        src.Folder,
		WordCount:     len(strings.Fields(body)),
	}, true
}
