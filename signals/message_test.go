package signals

import (
	"strings"
	"testing"
	"time"
)

func TestParseAddress(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Jane Doe <Jane.Doe@Example.COM>", "jane.doe@example.com"},
		{"  bob@example.com  ", "bob@example.com"},
		{"BOB@EXAMPLE.COM", "bob@example.com"},
		{"not an address", "not an address"},
		{"", ""},
	}
	for _, c := range cases {
		if got := ParseAddress(c.in); got != c.want {
			t.Fatalf("ParseAddress(%q)=%q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalize_DiscardsEmptyMessages(t *testing.T) {
	t.Parallel()

	if _, ok := Normalize(SourceMessage{SenderAddress: "a@x.com"}); ok {
		t.Fatalf("Normalize kept a message with no subject and no body")
	}
	if _, ok := Normalize(SourceMessage{Subject: "hi"}); !ok {
		t.Fatalf("Normalize dropped a message with a subject")
	}
	if _, ok := Normalize(SourceMessage{Body: "text"}); !ok {
		t.Fatalf("Normalize dropped a message with a body")
	}
}

func TestNormalize_CapsBodyAndCountsWords(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("word ", 2000)
	m, ok := Normalize(SourceMessage{Subject: "s", Body: long})
	if !ok {
		t.Fatalf("Normalize dropped the message")
	}
	if got := len([]rune(m.Body)); got != MaxBodyChars {
		t.Fatalf("len(body)=%d, want %d", got, MaxBodyChars)
	}
	if m.WordCount != len(strings.Fields(m.Body)) {
		t.Fatalf("WordCount=%d, want %d", m.WordCount, len(strings.Fields(m.Body)))
	}
}

func TestNormalize_CleansRecipients(t *testing.T) {
	t.Parallel()

	when := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m, ok := Normalize(SourceMessage{
		SenderName:    "  Jane  ",
		SenderAddress: "Jane <JANE@X.COM>",
		Recipients:    []string{"Bob <BOB@X.COM>", "   ", "carol@x.com"},
		Subject:       "hello",
		Body:          "one two three",
		SentAt:        &when,
	})
	if !ok {
		t.Fatalf("Normalize dropped the message")
	}
	if m.SenderName != "Jane" {
		t.Fatalf("SenderName=%q, want %q", m.SenderName, "Jane")
	}
	if m.SenderAddress != "jane@x.com" {
		t.Fatalf("SenderAddress=%q, want %q", m.SenderAddress, "jane@x.com")
	}
	if len(m.Recipients) != 2 || m.Recipients[0] != "bob@x.com" || m.Recipients[1] != "carol@x.com" {
		t.Fatalf("Recipients=%v, want [bob@x.com carol@x.com]", m.Recipients)
	}
	if m.WordCount != 3 {
		t.Fatalf("WordCount=%d, want 3", m.WordCount)
	}
}
