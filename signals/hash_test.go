package signals

import (
	"regexp"
	"testing"
)

func TestHashPII(t *testing.T) {
	t.Parallel()

	h := HashPII("alice@example.com")
	if !regexp.MustCompile(`^[0-9a-f]{16}$`).MatchString(h) {
		t.Fatalf("HashPII=%q, want 16 hex chars", h)
	}
	if HashPII("  ALICE@Example.COM ") != h {
		t.Fatalf("HashPII not case/space insensitive")
	}
	if HashPII("bob@example.com") == h {
		t.Fatalf("distinct inputs hashed equal")
	}
}

func TestAddressDomain(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"alice@example.com", "example.com"},
		{"weird@a@b.com", "b.com"},
		{"nodomain", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := addressDomain(c.in); got != c.want {
			t.Fatalf("addressDomain(%q)=%q, want %q", c.in, got, c.want)
		}
	}
}
