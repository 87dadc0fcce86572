package signals

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteArtifacts_RoundTrip(t *testing.T) {
	t.Parallel()

	c := contactWithThreads(2)
	c.DisplayName = "Alice Smith"
	assessments := []*Assessment{assessed(6, 50), assessed(8, 70)}
	profile := BuildProfile(c, assessments, time.Now())
	if profile == nil {
		t.Fatalf("BuildProfile returned nil")
	}
	record := BuildRawRecord(c, assessments)

	dir := t.TempDir()
	paths, err := WriteArtifacts(dir, "me@example.com", "run-1", []Profile{*profile}, []RawRecord{record}, time.Now(), true)
	if err != nil {
		t.Fatalf("WriteArtifacts: %v", err)
	}

	var profiles ProfileCollection
	readJSON(t, paths.Profiles, &profiles)
	if profiles.SchemaVersion != ProfileSchemaVersion || profiles.ContactCount != 1 || profiles.RunID != "run-1" {
		t.Fatalf("profile collection=%+v", profiles)
	}

	var raw RawCollection
	readJSON(t, paths.Raw, &raw)
	if raw.Warning != RawWarning {
		t.Fatalf("Warning=%q, want %q", raw.Warning, RawWarning)
	}
	if raw.MailboxOwner != "me@example.com" || raw.ContactsAnalyzed != 1 {
		t.Fatalf("raw collection=%+v", raw)
	}

	var dash Dashboard
	readJSON(t, paths.Dashboard, &dash)
	if dash.Metadata.TotalContacts != 1 {
		t.Fatalf("dashboard metadata=%+v", dash.Metadata)
	}

	if filepath.Base(paths.Profiles) != ProfilesFileName || filepath.Base(paths.Raw) != RawFileName || filepath.Base(paths.Dashboard) != DashboardFileName {
		t.Fatalf("unexpected artifact names: %+v", paths)
	}
}

func TestWriteArtifacts_PIIStaysInRawOnly(t *testing.T) {
	t.Parallel()

	c := contactWithThreads(1)
	c.DisplayName = "Alice Smith"
	assessments := []*Assessment{assessed(6, 50)}
	profile := BuildProfile(c, assessments, time.Now())
	record := BuildRawRecord(c, assessments)

	dir := t.TempDir()
	paths, err := WriteArtifacts(dir, "me@example.com", "run-1", []Profile{*profile}, []RawRecord{record}, time.Now(), false)
	if err != nil {
		t.Fatalf("WriteArtifacts: %v", err)
	}

	for _, p := range []string{paths.Profiles, paths.Dashboard} {
		b, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("read %s: %v", p, err)
		}
		s := strings.ToLower(string(b))
		if strings.Contains(s, "alice@example.com") || strings.Contains(s, "alice smith") {
			t.Fatalf("%s leaks contact PII", filepath.Base(p))
		}
	}

	b, err := os.ReadFile(paths.Raw)
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	if !strings.Contains(string(b), "alice@example.com") {
		t.Fatalf("raw artifact should carry the literal address")
	}
}

func TestBuildDashboard(t *testing.T) {
	t.Parallel()

	a := assessed(7, 60,
		TrajectoryPoint{EmailNum: 1, Direction: "in", Formality: intp(6), Warmth: intp(5)},
		TrajectoryPoint{EmailNum: 2, Direction: "out", Formality: intp(5), Warmth: intp(6)},
	)
	a.Signals = []Signal{
		{EmailNum: 1, Type: SignalIntent, Severity: SeverityGreen, Description: "x"},
		{EmailNum: 2, Type: SignalCultural, Severity: SeverityRed, Description: "y"},
	}
	profile := BuildProfile(contactWithThreads(1), []*Assessment{a}, time.Now())

	dash := BuildDashboard([]Profile{*profile})
	if dash.Metadata.TotalContacts != 1 || dash.Metadata.TotalEmails != 2 || dash.Metadata.TotalSignals != 2 {
		t.Fatalf("metadata=%+v", dash.Metadata)
	}

	contact := dash.Contacts[0]
	if !strings.HasPrefix(contact.Name, "Contact ") || len(contact.ContactID) != 8 {
		t.Fatalf("contact identity=%+v", contact)
	}
	if contact.ContactID != strings.ToUpper(profile.Contact.HashID[:8]) {
		t.Fatalf("ContactID=%q, want prefix of hash id", contact.ContactID)
	}

	thread := contact.Threads[0]
	if thread.AnswerKey.ExpectedFinalReadiness != 7 {
		t.Fatalf("ExpectedFinalReadiness=%d, want 7", thread.AnswerKey.ExpectedFinalReadiness)
	}
	if len(thread.AnswerKey.IntentSignals) != 1 || len(thread.AnswerKey.CulturalSignals) != 1 || len(thread.AnswerKey.CompetitiveSignals) != 0 {
		t.Fatalf("answer key grouping wrong: %+v", thread.AnswerKey)
	}

	in, out := thread.Emails[0], thread.Emails[1]
	if in.From != contact.ContactID || in.To != "you" {
		t.Fatalf("inbound email endpoints=%q->%q", in.From, in.To)
	}
	if out.From != "you" || out.To != contact.ContactID {
		t.Fatalf("outbound email endpoints=%q->%q", out.From, out.To)
	}
	if in.Subject != "(redacted)" || !strings.Contains(in.Body, "content processed locally") {
		t.Fatalf("dashboard email carries content: %+v", in)
	}
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		t.Fatalf("unmarshal %s: %v", path, err)
	}
}
