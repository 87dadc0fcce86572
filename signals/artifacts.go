package signals

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/clearsignals/clearsignals/signals/fileutils"
)

// Artifact file names, written next to each other in the output directory.
const (
	ProfilesFileName  = "clearsignals_profiles.json"
	RawFileName       = "clearsignals_raw.json"
	DashboardFileName = "clearsignals_dashboard.json"
)

// GeneratorName tags the profiles artifact with its producer.
const GeneratorName = "clearsignals_mailbox_analyzer_v1"

// RawWarning marks the raw artifact. The file carries literal addresses and
// names and must never leave the machine.
const RawWarning = "THIS FILE CONTAINS PII - DO NOT UPLOAD OR SHARE"

// ProfileCollection is the anonymized artifact, safe to share externally.
type ProfileCollection struct {
	SchemaVersion string    `json:"schema_version"`
	GeneratedAt   time.Time `json:"generated_at"`
	Generator     string    `json:"generator"`
	RunID         string    `json:"run_id"`
	ContactCount  int       `json:"contact_count"`
	Profiles      []Profile `json:"profiles"`
}

// RawCollection is the local-only artifact.
type RawCollection struct {
	Warning          string      `json:"WARNING"`
	GeneratedAt      time.Time   `json:"generated_at"`
	MailboxOwner     string      `json:"mailbox_owner"`
	ContactsAnalyzed int         `json:"contacts_analyzed"`
	Contacts         []RawRecord `json:"contacts"`
}

// Dashboard types mirror what the web dashboard expects: hashed contact
// stand-ins, trajectory-derived pseudo emails, and per-type signal keys.
type Dashboard struct {
	Metadata DashboardMetadata  `json:"metadata"`
	Contacts []DashboardContact `json:"contacts"`
}

type DashboardMetadata struct {
	TotalContacts int    `json:"total_contacts"`
	TotalEmails   int    `json:"total_emails"`
	TotalSignals  int    `json:"total_signals"`
	GeneratedFrom string `json:"generated_from"`
}

type DashboardContact struct {
	ContactID string            `json:"contact_id"`
	Name      string            `json:"name"`
	Threads   []DashboardThread `json:"threads"`
}

type DashboardThread struct {
	ThreadID  string             `json:"thread_id"`
	Emails    []DashboardEmail   `json:"emails"`
	AnswerKey DashboardAnswerKey `json:"answer_key"`
}

type DashboardEmail struct {
	Direction         string     `json:"direction"`
	Date              *time.Time `json:"date"`
	Subject           string     `json:"subject"`
	Greeting          string     `json:"greeting"`
	Body              string     `json:"body"`
	Signoff           string     `json:"signoff"`
	FormalityScore    int        `json:"formality_score"`
	WarmthScore       int        `json:"warmth_score"`
	WordCount         int        `json:"word_count"`
	From              string     `json:"from"`
	To                string     `json:"to"`
	CC                []string   `json:"cc"`
	ResponseTimeHours *float64   `json:"response_time_hours"`
}

type DashboardAnswerKey struct {
	ExpectedFinalReadiness int      `json:"expected_final_readiness"`
	IntentSignals          []Signal `json:"intent_signals"`
	CulturalSignals        []Signal `json:"cultural_signals"`
	CompetitiveSignals     []Signal `json:"competitive_signals"`
	FormalityShifts        []Signal `json:"formality_shifts"`
	RelationshipDrift      []Signal `json:"relationship_drift"`
}

// BuildDashboard derives the dashboard view from anonymized profiles only;
// no PII can leak into it because none goes in.
func BuildDashboard(profiles []Profile) Dashboard {
	contacts := make([]DashboardContact, 0, len(profiles))
	totalEmails := 0
	totalSignals := 0

	for _, p := range profiles {
		hash8 := strings.ToUpper(shortHash(p.Contact.HashID, 8))
		threads := make([]DashboardThread, 0, len(p.Threads))
		for _, t := range p.Threads {
			emails := make([]DashboardEmail, 0, len(t.Trajectory))
			for _, traj := range t.Trajectory {
				from, to := hash8, "you"
				if traj.Direction != string(Inbound) && traj.Direction != "in" {
					from, to = "you", hash8
				}
				emails = append(emails, DashboardEmail{
					Direction:      traj.Direction,
					Date:           t.StartedAt,
					Subject:        "(redacted)",
					Body:           fmt.Sprintf("[Email %d - %s - content processed locally]", traj.EmailIndex, traj.Direction),
					FormalityScore: traj.FormalityScore,
					WarmthScore:    traj.WarmthScore,
					From:           from,
					To:             to,
					CC:             []string{},
				})
			}
			threads = append(threads, DashboardThread{
				ThreadID: t.ThreadHash,
				Emails:   emails,
				AnswerKey: DashboardAnswerKey{
					ExpectedFinalReadiness: t.FinalScores.Intent,
					IntentSignals:          signalsOfType(t.Signals, SignalIntent),
					CulturalSignals:        signalsOfType(t.Signals, SignalCultural),
					CompetitiveSignals:     signalsOfType(t.Signals, SignalCompetitive),
					FormalityShifts:        signalsOfType(t.Signals, SignalFormality),
					RelationshipDrift:      signalsOfType(t.Signals, SignalDrift),
				},
			})
			totalEmails += len(emails)
			totalSignals += len(t.Signals)
		}

		contacts = append(contacts, DashboardContact{
			ContactID: hash8,
			Name:      "Contact " + strings.ToUpper(shortHash(p.Contact.HashID, 6)),
			Threads:   threads,
		})
	}

	return Dashboard{
		Metadata: DashboardMetadata{
			TotalContacts: len(contacts),
			TotalEmails:   totalEmails,
			TotalSignals:  totalSignals,
			GeneratedFrom: "mailbox_analyzer",
		},
		Contacts: contacts,
	}
}

func signalsOfType(signals []Signal, t SignalType) []Signal {
	out := make([]Signal, 0, len(signals))
	for _, s := range signals {
		if s.Type == t {
			out = append(out, s)
		}
	}
	return out
}

func shortHash(h string, n int) string {
	if len(h) < n {
		return h
	}
	return h[:n]
}

// ArtifactPaths lists where each artifact was written.
type ArtifactPaths struct {
	Profiles  string
	Raw       string
	Dashboard string
}

// WriteArtifacts persists all three artifacts at once, each atomically.
// Nothing is written incrementally during a run; this is the only place
// results touch disk.
func WriteArtifacts(outDir, owner, runID string, profiles []Profile, raw []RawRecord, now time.Time, pretty bool) (ArtifactPaths, error) {
	if outDir == "" {
		return ArtifactPaths{}, errors.New("WriteArtifacts: outDir is empty")
	}

	paths := ArtifactPaths{
		Profiles:  filepath.Join(outDir, ProfilesFileName),
		Raw:       filepath.Join(outDir, RawFileName),
		Dashboard: filepath.Join(outDir, DashboardFileName),
	}

	collection := ProfileCollection{
		SchemaVersion: ProfileSchemaVersion,
		GeneratedAt:   now.UTC(),
		Generator:     GeneratorName,
		RunID:         runID,
		ContactCount:  len(profiles),
		Profiles:      profiles,
	}
	if err := fileutils.WriteJSONFileAtomic(paths.Profiles, collection, pretty); err != nil {
		return ArtifactPaths{}, fmt.Errorf("WriteArtifacts: profiles: %w", err)
	}

	rawOut := RawCollection{
		Warning:          RawWarning,
		GeneratedAt:      now.UTC(),
		MailboxOwner:     owner,
		ContactsAnalyzed: len(raw),
		Contacts:         raw,
	}
	if err := fileutils.WriteJSONFileAtomic(paths.Raw, rawOut, pretty); err != nil {
		return ArtifactPaths{}, fmt.Errorf("WriteArtifacts: raw: %w", err)
	}

	if err := fileutils.WriteJSONFileAtomic(paths.Dashboard, BuildDashboard(profiles), pretty); err != nil {
		return ArtifactPaths{}, fmt.Errorf("WriteArtifacts: dashboard: %w", err)
	}

	return paths, nil
}
