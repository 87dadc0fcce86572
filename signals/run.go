package signals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Source supplies raw messages from some mailbox archive format.
type Source interface {
	// Load extracts every message the source can read. Individual
	// unparseable messages are skipped, not fatal.
	Load(ctx context.Context) ([]SourceMessage, error)
}

var (
	ErrNoMessages = errors.New("no messages extracted from source")
	ErrNoContacts = errors.New("no contacts with analyzable threads")
)

// RunConfig carries everything a pipeline run needs.
type RunConfig struct {
	Source   Source
	Analyzer Analyzer
	Limits   Limits

	// Owner overrides sender-frequency owner detection when set.
	Owner string

	// RateLimitDelay is slept after every analyzer call, success or not.
	RateLimitDelay time.Duration

	OutDir string
	Pretty bool
	Logger *log.Logger
}

// ContactOutcome pairs a contact's profile with its raw record. Profile is
// nil when every thread assessment failed; the raw record still exists.
type ContactOutcome struct {
	Address string
	Profile *Profile
	Raw     RawRecord
}

// Report summarizes a completed run.
type Report struct {
	RunID             string
	Owner             string
	MessagesExtracted int
	MessagesKept      int
	ContactsSelected  int
	ThreadsAnalyzed   int
	ThreadsFailed     int
	ProfilesWritten   int
	TotalSignals      int
	Outcomes          []ContactOutcome
	Artifacts         ArtifactPaths
}

// Run executes the full pipeline: extract, normalize, group, thread, select,
// analyze sequentially, aggregate, and write all artifacts once at the end.
func Run(ctx context.Context, cfg RunConfig) (Report, error) {
	if cfg.Source == nil {
		return Report{}, errors.New("Run: Source is nil")
	}
	if cfg.Analyzer == nil {
		return Report{}, errors.New("Run: Analyzer is nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	raw, err := cfg.Source.Load(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("Run: load source: %w", err)
	}
	if len(raw) == 0 {
		return Report{}, ErrNoMessages
	}

	msgs := make([]Message, 0, len(raw))
	for _, sm := range raw {
		if m, ok := Normalize(sm); ok {
			msgs = append(msgs, m)
		}
	}
	logger.Info("extracted messages", "total", len(raw), "kept", len(msgs))
	if len(msgs) == 0 {
		return Report{}, ErrNoMessages
	}

	owner := cfg.Owner
	if owner == "" {
		owner = IdentifyOwner(msgs)
		logger.Info("detected mailbox owner", "owner", owner)
	}

	var contacts []Contact
	for _, cm := range GroupByContact(msgs, owner) {
		if c, ok := BuildContact(cm, cfg.Limits); ok {
			contacts = append(contacts, c)
		}
	}
	contacts = SelectContacts(contacts, cfg.Limits)
	if len(contacts) == 0 {
		return Report{}, ErrNoContacts
	}
	logger.Info("selected contacts", "count", len(contacts))

	report := Report{
		RunID: uuid.NewString(),
		Owner: owner,

		MessagesExtracted: len(raw),
		MessagesKept:      len(msgs),
		ContactsSelected:  len(contacts),
	}

	now := time.Now()
	var profiles []Profile
	var records []RawRecord

	for ci, contact := range contacts {
		logger.Info("analyzing contact",
			"contact", ci+1, "of", len(contacts),
			"threads", len(contact.Threads), "messages", contact.MessageCount)

		assessments := make([]*Assessment, len(contact.Threads))
		for ti, thread := range contact.Threads {
			if err := ctx.Err(); err != nil {
				return report, fmt.Errorf("Run: %w", err)
			}

			a, err := cfg.Analyzer.AnalyzeThread(ctx, thread)
			if err != nil {
				report.ThreadsFailed++
				logger.Warn("thread assessment failed",
					"contact", ci+1, "thread", ti+1, "err", err)
			} else {
				assessments[ti] = a
				report.ThreadsAnalyzed++
			}

			if cfg.RateLimitDelay > 0 {
				sleepCtx(ctx, cfg.RateLimitDelay)
			}
		}

		profile := BuildProfile(contact, assessments, now)
		record := BuildRawRecord(contact, assessments)
		if profile != nil {
			profiles = append(profiles, *profile)
			report.ProfilesWritten++
			report.TotalSignals += profile.Aggregate.TotalSignals
		}
		records = append(records, record)
		report.Outcomes = append(report.Outcomes, ContactOutcome{
			Address: contact.Address,
			Profile: profile,
			Raw:     record,
		})
	}

	if cfg.OutDir != "" {
		paths, err := WriteArtifacts(cfg.OutDir, owner, report.RunID, profiles, records, now, cfg.Pretty)
		if err != nil {
			return report, fmt.Errorf("Run: %w", err)
		}
		report.Artifacts = paths
		logger.Info("wrote artifacts",
			"profiles", paths.Profiles, "raw", paths.Raw, "dashboard", paths.Dashboard)
	}

	return report, nil
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
