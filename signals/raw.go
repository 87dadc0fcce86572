package signals

import "time"

// RawThread is one thread inside the local-only record: literal subject,
// full assessment when present, null when the oracle failed.
type RawThread struct {
	Subject    string      `json:"subject"`
	EmailCount int         `json:"email_count"`
	StartedAt  *time.Time  `json:"started_at"`
	EndedAt    *time.Time  `json:"ended_at"`
	Assessment *Assessment `json:"assessment"`
}

// RawRecord is the PII-bearing counterpart to a Profile, kept strictly
// local for the user's own inspection. It is created alongside the profile,
// persisted to a separate artifact, and never merged back.
type RawRecord struct {
	ContactName     string      `json:"contact_name"`
	ContactAddress  string      `json:"contact_email"`
	TotalMessages   int         `json:"total_messages"`
	ThreadsAssessed int         `json:"threads_assessed"`
	Threads         []RawThread `json:"threads"`
}

// BuildRawRecord records every thread of the contact, assessed or not, with
// the literal address and display name retained.
func BuildRawRecord(contact Contact, assessments []*Assessment) RawRecord {
	threads := make([]RawThread, 0, len(contact.Threads))
	assessed := 0
	for i, t := range contact.Threads {
		var a *Assessment
		if i < len(assessments) {
			a = assessments[i]
		}
		if a != nil {
			assessed++
		}
		threads = append(threads, RawThread{
			Subject:    t.Subject,
			EmailCount: len(t.Messages),
			StartedAt:  t.StartedAt,
			EndedAt:    t.EndedAt,
			Assessment: a,
		})
	}

	return RawRecord{
		ContactName:     contact.DisplayName,
		ContactAddress:  contact.Address,
		TotalMessages:   contact.MessageCount,
		ThreadsAssessed: assessed,
		Threads:         threads,
	}
}
