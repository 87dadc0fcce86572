package signals

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// NoSubjectKey is the bucket for messages whose subject normalizes to "".
const NoSubjectKey = "(no subject)"

var replyPrefix = regexp.MustCompile(`(?i)^(re|fw|fwd|aw|wg)\s*:\s*`)

// NormalizeSubject strips a leading reply/forward marker so replies group
// with their thread. The strip is applied twice to handle doubled prefixes
// ("Re: Fwd: x"); a third application is a no-op. The result is trimmed and
// lower-cased and may be empty.
func NormalizeSubject(s string) string {
	s = replyPrefix.ReplaceAllString(s, "")
	s = replyPrefix.ReplaceAllString(s, "")
	return strings.ToLower(strings.TrimSpace(s))
}

// Thread is a chronologically ordered run of two or more messages between
// the owner and one contact, sharing a normalized subject.
type Thread struct {
	// Subject is the normalized subject key (NoSubjectKey when empty).
	Subject string

	// Messages holds the oldest MaxMessagesPerThread messages in
	// chronological order, missing timestamps first.
	Messages []DirectedMessage

	// MessageCount is the group size before truncation.
	MessageCount int

	// StartedAt and EndedAt come from the full pre-truncation group, so
	// EndedAt can postdate the last retained message.
	StartedAt *time.Time
	EndedAt   *time.Time
}

// BuildThreads clusters one contact's messages into threads by normalized
// subject. Groups with fewer than two messages carry no conversational
// signal and are dropped. The returned threads are ordered most recently
// ended first (threads without an end timestamp last) and capped at
// limits.MaxThreadsPerContact; the second return is the pre-cap count.
func BuildThreads(msgs []DirectedMessage, limits Limits) ([]Thread, int) {
	keys := make([]string, 0, 8)
	groups := make(map[string][]DirectedMessage)
	for _, m := range msgs {
		key := NormalizeSubject(m.Subject)
		if key == "" {
			key = NoSubjectKey
		}
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], m)
	}

	var threads []Thread
	for _, key := range keys {
		group := groups[key]
		sortChronological(group)
		if len(group) < 2 {
			continue
		}

		started := group[0].SentAt
		ended := group[len(group)-1].SentAt
		total := len(group)
		if limits.MaxMessagesPerThread > 0 && len(group) > limits.MaxMessagesPerThread {
			group = group[:limits.MaxMessagesPerThread]
		}

		threads = append(threads, Thread{
			Subject:      key,
			Messages:     group,
			MessageCount: total,
			StartedAt:    started,
			EndedAt:      ended,
		})
	}

	sort.SliceStable(threads, func(i, j int) bool {
		return endedAfter(threads[i].EndedAt, threads[j].EndedAt)
	})

	total := len(threads)
	if limits.MaxThreadsPerContact > 0 && len(threads) > limits.MaxThreadsPerContact {
		threads = threads[:limits.MaxThreadsPerContact]
	}
	return threads, total
}

// sortChronological orders messages by timestamp, treating a missing
// timestamp as the minimum value so undated messages sort first.
func sortChronological(msgs []DirectedMessage) {
	sort.SliceStable(msgs, func(i, j int) bool {
		ti, tj := msgs[i].SentAt, msgs[j].SentAt
		switch {
		case ti == nil && tj == nil:
			return false
		case ti == nil:
			return true
		case tj == nil:
			return false
		default:
			return ti.Before(*tj)
		}
	})
}

// endedAfter reports whether a should rank before b when ordering threads
// most recently ended first. A nil end timestamp ranks last.
func endedAfter(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.After(*b)
	}
}
