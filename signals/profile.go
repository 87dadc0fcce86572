package signals

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Default scores substituted when the oracle omits a value.
const (
	DefaultScore  = 5
	DefaultWinPct = 50
)

// ProfileSchemaVersion tags persisted profiles.
const ProfileSchemaVersion = "1.0"

// TrajectoryScore is a per-message reading with defaults applied.
type TrajectoryScore struct {
	EmailIndex       int    `json:"email_index"`
	Direction        string `json:"direction"`
	IntentScore      int    `json:"intent_score"`
	WinLikelihoodPct int    `json:"win_likelihood_pct"`
	FormalityScore   int    `json:"formality_score"`
	WarmthScore      int    `json:"warmth_score"`
}

// FinalScores are the oracle's end-of-thread numbers.
type FinalScores struct {
	Intent           int      `json:"intent"`
	WinLikelihoodPct int      `json:"win_likelihood_pct"`
	RYGTotal         RYGCount `json:"ryg_total"`
	CoachingPriority string   `json:"coaching_priority"`
}

// ProfileThread is one assessed thread inside a profile. The thread hash is
// derived from normalized subject plus start time and is not reversible to
// either.
type ProfileThread struct {
	ThreadHash          string            `json:"thread_hash"`
	StartedAt           *time.Time        `json:"started_at"`
	EndedAt             *time.Time        `json:"ended_at"`
	EmailCount          int               `json:"email_count"`
	DealStage           string            `json:"deal_stage"`
	Outcome             string            `json:"outcome"`
	Trajectory          []TrajectoryScore `json:"trajectory"`
	Signals             []Signal          `json:"signals"`
	FormalityTrajectory []int             `json:"formality_trajectory"`
	WarmthTrajectory    []int             `json:"warmth_trajectory"`
	FinalScores         FinalScores       `json:"final_scores"`
}

// ContactIdentity carries only hashed identifiers. Role, department, and
// region stay unresolved placeholders; identity resolution is out of scope.
type ContactIdentity struct {
	HashID             string `json:"hash_id"`
	CompanyHash        string `json:"company_hash"`
	RoleCategory       string `json:"role_category"`
	DepartmentCategory string `json:"department_category"`
	Region             string `json:"region"`
	CountryCode        string `json:"country_code"`
}

// Baseline is the contact's typical formality/warmth, computed as a mean of
// per-thread means so every thread weighs equally regardless of length.
type Baseline struct {
	EstablishedFromThreads int     `json:"established_from_threads"`
	FormalityMean          float64 `json:"formality_mean"`
	WarmthMean             float64 `json:"warmth_mean"`
}

// AggregateScores fold all assessed threads into one reading.
type AggregateScores struct {
	RelationshipHealth      string   `json:"relationship_health"`
	TrendDirection          string   `json:"trend_direction"`
	TotalThreads            int      `json:"total_threads"`
	TotalSignals            int      `json:"total_signals"`
	CulturalViolationCount  int      `json:"cultural_violation_count"`
	CompetitiveMentionCount int      `json:"competitive_mention_count"`
	AvgIntent               float64  `json:"avg_intent"`
	AvgWinPct               float64  `json:"avg_win_pct"`
	RYGTotal                RYGCount `json:"ryg_total"`
}

// Profile is the anonymized aggregate for one contact. It never stores a
// reversible contact address.
type Profile struct {
	SchemaVersion string          `json:"schema_version"`
	ProfileID     string          `json:"profile_id"`
	CreatedAt     time.Time       `json:"created_at"`
	Contact       ContactIdentity `json:"contact"`
	Baseline      Baseline        `json:"baseline"`
	Threads       []ProfileThread `json:"threads"`
	Aggregate     AggregateScores `json:"aggregate_scores"`
}

// BuildProfile folds a contact's assessments into a Profile. The
// assessments slice parallels contact.Threads; a nil entry means the oracle
// failed for that thread, which excludes it from the profile entirely.
// Returns nil when no thread produced a usable assessment.
func BuildProfile(contact Contact, assessments []*Assessment, now time.Time) *Profile {
	var (
		threads   []ProfileThread
		intents   []int
		winPcts   []int
		ryg       RYGCount
		signals   int
		culturals int
		comps     int
		formMeans []float64
		warmMeans []float64
	)

	for i, t := range contact.Threads {
		if i >= len(assessments) || assessments[i] == nil {
			continue
		}
		a := assessments[i]

		trajectory := make([]TrajectoryScore, 0, len(a.Trajectory))
		formality := make([]int, 0, len(a.Trajectory))
		warmth := make([]int, 0, len(a.Trajectory))
		for _, p := range a.Trajectory {
			trajectory = append(trajectory, TrajectoryScore{
				EmailIndex:       p.EmailNum,
				Direction:        p.Direction,
				IntentScore:      intOr(p.Intent, DefaultScore),
				WinLikelihoodPct: intOr(p.WinPct, DefaultWinPct),
				FormalityScore:   intOr(p.Formality, DefaultScore),
				WarmthScore:      intOr(p.Warmth, DefaultScore),
			})
			formality = append(formality, intOr(p.Formality, DefaultScore))
			warmth = append(warmth, intOr(p.Warmth, DefaultScore))
		}

		for _, s := range a.Signals {
			if s.Type == SignalCultural && s.Severity == SeverityRed {
				culturals++
			}
			if s.Type == SignalCompetitive {
				comps++
			}
		}
		signals += len(a.Signals)

		finalIntent := intOr(a.FinalIntent, DefaultScore)
		finalWin := intOr(a.FinalWinPct, DefaultWinPct)

		threads = append(threads, ProfileThread{
			ThreadHash:          threadHash(t),
			StartedAt:           t.StartedAt,
			EndedAt:             t.EndedAt,
			EmailCount:          len(t.Messages),
			DealStage:           orUnknown(a.DealStage),
			Outcome:             "active",
			Trajectory:          trajectory,
			Signals:             a.Signals,
			FormalityTrajectory: formality,
			WarmthTrajectory:    warmth,
			FinalScores: FinalScores{
				Intent:           finalIntent,
				WinLikelihoodPct: finalWin,
				RYGTotal:         a.RYG,
				CoachingPriority: a.Coach,
			},
		})

		intents = append(intents, finalIntent)
		winPcts = append(winPcts, finalWin)
		ryg = ryg.Add(a.RYG)
		formMeans = append(formMeans, meanInts(formality, DefaultScore))
		warmMeans = append(warmMeans, meanInts(warmth, DefaultScore))
	}

	if len(threads) == 0 {
		return nil
	}

	avgIntent := meanInts(intents, DefaultScore)
	return &Profile{
		SchemaVersion: ProfileSchemaVersion,
		ProfileID:     uuid.NewString(),
		CreatedAt:     now.UTC(),
		Contact: ContactIdentity{
			HashID:             HashPII(contact.Address),
			CompanyHash:        HashPII(addressDomain(contact.Address)),
			RoleCategory:       "unknown",
			DepartmentCategory: "unknown",
			Region:             "unknown",
			CountryCode:        "unknown",
		},
		Baseline: Baseline{
			EstablishedFromThreads: len(threads),
			FormalityMean:          round1(meanFloats(formMeans)),
			WarmthMean:             round1(meanFloats(warmMeans)),
		},
		Threads: threads,
		Aggregate: AggregateScores{
			RelationshipHealth:      healthFor(avgIntent),
			TrendDirection:          trendDirection(intents),
			TotalThreads:            len(threads),
			TotalSignals:            signals,
			CulturalViolationCount:  culturals,
			CompetitiveMentionCount: comps,
			AvgIntent:               round1(avgIntent),
			AvgWinPct:               round1(meanInts(winPcts, DefaultWinPct)),
			RYGTotal:                ryg,
		},
	}
}

// threadHash identifies a thread by content, not subject text: a digest of
// the normalized subject plus the thread's start timestamp.
func threadHash(t Thread) string {
	started := ""
	if t.StartedAt != nil {
		started = t.StartedAt.UTC().Format(time.RFC3339)
	}
	return HashPII(t.Subject + started)
}

// trendDirection compares the newest assessed thread against the oldest
// retained one. Thread order is most recently ended first, so index 0 is
// the newest: newer intent above older means improving.
func trendDirection(intents []int) string {
	if len(intents) < 2 {
		return "stable"
	}
	first, last := intents[0], intents[len(intents)-1]
	switch {
	case first > last:
		return "improving"
	case first < last:
		return "declining"
	default:
		return "stable"
	}
}

func healthFor(avgIntent float64) string {
	switch {
	case avgIntent >= 7:
		return "strong"
	case avgIntent >= 5:
		return "healthy"
	case avgIntent >= 3:
		return "at_risk"
	default:
		return "damaged"
	}
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func meanInts(xs []int, def int) float64 {
	if len(xs) == 0 {
		return float64(def)
	}
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}

func meanFloats(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
