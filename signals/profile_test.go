package signals

import (
	"strings"
	"testing"
	"time"
)

func intp(v int) *int { return &v }

func assessed(finalIntent, finalWin int, points ...TrajectoryPoint) *Assessment {
	return &Assessment{
		Trajectory:  points,
		FinalIntent: intp(finalIntent),
		FinalWinPct: intp(finalWin),
	}
}

func contactWithThreads(n int) Contact {
	c := Contact{Address: "alice@example.com", MessageCount: n * 2}
	for i := 0; i < n; i++ {
		start := time.Date(2024, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC)
		end := start.Add(48 * time.Hour)
		c.Threads = append(c.Threads, Thread{
			Subject:   "thread",
			Messages:  []DirectedMessage{dmsg("thread", "", Inbound), dmsg("Re: thread", "", Outbound)},
			StartedAt: &start,
			EndedAt:   &end,
		})
	}
	return c
}

func TestBuildProfile_NilWhenNothingAssessed(t *testing.T) {
	t.Parallel()

	c := contactWithThreads(2)
	if p := BuildProfile(c, []*Assessment{nil, nil}, time.Now()); p != nil {
		t.Fatalf("BuildProfile=%+v, want nil when every assessment failed", p)
	}
	if p := BuildProfile(c, nil, time.Now()); p != nil {
		t.Fatalf("BuildProfile=%+v, want nil for empty assessments", p)
	}
}

func TestBuildProfile_SkipsFailedThreads(t *testing.T) {
	t.Parallel()

	c := contactWithThreads(3)
	p := BuildProfile(c, []*Assessment{assessed(6, 50), nil, assessed(8, 70)}, time.Now())
	if p == nil {
		t.Fatalf("BuildProfile returned nil")
	}
	if len(p.Threads) != 2 || p.Aggregate.TotalThreads != 2 {
		t.Fatalf("threads=%d aggregate=%d, want 2 and 2", len(p.Threads), p.Aggregate.TotalThreads)
	}
	if p.Aggregate.AvgIntent != 7.0 {
		t.Fatalf("AvgIntent=%v, want 7.0", p.Aggregate.AvgIntent)
	}
}

func TestBuildProfile_ContainsNoPlaintextAddress(t *testing.T) {
	t.Parallel()

	c := contactWithThreads(1)
	c.DisplayName = "Alice Smith"
	p := BuildProfile(c, []*Assessment{assessed(5, 50)}, time.Now())
	if p == nil {
		t.Fatalf("BuildProfile returned nil")
	}
	if p.Contact.HashID != HashPII("alice@example.com") {
		t.Fatalf("HashID=%q, want hash of address", p.Contact.HashID)
	}
	if p.Contact.CompanyHash != HashPII("example.com") {
		t.Fatalf("CompanyHash=%q, want hash of domain", p.Contact.CompanyHash)
	}
	if strings.Contains(p.Contact.HashID, "alice") || strings.Contains(p.Threads[0].ThreadHash, "thread") {
		t.Fatalf("profile leaks plaintext identifiers")
	}
}

func TestBuildProfile_DefaultsForOmittedScores(t *testing.T) {
	t.Parallel()

	c := contactWithThreads(1)
	a := &Assessment{
		Trajectory: []TrajectoryPoint{{EmailNum: 1, Direction: "in"}},
	}
	p := BuildProfile(c, []*Assessment{a}, time.Now())
	if p == nil {
		t.Fatalf("BuildProfile returned nil")
	}
	traj := p.Threads[0].Trajectory[0]
	if traj.IntentScore != DefaultScore || traj.FormalityScore != DefaultScore || traj.WarmthScore != DefaultScore {
		t.Fatalf("trajectory defaults=%+v, want %d", traj, DefaultScore)
	}
	if traj.WinLikelihoodPct != DefaultWinPct {
		t.Fatalf("WinLikelihoodPct=%d, want %d", traj.WinLikelihoodPct, DefaultWinPct)
	}
	fs := p.Threads[0].FinalScores
	if fs.Intent != DefaultScore || fs.WinLikelihoodPct != DefaultWinPct {
		t.Fatalf("final defaults=%+v", fs)
	}
	if p.Threads[0].DealStage != "unknown" {
		t.Fatalf("DealStage=%q, want unknown", p.Threads[0].DealStage)
	}
}

func TestBuildProfile_TrendDirection(t *testing.T) {
	t.Parallel()

	// Threads are ordered newest first, so a low first intent against a
	// high last intent means the relationship got worse over time.
	c := contactWithThreads(2)
	p := BuildProfile(c, []*Assessment{assessed(3, 50), assessed(9, 50)}, time.Now())
	if p.Aggregate.TrendDirection != "declining" {
		t.Fatalf("TrendDirection=%q, want declining", p.Aggregate.TrendDirection)
	}

	p = BuildProfile(c, []*Assessment{assessed(9, 50), assessed(3, 50)}, time.Now())
	if p.Aggregate.TrendDirection != "improving" {
		t.Fatalf("TrendDirection=%q, want improving", p.Aggregate.TrendDirection)
	}

	p = BuildProfile(contactWithThreads(1), []*Assessment{assessed(9, 50)}, time.Now())
	if p.Aggregate.TrendDirection != "stable" {
		t.Fatalf("single thread TrendDirection=%q, want stable", p.Aggregate.TrendDirection)
	}
}

func TestBuildProfile_HealthThresholds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		intent int
		want   string
	}{
		{8, "strong"},
		{7, "strong"},
		{5, "healthy"},
		{3, "at_risk"},
		{2, "damaged"},
	}
	for _, tc := range cases {
		p := BuildProfile(contactWithThreads(1), []*Assessment{assessed(tc.intent, 50)}, time.Now())
		if p.Aggregate.RelationshipHealth != tc.want {
			t.Fatalf("intent=%d health=%q, want %q", tc.intent, p.Aggregate.RelationshipHealth, tc.want)
		}
	}
}

func TestBuildProfile_BaselineIsMeanOfThreadMeans(t *testing.T) {
	t.Parallel()

	c := contactWithThreads(2)
	// Thread one: formality 2 and 4 (mean 3). Thread two: one point at 9.
	// Equal thread weighting gives (3+9)/2 = 6, not the per-point mean 5.
	a1 := assessed(5, 50,
		TrajectoryPoint{EmailNum: 1, Formality: intp(2), Warmth: intp(2)},
		TrajectoryPoint{EmailNum: 2, Formality: intp(4), Warmth: intp(4)},
	)
	a2 := assessed(5, 50,
		TrajectoryPoint{EmailNum: 1, Formality: intp(9), Warmth: intp(9)},
	)
	p := BuildProfile(c, []*Assessment{a1, a2}, time.Now())
	if p.Baseline.FormalityMean != 6.0 || p.Baseline.WarmthMean != 6.0 {
		t.Fatalf("baseline=%v/%v, want 6.0/6.0", p.Baseline.FormalityMean, p.Baseline.WarmthMean)
	}
	if p.Baseline.EstablishedFromThreads != 2 {
		t.Fatalf("EstablishedFromThreads=%d, want 2", p.Baseline.EstablishedFromThreads)
	}
}

func TestBuildProfile_SignalCounts(t *testing.T) {
	t.Parallel()

	a := assessed(5, 50)
	a.Signals = []Signal{
		{EmailNum: 1, Type: SignalCultural, Severity: SeverityRed, Description: "a"},
		{EmailNum: 1, Type: SignalCultural, Severity: SeverityYellow, Description: "b"},
		{EmailNum: 2, Type: SignalCompetitive, Severity: SeverityYellow, Description: "c"},
		{EmailNum: 2, Type: SignalIntent, Severity: SeverityGreen, Description: "d"},
	}
	a.RYG = RYGCount{R: 1, Y: 2, G: 1}

	p := BuildProfile(contactWithThreads(1), []*Assessment{a}, time.Now())
	agg := p.Aggregate
	if agg.TotalSignals != 4 {
		t.Fatalf("TotalSignals=%d, want 4", agg.TotalSignals)
	}
	if agg.CulturalViolationCount != 1 {
		t.Fatalf("CulturalViolationCount=%d, want only red cultural signals", agg.CulturalViolationCount)
	}
	if agg.CompetitiveMentionCount != 1 {
		t.Fatalf("CompetitiveMentionCount=%d, want 1", agg.CompetitiveMentionCount)
	}
	if agg.RYGTotal != (RYGCount{R: 1, Y: 2, G: 1}) {
		t.Fatalf("RYGTotal=%+v", agg.RYGTotal)
	}
}

func TestThreadHash_Deterministic(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := Thread{Subject: "quote", StartedAt: &start}
	t2 := Thread{Subject: "quote", StartedAt: &start}
	if threadHash(t1) != threadHash(t2) {
		t.Fatalf("equal threads hash differently")
	}

	later := start.Add(time.Hour)
	t3 := Thread{Subject: "quote", StartedAt: &later}
	if threadHash(t1) == threadHash(t3) {
		t.Fatalf("different start times hash equal")
	}
	if threadHash(Thread{Subject: "quote"}) == threadHash(t1) {
		t.Fatalf("undated thread hashes like dated one")
	}
}
