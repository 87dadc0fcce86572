package signals

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/clearsignals/clearsignals/signals/provider"
)

// SignalType classifies what a detected signal is about.
type SignalType string

const (
	SignalIntent      SignalType = "intent"
	SignalCultural    SignalType = "cultural"
	SignalCompetitive SignalType = "competitive"
	SignalFormality   SignalType = "formality"
	SignalDrift       SignalType = "drift"
)

// Severity is the red/yellow/green classification of a signal.
type Severity string

const (
	SeverityRed    Severity = "red"
	SeverityYellow Severity = "yellow"
	SeverityGreen  Severity = "green"
)

// TrajectoryPoint is the oracle's per-message reading. Score fields are
// pointers so an omitted value is distinguishable from zero; the documented
// defaults (5, and 50 for win likelihood) are substituted at aggregation.
type TrajectoryPoint struct {
	EmailNum  int    `json:"email_num"`
	Direction string `json:"direction"`
	Intent    *int   `json:"intent"`
	WinPct    *int   `json:"win_pct"`
	Formality *int   `json:"formality"`
	Warmth    *int   `json:"warmth"`
}

// Signal is one typed, severity-tagged observation. Descriptions are
// PII-free by contract with the oracle.
type Signal struct {
	EmailNum    int        `json:"email_num"`
	Type        SignalType `json:"type"`
	Severity    Severity   `json:"severity"`
	Description string     `json:"description"`
}

// RYGCount is a red/yellow/green tally.
type RYGCount struct {
	R int `json:"r"`
	Y int `json:"y"`
	G int `json:"g"`
}

// Add returns the elementwise sum of two tallies.
func (c RYGCount) Add(o RYGCount) RYGCount {
	return RYGCount{R: c.R + o.R, Y: c.Y + o.Y, G: c.G + o.G}
}

// Assessment is the oracle's structured output for one thread.
type Assessment struct {
	Trajectory         []TrajectoryPoint `json:"trajectory"`
	Signals            []Signal          `json:"signals"`
	RYG                RYGCount          `json:"ryg"`
	FinalIntent        *int              `json:"final_intent"`
	FinalWinPct        *int              `json:"final_win_pct"`
	Coach              string            `json:"coach"`
	Summary            string            `json:"summary"`
	DealStage          string            `json:"deal_stage"`
	RelationshipHealth string            `json:"relationship_health"`
}

// ParseError reports a response that decoded but does not conform to the
// assessment schema.
type ParseError struct {
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("assessment %s: %s", e.Field, e.Reason)
}

var (
	codeFenceOpen  = regexp.MustCompile("^```[a-zA-Z]*\\s*")
	codeFenceClose = regexp.MustCompile("\\s*```$")
)

// ParseAssessment decodes the oracle's raw response text. Optional code
// fences around the JSON object are stripped first. A response that is not
// valid JSON or that carries out-of-vocabulary signal types, severities, or
// health/stage labels yields an error, never a partially trusted value.
func ParseAssessment(raw string) (*Assessment, error) {
	s := strings.TrimSpace(raw)
	s = codeFenceOpen.ReplaceAllString(s, "")
	s = codeFenceClose.ReplaceAllString(s, "")

	var a Assessment
	if err := provider.DecodeModelJSON(s, &a); err != nil {
		return nil, fmt.Errorf("decode assessment: %w", err)
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

func (a *Assessment) validate() error {
	for i, s := range a.Signals {
		if !validSignalType(s.Type) {
			return &ParseError{Field: fmt.Sprintf("signals[%d].type", i), Reason: fmt.Sprintf("unknown value %q", s.Type)}
		}
		if !validSeverity(s.Severity) {
			return &ParseError{Field: fmt.Sprintf("signals[%d].severity", i), Reason: fmt.Sprintf("unknown value %q", s.Severity)}
		}
	}
	if a.DealStage != "" && !validDealStage[a.DealStage] {
		return &ParseError{Field: "deal_stage", Reason: fmt.Sprintf("unknown value %q", a.DealStage)}
	}
	if a.RelationshipHealth != "" && !validHealth[a.RelationshipHealth] {
		return &ParseError{Field: "relationship_health", Reason: fmt.Sprintf("unknown value %q", a.RelationshipHealth)}
	}
	return nil
}

func validSignalType(t SignalType) bool {
	switch t {
	case SignalIntent, SignalCultural, SignalCompetitive, SignalFormality, SignalDrift:
		return true
	}
	return false
}

func validSeverity(s Severity) bool {
	switch s {
	case SeverityRed, SeverityYellow, SeverityGreen:
		return true
	}
	return false
}

var validDealStage = map[string]bool{
	"prospecting": true, "qualification": true, "demo": true, "proposal": true,
	"negotiation": true, "closed_won": true, "closed_lost": true,
	"no_decision": true, "relationship": true, "internal": true,
}

var validHealth = map[string]bool{
	"strong": true, "healthy": true, "at_risk": true, "damaged": true, "new": true,
}
