package domain

import (
	"fmt"
	"strings"
	"time"
)

// Denominator selects what the outcome rates are divided by.
type Denominator string

const (
	// DenominatorAll divides every count by the number of simulations.
	DenominatorAll Denominator = "all"
	// DenominatorValid divides win/loss/draw counts by the non-invalid simulations.
	DenominatorValid Denominator = "valid"
)

func ParseDenominator(s string) (Denominator, error) {
	switch Denominator(strings.ToLower(strings.TrimSpace(s))) {
	case "", DenominatorAll:
		return DenominatorAll, nil
	case DenominatorValid:
		return DenominatorValid, nil
	}
	return "", fmt.Errorf("unknown rate denominator: %s", s)
}

// TruncationPolicy decides how a playout stopped by the ply cap is classified.
type TruncationPolicy string

const (
	TruncateInvalid  TruncationPolicy = "invalid"
	TruncateMaterial TruncationPolicy = "material"
)

func ParseTruncationPolicy(s string) (TruncationPolicy, error) {
	switch TruncationPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", TruncateInvalid:
		return TruncateInvalid, nil
	case TruncateMaterial:
		return TruncateMaterial, nil
	}
	return "", fmt.Errorf("unknown truncation policy: %s", s)
}

type Status string

const (
	StatusComplete Status = "complete"
	StatusPartial  Status = "partial"
	StatusFailed   Status = "failed"
)

// Color is the side to move for a custom placement.
type Color string

const (
	ColorWhite Color = "white"
	ColorBlack Color = "black"
)

// Scenario is an immutable starting-position definition. Exactly one of the
// move prefix (Opening/Defense), FEN or Pieces describes the start.
type Scenario struct {
	Name string
	// ECO is the opening code or title the scenario was resolved from, if any.
	ECO string
	// Opening and Defense are applied in order; tokens are UCI or SAN.
	Opening []string
	Defense []string
	FEN     string
	// Pieces maps squares ("e1") to piece symbols ("K", "r").
	Pieces map[string]string
	Turn   Color
	// Truncation overrides the run-wide truncation policy when set.
	Truncation TruncationPolicy
}

// Prefix returns opening moves followed by defense moves.
func (s Scenario) Prefix() []string {
	out := make([]string, 0, len(s.Opening)+len(s.Defense))
	out = append(out, s.Opening...)
	out = append(out, s.Defense...)
	return out
}

func (s Scenario) IsPlacement() bool { return len(s.Pieces) > 0 }

// ScenarioResult is the aggregated outcome of one scenario batch.
type ScenarioResult struct {
	Name        string
	ECO         string
	Counts      Tally
	Rates       Rates
	Total       int
	Requested   int
	Denominator Denominator
	Truncation  TruncationPolicy
	Status      Status
	Error       string
	Seed        int64
	Elapsed     time.Duration
}

// ResultTable lists scenario results in configuration order.
type ResultTable struct {
	RunID       string
	StartedAt   time.Time
	Oracle      string
	PlyCap      int
	Simulations int
	Rows        []ScenarioResult
}

func (t *ResultTable) Append(r ScenarioResult) {
	t.Rows = append(t.Rows, r)
}
