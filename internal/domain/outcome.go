package domain

import (
	"fmt"
	"strings"
)

// Outcome is the classification of a single playout.
type Outcome int

const (
	WhiteWin Outcome = iota
	BlackWin
	Draw
	Invalid

	outcomeCount = 4
)

// Outcomes returns every outcome in reporting order.
func Outcomes() []Outcome {
	return []Outcome{WhiteWin, BlackWin, Draw, Invalid}
}

func (o Outcome) String() string {
	switch o {
	case WhiteWin:
		return "white_win"
	case BlackWin:
		return "black_win"
	case Draw:
		return "draw"
	case Invalid:
		return "invalid"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// PGN returns the result label used in game records.
func (o Outcome) PGN() string {
	switch o {
	case WhiteWin:
		return "1-0"
	case BlackWin:
		return "0-1"
	case Draw:
		return "1/2-1/2"
	default:
		return "*"
	}
}

func (o Outcome) valid() bool { return o >= WhiteWin && o <= Invalid }

func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white_win", "white", "1-0":
		return WhiteWin, nil
	case "black_win", "black", "0-1":
		return BlackWin, nil
	case "draw", "1/2-1/2":
		return Draw, nil
	case "invalid", "*":
		return Invalid, nil
	}
	return Invalid, fmt.Errorf("unknown outcome: %s", s)
}

// Tally counts outcomes. The zero value is an empty tally.
type Tally [outcomeCount]int

func (t *Tally) Add(o Outcome) {
	if !o.valid() {
		o = Invalid
	}
	t[o]++
}

// AddN records n playouts with the same outcome.
func (t *Tally) AddN(o Outcome, n int) {
	if n <= 0 {
		return
	}
	if !o.valid() {
		o = Invalid
	}
	t[o] += n
}

// Merge adds other into t.
func (t *Tally) Merge(other Tally) {
	for i := range t {
		t[i] += other[i]
	}
}

func (t Tally) Count(o Outcome) int {
	if !o.valid() {
		return 0
	}
	return t[o]
}

func (t Tally) Total() int {
	total := 0
	for _, c := range t {
		total += c
	}
	return total
}

// Valid is the number of playouts that did not end Invalid.
func (t Tally) Valid() int { return t.Total() - t[Invalid] }

// Rates holds one rate per outcome, indexed like Tally.
type Rates [outcomeCount]float64

func (r Rates) Rate(o Outcome) float64 {
	if !o.valid() {
		return 0
	}
	return r[o]
}

func (r Rates) Sum() float64 {
	sum := 0.0
	for _, v := range r {
		sum += v
	}
	return sum
}
