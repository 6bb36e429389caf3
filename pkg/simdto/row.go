package simdto

import (
	"strconv"
	"time"

	"github.com/park285/cheese-montecarlo/internal/domain"
)

// Row is one scenario result flattened for files, stores and messages.
type Row struct {
	RunID       string
	Scenario    string
	ECO         string
	Oracle      string
	WhiteWins   int
	BlackWins   int
	Draws       int
	Invalid     int
	Total       int
	Requested   int
	WhiteRate   float64
	BlackRate   float64
	DrawRate    float64
	InvalidRate float64
	Denominator string
	Truncation  string
	Status      string
	Seed        int64
	Elapsed     time.Duration
	Error       string
	StartedAt   time.Time
}

var header = []string{
	"run_id",
	"scenario",
	"eco",
	"oracle",
	"white_wins",
	"black_wins",
	"draws",
	"invalid",
	"total",
	"requested",
	"white_rate",
	"black_rate",
	"draw_rate",
	"invalid_rate",
	"denominator",
	"truncation",
	"status",
	"seed",
	"elapsed_ms",
	"error",
}

// Header returns the column names matching Record.
func Header() []string { return append([]string(nil), header...) }

func FromResult(table domain.ResultTable, r domain.ScenarioResult) Row {
	return Row{
		RunID:       table.RunID,
		Scenario:    r.Name,
		ECO:         r.ECO,
		Oracle:      table.Oracle,
		WhiteWins:   r.Counts.Count(domain.WhiteWin),
		BlackWins:   r.Counts.Count(domain.BlackWin),
		Draws:       r.Counts.Count(domain.Draw),
		Invalid:     r.Counts.Count(domain.Invalid),
		Total:       r.Total,
		Requested:   r.Requested,
		WhiteRate:   r.Rates.Rate(domain.WhiteWin),
		BlackRate:   r.Rates.Rate(domain.BlackWin),
		DrawRate:    r.Rates.Rate(domain.Draw),
		InvalidRate: r.Rates.Rate(domain.Invalid),
		Denominator: string(r.Denominator),
		Truncation:  string(r.Truncation),
		Status:      string(r.Status),
		Seed:        r.Seed,
		Elapsed:     r.Elapsed,
		Error:       r.Error,
		StartedAt:   table.StartedAt,
	}
}

// Rows flattens every result of the table in order.
func Rows(table domain.ResultTable) []Row {
	out := make([]Row, 0, len(table.Rows))
	for _, r := range table.Rows {
		out = append(out, FromResult(table, r))
	}
	return out
}

// Record formats the row as strings in Header order.
func (r Row) Record() []string {
	return []string{
		r.RunID,
		r.Scenario,
		r.ECO,
		r.Oracle,
		strconv.Itoa(r.WhiteWins),
		strconv.Itoa(r.BlackWins),
		strconv.Itoa(r.Draws),
		strconv.Itoa(r.Invalid),
		strconv.Itoa(r.Total),
		strconv.Itoa(r.Requested),
		formatRate(r.WhiteRate),
		formatRate(r.BlackRate),
		formatRate(r.DrawRate),
		formatRate(r.InvalidRate),
		r.Denominator,
		r.Truncation,
		r.Status,
		strconv.FormatInt(r.Seed, 10),
		strconv.FormatInt(r.Elapsed.Milliseconds(), 10),
		r.Error,
	}
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
