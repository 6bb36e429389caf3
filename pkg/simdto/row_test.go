package simdto

import (
	"testing"
	"time"

	"github.com/park285/cheese-montecarlo/internal/domain"
)

func TestFromResultRecord(t *testing.T) {
	var tally domain.Tally
	tally.AddN(domain.WhiteWin, 5)
	tally.AddN(domain.BlackWin, 3)
	tally.AddN(domain.Draw, 1)
	tally.AddN(domain.Invalid, 1)
	table := domain.ResultTable{RunID: "run-1", Oracle: "random"}
	res := domain.ScenarioResult{
		Name:        "Sicilian Defense",
		ECO:         "B20",
		Counts:      tally,
		Rates:       domain.Rates{0.5, 0.3, 0.1, 0.1},
		Total:       10,
		Requested:   10,
		Denominator: domain.DenominatorAll,
		Truncation:  domain.TruncateInvalid,
		Status:      domain.StatusComplete,
		Seed:        42,
		Elapsed:     1500 * time.Millisecond,
	}

	row := FromResult(table, res)
	if row.WhiteWins != 5 || row.Invalid != 1 || row.Oracle != "random" {
		t.Fatalf("unexpected row: %+v", row)
	}
	rec := row.Record()
	if len(rec) != len(Header()) {
		t.Fatalf("record has %d fields, header %d", len(rec), len(Header()))
	}
	want := map[int]string{0: "run-1", 1: "Sicilian Defense", 4: "5", 10: "0.5000", 13: "0.1000", 16: "complete", 17: "42", 18: "1500"}
	for i, v := range want {
		if rec[i] != v {
			t.Fatalf("field %s = %q, want %q", Header()[i], rec[i], v)
		}
	}
}

func TestDomainErrorMessage(t *testing.T) {
	if got := (DomainError{Code: CodeOracle}).Error(); got != CodeOracle {
		t.Fatalf("error = %q", got)
	}
	if got := (DomainError{}).Error(); got != "simulation error" {
		t.Fatalf("error = %q", got)
	}
}
