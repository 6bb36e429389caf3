package montecarlo

import (
	"fmt"

	"github.com/park285/cheese-montecarlo/internal/domain"
)

// Summarize converts a tally of n playouts into a result row. With the
// valid denominator the Invalid rate is reported as zero. A zero
// denominator yields all-zero rates.
func Summarize(name string, tally domain.Tally, n int, denom domain.Denominator) (domain.ScenarioResult, error) {
	if n < 0 || tally.Total() != n {
		return domain.ScenarioResult{}, fmt.Errorf("%w: scenario %q counts sum to %d, expected %d", ErrAggregation, name, tally.Total(), n)
	}
	if denom == "" {
		denom = domain.DenominatorAll
	}

	res := domain.ScenarioResult{
		Name:        name,
		Counts:      tally,
		Total:       n,
		Requested:   n,
		Denominator: denom,
		Status:      domain.StatusComplete,
	}

	switch denom {
	case domain.DenominatorAll:
		if n == 0 {
			return res, nil
		}
		for _, o := range domain.Outcomes() {
			res.Rates[o] = float64(tally.Count(o)) / float64(n)
		}
	case domain.DenominatorValid:
		valid := tally.Valid()
		if valid == 0 {
			return res, nil
		}
		for _, o := range []domain.Outcome{domain.WhiteWin, domain.BlackWin, domain.Draw} {
			res.Rates[o] = float64(tally.Count(o)) / float64(valid)
		}
	default:
		return domain.ScenarioResult{}, fmt.Errorf("%w: unknown denominator %q", ErrAggregation, denom)
	}
	return res, nil
}

// FromReport summarizes a batch report. Interrupted batches are summarized
// over the playouts that finished and marked partial.
func FromReport(rep Report, denom domain.Denominator) (domain.ScenarioResult, error) {
	res, err := Summarize(rep.Scenario, rep.Tally, rep.Completed, denom)
	if err != nil {
		return domain.ScenarioResult{}, err
	}
	res.Requested = rep.Requested
	res.Seed = rep.Seed
	res.Elapsed = rep.Elapsed
	if rep.Partial() {
		res.Status = domain.StatusPartial
	}
	if rep.SetupErr != nil {
		res.Error = rep.SetupErr.Error()
	}
	return res, nil
}

// Failed builds the row for a scenario whose batch was aborted.
func Failed(name string, requested int, err error) domain.ScenarioResult {
	res := domain.ScenarioResult{
		Name:      name,
		Requested: requested,
		Status:    domain.StatusFailed,
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}
