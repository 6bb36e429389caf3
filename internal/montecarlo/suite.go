package montecarlo

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/park285/cheese-montecarlo/internal/domain"
)

// Suite is an ordered list of scenarios sharing one oracle and driver.
type Suite struct {
	RunID       string
	Scenarios   []domain.Scenario
	Provider    OracleProvider
	Simulations int
	Driver      Driver
	Denominator domain.Denominator
}

// RunSuite plays the scenarios one after another in order. A scenario whose
// oracle fails is reported as failed and the suite continues. On
// cancellation the in-flight scenario is reported partial, later scenarios
// are left out and ctx.Err() is returned with the table.
func (r *Runner) RunSuite(ctx context.Context, s Suite) (domain.ResultTable, error) {
	table := domain.ResultTable{
		RunID:       s.RunID,
		StartedAt:   time.Now(),
		PlyCap:      s.Driver.PlyCap,
		Simulations: s.Simulations,
	}
	if s.Provider != nil {
		table.Oracle = s.Provider.Name()
	}

	for i, sc := range s.Scenarios {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("suite_interrupted", zap.Int("excluded", len(s.Scenarios)-i))
			return table, err
		}

		rep, err := r.Run(ctx, Batch{
			Scenario:    sc,
			Provider:    s.Provider,
			Simulations: s.Simulations,
			Driver:      s.Driver,
		})
		var row domain.ScenarioResult
		if err != nil {
			row = Failed(sc.Name, s.Simulations, err)
			row.Seed = r.seed
		} else if row, err = FromReport(rep, s.Denominator); err != nil {
			r.logger.Error("aggregate_failed", zap.String("scenario", sc.Name), zap.Error(err))
			row = Failed(sc.Name, s.Simulations, err)
		}
		row.ECO = sc.ECO
		row.Truncation = effectiveTruncation(s.Driver, sc)
		if row.Denominator == "" {
			row.Denominator = s.Denominator
		}
		table.Append(row)
	}

	if err := ctx.Err(); err != nil {
		return table, err
	}
	return table, nil
}

func effectiveTruncation(d Driver, sc domain.Scenario) domain.TruncationPolicy {
	if sc.Truncation != "" {
		return sc.Truncation
	}
	if d.Truncation == "" {
		return domain.TruncateInvalid
	}
	return d.Truncation
}
