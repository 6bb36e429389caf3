package montecarlo

import (
	"errors"
	"fmt"
)

var (
	ErrSetup             = errors.New("scenario setup failed")
	ErrNoLegalMove       = errors.New("no legal moves")
	ErrEngineUnavailable = errors.New("engine unavailable")
	ErrOracleUnavailable = errors.New("move oracle unavailable")
	ErrAggregation       = errors.New("aggregation mismatch")
)

// SetupError reports a scenario whose start position cannot be built.
type SetupError struct {
	Scenario string
	Token    string
	Err      error
}

func (e *SetupError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("setup %q: move %q: %v", e.Scenario, e.Token, e.Err)
	}
	return fmt.Sprintf("setup %q: %v", e.Scenario, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

func (e *SetupError) Is(target error) bool { return target == ErrSetup }

// unavailable reports whether err means the oracle cannot serve any further moves.
func unavailable(err error) bool {
	return errors.Is(err, ErrEngineUnavailable) || errors.Is(err, ErrOracleUnavailable)
}
