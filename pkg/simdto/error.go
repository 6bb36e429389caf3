package simdto

// DomainError is a run-level failure reported to the operator.
type DomainError struct {
	Code      string
	Message   string
	Retryable bool
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "simulation error"
}

const (
	CodeConfig      = "config"
	CodeOracle      = "oracle_unavailable"
	CodeInterrupted = "interrupted"
	CodeOutput      = "output"
)
