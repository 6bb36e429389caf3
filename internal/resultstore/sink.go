package resultstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/park285/cheese-montecarlo/internal/domain"
)

var ErrNoRunID = errors.New("result table has no run id")

// Sink persists a finished result table.
type Sink interface {
	Name() string
	Save(ctx context.Context, table domain.ResultTable) error
}

// Multi saves to every sink and joins their errors.
type Multi []Sink

func (m Multi) Name() string { return "multi" }

func (m Multi) Save(ctx context.Context, table domain.ResultTable) error {
	var errs []error
	for _, s := range m {
		if err := s.Save(ctx, table); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
