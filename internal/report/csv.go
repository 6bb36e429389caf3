package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/park285/cheese-montecarlo/internal/domain"
	"github.com/park285/cheese-montecarlo/pkg/simdto"
)

// WriteCSV writes one header line and one record per scenario.
func WriteCSV(w io.Writer, table domain.ResultTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(simdto.Header()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range simdto.Rows(table) {
		if err := cw.Write(row.Record()); err != nil {
			return fmt.Errorf("write csv row %q: %w", row.Scenario, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
