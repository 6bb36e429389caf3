package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/park285/cheese-montecarlo/internal/domain"
)

// Presenter delivers a result table to the console and the optional output
// files without coupling to the command layer.
type Presenter struct {
	out       io.Writer
	formatter *Formatter
	csvPath   string
	chartPath string
	logger    *zap.Logger
}

type Option func(*Presenter)

func WithCSV(path string) Option {
	return func(p *Presenter) { p.csvPath = strings.TrimSpace(path) }
}

func WithChart(path string) Option {
	return func(p *Presenter) { p.chartPath = strings.TrimSpace(path) }
}

func WithLogger(logger *zap.Logger) Option {
	return func(p *Presenter) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func NewPresenter(out io.Writer, formatter *Formatter, opts ...Option) *Presenter {
	p := &Presenter{out: out, formatter: formatter, logger: zap.NewNop()}
	if p.formatter == nil {
		p.formatter = NewFormatter(out)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Present prints the table and writes every configured file. A failing file
// does not stop the others.
func (p *Presenter) Present(table domain.ResultTable) error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.out != nil {
		if _, err := io.WriteString(p.out, p.formatter.Table(table)); err != nil {
			errs = append(errs, fmt.Errorf("write table: %w", err))
		}
	}

	if p.csvPath != "" {
		var buf bytes.Buffer
		err := WriteCSV(&buf, table)
		if err == nil {
			err = writeFile(p.csvPath, buf.Bytes())
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("csv %s: %w", p.csvPath, err))
		} else {
			p.logger.Info("csv_written", zap.String("path", p.csvPath), zap.Int("rows", len(table.Rows)))
		}
	}

	if p.chartPath != "" {
		img, err := RenderChart(table)
		if err == nil {
			err = writeFile(p.chartPath, img)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("chart %s: %w", p.chartPath, err))
		} else {
			p.logger.Info("chart_written", zap.String("path", p.chartPath))
		}
	}
	return errors.Join(errs...)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
