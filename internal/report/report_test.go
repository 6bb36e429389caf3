package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/park285/cheese-montecarlo/internal/domain"
)

func sampleTable() domain.ResultTable {
	var e4 domain.Tally
	e4.AddN(domain.WhiteWin, 40)
	e4.AddN(domain.BlackWin, 30)
	e4.AddN(domain.Draw, 20)
	e4.AddN(domain.Invalid, 10)

	var mate domain.Tally
	mate.AddN(domain.BlackWin, 6)

	return domain.ResultTable{
		RunID:       "run-42",
		Oracle:      "random",
		PlyCap:      100,
		Simulations: 100,
		Rows: []domain.ScenarioResult{
			{
				Name:        "e4",
				Counts:      e4,
				Total:       100,
				Requested:   100,
				Rates:       domain.Rates{0.4, 0.3, 0.2, 0.1},
				Status:      domain.StatusComplete,
				Denominator: domain.DenominatorAll,
			},
			{
				Name:        "Fool's Mate",
				ECO:         "A00",
				Counts:      mate,
				Total:       6,
				Requested:   100,
				Rates:       domain.Rates{0, 1, 0, 0},
				Status:      domain.StatusPartial,
				Denominator: domain.DenominatorAll,
			},
			{
				Name:      "Sicilian Defense",
				Requested: 100,
				Status:    domain.StatusFailed,
				Error:     "engine unavailable",
			},
		},
	}
}

func TestFormatterTable(t *testing.T) {
	out := NewPlainFormatter().Table(sampleTable())
	for _, want := range []string{
		"Monte Carlo results (random, 100 simulations, ply cap 100)",
		"run run-42",
		"40 (40.0%)",
		"6/100",
		"partial",
		"failed",
		"Sicilian Defense: engine unavailable",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("plain formatter emitted escape codes")
	}
}

func TestFormatterSummary(t *testing.T) {
	out := NewPlainFormatter().Summary(sampleTable())
	for _, want := range []string{"run-42", "e4: W 40.0% / B 30.0% / D 20.0%", "(partial 6/100)", "Sicilian Defense: failed"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleTable()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("got %d records", len(records))
	}
	if records[0][0] != "run_id" || records[1][1] != "e4" || records[2][1] != "Fool's Mate" {
		t.Fatalf("unexpected records: %v", records)
	}
	if records[3][16] != "failed" || records[3][19] != "engine unavailable" {
		t.Fatalf("failed row = %v", records[3])
	}
}

func TestRenderChart(t *testing.T) {
	table := sampleTable()
	data, err := RenderChart(table)
	if err != nil {
		t.Fatalf("RenderChart: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if img.Bounds().Dx() != chartWidth(3) || img.Bounds().Dy() != chartHeight {
		t.Fatalf("bounds = %v", img.Bounds())
	}

	// The second scenario's black bar spans the whole plot height.
	bar := barRect(1, 1, 1.0)
	c := img.At((bar.Min.X+bar.Max.X)/2, (bar.Min.Y+bar.Max.Y)/2)
	r, g, b, _ := c.RGBA()
	if r>>8 > 0x60 || g>>8 > 0x60 || b>>8 > 0x60 {
		t.Fatalf("black bar pixel = %v", c)
	}
}

func TestRenderChartEmpty(t *testing.T) {
	if _, err := RenderChart(domain.ResultTable{}); !errors.Is(err, ErrEmptyTable) {
		t.Fatalf("expected empty table error, got %v", err)
	}
}

func TestPresenterWritesFiles(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "out", "results.csv")
	chartPath := filepath.Join(dir, "out", "results.png")
	var console bytes.Buffer

	p := NewPresenter(&console, NewPlainFormatter(), WithCSV(csvPath), WithChart(chartPath))
	if err := p.Present(sampleTable()); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if !strings.Contains(console.String(), "Fool's Mate") {
		t.Fatalf("console output missing rows: %s", console.String())
	}
	for _, path := range []string{csvPath, chartPath} {
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			t.Fatalf("%s not written: %v", path, err)
		}
	}
}

func TestPresenterReportsChartError(t *testing.T) {
	dir := t.TempDir()
	p := NewPresenter(nil, NewPlainFormatter(), WithChart(filepath.Join(dir, "empty.png")))
	if err := p.Present(domain.ResultTable{}); !errors.Is(err, ErrEmptyTable) {
		t.Fatalf("expected chart error, got %v", err)
	}
}
