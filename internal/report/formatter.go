package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/muesli/termenv"

	"github.com/park285/cheese-montecarlo/internal/domain"
	"github.com/park285/cheese-montecarlo/internal/msgcat"
)

// Formatter renders result tables as console text.
type Formatter struct {
	out      *termenv.Output
	messages *msgcat.Catalog
}

// NewFormatter styles text for the terminal behind w. Non-terminals get
// plain text.
func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{out: termenv.NewOutput(w), messages: msgcat.MustDefault()}
}

// NewPlainFormatter never emits escape sequences.
func NewPlainFormatter() *Formatter {
	return &Formatter{
		out:      termenv.NewOutput(io.Discard, termenv.WithProfile(termenv.Ascii)),
		messages: msgcat.MustDefault(),
	}
}

// WithMessages replaces the notification templates.
func (f *Formatter) WithMessages(c *msgcat.Catalog) *Formatter {
	if c != nil {
		f.messages = c
	}
	return f
}

func (f *Formatter) Table(table domain.ResultTable) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n", f.out.String(fmt.Sprintf("Monte Carlo results (%s, %d simulations, ply cap %d)", table.Oracle, table.Simulations, table.PlyCap)).Bold())
	if table.RunID != "" {
		fmt.Fprintf(&buf, "run %s\n", table.RunID)
	}

	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tECO\tWHITE\tBLACK\tDRAW\tINVALID\tN\tSTATUS")
	for _, r := range table.Rows {
		if r.Status == domain.StatusFailed {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t-\t0/%d\t%s\n", r.Name, dash(r.ECO), r.Requested, f.status(r.Status))
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Name,
			dash(r.ECO),
			cell(r, domain.WhiteWin),
			cell(r, domain.BlackWin),
			cell(r, domain.Draw),
			cell(r, domain.Invalid),
			sampleSize(r),
			f.status(r.Status))
	}
	tw.Flush()

	for _, r := range table.Rows {
		if r.Error != "" {
			fmt.Fprintf(&buf, "%s: %s\n", r.Name, r.Error)
		}
	}
	return buf.String()
}

// Summary is a short multi-line digest used for chat notifications.
func (f *Formatter) Summary(table domain.ResultTable) string {
	lines := []string{f.render("summary.header", map[string]any{
		"RunID":       dash(table.RunID),
		"Oracle":      table.Oracle,
		"Simulations": table.Simulations,
		"PlyCap":      table.PlyCap,
	})}
	for _, r := range table.Rows {
		if r.Status == domain.StatusFailed {
			lines = append(lines, f.render("summary.failed", map[string]any{"Name": r.Name}))
			continue
		}
		line := f.render("summary.row", map[string]any{
			"Name":  r.Name,
			"White": r.Rates.Rate(domain.WhiteWin),
			"Black": r.Rates.Rate(domain.BlackWin),
			"Draw":  r.Rates.Rate(domain.Draw),
		})
		if r.Status == domain.StatusPartial {
			line += f.render("summary.partial", map[string]any{"Total": r.Total, "Requested": r.Requested})
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (f *Formatter) render(key string, data map[string]any) string {
	out, err := f.messages.Render(key, data)
	if err != nil {
		return fmt.Sprintf("[%s: %v]", key, err)
	}
	return out
}

func (f *Formatter) status(s domain.Status) string {
	style := f.out.String(string(s))
	switch s {
	case domain.StatusFailed:
		style = style.Foreground(f.out.Color("1")).Bold()
	case domain.StatusPartial:
		style = style.Foreground(f.out.Color("3"))
	default:
		style = style.Foreground(f.out.Color("2"))
	}
	return style.String()
}

func cell(r domain.ScenarioResult, o domain.Outcome) string {
	return fmt.Sprintf("%d (%.1f%%)", r.Counts.Count(o), 100*r.Rates.Rate(o))
}

func sampleSize(r domain.ScenarioResult) string {
	if r.Total == r.Requested {
		return fmt.Sprintf("%d", r.Total)
	}
	return fmt.Sprintf("%d/%d", r.Total, r.Requested)
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
