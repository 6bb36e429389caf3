package report

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/park285/cheese-montecarlo/internal/domain"
)

var ErrEmptyTable = errors.New("result table has no rows")

const (
	chartHeight = 420
	plotTop     = 50
	plotBottom  = 340
	plotLeft    = 60
	groupWidth  = 120
	barWidth    = 28
	legendWidth = 140
)

type chartSeries struct {
	outcome domain.Outcome
	label   string
	fill    string
	rgba    color.RGBA
}

var series = []chartSeries{
	{domain.WhiteWin, "White wins", "#f0d9b5", color.RGBA{0xf0, 0xd9, 0xb5, 0xff}},
	{domain.BlackWin, "Black wins", "#3c3c3c", color.RGBA{0x3c, 0x3c, 0x3c, 0xff}},
	{domain.Draw, "Draws", "#6a8fc1", color.RGBA{0x6a, 0x8f, 0xc1, 0xff}},
}

// RenderChart draws grouped white/black/draw rate bars per scenario as PNG.
func RenderChart(table domain.ResultTable) ([]byte, error) {
	if len(table.Rows) == 0 {
		return nil, ErrEmptyTable
	}
	width := chartWidth(len(table.Rows))

	icon, err := oksvg.ReadIconStream(bytes.NewReader(chartSVG(table, width)))
	if err != nil {
		return nil, fmt.Errorf("parse chart svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(width), float64(chartHeight))

	img := image.NewRGBA(image.Rect(0, 0, width, chartHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(width, chartHeight, img, img.Bounds())
	raster := rasterx.NewDasher(width, chartHeight, scanner)
	icon.Draw(raster, 1.0)

	drawChartLabels(img, table, width)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return buf.Bytes(), nil
}

func chartWidth(groups int) int {
	return plotLeft + groupWidth*groups + legendWidth
}

func barRect(group, index int, rate float64) image.Rectangle {
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}
	h := int(rate * float64(plotBottom-plotTop))
	x := plotLeft + group*groupWidth + (groupWidth-len(series)*barWidth)/2 + index*barWidth
	return image.Rect(x, plotBottom-h, x+barWidth, plotBottom)
}

func chartSVG(table domain.ResultTable, width int) []byte {
	var b bytes.Buffer
	plotRight := width - legendWidth
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, width, chartHeight, width, chartHeight)
	fmt.Fprintf(&b, `<rect x="0" y="0" width="%d" height="%d" fill="#ffffff"/>`, width, chartHeight)

	for tick := 0; tick <= 4; tick++ {
		y := plotBottom - tick*(plotBottom-plotTop)/4
		fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="1" fill="#dddddd"/>`, plotLeft, y, plotRight-plotLeft)
	}
	fmt.Fprintf(&b, `<rect x="%d" y="%d" width="1" height="%d" fill="#555555"/>`, plotLeft-1, plotTop, plotBottom-plotTop)

	for g, r := range table.Rows {
		if r.Status == domain.StatusFailed {
			continue
		}
		for i, s := range series {
			rect := barRect(g, i, r.Rates.Rate(s.outcome))
			if rect.Dy() == 0 {
				continue
			}
			fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s" stroke="#555555" stroke-width="1"/>`,
				rect.Min.X, rect.Min.Y, rect.Dx(), rect.Dy(), s.fill)
		}
	}

	for i, s := range series {
		fmt.Fprintf(&b, `<rect x="%d" y="%d" width="14" height="14" fill="%s" stroke="#555555" stroke-width="1"/>`,
			plotRight+20, plotTop+i*24, s.fill)
	}
	b.WriteString(`</svg>`)
	return b.Bytes()
}

func drawChartLabels(img *image.RGBA, table domain.ResultTable, width int) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: img, Src: image.NewUniform(color.Black), Face: face}
	plotRight := width - legendWidth

	drawText(drawer, fmt.Sprintf("Outcome rates by scenario (%s, n=%d)", table.Oracle, table.Simulations), plotLeft, 28)

	for tick := 0; tick <= 4; tick++ {
		y := plotBottom - tick*(plotBottom-plotTop)/4
		label := fmt.Sprintf("%d%%", tick*25)
		w := drawer.MeasureString(label).Round()
		drawText(drawer, label, plotLeft-8-w, y+4)
	}

	maxChars := groupWidth/7 - 1
	for g, r := range table.Rows {
		center := plotLeft + g*groupWidth + groupWidth/2
		drawCentered(drawer, shorten(r.Name, maxChars), center, plotBottom+18)
		switch r.Status {
		case domain.StatusFailed:
			drawCentered(drawer, "failed", center, plotBottom+34)
		case domain.StatusPartial:
			drawCentered(drawer, "partial", center, plotBottom+34)
		default:
			if r.ECO != "" {
				drawCentered(drawer, shorten(r.ECO, maxChars), center, plotBottom+34)
			}
		}
	}

	for i, s := range series {
		drawText(drawer, s.label, plotRight+40, plotTop+i*24+12)
	}
}

func drawText(d *font.Drawer, text string, x, baseline int) {
	d.Dot = fixed.P(x, baseline)
	d.DrawString(text)
}

func drawCentered(d *font.Drawer, text string, centerX, baseline int) {
	w := d.MeasureString(text).Round()
	drawText(d, text, centerX-w/2, baseline)
}

func shorten(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}
