// Package charts renders per-category spending charts as PNG images.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"expensetracker/internal/core"
)

// Kind selects the chart layout.
type Kind string

const (
	KindPie Kind = "pie"
	KindBar Kind = "bar"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no expenses to chart")

// ParseKind maps a query value to a Kind, defaulting to a pie chart.
func ParseKind(s string) Kind {
	if Kind(strings.ToLower(strings.TrimSpace(s))) == KindBar {
		return KindBar
	}
	return KindPie
}

// Generator renders spending charts.
type Generator struct {
	Width  int
	Height int
}

func NewGenerator() *Generator {
	return &Generator{Width: 800, Height: 600}
}

// CategoryTotals renders the spending of each category.
func (g *Generator) CategoryTotals(kind Kind, expenses []core.ExpenseEntry, categories []core.Category) ([]byte, error) {
	totals := core.TotalsByCategory(expenses, categories)
	values := make([]chart.Value, 0, len(totals))
	for _, t := range totals {
		v, _ := t.Amount.Float64()
		if v <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %s", t.Name, core.FormatAmount(t.Amount)),
			Value: v,
			Style: sliceStyle(colorFor(categories, t.Name)),
		})
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}

	switch kind {
	case KindBar:
		return g.bar(values)
	default:
		return g.pie(values)
	}
}

func (g *Generator) pie(values []chart.Value) ([]byte, error) {
	pie := chart.PieChart{
		Title:  "Spending by category",
		Width:  g.Width,
		Height: g.Height,
		Values: values,
		Background: chart.Style{
			Padding:   chart.Box{Top: 50, Left: 50, Right: 50, Bottom: 50},
			FillColor: chart.ColorWhite,
		},
	}

	buf := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buf); err != nil {
		return nil, fmt.Errorf("render category pie chart: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) bar(values []chart.Value) ([]byte, error) {
	// Anchored at zero; equal totals would otherwise give go-chart an empty range.
	maxValue := 0.0
	for _, v := range values {
		maxValue = math.Max(maxValue, v.Value)
	}
	graph := chart.BarChart{
		Title:    "Spending by category",
		Width:    g.Width,
		Height:   g.Height,
		BarWidth: 60,
		Background: chart.Style{
			Padding:   chart.Box{Top: 50, Left: 50, Right: 50, Bottom: 50},
			FillColor: chart.ColorWhite,
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxValue},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("R%.0f", f)
				}
				return ""
			},
		},
		Bars: values,
	}

	buf := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, fmt.Errorf("render category bar chart: %w", err)
	}
	return buf.Bytes(), nil
}

func sliceStyle(c drawing.Color) chart.Style {
	if c.IsZero() {
		return chart.Style{FontSize: 12, FontColor: chart.ColorBlack}
	}
	return chart.Style{
		FillColor:   c,
		StrokeColor: c,
		FontSize:    12,
		FontColor:   chart.ColorBlack,
	}
}

// colorFor returns the category's own color, or the zero color when it is
// missing, malformed or the white default, so go-chart picks from its palette.
func colorFor(categories []core.Category, name string) drawing.Color {
	for _, c := range categories {
		if c.Name != name {
			continue
		}
		hex := strings.TrimPrefix(strings.TrimSpace(c.Color), "#")
		if len(hex) != 6 || !isHex(hex) || strings.EqualFold(hex, "FFFFFF") {
			return drawing.Color{}
		}
		return drawing.ColorFromHex(hex)
	}
	return drawing.Color{}
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
