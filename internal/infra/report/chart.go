// Package report renders comparison report documents as Markdown, JSON and HTML.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/whhaicheng/deal-bench/internal/domain/percentile"
	"github.com/whhaicheng/deal-bench/internal/domain/report"
)

// ChartGenerator generates text-based charts for reports.
type ChartGenerator struct{}

// NewChartGenerator creates a new chart generator.
func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{}
}

// GenerateBoxPlot draws horizontal box plots on one shared scale:
//
//	name ├───███┃███────┤ min .. max
func (g *ChartGenerator) GenerateBoxPlot(plots []report.BoxPlot, width int) string {
	if len(plots) == 0 {
		return ""
	}

	labelLen := 0
	values := make([]float64, 0, 2*len(plots))
	for _, p := range plots {
		labelLen = max(labelLen, len([]rune(p.System)))
		values = append(values, p.Min, p.Max)
	}
	lo, hi := g.minMax(values)
	span := hi - lo
	if span == 0 {
		span = 1
	}

	plotWidth := width - labelLen - 2
	if plotWidth < 10 {
		plotWidth = 10
	}
	pos := func(v float64) int {
		x := int(math.Round((v - lo) / span * float64(plotWidth-1)))
		return min(max(x, 0), plotWidth-1)
	}

	var sb strings.Builder
	for _, p := range plots {
		line := []rune(strings.Repeat(" ", plotWidth))
		pMin, pQ1, pMed, pQ3, pMax := pos(p.Min), pos(p.Q1), pos(p.Median), pos(p.Q3), pos(p.Max)
		for i := pMin; i <= pMax; i++ {
			line[i] = '─'
		}
		for i := pQ1; i <= pQ3; i++ {
			line[i] = '█'
		}
		line[pMin] = '├'
		line[pMax] = '┤'
		line[pMed] = '┃'

		sb.WriteString(fmt.Sprintf("%-*s %s %s .. %s %s\n", labelLen, p.System, string(line),
			percentile.FormatValue(p.Min), percentile.FormatValue(p.Max), p.Unit))
	}

	return sb.String()
}

// minMax finds the minimum and maximum values in a slice.
func (g *ChartGenerator) minMax(values []float64) (float64, float64) {
	lo := math.Inf(1)
	hi := math.Inf(-1)

	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	if math.IsInf(lo, 1) || math.IsInf(hi, -1) {
		return 0, 1
	}

	return lo, hi
}

// GenerateBarChart generates a simple horizontal bar chart.
func (g *ChartGenerator) GenerateBarChart(labels []string, values []float64, width int) string {
	if len(labels) != len(values) || len(labels) == 0 {
		return ""
	}

	// Find max for scaling
	top := 0.0
	for _, v := range values {
		if v > top {
			top = v
		}
	}
	if top == 0 {
		top = 1
	}

	maxLabelLen := 0
	for _, l := range labels {
		if len(l) > maxLabelLen {
			maxLabelLen = len(l)
		}
	}

	var sb strings.Builder
	barWidth := width - maxLabelLen - 10
	if barWidth < 10 {
		barWidth = 10
	}

	for i, label := range labels {
		value := values[i]
		barLength := int(value / top * float64(barWidth))
		bar := strings.Repeat("█", barLength)
		sb.WriteString(fmt.Sprintf("%*s │%s%s %.2f\n", maxLabelLen, label, bar,
			strings.Repeat(" ", barWidth-barLength), value))
	}

	return sb.String()
}
