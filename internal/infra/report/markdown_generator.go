package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/whhaicheng/deal-bench/internal/domain/comparison"
	"github.com/whhaicheng/deal-bench/internal/domain/percentile"
	"github.com/whhaicheng/deal-bench/internal/domain/report"
)

// MarkdownGenerator generates Markdown format reports.
type MarkdownGenerator struct {
	chartGen *ChartGenerator
}

// NewMarkdownGenerator creates a new Markdown generator.
func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{
		chartGen: NewChartGenerator(),
	}
}

// Generate generates a Markdown report. Sections that could not be built
// are rendered as an unavailable notice and listed in SectionErrors.
func (g *MarkdownGenerator) Generate(data *report.GenerateContext) (*report.Report, error) {
	doc, err := report.Build(data)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &report.Report{
		Format:        report.FormatMarkdown,
		Content:       []byte(g.Render(doc, data.Config)),
		GeneratedAt:   time.Now(),
		SectionErrors: doc.Errors(),
	}, nil
}

// Format returns the format this generator produces.
func (g *MarkdownGenerator) Format() report.ReportFormat {
	return report.FormatMarkdown
}

// Render writes a built document as Markdown.
func (g *MarkdownGenerator) Render(doc *report.Document, cfg *report.ReportConfig) string {
	var sb strings.Builder

	g.writeTitle(&sb, doc)
	g.writeSizes(&sb, doc)
	for _, s := range doc.Sections {
		g.writeSection(&sb, doc, s, cfg)
	}
	g.writeFooter(&sb, doc)

	return sb.String()
}

// writeTitle writes the report title.
func (g *MarkdownGenerator) writeTitle(sb *strings.Builder, doc *report.Document) {
	sb.WriteString("# ")
	sb.WriteString(doc.Title)
	sb.WriteString("\n\n")
	sb.WriteString(doc.Intro)
	sb.WriteString("\n\n")
}

func (g *MarkdownGenerator) writeSizes(sb *strings.Builder, doc *report.Document) {
	sb.WriteString("It consists of the following tables:\n\n")
	rows := make([][]string, len(doc.Sizes))
	for i, r := range doc.Sizes {
		rows[i] = []string{r.Table, fmt.Sprintf("%d", r.Records)}
	}
	writeTable(sb, []string{"Table name", "Number of records"}, rows)
	sb.WriteString("\n")
}

func (g *MarkdownGenerator) writeSection(sb *strings.Builder, doc *report.Document, s report.Section, cfg *report.ReportConfig) {
	if s.Level > 0 {
		sb.WriteString(strings.Repeat("#", s.Level))
		sb.WriteString(" ")
		sb.WriteString(s.Heading)
		sb.WriteString("\n\n")
	}

	if s.Err != nil {
		sb.WriteString(fmt.Sprintf("> **Section unavailable:** %s\n\n", s.Err))
		return
	}

	if s.Note != "" {
		sb.WriteString(fmt.Sprintf("**NOTE:** %s\n\n", s.Note))
	}
	if s.Description != "" {
		sb.WriteString(fmt.Sprintf("*%s*\n\n", s.Description))
	}
	if s.Text != "" {
		sb.WriteString(s.Text)
		sb.WriteString("\n\n")
	}
	if s.Table != nil {
		writeComparison(sb, doc, s.Table)
		sb.WriteString("\n")
	}
	if len(s.Variability) > 0 {
		g.writeVariability(sb, s.Variability, cfg)
	}
	if len(s.Plots) > 0 {
		sb.WriteString("```text\n")
		sb.WriteString(g.chartGen.GenerateBoxPlot(s.Plots, cfg.ChartWidth))
		sb.WriteString("```\n\n")
	}
}

func writeComparison(sb *strings.Builder, doc *report.Document, t *comparison.Table) {
	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = []string{
			r.Metric,
			percentile.FormatValue(r.A),
			percentile.FormatValue(r.B),
			percentile.FormatValue(r.DiffPct),
		}
	}
	writeTable(sb, []string{"Metric", doc.SystemA, doc.SystemB, "Difference (%)"}, rows)
}

func (g *MarkdownGenerator) writeVariability(sb *strings.Builder, vs []report.Variability, cfg *report.ReportConfig) {
	unit := vs[0].Unit
	headers := []string{
		"System",
		"Runs",
		fmt.Sprintf("Mean ± StdDev (%s)", unit),
		fmt.Sprintf("Min .. Max (%s)", unit),
		"CV (%)",
		fmt.Sprintf("95%% CI (%s)", unit),
	}

	rows := make([][]string, len(vs))
	labels := make([]string, len(vs))
	means := make([]float64, len(vs))
	for i, v := range vs {
		rows[i] = []string{
			v.System,
			fmt.Sprintf("%d", v.Stats.N),
			comparison.FormatMeanStdDev(v.Stats),
			comparison.FormatMinMax(v.Stats),
			fmt.Sprintf("%.2f", v.Stats.CV()),
			fmt.Sprintf("%.2f .. %.2f", v.CILower, v.CIUpper),
		}
		labels[i] = v.System
		means[i] = v.Stats.Mean
	}
	writeTable(sb, headers, rows)
	sb.WriteString("\n")

	if cfg.IncludeCharts {
		sb.WriteString("```text\n")
		sb.WriteString(g.chartGen.GenerateBarChart(labels, means, cfg.ChartWidth))
		sb.WriteString("```\n\n")
	}
}

// writeTable writes a GitHub-flavoured table with padded columns.
func writeTable(sb *strings.Builder, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len([]rune(h))
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len([]rune(cell)))
		}
	}

	writeRow := func(cells []string) {
		sb.WriteString("|")
		for i, cell := range cells {
			sb.WriteString(" ")
			sb.WriteString(cell)
			sb.WriteString(strings.Repeat(" ", widths[i]-len([]rune(cell))))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}

	writeRow(headers)
	sb.WriteString("|")
	for _, w := range widths {
		sb.WriteString(strings.Repeat("-", w+2))
		sb.WriteString("|")
	}
	sb.WriteString("\n")
	for _, row := range rows {
		writeRow(row)
	}
}

// writeFooter writes the report footer.
func (g *MarkdownGenerator) writeFooter(sb *strings.Builder, doc *report.Document) {
	sb.WriteString("---\n\n")
	sb.WriteString(fmt.Sprintf("*Generated by deal-bench at %s*\n", doc.GeneratedAt.Format(time.RFC1123)))
}
