package report

import (
	"fmt"
	"time"

	"github.com/whhaicheng/deal-bench/internal/domain/catalogue"
	"github.com/whhaicheng/deal-bench/internal/domain/comparison"
	"github.com/whhaicheng/deal-bench/internal/domain/percentile"
)

// Document is the format-neutral content of a comparison report. Every
// generator renders the same document.
type Document struct {
	Title       string     `json:"title"`
	Intro       string     `json:"intro"`
	SystemA     string     `json:"system_a"`
	SystemB     string     `json:"system_b"`
	Sizes       []TableRow `json:"table_sizes"`
	Sections    []Section  `json:"sections"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// TableRow is one dataset table and its record count.
type TableRow struct {
	Table   string `json:"table"`
	Records int    `json:"records"`
}

// Section is one heading of the report and its content. A section with
// Err set could not be built; its other content fields are empty.
type Section struct {
	// Level is the Markdown heading level. Zero means no heading.
	Level       int               `json:"level"`
	Heading     string            `json:"heading,omitempty"`
	Description string            `json:"description,omitempty"`
	Note        string            `json:"note,omitempty"`
	Text        string            `json:"text,omitempty"`
	Table       *comparison.Table `json:"table,omitempty"`
	Variability []Variability     `json:"variability,omitempty"`
	Plots       []BoxPlot         `json:"plots,omitempty"`
	Err         error             `json:"-"`
}

// Variability describes the spread of one system's run totals.
type Variability struct {
	System  string                    `json:"system"`
	Unit    string                    `json:"unit"`
	Stats   comparison.RunMetricStats `json:"stats"`
	CILower float64                   `json:"ci_lower"`
	CIUpper float64                   `json:"ci_upper"`
}

// BoxPlot is the five-number summary of one system's measurements.
type BoxPlot struct {
	System string  `json:"system"`
	Unit   string  `json:"unit"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// Errors returns the errors of every failed section in document order.
func (d *Document) Errors() []error {
	var errs []error
	for _, s := range d.Sections {
		if s.Err != nil {
			errs = append(errs, s.Err)
		}
	}
	return errs
}

// Build assembles the report document. A key missing from either result
// file fails only the sections that reference it.
func Build(ctx *GenerateContext) (*Document, error) {
	if err := ctx.Validate(); err != nil {
		return nil, err
	}

	b := &builder{ctx: ctx, cfg: ctx.Config}
	title := b.cfg.Title
	if title == "" {
		title = fmt.Sprintf("%s vs %s benchmark", ctx.A.Name, ctx.B.Name)
	}

	doc := &Document{
		Title: title,
		Intro: fmt.Sprintf("This benchmark compares %s and %s performance across a variety of CRUD queries.",
			ctx.A.Name, ctx.B.Name),
		SystemA:     ctx.A.Name,
		SystemB:     ctx.B.Name,
		GeneratedAt: ctx.GeneratedAt,
	}
	for _, t := range catalogue.Tables {
		doc.Sizes = append(doc.Sizes, TableRow{Table: string(t), Records: ctx.Sizes.Of(t)})
	}

	b.overall()
	b.categories()
	b.queries()
	b.variability()
	if b.cfg.IncludeCharts {
		b.charts()
	}

	doc.Sections = b.sections
	return doc, nil
}

type builder struct {
	ctx      *GenerateContext
	cfg      *ReportConfig
	sections []Section
}

func (b *builder) add(s Section) {
	b.sections = append(b.sections, s)
}

func (b *builder) heading(level int, heading, text string) {
	b.add(Section{Level: level, Heading: heading, Text: text})
}

// table adds a section holding the table produced by fn, or its error.
func (b *builder) table(s Section, fn func() ([]comparison.Row, error)) {
	rows, err := fn()
	if err != nil {
		name := s.Heading
		if name == "" {
			name = s.Text
		}
		b.add(Section{Level: s.Level, Heading: s.Heading, Err: fmt.Errorf("section %q: %w", name, err)})
		return
	}
	s.Table = &comparison.Table{Title: s.Heading, Rows: rows}
	b.add(s)
}

func (b *builder) options(unit percentile.Unit) percentile.Options {
	opts := b.cfg.Summary
	if unit != "" {
		opts.Unit = unit
	}
	return opts
}

func (b *builder) summaries(key string, opts percentile.Options) (percentile.Summary, percentile.Summary, error) {
	var out [2]percentile.Summary
	for i, side := range []Side{b.ctx.A, b.ctx.B} {
		values, err := side.Results.Int64s(key)
		if err != nil {
			return percentile.Summary{}, percentile.Summary{}, fmt.Errorf("%s: %w", side.Name, err)
		}
		out[i], err = percentile.Summarize(values, opts)
		if err != nil {
			return percentile.Summary{}, percentile.Summary{}, fmt.Errorf("%s %s: %w", side.Name, key, err)
		}
	}
	return out[0], out[1], nil
}

func (b *builder) throughputSummaries() (percentile.Summary, percentile.Summary, error) {
	var out [2]percentile.Summary
	for i, side := range []Side{b.ctx.A, b.ctx.B} {
		values, err := side.Results.Float64s(catalogue.TotalThroughputQPS)
		if err != nil {
			return percentile.Summary{}, percentile.Summary{}, fmt.Errorf("%s: %w", side.Name, err)
		}
		out[i], err = percentile.SummarizeThroughput(values, b.cfg.Summary.Strategy)
		if err != nil {
			return percentile.Summary{}, percentile.Summary{}, fmt.Errorf("%s throughput: %w", side.Name, err)
		}
	}
	return out[0], out[1], nil
}

func (b *builder) latencyRows(key string, unit percentile.Unit) func() ([]comparison.Row, error) {
	return func() ([]comparison.Row, error) {
		sa, sb, err := b.summaries(key, b.options(unit))
		if err != nil {
			return nil, err
		}
		return comparison.Compare(sa, sb, b.cfg.DiffPrecision)
	}
}

func (b *builder) overall() {
	b.table(Section{Level: 3, Heading: "Overall results"}, b.summaryRows)
	b.queryCount()

	b.table(Section{Level: 3, Heading: "Overall throughput"}, func() ([]comparison.Row, error) {
		sa, sb, err := b.throughputSummaries()
		if err != nil {
			return nil, err
		}
		return comparison.Compare(sa, sb, b.cfg.DiffPrecision)
	})
	b.table(Section{Level: 3, Heading: "Overall latency"}, b.latencyRows(catalogue.TotalTimeDuration, ""))
	b.table(Section{Level: 3, Heading: "Overall write latency"}, b.latencyRows(catalogue.TotalWriteDuration, ""))
	b.table(Section{Level: 3, Heading: "Overall read latency"}, b.latencyRows(catalogue.TotalReadDuration, ""))
}

// summaryRows builds the headline P99 table.
func (b *builder) summaryRows() ([]comparison.Row, error) {
	ta, tb, err := b.throughputSummaries()
	if err != nil {
		return nil, err
	}
	p99a, _ := ta.Get("p99")
	p99b, _ := tb.Get("p99")
	rows := []comparison.Row{comparison.NewRow("P99 throughput (QPS)", p99a, p99b, b.cfg.DiffPrecision)}

	unit := b.cfg.Summary.Unit
	latencies := []struct {
		metric string
		key    string
	}{
		{"P99 latency (%s)", catalogue.TotalTimeDuration},
		{"P99 read latency (%s)", catalogue.TotalReadDuration},
		{"P99 write latency (%s)", catalogue.TotalWriteDuration},
	}
	for _, l := range latencies {
		sa, sb, err := b.summaries(l.key, b.cfg.Summary)
		if err != nil {
			return nil, err
		}
		a, _ := sa.Get("p99")
		bv, _ := sb.Get("p99")
		rows = append(rows, comparison.NewRow(fmt.Sprintf(l.metric, unit), a, bv, b.cfg.DiffPrecision))
	}
	return rows, nil
}

func (b *builder) queryCount() {
	counts := make([]float64, 2)
	for i, side := range []Side{b.ctx.A, b.ctx.B} {
		values, err := side.Results.First(catalogue.TotalQueriesCount)
		if err != nil {
			b.add(Section{Err: fmt.Errorf("section %q: %s: %w", "Total number of queries per run", side.Name, err)})
			return
		}
		counts[i] = values[0]
	}

	text := fmt.Sprintf("Total number of queries per run: %s", percentile.FormatValue(counts[0]))
	if counts[0] != counts[1] {
		text = fmt.Sprintf("Total number of queries per run: %s %s, %s %s",
			b.ctx.A.Name, percentile.FormatValue(counts[0]), b.ctx.B.Name, percentile.FormatValue(counts[1]))
	}
	b.add(Section{Text: text})
}

var (
	writeCategories = []catalogue.Category{
		catalogue.CategoryInsert,
		catalogue.CategoryUpdate,
		catalogue.CategoryDelete,
		catalogue.CategoryIndex,
		catalogue.CategoryTransactions,
	}
	readCategories = []catalogue.Category{
		catalogue.CategoryReadFilter,
		catalogue.CategoryReadRelationships,
		catalogue.CategoryReadAggregation,
	}
)

func (b *builder) categories() {
	b.heading(2, "Results by category", "Each category consists of 2 or more queries")

	b.heading(3, "Write latency", "")
	for _, c := range writeCategories {
		b.category(c)
	}
	b.heading(3, "Read latency", "")
	for _, c := range readCategories {
		b.category(c)
	}
}

func (b *builder) category(c catalogue.Category) {
	info, _ := catalogue.CategoryOf(c)
	b.table(Section{Level: 4, Heading: info.Title}, b.latencyRows(info.DurationKey, ""))
}

func (b *builder) queries() {
	b.heading(2, "Results by query", "")
	for _, id := range catalogue.ReportOrder {
		q, err := catalogue.Lookup(id)
		if err != nil {
			b.add(Section{Level: 3, Heading: string(id), Err: err})
			continue
		}
		b.table(Section{Level: 3, Heading: q.Title, Description: q.Description, Note: q.Note},
			b.latencyRows(q.ID.String(), q.Unit))
	}
}

func (b *builder) variability() {
	const heading = "Run variability"
	unit := b.cfg.Summary.Unit

	var out []Variability
	for _, side := range []Side{b.ctx.A, b.ctx.B} {
		totals, err := side.Results.First(catalogue.TotalTimeDuration)
		if err != nil {
			b.add(Section{Level: 2, Heading: heading, Err: fmt.Errorf("section %q: %s: %w", heading, side.Name, err)})
			return
		}
		converted := make([]float64, len(totals))
		for i, v := range totals {
			converted[i] = percentile.Convert(v, unit)
		}
		stats := comparison.CalculateRunMetricStats(converted)
		lower, upper := comparison.CalculateConfidenceInterval(stats)
		out = append(out, Variability{System: side.Name, Unit: unit.String(), Stats: stats, CILower: lower, CIUpper: upper})
	}

	b.add(Section{
		Level:       2,
		Heading:     heading,
		Text:        "Total time per run: mean ± sample standard deviation, coefficient of variation and 95% confidence interval of the mean.",
		Variability: out,
	})
}

type chartKey struct {
	heading string
	key     string
}

func (b *builder) charts() {
	b.heading(2, "Distribution", "Box plots of min, p25, p50, p75 and max.")

	keys := []chartKey{{"Overall latency", catalogue.TotalTimeDuration}}
	for _, c := range append(append([]catalogue.Category{}, writeCategories...), readCategories...) {
		info, _ := catalogue.CategoryOf(c)
		keys = append(keys, chartKey{info.Title, info.DurationKey})
	}

	for _, k := range keys {
		sa, sb, err := b.summaries(k.key, b.cfg.Summary)
		if err != nil {
			b.add(Section{Level: 3, Heading: k.heading, Err: fmt.Errorf("section %q: %w", k.heading, err)})
			continue
		}
		b.add(Section{
			Level:   3,
			Heading: k.heading,
			Plots:   []BoxPlot{newBoxPlot(b.ctx.A.Name, sa), newBoxPlot(b.ctx.B.Name, sb)},
		})
	}
}

func newBoxPlot(system string, s percentile.Summary) BoxPlot {
	get := func(label string) float64 {
		v, _ := s.Get(label)
		return v
	}
	return BoxPlot{
		System: system,
		Unit:   s.Unit,
		Min:    get("min"),
		Q1:     get("p25"),
		Median: get("p50"),
		Q3:     get("p75"),
		Max:    get("max"),
	}
}
