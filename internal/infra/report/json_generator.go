package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/whhaicheng/deal-bench/internal/domain/report"
)

// jsonVersion is bumped whenever the JSON report layout changes.
const jsonVersion = "1"

// JSONGenerator generates JSON format reports.
type JSONGenerator struct{}

// NewJSONGenerator creates a new JSON generator.
func NewJSONGenerator() *JSONGenerator {
	return &JSONGenerator{}
}

// Generate generates a JSON report.
func (g *JSONGenerator) Generate(data *report.GenerateContext) (*report.Report, error) {
	doc, err := report.Build(data)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	content, err := json.MarshalIndent(g.buildJSON(doc, data.Config), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}

	return &report.Report{
		Format:        report.FormatJSON,
		Content:       content,
		GeneratedAt:   time.Now(),
		SectionErrors: doc.Errors(),
	}, nil
}

// Format returns the format this generator produces.
func (g *JSONGenerator) Format() report.ReportFormat {
	return report.FormatJSON
}

// jsonReport represents the JSON report structure.
type jsonReport struct {
	Meta     jsonMeta          `json:"meta"`
	Sizes    []report.TableRow `json:"table_sizes"`
	Sections []jsonSection     `json:"sections"`
}

// jsonMeta represents report metadata.
type jsonMeta struct {
	Title       string `json:"title"`
	Intro       string `json:"intro"`
	SystemA     string `json:"system_a"`
	SystemB     string `json:"system_b"`
	Unit        string `json:"unit"`
	Strategy    string `json:"strategy"`
	GeneratedAt string `json:"generated_at"`
	Version     string `json:"version"`
}

// jsonSection is a report section with its failure, if any, as text.
type jsonSection struct {
	report.Section
	Error string `json:"error,omitempty"`
}

func (g *JSONGenerator) buildJSON(doc *report.Document, cfg *report.ReportConfig) jsonReport {
	out := jsonReport{
		Meta: jsonMeta{
			Title:       doc.Title,
			Intro:       doc.Intro,
			SystemA:     doc.SystemA,
			SystemB:     doc.SystemB,
			Unit:        cfg.Summary.Unit.String(),
			Strategy:    cfg.Summary.Strategy.String(),
			GeneratedAt: doc.GeneratedAt.Format(time.RFC3339),
			Version:     jsonVersion,
		},
		Sizes:    doc.Sizes,
		Sections: make([]jsonSection, len(doc.Sections)),
	}

	for i, s := range doc.Sections {
		out.Sections[i] = jsonSection{Section: s}
		if s.Err != nil {
			out.Sections[i].Error = s.Err.Error()
		}
	}

	return out
}
