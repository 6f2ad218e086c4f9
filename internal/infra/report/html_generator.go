package report

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/whhaicheng/deal-bench/internal/domain/report"
)

// HTMLGenerator generates HTML format reports. The body is the Markdown
// report converted with GitHub-flavoured tables.
type HTMLGenerator struct {
	markdown *MarkdownGenerator
	md       goldmark.Markdown
}

// NewHTMLGenerator creates a new HTML generator.
func NewHTMLGenerator() *HTMLGenerator {
	return &HTMLGenerator{
		markdown: NewMarkdownGenerator(),
		md:       goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Generate generates an HTML report.
func (g *HTMLGenerator) Generate(data *report.GenerateContext) (*report.Report, error) {
	doc, err := report.Build(data)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var body bytes.Buffer
	if err := g.md.Convert([]byte(g.markdown.Render(doc, data.Config)), &body); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}

	var sb strings.Builder
	g.writeHeader(&sb, doc)
	sb.WriteString("<body>\n<div class=\"container\">\n")
	sb.Write(body.Bytes())
	sb.WriteString("</div>\n</body>\n</html>\n")

	return &report.Report{
		Format:        report.FormatHTML,
		Content:       []byte(sb.String()),
		GeneratedAt:   time.Now(),
		SectionErrors: doc.Errors(),
	}, nil
}

// Format returns the format this generator produces.
func (g *HTMLGenerator) Format() report.ReportFormat {
	return report.FormatHTML
}

// writeHeader writes the HTML header with embedded CSS.
func (g *HTMLGenerator) writeHeader(sb *strings.Builder, doc *report.Document) {
	sb.WriteString(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>`)
	sb.WriteString(html.EscapeString(doc.Title))
	sb.WriteString(`</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            background: #f5f5f5;
            padding: 20px;
        }
        .container {
            max-width: 1200px;
            margin: 0 auto;
            background: white;
            border-radius: 8px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
            padding: 40px;
        }
        h1 {
            color: #2c3e50;
            margin-bottom: 30px;
            border-bottom: 3px solid #3498db;
            padding-bottom: 10px;
        }
        h2, h3, h4 {
            color: #34495e;
            margin-top: 30px;
            margin-bottom: 15px;
        }
        p {
            margin: 10px 0;
        }
        blockquote {
            color: #e74c3c;
            border-left: 4px solid #e74c3c;
            padding-left: 12px;
        }
        table {
            width: 100%;
            border-collapse: collapse;
            margin: 20px 0;
        }
        th, td {
            padding: 12px;
            text-align: left;
            border-bottom: 1px solid #ddd;
        }
        th {
            background-color: #3498db;
            color: white;
            font-weight: 600;
        }
        tr:hover {
            background-color: #f5f5f5;
        }
        pre {
            background: #2c3e50;
            color: #ecf0f1;
            padding: 15px;
            border-radius: 5px;
            overflow-x: auto;
            font-family: "Monaco", "Menlo", "Ubuntu Mono", monospace;
            font-size: 0.9em;
        }
    </style>
</head>
`)
}
