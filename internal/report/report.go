// Package report renders recorded smoke runs as a markdown document and a
// standalone HTML page.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ziadkadry99/toolprobe/internal/history"
)

// Source supplies runs for a report. *history.Store satisfies it.
type Source interface {
	List(ctx context.Context, filter history.Filter) ([]history.Run, error)
	Summarize(ctx context.Context) (*history.Summary, error)
}

// Generator writes report.md and index.html into OutputDir.
type Generator struct {
	OutputDir string
	Title     string
	// Limit caps the number of runs included; zero includes all of them.
	Limit int
	now   func() time.Time
}

// NewGenerator creates a Generator with the given output directory.
func NewGenerator(outputDir string, limit int) *Generator {
	return &Generator{
		OutputDir: outputDir,
		Title:     "toolprobe report",
		Limit:     limit,
		now:       time.Now,
	}
}

// pageData holds the data passed to the HTML template.
type pageData struct {
	Title     string
	Generated string
	Content   template.HTML
}

// Generate reads runs from src and writes the report. It returns the path of
// the HTML page and the number of runs included.
func (g *Generator) Generate(ctx context.Context, src Source) (string, int, error) {
	runs, err := src.List(ctx, history.Filter{Limit: g.Limit})
	if err != nil {
		return "", 0, err
	}
	sum, err := src.Summarize(ctx)
	if err != nil {
		return "", 0, err
	}

	generated := g.now().UTC()
	md := Markdown(g.Title, runs, sum, generated)

	body, err := Render(md)
	if err != nil {
		return "", 0, err
	}

	tmpl, err := template.New("page").Parse(pageTemplate)
	if err != nil {
		return "", 0, fmt.Errorf("parsing page template: %w", err)
	}

	if err := os.MkdirAll(g.OutputDir, 0o755); err != nil {
		return "", 0, err
	}
	if err := os.WriteFile(filepath.Join(g.OutputDir, "report.md"), md, 0o644); err != nil {
		return "", 0, err
	}

	outPath := filepath.Join(g.OutputDir, "index.html")
	f, err := os.Create(outPath)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	data := pageData{
		Title:     g.Title,
		Generated: generated.Format(time.RFC1123),
		Content:   template.HTML(body),
	}
	if err := tmpl.Execute(f, data); err != nil {
		return "", 0, fmt.Errorf("writing %s: %w", outPath, err)
	}

	return outPath, len(runs), nil
}

// Render converts markdown to an HTML fragment.
func Render(md []byte) (string, error) {
	conv := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithHeadingAttribute(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)

	var buf bytes.Buffer
	if err := conv.Convert(md, &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return buf.String(), nil
}

// Markdown builds the report document: a summary, a table of runs and the
// response content of each run.
func Markdown(title string, runs []history.Run, sum *history.Summary, generated time.Time) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Generated %s.\n\n", generated.Format(time.RFC3339))

	b.WriteString("## Summary\n\n")
	b.WriteString("| Runs | OK | Empty | Errors | Total cost |\n")
	b.WriteString("|---:|---:|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | $%.6f |\n\n", sum.Total, sum.OK, sum.Empty, sum.Errors, sum.TotalCostUSD)

	if len(runs) == 0 {
		b.WriteString("No runs recorded.\n")
		return []byte(b.String())
	}

	b.WriteString("## Runs\n\n")
	b.WriteString("| Started | Source | Provider | Model | Status | Duration | Tokens in/out | Cost |\n")
	b.WriteString("|---|---|---|---|---|---:|---:|---:|\n")
	for _, run := range runs {
		fmt.Fprintf(&b, "| [%s](#run-%s) | %s | %s | %s | %s | %s | %d / %d | $%.6f |\n",
			run.StartedAt.UTC().Format("2006-01-02 15:04:05"),
			run.ID,
			run.Source,
			cell(run.Provider),
			cell(run.Model),
			statusBadge(run.Status),
			run.Duration.Round(time.Millisecond),
			run.InputTokens, run.OutputTokens,
			run.CostUSD,
		)
	}
	b.WriteString("\n## Details\n")

	for _, run := range runs {
		fmt.Fprintf(&b, "\n### Run %s {#run-%s}\n\n", run.ID, run.ID)
		fmt.Fprintf(&b, "- **Prompt:** %s\n", inline(run.Prompt))
		if len(run.Tools) > 0 {
			names := make([]string, len(run.Tools))
			for i, t := range run.Tools {
				names[i] = fmt.Sprintf("`%s` (%s)", t.Name, t.Type)
			}
			fmt.Fprintf(&b, "- **Tools:** %s\n", strings.Join(names, ", "))
		}
		if run.ResponseModel != "" && run.ResponseModel != run.Model {
			fmt.Fprintf(&b, "- **Response model:** %s\n", run.ResponseModel)
		}
		if run.FinishReason != "" {
			fmt.Fprintf(&b, "- **Finish reason:** %s\n", run.FinishReason)
		}
		if run.Error != "" {
			fmt.Fprintf(&b, "- **Error:** %s\n", inline(run.Error))
		}
		if len(run.Content) > 0 {
			content, err := json.MarshalIndent(run.Content, "", "  ")
			if err == nil {
				fmt.Fprintf(&b, "\n```json\n%s\n```\n", content)
			}
		}
	}

	return []byte(b.String())
}

func statusBadge(s history.Status) string {
	switch s {
	case history.StatusOK:
		return "✅ ok"
	case history.StatusEmpty:
		return "⚠️ empty"
	default:
		return "❌ " + string(s)
	}
}

// cell escapes a value for use inside a GFM table cell.
func cell(s string) string {
	return strings.ReplaceAll(inline(s), "|", `\|`)
}

func inline(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
