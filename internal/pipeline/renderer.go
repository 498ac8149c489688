package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/rotisserie/eris"

	"github.com/ppiankov/tierscope/internal/model"
	"github.com/ppiankov/tierscope/internal/worker"
)

const footer = "_Generated by tierscope. Prices are extracted by an LLM and may be inaccurate._\n"

// Renderer writes reports as JSON files, Markdown files and terminal tables
type Renderer struct {
	out           io.Writer
	includeFooter bool
	color         bool
}

// NewRenderer creates a renderer printing to out
func NewRenderer(out io.Writer, includeFooter, useColor bool) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	return &Renderer{out: out, includeFooter: includeFooter, color: useColor}
}

// WriteJSON writes v as indented JSON to path
func (r *Renderer) WriteJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrap(err, "encode JSON")
	}
	return writeFile(path, append(data, '\n'))
}

// PrintJSON writes v as indented JSON to the terminal
func (r *Renderer) PrintJSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteMarkdown writes rendered markdown to path
func (r *Renderer) WriteMarkdown(markdown, path string) error {
	if r.includeFooter {
		markdown += "\n---\n" + footer
	}
	return writeFile(path, []byte(markdown))
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrap(err, "create output directory")
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "write %s", path)
	}
	return nil
}

// ExtractionMarkdown renders an extraction report
func ExtractionMarkdown(report *model.ExtractionReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Pricing: %s\n\n", report.Site.Name)
	fmt.Fprintf(&b, "- URL: %s\n", report.Site.URL)
	fmt.Fprintf(&b, "- Strategy: %s\n", report.Strategy)
	fmt.Fprintf(&b, "- Scraped: %s\n", report.ScrapedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- Chunks: %d (%d dropped)\n", report.Chunks, report.Dropped)
	fmt.Fprintf(&b, "- Tokens: %d (~$%.4f)\n\n", report.Usage.Tokens(), report.CostUSD)

	if !report.Outcome.OK() {
		fmt.Fprintf(&b, "**Error:** %s\n", report.Outcome.Error)
		return b.String()
	}

	b.WriteString("| Tier | Name | Price | Features |\n")
	b.WriteString("|------|------|-------|----------|\n")
	for _, row := range extractionRows(report.Outcome.Extraction) {
		fmt.Fprintf(&b, "| %s |\n", strings.Join(escapeCells(row), " | "))
	}
	return b.String()
}

// EvaluationMarkdown renders an evaluation report
func EvaluationMarkdown(report *model.EvaluationReport) string {
	res := report.Result
	var b strings.Builder
	fmt.Fprintf(&b, "# Evaluation: %s\n\n", report.Site.Name)
	fmt.Fprintf(&b, "- URL: %s\n", report.Site.URL)
	fmt.Fprintf(&b, "- Question: %s\n", report.Question)
	fmt.Fprintf(&b, "- Accuracy: %.2f%% (%d/%d points)\n", res.Accuracy*100, res.EarnedPoints, res.TotalPoints)
	fmt.Fprintf(&b, "- Tokens: %d (~$%.4f)\n\n", report.Usage.Tokens(), report.CostUSD)

	if report.Answer != nil && len(report.Answer.Tiers) > 0 {
		b.WriteString("## Generated tiers\n\n")
		b.WriteString("| Tier | Name | Price | Features |\n")
		b.WriteString("|------|------|-------|----------|\n")
		for _, row := range tierSetRows(report.Answer.Tiers) {
			fmt.Fprintf(&b, "| %s |\n", strings.Join(escapeCells(row), " | "))
		}
		b.WriteString("\n")
	}

	writeList(&b, "Missing", res.MissingInfo)
	writeList(&b, "Incorrect", res.IncorrectInfo)
	writeList(&b, "Extra", res.ExtraInfo)
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	fmt.Fprintf(b, "## %s (%d)\n\n", title, len(items))
	if len(items) == 0 {
		b.WriteString("None.\n\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

func escapeCells(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = strings.ReplaceAll(cell, "|", "\\|")
	}
	return out
}

func extractionRows(e *model.Extraction) [][]string {
	slots := []struct {
		label string
		tier  *model.PricingTier
	}{
		{"Cheapest", e.Cheapest},
		{"Middle", e.Middle},
		{"Most expensive", e.MostExpensive},
	}

	rows := make([][]string, 0, len(slots))
	for _, s := range slots {
		if s.tier == nil {
			rows = append(rows, []string{s.label, "N/A", "N/A", ""})
			continue
		}
		rows = append(rows, tierRow(s.label, *s.tier))
	}
	return rows
}

func tierSetRows(set model.TierSet) [][]string {
	rows := make([][]string, 0, len(set))
	for _, nt := range set {
		rows = append(rows, tierRow(nt.Key, nt.Tier))
	}
	return rows
}

func tierRow(label string, t model.PricingTier) []string {
	name := t.Name
	if name == "" {
		name = "N/A"
	}
	return []string{label, name, t.Price.Display(), strings.Join(t.Features, "; ")}
}

// PrintExtraction prints an extraction report as a table
func (r *Renderer) PrintExtraction(report *model.ExtractionReport) error {
	fmt.Fprintf(r.out, "%s (%s) via %s\n", r.bold(report.Site.Name), report.Site.URL, report.Strategy)

	if !report.Outcome.OK() {
		fmt.Fprintf(r.out, "%s %s\n", r.paint(color.New(color.FgRed), "error:"), report.Outcome.Error)
		return nil
	}

	if err := r.table([]string{"Tier", "Name", "Price", "Features"}, extractionRows(report.Outcome.Extraction)); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "chunks: %d (%d dropped), tokens: %d, est. cost: $%.4f\n",
		report.Chunks, report.Dropped, report.Usage.Tokens(), report.CostUSD)
	return nil
}

// PrintAnswer prints a question's answer
func (r *Renderer) PrintAnswer(report *model.AnswerReport) error {
	fmt.Fprintf(r.out, "%s (%s)\nQ: %s\n", r.bold(report.Site.Name), report.Site.URL, report.Question)

	if report.Answer == nil {
		return nil
	}
	if len(report.Answer.Tiers) > 0 {
		if err := r.table([]string{"Tier", "Name", "Price", "Features"}, tierSetRows(report.Answer.Tiers)); err != nil {
			return err
		}
	}
	if len(report.Answer.Answer) > 0 {
		var text string
		if err := json.Unmarshal(report.Answer.Answer, &text); err != nil {
			text = string(report.Answer.Answer)
		}
		fmt.Fprintf(r.out, "A: %s\n", text)
	}
	if len(report.Answer.Tiers) == 0 && len(report.Answer.Answer) == 0 {
		fmt.Fprintf(r.out, "%s\n", report.Answer.Raw)
	}
	fmt.Fprintf(r.out, "tokens: %d, est. cost: $%.4f\n", report.Usage.Tokens(), report.CostUSD)
	return nil
}

// PrintEvaluation prints the graded comparison
func (r *Renderer) PrintEvaluation(report *model.EvaluationReport) error {
	res := report.Result
	fmt.Fprintf(r.out, "%s (%s)\n", r.bold(report.Site.Name), report.Site.URL)
	fmt.Fprintf(r.out, "accuracy: %s (%d/%d points)\n",
		r.paint(accuracyColor(res.Accuracy), fmt.Sprintf("%.2f%%", res.Accuracy*100)),
		res.EarnedPoints, res.TotalPoints)

	sections := []struct {
		title string
		items []string
		c     *color.Color
	}{
		{"missing", res.MissingInfo, color.New(color.FgYellow)},
		{"incorrect", res.IncorrectInfo, color.New(color.FgRed)},
		{"extra", res.ExtraInfo, color.New(color.FgHiBlack)},
	}
	for _, s := range sections {
		if len(s.items) == 0 {
			continue
		}
		fmt.Fprintf(r.out, "%s\n", r.paint(s.c, s.title+":"))
		for _, item := range s.items {
			fmt.Fprintf(r.out, "  - %s\n", item)
		}
	}
	fmt.Fprintf(r.out, "tokens: %d, est. cost: $%.4f\n", report.Usage.Tokens(), report.CostUSD)
	return nil
}

// PrintBatch prints one summary row per site
func (r *Renderer) PrintBatch(results []*worker.SiteResult) error {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		status, cheapest, expensive := "ok", "-", "-"
		switch {
		case res.Error != nil:
			status = r.paint(color.New(color.FgRed), "failed")
		case !res.Report.Outcome.OK():
			status = r.paint(color.New(color.FgYellow), "no pricing")
		default:
			e := res.Report.Outcome.Extraction
			if e.Cheapest != nil {
				cheapest = e.Cheapest.Price.Display()
			}
			if e.MostExpensive != nil {
				expensive = e.MostExpensive.Price.Display()
			}
		}
		rows = append(rows, []string{res.Site.Name, status, cheapest, expensive})
	}
	return r.table([]string{"Site", "Status", "Cheapest", "Most expensive"}, rows)
}

// PrintSites prints the tracked sites
func (r *Renderer) PrintSites(list []model.Site) error {
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		rows = append(rows, []string{s.Name, s.URL})
	}
	return r.table([]string{"Name", "URL"}, rows)
}

// PrintSiteChecks prints one reachability row per site
func (r *Renderer) PrintSiteChecks(statuses []model.SiteStatus) error {
	rows := make([][]string, 0, len(statuses))
	for _, st := range statuses {
		status := r.paint(color.New(color.FgGreen), "ok")
		switch {
		case st.Dead:
			status = r.paint(color.New(color.FgRed, color.Bold), "dead")
		case !st.Reachable:
			status = r.paint(color.New(color.FgRed), "unreachable")
		case st.Stale:
			status = r.paint(color.New(color.FgYellow), "stale")
		}

		code := "-"
		if st.StatusCode != 0 {
			code = fmt.Sprintf("%d", st.StatusCode)
		}
		note := st.RedirectURL
		if st.Error != "" {
			note = st.Error
		}
		rows = append(rows, []string{st.Site.Name, status, code, note})
	}
	return r.table([]string{"Site", "Status", "HTTP", "Note"}, rows)
}

func (r *Renderer) table(headers []string, rows [][]string) error {
	table := tablewriter.NewWriter(r.out)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})
	if err := table.Bulk(rows); err != nil {
		return eris.Wrap(err, "build table")
	}
	return table.Render()
}

func (r *Renderer) bold(s string) string {
	return r.paint(color.New(color.Bold), s)
}

func (r *Renderer) paint(c *color.Color, s string) string {
	if !r.color {
		return s
	}
	c.EnableColor()
	return c.Sprint(s)
}

func accuracyColor(accuracy float64) *color.Color {
	switch {
	case accuracy >= 0.8:
		return color.New(color.FgGreen, color.Bold)
	case accuracy >= 0.5:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}
