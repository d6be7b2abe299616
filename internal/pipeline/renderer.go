package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/ppiankov/ecfr-analyzer/internal/model"
)

// Renderer writes analysis results as JSON, Markdown and terminal summaries
type Renderer struct {
	includeFooter bool

	heading *color.Color
	good    *color.Color
	warn    *color.Color
	dim     *color.Color
}

// NewRenderer creates a renderer. Colors are used only when useColor is set
// and the output is a terminal.
func NewRenderer(includeFooter, useColor bool) *Renderer {
	r := &Renderer{
		includeFooter: includeFooter,
		heading:       color.New(color.Bold, color.FgCyan),
		good:          color.New(color.FgGreen),
		warn:          color.New(color.FgYellow),
		dim:           color.New(color.Faint),
	}
	if !useColor {
		for _, c := range []*color.Color{r.heading, r.good, r.warn, r.dim} {
			c.DisableColor()
		}
	}
	return r
}

// WriteJSON encodes v as indented JSON
func (r *Renderer) WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// RenderJSON writes results to path as indented JSON
func (r *Renderer) RenderJSON(results *model.AnalysisResults, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.WriteJSON(f, results); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// RenderMarkdown writes a Markdown report of results to path
func (r *Renderer) RenderMarkdown(results *model.AnalysisResults, date, path string) error {
	return os.WriteFile(path, []byte(r.Markdown(results, date)), 0644)
}

// RenderLLMMarkdown writes an already rendered narrative to path
func (r *Renderer) RenderLLMMarkdown(markdown, path string) error {
	if markdown == "" {
		return nil
	}
	return os.WriteFile(path, []byte(markdown), 0644)
}

// Markdown renders results as a Markdown document
func (r *Renderer) Markdown(results *model.AnalysisResults, date string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# eCFR Analysis: %s\n\n", date)
	fmt.Fprintf(&b, "- **Total words:** %s\n", formatInt(results.TotalWordCount))
	if cov := results.Coverage; cov != nil {
		fmt.Fprintf(&b, "- **Titles analyzed:** %d\n", len(cov.Analyzed))
		fmt.Fprintf(&b, "- **Titles skipped:** %d\n", len(cov.Skipped))
	}
	fmt.Fprintf(&b, "- **Last updated:** %s\n\n", results.LastUpdated.Format("2006-01-02 15:04:05 MST"))

	if len(results.AgencyWordCounts) > 0 {
		b.WriteString("## Words by Agency\n\n")
		b.WriteString("Each title's full word count is attributed to every agency it lists.\n\n")
		b.WriteString("| Agency | Words | Titles |\n|---|---:|---|\n")
		for _, a := range results.AgencyWordCounts {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", a.Agency, formatInt(a.WordCount), joinInts(a.TitleNumbers))
		}
		b.WriteString("\n")
	}

	if m := results.ActionMetrics; m != nil {
		b.WriteString("## Regulatory Actions\n\n")
		fmt.Fprintf(&b, "- **Mandatory:** %s\n", formatInt(m.MandatoryActions))
		fmt.Fprintf(&b, "- **Prohibited:** %s\n", formatInt(m.ProhibitedActions))
		fmt.Fprintf(&b, "- **Permitted:** %s\n\n", formatInt(m.PermittedActions))

		if len(m.Top10Keywords) > 0 {
			b.WriteString("| Keyword | Count |\n|---|---:|\n")
			for _, k := range m.Top10Keywords {
				fmt.Fprintf(&b, "| %s | %s |\n", k.Keyword, formatInt(k.Count))
			}
			b.WriteString("\n")
		}
	}

	if len(results.Summaries) > 0 {
		b.WriteString("## Titles\n\n")
		b.WriteString("| Title | Name | Words | Complexity | Key topics |\n|---:|---|---:|---:|---|\n")
		for _, s := range results.Summaries {
			fmt.Fprintf(&b, "| %d | %s | %s | %.1f | %s |\n",
				s.TitleNumber, s.TitleName, formatInt(s.WordCount), s.Complexity, strings.Join(s.KeyTopics, ", "))
		}
		b.WriteString("\n")
	}

	if len(results.HistoricalChanges) > 0 {
		b.WriteString("## Changes Since Previous Snapshot\n\n")
		b.WriteString("| Title | Words | Change | Percent | Compared with |\n|---:|---:|---:|---:|---|\n")
		for _, c := range results.HistoricalChanges {
			fmt.Fprintf(&b, "| %d | %s | %+d | %+.2f%% | %s |\n",
				c.TitleNumber, formatInt(c.WordCount), c.ChangeFromPrevious, c.PercentChange, c.Version.EffectiveDate)
		}
		b.WriteString("\n")
	}

	if cov := results.Coverage; cov != nil && len(cov.Skipped) > 0 {
		b.WriteString("## Skipped Titles\n\n")
		b.WriteString("These titles are excluded from every total above.\n\n")
		for _, s := range cov.Skipped {
			fmt.Fprintf(&b, "- Title %d: %s\n", s.TitleNumber, s.Reason)
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("_Generated by ecfr-analyzer. Word counts are whitespace-delimited tokens of the title text; keyword buckets may overlap._\n")
	}

	return b.String()
}

// RenderSummary prints a short terminal summary of results
func (r *Renderer) RenderSummary(w io.Writer, results *model.AnalysisResults) {
	r.heading.Fprintln(w, "eCFR Analysis")
	fmt.Fprintf(w, "  Total words: %s\n", formatInt(results.TotalWordCount))

	if cov := results.Coverage; cov != nil {
		r.good.Fprintf(w, "  ✓ %d titles analyzed\n", len(cov.Analyzed))
		if len(cov.Skipped) > 0 {
			skipped := make([]int, 0, len(cov.Skipped))
			for _, s := range cov.Skipped {
				skipped = append(skipped, s.TitleNumber)
			}
			r.warn.Fprintf(w, "  ⚠ %d titles skipped (%s)\n", len(cov.Skipped), joinInts(skipped))
		}
	}

	if len(results.AgencyWordCounts) > 0 {
		fmt.Fprintln(w)
		r.heading.Fprintln(w, "Top agencies")
		for i, a := range results.AgencyWordCounts {
			if i >= 5 {
				break
			}
			fmt.Fprintf(w, "  %-50s %14s\n", truncate(a.Agency, 50), formatInt(a.WordCount))
		}
	}

	if m := results.ActionMetrics; m != nil {
		fmt.Fprintln(w)
		r.heading.Fprintln(w, "Actions")
		fmt.Fprintf(w, "  mandatory %s  prohibited %s  permitted %s\n",
			formatInt(m.MandatoryActions), formatInt(m.ProhibitedActions), formatInt(m.PermittedActions))
	}

	if len(results.HistoricalChanges) > 0 {
		fmt.Fprintln(w)
		r.dim.Fprintf(w, "  %d titles compared with %s\n",
			len(results.HistoricalChanges), results.HistoricalChanges[0].Version.EffectiveDate)
	}
}

// RenderTitle prints a single-title report
func (r *Renderer) RenderTitle(w io.Writer, report *model.TitleReport) {
	s := report.Summary
	r.heading.Fprintf(w, "Title %d: %s\n", s.TitleNumber, s.TitleName)
	fmt.Fprintf(w, "  Date:       %s\n", report.Analysis.Date)
	fmt.Fprintf(w, "  Words:      %s\n", formatInt(s.WordCount))
	fmt.Fprintf(w, "  Complexity: %.1f / 10\n", s.Complexity)
	fmt.Fprintf(w, "  Topics:     %s\n", strings.Join(s.KeyTopics, ", "))
	if len(s.Agencies) > 0 {
		fmt.Fprintf(w, "  Agencies:   %s\n", strings.Join(s.Agencies, "; "))
	}
	fmt.Fprintf(w, "  Actions:    mandatory %d, prohibited %d, permitted %d\n",
		report.Actions.MandatoryActions, report.Actions.ProhibitedActions, report.Actions.PermittedActions)
}

// RenderHistory prints a title's word-count series
func (r *Renderer) RenderHistory(w io.Writer, titleNumber int, series []model.HistoricalChange) {
	r.heading.Fprintf(w, "Title %d history\n", titleNumber)
	if len(series) == 0 {
		r.dim.Fprintln(w, "  no snapshots include this title")
		return
	}
	for _, c := range series {
		line := fmt.Sprintf("  %s  %14s  %+12d  %+8.2f%%\n", c.Date, formatInt(c.WordCount), c.ChangeFromPrevious, c.PercentChange)
		switch {
		case c.ChangeFromPrevious > 0:
			r.warn.Fprint(w, line)
		case c.ChangeFromPrevious < 0:
			r.good.Fprint(w, line)
		default:
			fmt.Fprint(w, line)
		}
	}
}

// formatInt renders n with thousands separators
func formatInt(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
