package pipeline

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/ecfr-analyzer/internal/model"
)

func sampleRenderResults() *model.AnalysisResults {
	return &model.AnalysisResults{
		TotalWordCount: 1234567,
		LastUpdated:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		AgencyWordCounts: []model.AgencyWordCount{
			{Agency: "Department of Defense", WordCount: 1000000, TitleNumbers: []int{32, 48}},
		},
		ActionMetrics: &model.ActionMetrics{
			MandatoryActions: 10, ProhibitedActions: 4, PermittedActions: 2,
			Top10Keywords: []model.KeywordCount{{Keyword: "shall", Count: 8}},
		},
		Summaries: []model.TitleSummary{
			{TitleNumber: 48, TitleName: "Federal Acquisition Regulations System", WordCount: 1000000, KeyTopics: []string{"procurement", "contracts", "acquisition"}, Complexity: 6.3},
		},
		HistoricalChanges: []model.HistoricalChange{
			{TitleNumber: 48, WordCount: 1000000, ChangeFromPrevious: -500, PercentChange: -0.05, Version: model.Version{EffectiveDate: "2023-12-01"}},
		},
		Coverage: &model.Coverage{
			Analyzed: []int{48},
			Skipped:  []model.SkippedTitle{{TitleNumber: 17, Reason: "fetch title 17 (2024-01-01): status 503"}},
		},
	}
}

func TestRenderer_Markdown(t *testing.T) {
	md := NewRenderer(true, false).Markdown(sampleRenderResults(), "2024-01-01")

	for _, want := range []string{
		"# eCFR Analysis: 2024-01-01",
		"**Total words:** 1,234,567",
		"**Titles skipped:** 1",
		"| Department of Defense | 1,000,000 | 32, 48 |",
		"**Mandatory:** 10",
		"| shall | 8 |",
		"| 48 | Federal Acquisition Regulations System | 1,000,000 | 6.3 | procurement, contracts, acquisition |",
		"| 48 | 1,000,000 | -500 | -0.05% | 2023-12-01 |",
		"- Title 17: fetch title 17 (2024-01-01): status 503",
		"Generated by ecfr-analyzer",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
}

func TestRenderer_Markdown_NoFooter(t *testing.T) {
	md := NewRenderer(false, false).Markdown(&model.AnalysisResults{}, "2024-01-01")

	if strings.Contains(md, "Generated by") {
		t.Error("footer rendered when disabled")
	}
	if strings.Contains(md, "## Words by Agency") {
		t.Error("empty agency section rendered")
	}
}

func TestRenderer_RenderJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := NewRenderer(true, false).RenderJSON(sampleRenderResults(), path); err != nil {
		t.Fatalf("RenderJSON() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, key := range []string{"agencyWordCounts", "totalWordCount", "lastUpdated", "historicalChanges", "summaries", "actionMetrics"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("JSON missing %q", key)
		}
	}
}

func TestRenderer_RenderLLMMarkdown_EmptySkipsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.llm.md")
	if err := NewRenderer(true, false).RenderLLMMarkdown("", path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected no file, stat error = %v", err)
	}
}

func TestRenderer_RenderSummary(t *testing.T) {
	var out bytes.Buffer
	NewRenderer(true, false).RenderSummary(&out, sampleRenderResults())

	for _, want := range []string{"Total words: 1,234,567", "1 titles analyzed", "1 titles skipped (17)", "Department of Defense", "compared with 2023-12-01"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("summary missing %q\n%s", want, out.String())
		}
	}
}

func TestRenderer_RenderHistory(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(true, false)

	r.RenderHistory(&out, 7, nil)
	if !strings.Contains(out.String(), "no snapshots") {
		t.Errorf("empty history = %q", out.String())
	}

	out.Reset()
	r.RenderHistory(&out, 7, []model.HistoricalChange{
		{Date: "2024-01-01", WordCount: 1000},
		{Date: "2024-02-01", WordCount: 1100, ChangeFromPrevious: 100, PercentChange: 10},
	})
	if !strings.Contains(out.String(), "2024-02-01") || !strings.Contains(out.String(), "+10.00%") {
		t.Errorf("history = %q", out.String())
	}
}

func TestFormatInt(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}
	for _, tt := range tests {
		if got := formatInt(tt.in); got != tt.want {
			t.Errorf("formatInt(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("abcdefghijkl", 8); got != "abcde..." {
		t.Errorf("truncate() = %q", got)
	}
}
