package history

import (
	"math"
	"testing"

	"github.com/ppiankov/ecfr-analyzer/internal/model"
)

func snapshot(date string, counts map[int]int) model.Snapshot {
	var summaries []model.TitleSummary
	for n, wc := range counts {
		summaries = append(summaries, model.TitleSummary{TitleNumber: n, TitleName: "Name", WordCount: wc})
	}
	return model.Snapshot{Date: date, Results: model.AnalysisResults{Summaries: summaries}}
}

func TestPrevious(t *testing.T) {
	snaps := []model.Snapshot{
		snapshot("2024-01-01", map[int]int{1: 10}),
		snapshot("2024-02-01", map[int]int{1: 20}),
		snapshot("2024-02-01", map[int]int{1: 21}),
		snapshot("2024-03-01", map[int]int{1: 30}),
	}

	prev := Previous(snaps, "2024-03-01")
	if prev == nil || prev.Results.Summaries[0].WordCount != 21 {
		t.Errorf("expected the last 2024-02-01 snapshot, got %+v", prev)
	}

	if Previous(snaps, "2024-01-01") != nil {
		t.Error("expected no snapshot before the first date")
	}

	if prev := Previous(snaps, "2025-01-01"); prev == nil || prev.Date != "2024-03-01" {
		t.Errorf("expected 2024-03-01, got %+v", prev)
	}
}

func TestDiff(t *testing.T) {
	prev := snapshot("2024-01-01", map[int]int{1: 100, 2: 0, 3: 50})
	curr := &model.AnalysisResults{Summaries: []model.TitleSummary{
		{TitleNumber: 3, TitleName: "Accounts", WordCount: 25},
		{TitleNumber: 1, TitleName: "General Provisions", WordCount: 150},
		{TitleNumber: 2, TitleName: "Grants", WordCount: 10},
		{TitleNumber: 4, TitleName: "New", WordCount: 99},
	}}

	changes := Diff(&prev, curr, "2024-06-01")

	if len(changes) != 3 {
		t.Fatalf("expected 3 changes (title 4 has no baseline), got %d", len(changes))
	}

	tests := []struct {
		title   int
		delta   int
		percent float64
	}{
		{1, 50, 50},
		{2, 10, 0}, // zero baseline
		{3, -25, -50},
	}
	for i, tt := range tests {
		c := changes[i]
		if c.TitleNumber != tt.title {
			t.Errorf("position %d: expected title %d, got %d", i, tt.title, c.TitleNumber)
		}
		if c.ChangeFromPrevious != tt.delta {
			t.Errorf("title %d: expected delta %d, got %d", tt.title, tt.delta, c.ChangeFromPrevious)
		}
		if math.Abs(c.PercentChange-tt.percent) > 1e-9 {
			t.Errorf("title %d: expected %v%%, got %v%%", tt.title, tt.percent, c.PercentChange)
		}
		if c.Date != "2024-06-01" || c.Version.EffectiveDate != "2024-01-01" || c.Version.Type != VersionType {
			t.Errorf("title %d: unexpected version metadata %+v", tt.title, c.Version)
		}
	}

	if changes[0].Version.Title != "Title 1: General Provisions" {
		t.Errorf("unexpected version title %q", changes[0].Version.Title)
	}
}

func TestDiff_NoPrevious(t *testing.T) {
	if got := Diff(nil, &model.AnalysisResults{}, "2024-01-01"); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestSeries(t *testing.T) {
	snaps := []model.Snapshot{
		snapshot("2024-01-01", map[int]int{7: 1000, 8: 5}),
		snapshot("2024-02-01", map[int]int{8: 6}), // title 7 skipped that run
		snapshot("2024-03-01", map[int]int{7: 900}),
		snapshot("2024-03-01", map[int]int{7: 1100}),
	}

	series := Series(snaps, 7)

	if len(series) != 2 {
		t.Fatalf("expected 2 points, got %d", len(series))
	}
	if series[0].Date != "2024-01-01" || series[0].ChangeFromPrevious != 0 || series[0].Version.EffectiveDate != "" {
		t.Errorf("unexpected first point %+v", series[0])
	}
	if series[1].WordCount != 1100 || series[1].ChangeFromPrevious != 100 {
		t.Errorf("expected later same-date write to win, got %+v", series[1])
	}
	if math.Abs(series[1].PercentChange-10) > 1e-9 {
		t.Errorf("expected 10%%, got %v", series[1].PercentChange)
	}
	if series[1].Version.EffectiveDate != "2024-01-01" {
		t.Errorf("expected effective date 2024-01-01, got %q", series[1].Version.EffectiveDate)
	}
}

func TestSeries_UnknownTitle(t *testing.T) {
	if got := Series([]model.Snapshot{snapshot("2024-01-01", map[int]int{1: 1})}, 2); len(got) != 0 {
		t.Errorf("expected empty series, got %v", got)
	}
}

func TestPercentChange(t *testing.T) {
	if PercentChange(0, 100) != 0 {
		t.Error("expected 0 for zero baseline")
	}
	if PercentChange(200, 100) != -50 {
		t.Errorf("expected -50, got %v", PercentChange(200, 100))
	}
}
