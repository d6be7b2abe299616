// Package history derives per-title word-count changes from stored snapshots.
package history

import (
	"fmt"
	"sort"

	"github.com/ppiankov/ecfr-analyzer/internal/model"
)

// VersionType marks changes derived by comparing two stored snapshots
const VersionType = "snapshot"

// Previous returns the latest snapshot dated strictly before date, or nil.
// snapshots must be ordered by date, then write order, as Store.List returns them.
func Previous(snapshots []model.Snapshot, date string) *model.Snapshot {
	var prev *model.Snapshot
	for i := range snapshots {
		if snapshots[i].Date < date {
			prev = &snapshots[i]
		}
	}
	return prev
}

// Diff compares the per-title word counts of curr against prev.
// Titles missing from either side are skipped. Changes are ordered by title number.
func Diff(prev *model.Snapshot, curr *model.AnalysisResults, date string) []model.HistoricalChange {
	if prev == nil || curr == nil {
		return nil
	}

	before := wordCounts(prev.Results)
	var changes []model.HistoricalChange
	for _, s := range sortedSummaries(curr.Summaries) {
		old, ok := before[s.TitleNumber]
		if !ok {
			continue
		}
		changes = append(changes, change(s, old, date, prev.Date))
	}
	return changes
}

// Series returns the word-count history of one title across snapshots,
// oldest first. When several snapshots share a date, the last written one
// represents that date. The first point has no previous and a zero change.
func Series(snapshots []model.Snapshot, titleNumber int) []model.HistoricalChange {
	byDate := make(map[string]model.TitleSummary)
	var dates []string

	for _, snap := range snapshots {
		for _, s := range snap.Results.Summaries {
			if s.TitleNumber != titleNumber {
				continue
			}
			if _, seen := byDate[snap.Date]; !seen {
				dates = append(dates, snap.Date)
			}
			byDate[snap.Date] = s
		}
	}
	sort.Strings(dates)

	series := make([]model.HistoricalChange, 0, len(dates))
	for i, date := range dates {
		s := byDate[date]
		if i == 0 {
			series = append(series, change(s, s.WordCount, date, ""))
			continue
		}
		prevDate := dates[i-1]
		series = append(series, change(s, byDate[prevDate].WordCount, date, prevDate))
	}
	return series
}

// PercentChange is the change from prev to curr in percent. A zero baseline yields 0.
func PercentChange(prev, curr int) float64 {
	if prev == 0 {
		return 0
	}
	return float64(curr-prev) / float64(prev) * 100
}

func change(s model.TitleSummary, previous int, date, prevDate string) model.HistoricalChange {
	return model.HistoricalChange{
		Date:               date,
		TitleNumber:        s.TitleNumber,
		WordCount:          s.WordCount,
		ChangeFromPrevious: s.WordCount - previous,
		PercentChange:      PercentChange(previous, s.WordCount),
		Version: model.Version{
			Date:          date,
			EffectiveDate: prevDate,
			Title:         fmt.Sprintf("Title %d: %s", s.TitleNumber, s.TitleName),
			Type:          VersionType,
		},
	}
}

func wordCounts(r model.AnalysisResults) map[int]int {
	counts := make(map[int]int, len(r.Summaries))
	for _, s := range r.Summaries {
		counts[s.TitleNumber] = s.WordCount
	}
	return counts
}

func sortedSummaries(in []model.TitleSummary) []model.TitleSummary {
	out := make([]model.TitleSummary, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return out[i].TitleNumber < out[j].TitleNumber })
	return out
}
