package pipeline

import (
	"sort"
	"time"

	"github.com/ppiankov/ecfr-analyzer/internal/extract"
	"github.com/ppiankov/ecfr-analyzer/internal/model"
)

// AggregateByAgency attributes each title's full word count to every agency it lists.
// Agencies are ordered by word count, descending; ties keep the order in
// which the agencies were first seen in analyses.
func AggregateByAgency(analyses []model.TitleAnalysis) []model.AgencyWordCount {
	index := make(map[string]int)
	counts := []model.AgencyWordCount{}

	for _, a := range analyses {
		for _, agency := range a.Agencies {
			i, ok := index[agency]
			if !ok {
				i = len(counts)
				index[agency] = i
				counts = append(counts, model.AgencyWordCount{Agency: agency, TitleNumbers: []int{}})
			}
			counts[i].WordCount += a.WordCount
			counts[i].TitleNumbers = append(counts[i].TitleNumbers, a.TitleNumber)
		}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].WordCount > counts[j].WordCount
	})

	return counts
}

// BuildResults reduces per-title reports into one AnalysisResults.
// The reduction is order-independent: reports are sorted by title number first.
func BuildResults(reports []*model.TitleReport, now time.Time) *model.AnalysisResults {
	sorted := make([]*model.TitleReport, len(reports))
	copy(sorted, reports)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Analysis.TitleNumber < sorted[j].Analysis.TitleNumber
	})

	analyses := make([]model.TitleAnalysis, 0, len(sorted))
	summaries := make([]model.TitleSummary, 0, len(sorted))
	keywords := make(model.KeywordFrequency, len(extract.Vocabulary))
	total := 0

	for _, r := range sorted {
		analyses = append(analyses, r.Analysis)
		summaries = append(summaries, r.Summary)
		keywords.Add(r.Keywords)
		total += r.Analysis.WordCount
	}

	actions := extract.BuildActionMetrics(keywords)

	return &model.AnalysisResults{
		AgencyWordCounts: AggregateByAgency(analyses),
		TotalWordCount:   total,
		LastUpdated:      now,
		Summaries:        summaries,
		ActionMetrics:    &actions,
	}
}
