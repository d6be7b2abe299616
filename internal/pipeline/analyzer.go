package pipeline

import (
	"context"
	"strings"

	"github.com/ppiankov/ecfr-analyzer/internal/catalog"
	"github.com/ppiankov/ecfr-analyzer/internal/extract"
	"github.com/ppiankov/ecfr-analyzer/internal/model"
	"github.com/ppiankov/ecfr-analyzer/internal/score"
)

// TitleSource supplies the raw XML of a title as of a date
type TitleSource interface {
	FetchTitle(ctx context.Context, date string, titleNumber int) ([]byte, error)
}

// Analyzer turns one title's XML into word counts, keyword statistics,
// topics and a complexity score
type Analyzer struct {
	source TitleSource
	topics *extract.TopicExtractor
	scorer *score.ComplexityScorer
}

// NewAnalyzer creates an analyzer over source
func NewAnalyzer(source TitleSource) *Analyzer {
	return &Analyzer{
		source: source,
		topics: extract.NewTopicExtractor(),
		scorer: score.NewComplexityScorer(),
	}
}

// AnalyzeTitle fetches a title and counts its words.
// Returns *model.TitleNotFoundError for titles without metadata and
// propagates the source's *model.FetchError unchanged.
func (a *Analyzer) AnalyzeTitle(ctx context.Context, date string, titleNumber int) (*model.TitleAnalysis, error) {
	title, ok := catalog.Lookup(titleNumber)
	if !ok {
		return nil, &model.TitleNotFoundError{TitleNumber: titleNumber}
	}

	markup, err := a.source.FetchTitle(ctx, date, titleNumber)
	if err != nil {
		return nil, err
	}

	text := extract.Normalize(string(markup))
	analysis := newTitleAnalysis(title, date, text)
	return &analysis, nil
}

// Inspect performs the full per-title analysis from a single fetch
func (a *Analyzer) Inspect(ctx context.Context, date string, titleNumber int) (*model.TitleReport, error) {
	title, ok := catalog.Lookup(titleNumber)
	if !ok {
		return nil, &model.TitleNotFoundError{TitleNumber: titleNumber}
	}

	markup, err := a.source.FetchTitle(ctx, date, titleNumber)
	if err != nil {
		return nil, err
	}

	return a.inspectMarkup(title, date, string(markup)), nil
}

func (a *Analyzer) inspectMarkup(title model.RegulatoryTitle, date string, markup string) *model.TitleReport {
	text := extract.Normalize(markup)
	lower := strings.ToLower(text)
	analysis := newTitleAnalysis(title, date, text)
	keywords := extract.CountKeywords(lower)

	return &model.TitleReport{
		Analysis: analysis,
		Summary: model.TitleSummary{
			TitleNumber: title.Number,
			TitleName:   title.Name,
			WordCount:   analysis.WordCount,
			KeyTopics:   a.topics.Extract(lower, title.Name),
			Complexity:  a.scorer.Calculate(markup).Score,
			Agencies:    title.Agencies,
		},
		Keywords: keywords,
		Actions:  extract.BuildActionMetrics(keywords),
	}
}

func newTitleAnalysis(title model.RegulatoryTitle, date string, text string) model.TitleAnalysis {
	return model.TitleAnalysis{
		TitleNumber: title.Number,
		TitleName:   title.Name,
		WordCount:   extract.CountWords(text),
		Agencies:    title.Agencies,
		Date:        date,
	}
}
