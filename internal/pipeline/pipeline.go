package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ppiankov/ecfr-analyzer/internal/catalog"
	"github.com/ppiankov/ecfr-analyzer/internal/history"
	"github.com/ppiankov/ecfr-analyzer/internal/llm"
	"github.com/ppiankov/ecfr-analyzer/internal/logging"
	"github.com/ppiankov/ecfr-analyzer/internal/model"
	"github.com/ppiankov/ecfr-analyzer/internal/store"
	"github.com/ppiankov/ecfr-analyzer/internal/validate"
	"github.com/ppiankov/ecfr-analyzer/internal/worker"
)

// Pipeline orchestrates corpus runs, single-title queries and history lookups
type Pipeline struct {
	source     TitleSource
	analyzer   *Analyzer
	batch      *worker.BatchProcessor
	store      store.Store
	summarizer *llm.Summarizer // Optional LLM summarizer (nil if disabled)
	renderer   *Renderer
	logger     *log.Logger
	config     *model.Config
	now        func() time.Time
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithSource replaces the eCFR fetcher as the source of title XML
func WithSource(source TitleSource) Option {
	return func(p *Pipeline) { p.source = source }
}

// WithLogger sets the logger used for run progress and skipped titles
func WithLogger(logger *log.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithClock sets the clock that stamps LastUpdated
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithSummarizer sets the narrative summarizer, overriding the configured one
func WithSummarizer(s *llm.Summarizer) Option {
	return func(p *Pipeline) { p.summarizer = s }
}

// NewPipeline creates a new pipeline persisting into st
func NewPipeline(cfg *model.Config, st store.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:    st,
		renderer: NewRenderer(cfg.Output.IncludeFooter, cfg.Output.Color),
		logger:   logging.Logger,
		config:   cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.summarizer == nil && cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
		if err != nil {
			p.logger.Warn("LLM summarizer disabled", "err", err)
		} else {
			p.summarizer = s
		}
	}

	if p.source == nil {
		p.source = NewFetcher(cfg)
	}
	p.analyzer = NewAnalyzer(p.source)
	p.batch = worker.NewBatchProcessor(p.analyzer, cfg.Concurrency.Workers)
	p.batch.OnProgress(p.logProgress)

	return p
}

// Run analyzes every title for date and persists the aggregate.
// Titles that fail are logged and excluded. A store failure is returned
// as a *model.PersistenceError together with the built results.
func (p *Pipeline) Run(ctx context.Context, date string) (*model.AnalysisResults, error) {
	return p.RunTitles(ctx, date, catalog.Numbers())
}

// RunTitles is Run restricted to the given title numbers
func (p *Pipeline) RunTitles(ctx context.Context, date string, numbers []int) (*model.AnalysisResults, error) {
	day, err := validate.NormalizeDate(date)
	if err != nil {
		return nil, err
	}
	for _, n := range numbers {
		if err := validate.TitleNumber(n); err != nil {
			return nil, err
		}
	}

	started := time.Now()
	p.logger.Info("analyzing titles", "date", day, "titles", len(numbers), "workers", p.config.Concurrency.Workers)

	titleResults := p.batch.ProcessTitles(ctx, day, numbers)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis of %s interrupted: %w", day, err)
	}

	reports := make([]*model.TitleReport, 0, len(titleResults))
	coverage := &model.Coverage{Analyzed: []int{}}
	for _, r := range titleResults {
		if r.Error != nil {
			p.logger.Warn("skipping title", "title", r.TitleNumber, "err", r.Error)
			coverage.Skipped = append(coverage.Skipped, model.SkippedTitle{
				TitleNumber: r.TitleNumber,
				Reason:      r.Error.Error(),
			})
			continue
		}
		reports = append(reports, r.Report)
		coverage.Analyzed = append(coverage.Analyzed, r.TitleNumber)
	}

	results := BuildResults(reports, p.now())
	results.Coverage = coverage

	p.logger.Info("analysis complete",
		"date", day,
		"analyzed", len(coverage.Analyzed),
		"skipped", len(coverage.Skipped),
		"words", results.TotalWordCount,
		"elapsed", time.Since(started).Round(time.Millisecond),
	)

	if snapshots, err := p.store.List(ctx); err != nil {
		p.logger.Warn("historical changes unavailable", "err", err)
	} else {
		results.HistoricalChanges = history.Diff(history.Previous(snapshots, day), results, day)
	}

	// Runs after every metric is final and never feeds back into them
	if p.summarizer.IsEnabled() {
		summary, err := p.summarizer.GenerateSummary(ctx, *results, day)
		if err != nil {
			p.logger.Warn("LLM summary generation failed", "err", err)
		} else {
			results.LLM = summary
		}
	}

	if err := p.store.Save(ctx, results, day); err != nil {
		return results, err
	}
	p.logger.Debug("results saved", "date", day)

	return results, nil
}

func (p *Pipeline) logProgress(done, total int, r *worker.TitleResult) {
	if r.Error != nil {
		p.logger.Debug("title failed", "title", r.TitleNumber, "progress", fmt.Sprintf("%d/%d", done, total))
		return
	}
	p.logger.Debug("title analyzed",
		"title", r.TitleNumber,
		"words", r.Report.Analysis.WordCount,
		"progress", fmt.Sprintf("%d/%d", done, total),
	)
}

// Title analyzes a single title for date. Unlike Run, any failure is returned.
func (p *Pipeline) Title(ctx context.Context, date string, titleNumber int) (*model.TitleReport, error) {
	day, err := validate.NormalizeDate(date)
	if err != nil {
		return nil, err
	}
	if err := validate.TitleNumber(titleNumber); err != nil {
		return nil, err
	}
	return p.analyzer.Inspect(ctx, day, titleNumber)
}

// Latest returns the most recent stored results or store.ErrNotFound
func (p *Pipeline) Latest(ctx context.Context) (*model.AnalysisResults, error) {
	return p.store.LoadLatest(ctx)
}

// History returns the word-count series of one title across stored snapshots
func (p *Pipeline) History(ctx context.Context, titleNumber int) ([]model.HistoricalChange, error) {
	if err := validate.TitleNumber(titleNumber); err != nil {
		return nil, err
	}
	snapshots, err := p.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return history.Series(snapshots, titleNumber), nil
}

// RenderReport writes results to the requested files and prints a summary to w
func (p *Pipeline) RenderReport(results *model.AnalysisResults, date, jsonPath, mdPath string, w io.Writer) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(results, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		p.logger.Info("wrote JSON report", "path", jsonPath)
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(results, date, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		p.logger.Info("wrote Markdown report", "path", mdPath)

		if results.LLM != nil && results.LLM.Enabled {
			llmPath := strings.TrimSuffix(mdPath, ".md") + ".llm.md"
			if err := p.renderer.RenderLLMMarkdown(llm.RenderSeparateMarkdown(results.LLM), llmPath); err != nil {
				p.logger.Warn("failed to write LLM summary", "path", llmPath, "err", err)
			} else {
				p.logger.Info("wrote LLM summary", "path", llmPath)
			}
		}
	}

	p.renderer.RenderSummary(w, results)
	return nil
}

// Renderer returns the pipeline's report renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}
