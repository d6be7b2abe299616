package worker

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ppiankov/ecfr-analyzer/internal/model"
)

// Inspector analyzes a single regulatory title for a date
type Inspector interface {
	Inspect(ctx context.Context, date string, titleNumber int) (*model.TitleReport, error)
}

// TitleJob represents the analysis of one title
type TitleJob struct {
	Date        string
	TitleNumber int
	Inspector   Inspector
}

// Execute executes the title job
func (j *TitleJob) Execute(ctx context.Context) Result {
	report, err := j.Inspector.Inspect(ctx, j.Date, j.TitleNumber)
	if err != nil {
		return &TitleResult{
			TitleNumber: j.TitleNumber,
			Report:      nil,
			Error:       err,
		}
	}
	return &TitleResult{
		TitleNumber: j.TitleNumber,
		Report:      report,
		Error:       nil,
	}
}

// TitleResult is the tagged outcome of one title job: a report or an error, never both
type TitleResult struct {
	TitleNumber int
	Report      *model.TitleReport
	Error       error
}

// GetError returns the error from the title result
func (r *TitleResult) GetError() error {
	return r.Error
}

// ProgressFunc is told about each finished title: how many of total are done and the outcome
type ProgressFunc func(done, total int, result *TitleResult)

// BatchProcessor analyzes many titles concurrently
type BatchProcessor struct {
	inspector   Inspector
	concurrency int
	progress    ProgressFunc
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(inspector Inspector, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		inspector:   inspector,
		concurrency: concurrency,
	}
}

// OnProgress registers a callback for finished titles. Calls are serialized.
func (b *BatchProcessor) OnProgress(fn ProgressFunc) {
	b.progress = fn
}

// ProcessTitles analyzes every title in numbers for date.
// Results come back in ascending title order, one per distinct title,
// whatever order the workers finished in. Titles that never ran because ctx
// was cancelled carry the context error.
func (b *BatchProcessor) ProcessTitles(ctx context.Context, date string, numbers []int) []*TitleResult {
	if len(numbers) == 0 {
		return []*TitleResult{}
	}

	distinct := make([]int, 0, len(numbers))
	submitted := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		if !submitted[n] {
			submitted[n] = true
			distinct = append(distinct, n)
		}
	}

	pool := NewPoolContext(ctx, b.concurrency)
	if b.progress != nil {
		done := 0
		pool.OnResult(func(r Result) {
			done++
			b.progress(done, len(distinct), r.(*TitleResult))
		})
	}
	pool.Start()

	for _, n := range distinct {
		pool.Submit(&TitleJob{
			Date:        date,
			TitleNumber: n,
			Inspector:   b.inspector,
		})
	}

	results := pool.Wait()

	byTitle := make(map[int]*TitleResult, len(results))
	for _, result := range results {
		tr := result.(*TitleResult)
		byTitle[tr.TitleNumber] = tr
	}

	titleResults := make([]*TitleResult, 0, len(distinct))
	for _, n := range distinct {
		tr, ok := byTitle[n]
		if !ok {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			tr = &TitleResult{TitleNumber: n, Error: fmt.Errorf("title %d not analyzed: %w", n, err)}
		}
		titleResults = append(titleResults, tr)
	}

	sort.Slice(titleResults, func(i, j int) bool {
		return titleResults[i].TitleNumber < titleResults[j].TitleNumber
	})

	return titleResults
}

// ParseTitleList parses a comma-separated list of title numbers and ranges
// ("1,7,40-42") into ascending, deduplicated numbers within [min, max].
func ParseTitleList(list string, min, max int) ([]int, error) {
	seen := make(map[int]bool)
	var numbers []int

	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)

		// Skip empty entries
		if part == "" {
			continue
		}

		lo, hi, err := parseTitleRange(part)
		if err != nil {
			return nil, err
		}
		if lo > hi {
			return nil, fmt.Errorf("invalid title range %q", part)
		}
		if lo < min || hi > max {
			return nil, fmt.Errorf("title range %q outside %d-%d", part, min, max)
		}

		for n := lo; n <= hi; n++ {
			if !seen[n] {
				seen[n] = true
				numbers = append(numbers, n)
			}
		}
	}

	if len(numbers) == 0 {
		return nil, fmt.Errorf("no titles in %q", list)
	}

	sort.Ints(numbers)
	return numbers, nil
}

func parseTitleRange(part string) (int, int, error) {
	loStr, hiStr, isRange := strings.Cut(part, "-")

	lo, err := strconv.Atoi(strings.TrimSpace(loStr))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid title number %q", part)
	}
	if !isRange {
		return lo, lo, nil
	}

	hi, err := strconv.Atoi(strings.TrimSpace(hiStr))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid title number %q", part)
	}
	return lo, hi, nil
}
