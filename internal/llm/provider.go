package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/ecfr-analyzer/internal/model"
)

// TitleURLFormat is the public reading URL of a title on ecfr.gov
const TitleURLFormat = "https://www.ecfr.gov/current/title-%d"

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize generates a narrative of the analysis results
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for LLM summarization
type SummarizeRequest struct {
	// Results is the completed corpus analysis to narrate
	Results model.AnalysisResults

	// Date is the YYYY-MM-DD the titles were requested for
	Date string

	// SourceURLs is the allowlist of URLs the LLM may cite.
	// Any other URL in the response is rejected in strict mode.
	SourceURLs []string

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// SummarizeResponse contains the LLM's summary output
type SummarizeResponse struct {
	Summary    string
	CitedURLs  []string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai" or "" (disabled)
	Provider string

	Model   string
	APIKey  string
	BaseURL string

	// Timeout for API requests in seconds
	Timeout int

	// StrictSources rejects responses citing URLs outside SourceURLs
	StrictSources bool

	MaxTokens int

	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:      "", // Disabled by default
		Timeout:       30,
		StrictSources: true,
		MaxTokens:     800,
	}
}

// SourceURLs returns the citable reading URLs of the titles that contributed to results
func SourceURLs(results model.AnalysisResults) []string {
	urls := make([]string, 0, len(results.Summaries))
	for _, s := range results.Summaries {
		urls = append(urls, fmt.Sprintf(TitleURLFormat, s.TitleNumber))
	}
	return urls
}

// BuildPrompt constructs the default summarization prompt.
// Every figure in it comes from results; the model only rephrases them.
func BuildPrompt(results model.AnalysisResults, date string, sourceURLs []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are summarizing a word-count analysis of the Code of Federal Regulations as of %s. The figures below were computed mechanically and are final.

RULES:
1. You MAY ONLY cite URLs from this allowed list:
%s

2. DO NOT introduce numbers that are not listed below.
3. Describe volume and regulatory language, not policy merit.
4. If a title was skipped, say the totals exclude it.

Corpus:
- Total words: %d
- Titles analyzed: %d
- Titles skipped: %d
`, date, joinURLs(sourceURLs), results.TotalWordCount, len(results.Summaries), countSkipped(results))

	if m := results.ActionMetrics; m != nil {
		fmt.Fprintf(&b, "- Mandatory actions: %d\n- Prohibited actions: %d\n- Permitted actions: %d\n",
			m.MandatoryActions, m.ProhibitedActions, m.PermittedActions)
	}

	b.WriteString("\nLargest agencies by attributed words:\n")
	for i, a := range results.AgencyWordCounts {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&b, "- %s: %d\n", a.Agency, a.WordCount)
	}

	b.WriteString("\nProvide a 3-4 sentence summary of where regulatory text is concentrated.")

	return b.String()
}

func joinURLs(urls []string) string {
	if len(urls) == 0 {
		return "(No source URLs available)"
	}
	var b strings.Builder
	for i, url := range urls {
		if i >= 20 {
			fmt.Fprintf(&b, "\n... and %d more URLs", len(urls)-20)
			break
		}
		fmt.Fprintf(&b, "\n- %s", url)
	}
	return b.String()
}

func countSkipped(results model.AnalysisResults) int {
	if results.Coverage == nil {
		return 0
	}
	return len(results.Coverage.Skipped)
}
