package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/ecfr-analyzer/internal/model"
)

// MockProvider implements the Provider interface for testing
type MockProvider struct {
	name      string
	available bool
	response  *SummarizeResponse
	err       error
	lastReq   SummarizeRequest
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *MockProvider) IsAvailable(ctx context.Context) bool {
	return m.available
}

func sampleResults() model.AnalysisResults {
	return model.AnalysisResults{
		TotalWordCount: 1500,
		AgencyWordCounts: []model.AgencyWordCount{
			{Agency: "Department of Agriculture", WordCount: 1000, TitleNumbers: []int{7}},
			{Agency: "Environmental Protection Agency", WordCount: 500, TitleNumbers: []int{40}},
		},
		Summaries: []model.TitleSummary{
			{TitleNumber: 7, TitleName: "Agriculture", WordCount: 1000},
			{TitleNumber: 40, TitleName: "Protection of Environment", WordCount: 500},
		},
		ActionMetrics: &model.ActionMetrics{MandatoryActions: 12, ProhibitedActions: 4, PermittedActions: 9},
		Coverage: &model.Coverage{
			Analyzed: []int{7, 40},
			Skipped:  []model.SkippedTitle{{TitleNumber: 17, Reason: "fetch failed"}},
		},
	}
}

func TestNewSummarizer_DisabledProvider(t *testing.T) {
	summarizer, err := NewSummarizer(Config{Provider: ""})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if summarizer.IsEnabled() {
		t.Error("Expected summarizer to be disabled")
	}
	if summarizer.ProviderName() != "" {
		t.Error("Expected empty provider name when disabled")
	}
}

func TestNewSummarizer_UnknownProvider(t *testing.T) {
	if _, err := NewSummarizer(Config{Provider: "anthropic"}); err == nil {
		t.Fatal("Expected error for unsupported provider")
	}
}

func TestNewSummarizer_OpenAIRequiresKey(t *testing.T) {
	if _, err := NewSummarizer(Config{Provider: "OpenAI"}); err == nil {
		t.Fatal("Expected error when API key is missing")
	}
}

func TestSummarizer_GenerateSummary_Disabled(t *testing.T) {
	summarizer := &Summarizer{}

	summary, err := summarizer.GenerateSummary(context.Background(), sampleResults(), "2024-01-01")
	if err != nil {
		t.Errorf("Expected no error when disabled, got %v", err)
	}
	if summary != nil {
		t.Error("Expected nil summary when provider disabled")
	}
}

func TestSummarizer_GenerateSummary_NilReceiver(t *testing.T) {
	var summarizer *Summarizer

	summary, err := summarizer.GenerateSummary(context.Background(), sampleResults(), "2024-01-01")
	if err != nil || summary != nil {
		t.Errorf("Expected nil, nil from nil summarizer, got %v, %v", summary, err)
	}
}

func TestSummarizer_GenerateSummary_ProviderUnavailable(t *testing.T) {
	summarizer := &Summarizer{
		provider: &MockProvider{name: "test-provider", available: false},
		config:   Config{StrictSources: true},
	}

	summary, err := summarizer.GenerateSummary(context.Background(), sampleResults(), "2024-01-01")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if summary == nil {
		t.Fatal("Expected summary object with warnings")
	}
	if summary.Enabled {
		t.Error("Expected summary to be marked as disabled")
	}
	if len(summary.Warnings) != 1 || !strings.Contains(summary.Warnings[0], "not available") {
		t.Errorf("Expected warning about provider unavailability, got %v", summary.Warnings)
	}
}

func TestSummarizer_GenerateSummary_Success(t *testing.T) {
	mock := &MockProvider{
		name:      "test-provider",
		available: true,
		response: &SummarizeResponse{
			Summary:    "Agriculture dominates.",
			CitedURLs:  []string{"https://www.ecfr.gov/current/title-7"},
			Model:      "test-model",
			TokensUsed: 150,
		},
	}
	summarizer := &Summarizer{
		provider: mock,
		config:   Config{Model: "configured-model", StrictSources: true, MaxTokens: 300},
	}

	summary, err := summarizer.GenerateSummary(context.Background(), sampleResults(), "2024-01-01")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !summary.Enabled {
		t.Error("Expected summary to be enabled")
	}
	if summary.Provider != "test-provider" {
		t.Errorf("Expected provider 'test-provider', got '%s'", summary.Provider)
	}
	if summary.Model != "test-model" {
		t.Errorf("Expected model from response, got '%s'", summary.Model)
	}
	if !summary.StrictSources {
		t.Error("Expected strict sources to be recorded")
	}
	if summary.SummaryMD != "Agriculture dominates." {
		t.Errorf("Unexpected summary text: %q", summary.SummaryMD)
	}

	wantSources := []string{
		"https://www.ecfr.gov/current/title-7",
		"https://www.ecfr.gov/current/title-40",
	}
	if strings.Join(mock.lastReq.SourceURLs, " ") != strings.Join(wantSources, " ") {
		t.Errorf("SourceURLs = %v, want %v", mock.lastReq.SourceURLs, wantSources)
	}
	if mock.lastReq.Date != "2024-01-01" || mock.lastReq.MaxTokens != 300 {
		t.Errorf("Unexpected request: %+v", mock.lastReq)
	}

	joined := strings.Join(summary.Warnings, "\n")
	if !strings.Contains(joined, "Tokens used: 150") {
		t.Error("Expected note about tokens used")
	}
	if !strings.Contains(joined, "Verified 1 citations") {
		t.Error("Expected note about verified citations")
	}
}

func TestSummarizer_GenerateSummary_ProviderError(t *testing.T) {
	summarizer := &Summarizer{
		provider: &MockProvider{name: "test-provider", available: true, err: errors.New("API rate limit exceeded")},
		config:   Config{Model: "test-model"},
	}

	summary, err := summarizer.GenerateSummary(context.Background(), sampleResults(), "2024-01-01")
	if err != nil {
		t.Errorf("Expected no error (graceful degradation), got %v", err)
	}
	if !summary.Enabled {
		t.Error("Expected summary to be marked as enabled (but failed)")
	}
	if summary.SummaryMD != "" {
		t.Errorf("Expected empty summary text, got %q", summary.SummaryMD)
	}
	if len(summary.Warnings) != 1 || !strings.Contains(summary.Warnings[0], "rate limit") {
		t.Errorf("Expected warning to mention error: %v", summary.Warnings)
	}
}

func TestRenderSeparateMarkdown(t *testing.T) {
	if md := RenderSeparateMarkdown(nil); md != "" {
		t.Error("Expected empty markdown when nil")
	}
	if md := RenderSeparateMarkdown(&model.LLMSummary{Enabled: false}); md != "" {
		t.Error("Expected empty markdown when disabled")
	}

	md := RenderSeparateMarkdown(&model.LLMSummary{
		Enabled:       true,
		Provider:      "openai",
		Model:         "gpt-4o-mini",
		StrictSources: true,
		SummaryMD:     "Most regulatory text sits in Title 40.",
		Warnings:      []string{"Tokens used: 150"},
	})

	for _, want := range []string{
		"# LLM Summary",
		"GENERATED CONTENT",
		"determined independently",
		"**Provider:** openai",
		"**Model:** gpt-4o-mini",
		"**Strict Sources:** true",
		"Most regulatory text sits in Title 40.",
		"## Notes",
		"Tokens used: 150",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected markdown to contain %q", want)
		}
	}
}

func TestRenderSeparateMarkdown_NoSummary(t *testing.T) {
	md := RenderSeparateMarkdown(&model.LLMSummary{Enabled: true, Provider: "openai"})

	if !strings.Contains(md, "No summary generated") {
		t.Error("Expected message about no summary")
	}
	if strings.Contains(md, "## Notes") {
		t.Error("Expected no notes section without warnings")
	}
}

func TestBuildPrompt(t *testing.T) {
	results := sampleResults()
	prompt := BuildPrompt(results, "2024-01-01", SourceURLs(results))

	for _, want := range []string{
		"as of 2024-01-01",
		"MAY ONLY cite URLs",
		"https://www.ecfr.gov/current/title-7",
		"https://www.ecfr.gov/current/title-40",
		"Total words: 1500",
		"Titles analyzed: 2",
		"Titles skipped: 1",
		"Mandatory actions: 12",
		"Prohibited actions: 4",
		"Permitted actions: 9",
		"- Department of Agriculture: 1000",
		"- Environmental Protection Agency: 500",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

func TestBuildPrompt_Empty(t *testing.T) {
	prompt := BuildPrompt(model.AnalysisResults{}, "2024-01-01", nil)

	if !strings.Contains(prompt, "No source URLs available") {
		t.Error("Expected message about no source URLs")
	}
	if strings.Contains(prompt, "Mandatory actions") {
		t.Error("Expected action lines to be omitted without metrics")
	}
	if !strings.Contains(prompt, "Titles skipped: 0") {
		t.Error("Expected zero skipped without coverage")
	}
}

func TestJoinURLs_Truncates(t *testing.T) {
	urls := make([]string, 25)
	for i := range urls {
		urls[i] = "https://example.com/" + string(rune('a'+i))
	}

	result := joinURLs(urls)

	if !strings.Contains(result, "and 5 more URLs") {
		t.Error("Expected truncation message for many URLs")
	}
	if !strings.Contains(result, urls[19]) || strings.Contains(result, urls[20]) {
		t.Error("Expected exactly the first 20 URLs")
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Provider != "" {
		t.Errorf("Expected provider to be empty (disabled), got '%s'", config.Provider)
	}
	if !config.StrictSources {
		t.Error("Expected strict sources to be enabled by default")
	}
	if config.Timeout <= 0 || config.MaxTokens <= 0 {
		t.Error("Expected positive timeout and max tokens")
	}
}

func TestConfigFromModel(t *testing.T) {
	cfg := ConfigFromModel(
		model.LLMConfig{Provider: "openai", Model: "m", APIKey: "k", Timeout: 9, MaxTokens: 10, StrictSources: true},
		model.HTTPConfig{HTTPProxy: "http://proxy:3128", NoProxy: "localhost"},
	)

	if cfg.Provider != "openai" || cfg.APIKey != "k" || cfg.Timeout != 9 || !cfg.StrictSources {
		t.Errorf("Unexpected config: %+v", cfg)
	}
	if cfg.HTTPProxy != "http://proxy:3128" || cfg.NoProxy != "localhost" {
		t.Errorf("Expected proxy settings to carry over: %+v", cfg)
	}
}
