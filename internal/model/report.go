package model

import "time"

// AnalysisResults is one completed corpus analysis run for one requested date.
// It is the unit of persistence and of the read API.
type AnalysisResults struct {
	AgencyWordCounts  []AgencyWordCount  `json:"agencyWordCounts"`  // Sorted by word count, descending
	TotalWordCount    int                `json:"totalWordCount"`    // Sum over successfully analyzed titles
	LastUpdated       time.Time          `json:"lastUpdated"`       // When the run finished
	HistoricalChanges []HistoricalChange `json:"historicalChanges,omitempty"`
	Summaries         []TitleSummary     `json:"summaries"`
	ActionMetrics     *ActionMetrics     `json:"actionMetrics,omitempty"`

	// Coverage records which titles contributed and which were skipped
	Coverage *Coverage `json:"coverage,omitempty"`

	LLM *LLMSummary `json:"llm,omitempty"` // Optional narrative, never affects metrics
}

// AgencyWordCount attributes word counts to an agency.
// A title listing several agencies contributes its full word count to each of them.
type AgencyWordCount struct {
	Agency       string `json:"agency"`
	WordCount    int    `json:"wordCount"`
	TitleNumbers []int  `json:"titleNumbers"`
}

// ActionMetrics buckets regulatory keyword counts into action categories
type ActionMetrics struct {
	ProhibitedActions int            `json:"prohibitedActions"`
	PermittedActions  int            `json:"permittedActions"`
	MandatoryActions  int            `json:"mandatoryActions"`
	Top10Keywords     []KeywordCount `json:"top10Keywords"`
}

// Coverage lists the titles a run analyzed and the ones it had to skip
type Coverage struct {
	Analyzed []int          `json:"analyzed"`
	Skipped  []SkippedTitle `json:"skipped,omitempty"`
}

// SkippedTitle records why a title was excluded from a run
type SkippedTitle struct {
	TitleNumber int    `json:"titleNumber"`
	Reason      string `json:"reason"`
}

// Version describes the snapshot pair a historical change was derived from
type Version struct {
	Date          string `json:"date"`
	EffectiveDate string `json:"effectiveDate,omitempty"` // Date of the snapshot compared against
	Title         string `json:"title"`
	Type          string `json:"type"`
}

// HistoricalChange is the word-count delta of one title between two snapshots
type HistoricalChange struct {
	Date               string  `json:"date"`
	TitleNumber        int     `json:"titleNumber"`
	WordCount          int     `json:"wordCount"`
	ChangeFromPrevious int     `json:"changeFromPrevious"`
	PercentChange      float64 `json:"percentChange"`
	Version            Version `json:"version"`
}

// Snapshot is one persisted AnalysisResults tied to the date it was requested for
type Snapshot struct {
	ID        string          `json:"id"`
	Date      string          `json:"date"`
	CreatedAt time.Time       `json:"createdAt"`
	Results   AnalysisResults `json:"results"`
}

// LLMSummary contains an optional LLM-generated narrative of a run
type LLMSummary struct {
	Enabled       bool     `json:"enabled"`
	Provider      string   `json:"provider,omitempty"`
	Model         string   `json:"model,omitempty"`
	StrictSources bool     `json:"strict_sources"`
	SummaryMD     string   `json:"summary_md,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}
