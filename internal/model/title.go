package model

// RegulatoryTitle is one of the 50 top-level divisions of the federal regulatory code
type RegulatoryTitle struct {
	Number   int      `json:"number" yaml:"number"`
	Name     string   `json:"name" yaml:"name"`
	Agencies []string `json:"agencies" yaml:"agencies"`
}

// TitleAnalysis is the word-count result for one title on one date
type TitleAnalysis struct {
	TitleNumber int      `json:"titleNumber"`
	TitleName   string   `json:"titleName"`
	WordCount   int      `json:"wordCount"`
	Agencies    []string `json:"agencies"`
	Date        string   `json:"date"` // YYYY-MM-DD the text was requested for
}

// KeywordFrequency maps each vocabulary keyword to its whole-word occurrence count.
// Keywords with no occurrences are present with a zero count.
type KeywordFrequency map[string]int

// Add merges another frequency map into f
func (f KeywordFrequency) Add(other KeywordFrequency) {
	for k, v := range other {
		f[k] += v
	}
}

// KeywordCount is a single (keyword, count) pair
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// TitleSummary is the topical and complexity digest of one title
type TitleSummary struct {
	TitleNumber int      `json:"titleNumber"`
	TitleName   string   `json:"titleName"`
	WordCount   int      `json:"wordCount"`
	KeyTopics   []string `json:"keyTopics"`
	Complexity  float64  `json:"complexity"` // 1-10
	Agencies    []string `json:"agencies"`
}

// TitleReport bundles everything derived from one title's text in a single pass
type TitleReport struct {
	Analysis TitleAnalysis    `json:"analysis"`
	Summary  TitleSummary     `json:"summary"`
	Keywords KeywordFrequency `json:"keywords"`
	Actions  ActionMetrics    `json:"actions"`
}
