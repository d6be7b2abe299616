package score

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/ecfr-analyzer/internal/extract"
)

// LegalTerms is the archaic legal vocabulary that drives the legal-term factor
var LegalTerms = []string{
	"pursuant", "thereof", "whereof", "herein", "aforementioned",
	"notwithstanding", "hereunder", "whereby", "thereto", "thereafter",
}

const (
	MinComplexity = 1.0
	MaxComplexity = 10.0

	sentenceLengthPoints = 4.0
	complexWordPoints    = 4.0
	legalTermPoints      = 2.0

	// Average sentence length that earns the full sentence-length points
	saturatingSentenceLength = 25.0
	complexWordMinRunes      = 9
)

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// FactorType names one component of the complexity score
type FactorType string

const (
	FactorSentenceLength FactorType = "sentence_length"
	FactorComplexWords   FactorType = "complex_words"
	FactorLegalTerms     FactorType = "legal_terms"
)

// Factor is one capped contribution to the complexity score, with the raw inputs behind it
type Factor struct {
	Type        FactorType             `json:"type"`
	Points      float64                `json:"points"`
	MaxPoints   float64                `json:"max_points"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// Complexity is a 1-10 readability score and the factors it was summed from
type Complexity struct {
	Score     float64  `json:"score"`
	Sentences int      `json:"sentences"`
	Words     int      `json:"words"`
	Factors   []Factor `json:"factors,omitempty"`
}

// ComplexityScorer rates how hard a regulatory text is to read
type ComplexityScorer struct {
	legal *extract.KeywordCounter
}

// NewComplexityScorer creates a scorer over the built-in legal lexicon
func NewComplexityScorer() *ComplexityScorer {
	return &ComplexityScorer{legal: extract.NewKeywordCounter(LegalTerms)}
}

// Calculate scores raw markup. Text with no sentences scores the minimum.
func (s *ComplexityScorer) Calculate(markup string) Complexity {
	plain := extract.StripMarkup(markup)

	var sentences []string
	for _, part := range sentenceSplit.Split(plain, -1) {
		if strings.TrimSpace(part) != "" {
			sentences = append(sentences, part)
		}
	}

	words := strings.Fields(plain)
	if len(sentences) == 0 {
		return Complexity{Score: MinComplexity, Words: len(words)}
	}

	// 1. Sentence length (0-4 points)
	sentenceWords := 0
	for _, sentence := range sentences {
		sentenceWords += len(strings.Fields(sentence))
	}
	avgSentenceLength := float64(sentenceWords) / float64(len(sentences))
	lengthFactor := Factor{
		Type:        FactorSentenceLength,
		Points:      math.Min(avgSentenceLength/saturatingSentenceLength, 1) * sentenceLengthPoints,
		MaxPoints:   sentenceLengthPoints,
		Description: fmt.Sprintf("Average sentence length: %.1f words", avgSentenceLength),
		Data: map[string]interface{}{
			"sentences":      len(sentences),
			"sentence_words": sentenceWords,
			"average":        avgSentenceLength,
			"formula":        "min(avg_sentence_length / 25, 1) * 4",
		},
	}

	// 2. Complex words (0-4 points)
	complexWords := 0
	for _, w := range words {
		if utf8.RuneCountInString(w) >= complexWordMinRunes {
			complexWords++
		}
	}
	complexRatio := ratio(complexWords, len(words))
	complexFactor := Factor{
		Type:        FactorComplexWords,
		Points:      math.Min(complexRatio*20, 1) * complexWordPoints,
		MaxPoints:   complexWordPoints,
		Description: fmt.Sprintf("Words over 8 characters: %d/%d", complexWords, len(words)),
		Data: map[string]interface{}{
			"complex_words": complexWords,
			"words":         len(words),
			"ratio":         complexRatio,
			"formula":       "min(complex_words / words * 20, 1) * 4",
		},
	}

	// 3. Legal terms (0-2 points)
	legalCount := s.legal.Total(plain)
	legalRatio := ratio(legalCount, len(words))
	legalFactor := Factor{
		Type:        FactorLegalTerms,
		Points:      math.Min(legalRatio*100, 1) * legalTermPoints,
		MaxPoints:   legalTermPoints,
		Description: fmt.Sprintf("Legal terms: %d", legalCount),
		Data: map[string]interface{}{
			"legal_terms": legalCount,
			"words":       len(words),
			"ratio":       legalRatio,
			"formula":     "min(legal_terms / words * 100, 1) * 2",
		},
	}

	total := lengthFactor.Points + complexFactor.Points + legalFactor.Points

	return Complexity{
		Score:     clamp(total, MinComplexity, MaxComplexity),
		Sentences: len(sentences),
		Words:     len(words),
		Factors:   []Factor{lengthFactor, complexFactor, legalFactor},
	}
}

var defaultScorer = NewComplexityScorer()

// Score returns only the 1-10 complexity of markup
func Score(markup string) float64 {
	return defaultScorer.Calculate(markup).Score
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
