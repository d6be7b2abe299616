package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/ecfr-analyzer/internal/model"
)

// Vocabulary is the fixed, ordered list of regulatory action terms
var Vocabulary = []string{
	"shall", "must", "required", "prohibited", "may", "should",
	"authorized", "permitted", "not", "except", "unless", "violation",
	"compliance", "penalty", "requirement", "obligation", "restriction",
}

// KeywordCounter counts whole-word, case-insensitive occurrences of a fixed vocabulary
type KeywordCounter struct {
	terms    []string
	patterns []*regexp.Regexp
}

// NewKeywordCounter compiles a counter for the given terms
func NewKeywordCounter(terms []string) *KeywordCounter {
	c := &KeywordCounter{
		terms:    append([]string(nil), terms...),
		patterns: make([]*regexp.Regexp, len(terms)),
	}
	for i, term := range terms {
		c.patterns[i] = wordPattern(term)
	}
	return c
}

// Terms returns the counter's vocabulary in order
func (c *KeywordCounter) Terms() []string {
	return append([]string(nil), c.terms...)
}

// Count returns the occurrence count of every term. Terms that never occur map to 0.
func (c *KeywordCounter) Count(text string) model.KeywordFrequency {
	freq := make(model.KeywordFrequency, len(c.terms))
	for i, term := range c.terms {
		freq[term] = len(c.patterns[i].FindAllStringIndex(text, -1))
	}
	return freq
}

// Total returns the summed count of every term
func (c *KeywordCounter) Total(text string) int {
	total := 0
	for _, p := range c.patterns {
		total += len(p.FindAllStringIndex(text, -1))
	}
	return total
}

var defaultCounter = NewKeywordCounter(Vocabulary)

// CountKeywords counts the regulatory vocabulary in markup-stripped text
func CountKeywords(text string) model.KeywordFrequency {
	return defaultCounter.Count(strings.ToLower(text))
}

// wordPattern matches term only between word boundaries, so "shallot" is not "shall"
func wordPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
}
