package extract

import (
	"strings"
	"unicode/utf8"
)

type topicRule struct {
	match  string // lower-case substring of the title name
	topics []string
}

// defaultLexicon is matched in order; the output keeps this order
var defaultLexicon = []topicRule{
	{"general provisions", []string{"federal register", "administrative procedure", "regulatory policy"}},
	{"grants", []string{"grants management", "federal assistance", "funding requirements"}},
	{"president", []string{"executive orders", "presidential proclamations", "white house directives"}},
	{"personnel", []string{"federal employment", "civil service", "government ethics"}},
	{"agriculture", []string{"food safety", "agricultural standards", "rural development"}},
	{"energy", []string{"nuclear safety", "renewable energy", "fossil fuels"}},
	{"banking", []string{"financial institutions", "consumer banking", "monetary policy"}},
	{"aeronautics", []string{"air safety", "space exploration", "flight standards"}},
	{"commerce", []string{"trade regulation", "business standards", "consumer protection"}},
	{"securities", []string{"securities trading", "commodity futures", "investor protection"}},
	{"food", []string{"pharmaceutical approval", "food standards", "medical devices"}},
	{"internal revenue", []string{"tax compliance", "deductions", "corporate taxation"}},
	{"labor", []string{"workplace safety", "employment standards", "labor rights"}},
	{"environment", []string{"air quality", "clean water", "hazardous waste"}},
	{"health", []string{"healthcare", "public health", "medical research"}},
	{"telecommunication", []string{"broadcast standards", "spectrum management", "internet regulation"}},
	{"transportation", []string{"highway safety", "aviation", "railroad operations"}},
}

const (
	minTopics       = 3
	paddingTopic    = "federal oversight"
	wordPunctuation = ",.:;'\"()"
)

var defaultTopics = []string{"regulatory compliance", "federal standards"}

// TopicExtractor tags a title with topics from a fixed name lexicon
type TopicExtractor struct {
	lexicon []topicRule
}

// NewTopicExtractor creates an extractor over the built-in lexicon
func NewTopicExtractor() *TopicExtractor {
	return &TopicExtractor{lexicon: defaultLexicon}
}

// Extract returns at least three distinct topics for a title.
// Topics are derived from the title name; text is currently unused.
func (e *TopicExtractor) Extract(text string, titleName string) []string {
	var topics []string
	seen := make(map[string]bool)
	add := func(t string) {
		if !seen[t] {
			seen[t] = true
			topics = append(topics, t)
		}
	}

	lowerName := strings.ToLower(titleName)
	for _, rule := range e.lexicon {
		if strings.Contains(lowerName, rule.match) {
			for _, t := range rule.topics {
				add(t)
			}
		}
	}

	if len(topics) == 0 {
		for _, t := range defaultTopics {
			add(t)
		}
		if word := significantWord(titleName); word != "" {
			add(strings.ToLower(word) + " regulations")
		}
	}

	// Defaults already hold two topics, so one padding entry always reaches minTopics
	if len(topics) < minTopics {
		add(paddingTopic)
	}

	return topics
}

// significantWord picks the longest word over four characters, or the first word.
// Surrounding punctuation is ignored ("Forests," is "Forests").
func significantWord(name string) string {
	var words []string
	for _, w := range strings.Fields(name) {
		if w = strings.Trim(w, wordPunctuation); w != "" {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return ""
	}

	best := ""
	for _, w := range words {
		n := utf8.RuneCountInString(w)
		if n > 4 && n > utf8.RuneCountInString(best) {
			best = w
		}
	}
	if best == "" {
		return words[0]
	}
	return best
}
