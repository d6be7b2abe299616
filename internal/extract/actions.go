package extract

import (
	"sort"

	"github.com/ppiankov/ecfr-analyzer/internal/model"
)

// Bucket membership. A keyword may land in a bucket even when it negates
// another one ("not required"); counts are summed without correction.
var (
	prohibitedTerms = []string{"prohibited", "not", "violation", "restriction"}
	permittedTerms  = []string{"may", "authorized", "permitted"}
	mandatoryTerms  = []string{"shall", "must", "required", "requirement", "obligation"}
)

// Categorize sums keyword counts into the prohibited, permitted and mandatory buckets.
// Top10Keywords is left empty; see BuildActionMetrics.
func Categorize(freq model.KeywordFrequency) model.ActionMetrics {
	return model.ActionMetrics{
		ProhibitedActions: sum(freq, prohibitedTerms),
		PermittedActions:  sum(freq, permittedTerms),
		MandatoryActions:  sum(freq, mandatoryTerms),
	}
}

// TopKeywords returns up to n keywords with a non-zero count, highest first.
// Ties keep vocabulary order.
func TopKeywords(freq model.KeywordFrequency, n int) []model.KeywordCount {
	ranked := make([]model.KeywordCount, 0, len(Vocabulary))
	for _, term := range Vocabulary {
		if count := freq[term]; count > 0 {
			ranked = append(ranked, model.KeywordCount{Keyword: term, Count: count})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// BuildActionMetrics categorizes freq and attaches its ten most frequent keywords
func BuildActionMetrics(freq model.KeywordFrequency) model.ActionMetrics {
	metrics := Categorize(freq)
	metrics.Top10Keywords = TopKeywords(freq, 10)
	return metrics
}

func sum(freq model.KeywordFrequency, terms []string) int {
	total := 0
	for _, t := range terms {
		total += freq[t]
	}
	return total
}
