package extract

import "testing"

func TestCountKeywords_WordBoundary(t *testing.T) {
	freq := CountKeywords("shallot shall")
	if freq["shall"] != 1 {
		t.Errorf("expected shall=1, got %d", freq["shall"])
	}
}

func TestCountKeywords_CaseInsensitive(t *testing.T) {
	freq := CountKeywords("SHALL Shall shall MAY")
	if freq["shall"] != 3 {
		t.Errorf("expected shall=3, got %d", freq["shall"])
	}
	if freq["may"] != 1 {
		t.Errorf("expected may=1, got %d", freq["may"])
	}
}

func TestCountKeywords_ZeroCountsPresent(t *testing.T) {
	freq := CountKeywords("")
	if len(freq) != len(Vocabulary) {
		t.Fatalf("expected %d entries, got %d", len(Vocabulary), len(freq))
	}
	for _, term := range Vocabulary {
		count, ok := freq[term]
		if !ok {
			t.Errorf("expected %q to be present", term)
		}
		if count != 0 {
			t.Errorf("expected %q=0, got %d", term, count)
		}
	}
}

func TestCountKeywords_Substrings(t *testing.T) {
	tests := []struct {
		text string
		term string
		want int
	}{
		{"nothing notable", "not", 0},
		{"it is not so; NOT at all", "not", 2},
		{"requirements are required", "requirement", 0},
		{"requirements are required", "required", 1},
		{"mayor may", "may", 1},
		{"penalty-free penalty", "penalty", 2},
		{"non-compliance", "compliance", 1},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := CountKeywords(tt.text)[tt.term]; got != tt.want {
				t.Errorf("count(%q) in %q = %d, want %d", tt.term, tt.text, got, tt.want)
			}
		})
	}
}

func TestKeywordCounter_Total(t *testing.T) {
	c := NewKeywordCounter([]string{"herein", "thereof"})
	if got := c.Total("herein and thereof, herein"); got != 3 {
		t.Errorf("expected total 3, got %d", got)
	}
	if got := c.Total("hereinafter"); got != 0 {
		t.Errorf("expected total 0 for substring, got %d", got)
	}
}

func TestKeywordCounter_TermsIsCopy(t *testing.T) {
	c := NewKeywordCounter([]string{"a"})
	terms := c.Terms()
	terms[0] = "b"
	if c.Terms()[0] != "a" {
		t.Error("Terms exposed internal slice")
	}
}
