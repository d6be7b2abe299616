package extract

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"all markup", "<DIV1><HEAD></HEAD></DIV1>", ""},
		{"plain text", "  hello   world \n", "hello world"},
		{"tags become spaces", "<P>one</P><P>two</P>", "one two"},
		{"nested", `<DIV5 N="1" TYPE="PART"><HEAD>PART 1</HEAD><P>Shall  <I>not</I></P></DIV5>`, "PART 1 Shall not"},
		{"xml declaration", `<?xml version="1.0" encoding="UTF-8"?><ECFR><P>text</P></ECFR>`, "text"},
		{"entities decoded", "<P>fish &amp; wildlife</P>", "fish & wildlife"},
		{"raw text element names", "<TITLE><I>Energy</I></TITLE>", "Energy"},
		{"comments dropped", "<P>a<!-- hidden -->b</P>", "a b"},
		{"cdata kept", "<![CDATA[hello world]]>", "hello world"},
		{"cdata with markup characters", "<P>see <![CDATA[a < b > c]]> here</P>", "see a < b > c here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"   ", 0},
		{"\n\t", 0},
		{"one", 1},
		{"one two  three", 3},
		{" leading and trailing ", 3},
	}

	for _, tt := range tests {
		if got := CountWords(tt.input); got != tt.want {
			t.Errorf("CountWords(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestCountWords_CDATA(t *testing.T) {
	if got := CountWords(Normalize("<EXTRACT><![CDATA[shall not apply]]></EXTRACT>")); got != 3 {
		t.Errorf("expected 3 words inside CDATA, got %d", got)
	}
}

func TestCountWords_AllMarkupHasNoPhantomToken(t *testing.T) {
	if got := CountWords(Normalize("<ECFR><DIV1/></ECFR>")); got != 0 {
		t.Errorf("expected 0 words for all-markup input, got %d", got)
	}
}
