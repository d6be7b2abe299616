package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// StripMarkup replaces every tag, comment and directive with a space and keeps
// the text between them, CDATA sections included. Entities are decoded.
// Whitespace is left as found.
func StripMarkup(markup string) string {
	z := html.NewTokenizer(strings.NewReader(markup))
	z.AllowCDATA(true)

	var buf strings.Builder
	buf.Grow(len(markup))

	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF is the only error a strings.Reader produces
			return buf.String()
		case html.TextToken:
			buf.Write(z.Text())
		case html.StartTagToken:
			// eCFR elements may collide with HTML raw-text names (TITLE, STYLE);
			// their children are still markup.
			z.NextIsNotRawText()
			buf.WriteByte(' ')
		default:
			buf.WriteByte(' ')
		}
	}
}

// Normalize strips markup, collapses whitespace runs to a single space and trims the result
func Normalize(markup string) string {
	return strings.Join(strings.Fields(StripMarkup(markup)), " ")
}

// CountWords counts whitespace-delimited tokens. The empty string has zero words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
