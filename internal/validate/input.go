// Package validate checks caller input before any work is done.
package validate

import (
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/ecfr-analyzer/internal/catalog"
	"github.com/ppiankov/ecfr-analyzer/internal/model"
)

// DateLayout is the calendar date format accepted everywhere (YYYY-MM-DD)
const DateLayout = "2006-01-02"

// Date parses a YYYY-MM-DD date. Missing, malformed and impossible
// dates ("2024-02-30") are a *model.ValidationError.
func Date(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, &model.ValidationError{Field: "date", Message: "date is required (YYYY-MM-DD)"}
	}

	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, &model.ValidationError{Field: "date", Message: "expected YYYY-MM-DD, got " + strconv.Quote(raw)}
	}

	return t, nil
}

// NormalizeDate validates raw and returns it in canonical form
func NormalizeDate(raw string) (string, error) {
	t, err := Date(raw)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

// TitleNumber checks that n is a title in the catalog range
func TitleNumber(n int) error {
	if n < 1 || n > catalog.TitleCount {
		return &model.ValidationError{
			Field:   "title",
			Message: "title number must be between 1 and " + strconv.Itoa(catalog.TitleCount) + ", got " + strconv.Itoa(n),
		}
	}
	return nil
}

// ParseTitleNumber parses and range-checks a title number from a path or argument
func ParseTitleNumber(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &model.ValidationError{Field: "title", Message: "not a number: " + strconv.Quote(raw)}
	}
	if err := TitleNumber(n); err != nil {
		return 0, err
	}
	return n, nil
}
