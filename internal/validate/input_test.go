package validate

import (
	"errors"
	"testing"

	"github.com/ppiankov/ecfr-analyzer/internal/model"
)

func TestDate(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"2024-01-01", false},
		{" 2023-12-31 ", false},
		{"2024-02-29", false},
		{"", true},
		{"   ", true},
		{"2024-1-1", true},
		{"01/01/2024", true},
		{"2024-13-01", true},
		{"2023-02-29", true},
		{"2024-01-01T00:00:00Z", true},
		{"yesterday", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Date(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Date(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				var ve *model.ValidationError
				if !errors.As(err, &ve) {
					t.Errorf("expected *model.ValidationError, got %T", err)
				} else if ve.Field != "date" {
					t.Errorf("expected field date, got %q", ve.Field)
				}
			}
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	got, err := NormalizeDate(" 2024-03-15\n")
	if err != nil {
		t.Fatalf("NormalizeDate failed: %v", err)
	}
	if got != "2024-03-15" {
		t.Errorf("expected 2024-03-15, got %q", got)
	}
}

func TestTitleNumber(t *testing.T) {
	for _, n := range []int{1, 35, 50} {
		if err := TitleNumber(n); err != nil {
			t.Errorf("TitleNumber(%d) unexpected error: %v", n, err)
		}
	}
	for _, n := range []int{0, -1, 51} {
		err := TitleNumber(n)
		var ve *model.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("TitleNumber(%d): expected ValidationError, got %v", n, err)
		}
	}
}

func TestParseTitleNumber(t *testing.T) {
	n, err := ParseTitleNumber("17")
	if err != nil || n != 17 {
		t.Errorf("expected 17, got %d, %v", n, err)
	}

	for _, raw := range []string{"", "abc", "1.5", "99"} {
		if _, err := ParseTitleNumber(raw); err == nil {
			t.Errorf("ParseTitleNumber(%q): expected error", raw)
		}
	}
}
