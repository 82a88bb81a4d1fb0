package runtime

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizeTitle_SizeLimit(t *testing.T) {
	limit := 4096

	tests := []struct {
		name      string
		inputSize int
		wantErr   bool
	}{
		{"Under Limit", limit - 1, false},
		{"Exact Limit", limit, false},
		{"Over Limit", limit + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SanitizeTitle(strings.Repeat("a", tt.inputSize))
			if tt.wantErr && !errors.Is(err, ErrTitleTooLarge) {
				t.Errorf("SanitizeTitle() expected ErrTitleTooLarge for size %d, got %v", tt.inputSize, err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("SanitizeTitle() unexpected error: %v", err)
			}
		})
	}
}

func TestSanitizeTitle_EnvOverride(t *testing.T) {
	t.Setenv(EnvMaxTitleSize, "8")

	if _, err := SanitizeTitle("12345678"); err != nil {
		t.Errorf("unexpected error at limit: %v", err)
	}
	if _, err := SanitizeTitle("123456789"); err == nil {
		t.Error("expected error over the overridden limit")
	}

	t.Setenv(EnvMaxTitleSize, "garbage")
	if _, err := SanitizeTitle(strings.Repeat("a", 100)); err != nil {
		t.Errorf("invalid override should fall back to default: %v", err)
	}
}

func TestSanitizeTitle_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Text", "Buy milk", "Buy milk"},
		{"Line Breaks", "Buy\nmilk\tnow", "Buy milk now"},
		{"ANSI Code", "\x1b[31mRed\x1b[0m", "[31mRed[0m"},
		{"Null Byte", "Null\x00Byte", "NullByte"},
		{"Bell", "Ding\x07", "Ding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeTitle(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("SanitizeTitle() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSanitizeTitle_InvalidUTF8(t *testing.T) {
	if _, err := SanitizeTitle("bad\xffbyte"); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("expected ErrInvalidUTF8, got %v", err)
	}
}
