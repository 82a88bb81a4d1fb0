package runtime

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxTitleSize is 4KB (conservative default)
	DefaultMaxTitleSize = 4096
	// EnvMaxTitleSize is the environment variable to override the default
	EnvMaxTitleSize = "TODOMVC_MAX_TITLE_SIZE"
)

var (
	ErrTitleTooLarge = errors.New("title exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("title contains invalid UTF-8 sequences")
)

// SanitizeTitle cleans a task title by enforcing the size limit,
// validating UTF-8 and removing control characters.
// Tabs and line breaks become spaces since a title is a single line.
func SanitizeTitle(input string) (string, error) {
	limit := maxTitleSize()
	if len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrTitleTooLarge, len(input), limit)
	}

	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	// Fast path: if no control chars, return as is.
	clean := true
	for _, r := range input {
		if unicode.IsControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		switch {
		case isWhitespaceControl(r):
			b.WriteRune(' ')
		case !unicode.IsControl(r):
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func isWhitespaceControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

func maxTitleSize() int {
	if val := os.Getenv(EnvMaxTitleSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxTitleSize
}
