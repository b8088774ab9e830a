package parser

import (
	"regexp"

	"github.com/pkg/errors"

	errs "sgfkit/internal/errors"
)

// Checker validates raw input before any tokenizing happens.
type Checker int

const (
	// Strict requires the document to open with "(;", whitespace allowed.
	Strict Checker = iota
	// Lax accepts anything and parses best-effort.
	Lax
)

var leadingPattern = regexp.MustCompile(`\A[ \t\n\v\f\r]*\([ \t\n\v\f\r]*;`)

func (c Checker) String() string {
	if c == Lax {
		return "lax"
	}
	return "strict"
}

func (c Checker) check(text string) error {
	if c == Lax {
		return nil
	}
	if leadingPattern.MatchString(text) {
		return nil
	}
	return errors.Wrapf(errs.ErrMalformedData,
		"the first two non-whitespace characters of the string should be (; but they were %q instead",
		leadingChars(text))
}

func leadingChars(text string) string {
	runes := []rune(text)
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return string(runes)
}
