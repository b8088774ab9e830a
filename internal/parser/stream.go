package parser

import (
	"strings"

	"github.com/pkg/errors"

	errs "sgfkit/internal/errors"
)

// escapeArtifacts are literal backslash sequences left behind by editors that
// wrote line breaks as text. Order matters: pairs go before singles.
var escapeArtifacts = strings.NewReplacer(
	`\n\r`, "",
	`\r\n`, "",
	`\r`, "",
	`\n`, "",
)

// stream is an index-addressable rune buffer. Lookahead never moves the
// cursor past the character it returns.
type stream struct {
	buf []rune
	pos int
}

func newStream(text string) *stream {
	return &stream{buf: []rune(escapeArtifacts.Replace(text))}
}

func (s *stream) atEnd() bool {
	return s.pos >= len(s.buf)
}

// advance consumes one character; ok is false at end of input.
func (s *stream) advance() (r rune, ok bool) {
	if s.atEnd() {
		return 0, false
	}
	r = s.buf[s.pos]
	s.pos++
	return r, true
}

// next is advance for callers that cannot stop at end of input.
func (s *stream) next() (rune, error) {
	r, ok := s.advance()
	if !ok {
		return 0, errors.Wrapf(errs.ErrUnexpectedEndOfInput, "at offset %d", s.pos)
	}
	return r, nil
}

// peekSkippingWhitespace discards whitespace and returns the first
// non-whitespace character without consuming it. ok is false at end of input.
func (s *stream) peekSkippingWhitespace() (r rune, ok bool) {
	for !s.atEnd() && isSpace(s.buf[s.pos]) {
		s.pos++
	}
	if s.atEnd() {
		return 0, false
	}
	return s.buf[s.pos], true
}

// readToken accumulates characters while format says the token continues.
// The character that ends the token is consumed and dropped.
func (s *stream) readToken(format tokenFormat) (string, error) {
	var token strings.Builder
	start := s.pos
	for {
		r, err := s.next()
		if err != nil {
			return "", errors.Wrapf(err, "%s token starting at offset %d", format, start)
		}
		if !format.stillInside(r, token.String(), s) {
			return token.String(), nil
		}
		token.WriteRune(r)
	}
}

// isSpace matches the ASCII whitespace the leading-pattern check allows.
// Non-ASCII spaces such as U+00A0 are ordinary characters.
func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
