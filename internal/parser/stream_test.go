package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "sgfkit/internal/errors"
)

func TestStreamPeekSkipsWhitespaceOnly(t *testing.T) {
	s := newStream(" \n\t[ab")

	r, ok := s.peekSkippingWhitespace()
	require.True(t, ok)
	assert.Equal(t, '[', r)

	r, err := s.next()
	require.NoError(t, err)
	assert.Equal(t, '[', r, "peeked character must be re-readable")

	r, ok = s.peekSkippingWhitespace()
	require.True(t, ok)
	assert.Equal(t, 'a', r)
}

func TestStreamPeekKeepsNonASCIISpace(t *testing.T) {
	s := newStream("\v\u00a0[")

	r, ok := s.peekSkippingWhitespace()
	require.True(t, ok)
	assert.Equal(t, '\u00a0', r)
}

func TestStreamPeekAtEnd(t *testing.T) {
	s := newStream("x   ")
	_, err := s.next()
	require.NoError(t, err)

	_, ok := s.peekSkippingWhitespace()
	assert.False(t, ok)
	assert.True(t, s.atEnd())
}

func TestStreamNextAtEnd(t *testing.T) {
	s := newStream("")
	assert.True(t, s.atEnd())

	_, err := s.next()
	assert.ErrorIs(t, err, errs.ErrUnexpectedEndOfInput)
}

func TestStreamHandlesMultibyteRunes(t *testing.T) {
	s := newStream("黑[ä]")
	tok, err := s.readToken(identityFormat)
	require.NoError(t, err)
	assert.Equal(t, "黑", tok)

	tok, err = s.readToken(genericFormat)
	require.NoError(t, err)
	assert.Equal(t, "ä", tok)
	assert.True(t, s.atEnd())
}

func TestStreamCleansEscapeArtifacts(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: `a\n\rb`, want: "ab"},
		{in: `a\r\nb`, want: "ab"},
		{in: `a\rb\nc`, want: "abc"},
		{in: "a\nb", want: "a\nb"},
		{in: `a\tb`, want: `a\tb`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(newStream(tt.in).buf), tt.in)
	}
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		identity string
		want     tokenFormat
	}{
		{"C", commentFormat},
		{"c", commentFormat},
		{"AB", multiPropertyFormat},
		{"tw", multiPropertyFormat},
		{"B", genericFormat},
		{"CA", genericFormat},
		{"GC", genericFormat},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatFor(tt.identity), tt.identity)
	}
}

func TestMultiPropertyLooksAhead(t *testing.T) {
	s := newStream("  [bb]")
	assert.True(t, multiPropertyFormat.stillInside(']', "aa", s))

	s = newStream("  B[bb]")
	assert.False(t, multiPropertyFormat.stillInside(']', "aa", s))

	s = newStream("")
	assert.False(t, multiPropertyFormat.stillInside(']', "aa", s))
}

func TestCommentStillInside(t *testing.T) {
	assert.True(t, commentFormat.stillInside('x', "", nil))
	assert.True(t, commentFormat.stillInside(']', `a \`, nil))
	assert.False(t, commentFormat.stillInside(']', "a", nil))
}

func TestAssemblerCloseWithoutOpen(t *testing.T) {
	a := newAssembler()
	assert.ErrorIs(t, a.closeBranch(), errs.ErrUnbalancedBranch)
}
