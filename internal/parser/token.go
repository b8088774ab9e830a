package parser

import (
	"strings"

	"sgfkit/internal/domain/sgf"
)

type tokenFormat int

const (
	identityFormat tokenFormat = iota
	commentFormat
	multiPropertyFormat
	genericFormat
)

func (f tokenFormat) String() string {
	switch f {
	case identityFormat:
		return "identity"
	case commentFormat:
		return "comment"
	case multiPropertyFormat:
		return "multi-property"
	case genericFormat:
		return "generic"
	default:
		return "unknown"
	}
}

// formatFor picks the value format for a property identity.
func formatFor(identity string) tokenFormat {
	switch {
	case strings.ToUpper(identity) == "C":
		return commentFormat
	case sgf.IsListIdentity(identity):
		return multiPropertyFormat
	default:
		return genericFormat
	}
}

// stillInside reports whether r belongs to the token being read. Only
// multiPropertyFormat looks ahead in s.
func (f tokenFormat) stillInside(r rune, tokenSoFar string, s *stream) bool {
	switch f {
	case identityFormat:
		return r != '['
	case commentFormat:
		return r != ']' || strings.HasSuffix(tokenSoFar, `\`)
	case multiPropertyFormat:
		if r != ']' {
			return true
		}
		next, ok := s.peekSkippingWhitespace()
		return ok && next == '['
	default:
		return r != ']'
	}
}

var (
	newlineStripper  = strings.NewReplacer("\r", "", "\n", "")
	bracketUnescaper = strings.NewReplacer(`\]`, "]")
)

func transformIdentity(raw string) string {
	return newlineStripper.Replace(raw)
}

// transformValue turns a raw bracketed token into a property value.
func (f tokenFormat) transformValue(raw string) sgf.Value {
	switch f {
	case commentFormat:
		return sgf.Single(bracketUnescaper.Replace(raw))
	case multiPropertyFormat:
		if raw == "" {
			return sgf.List()
		}
		return sgf.List(strings.Split(raw, "][")...)
	default:
		return sgf.Single(raw)
	}
}
