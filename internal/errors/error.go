package errors

import "errors"

var (
	ErrMalformedData        = errors.New("malformed sgf data")
	ErrUnexpectedEndOfInput = errors.New("unexpected end of input")
	ErrUnbalancedBranch     = errors.New("unbalanced branch")
	ErrEmptyInput           = errors.New("empty sgf input")
	ErrCollectionNotFound   = errors.New("collection not found")
	ErrGameNotFound         = errors.New("game not found")
	ErrInputTooLarge        = errors.New("sgf input too large")
	ErrImportForbidden      = errors.New("import path outside the import root")
)

// IsParseError reports whether err was produced by the parser rather than
// by storage or transport.
func IsParseError(err error) bool {
	return errors.Is(err, ErrMalformedData) ||
		errors.Is(err, ErrUnexpectedEndOfInput) ||
		errors.Is(err, ErrUnbalancedBranch) ||
		errors.Is(err, ErrEmptyInput)
}
