// Package parser reads SGF text into a sgf.Collection.
//
// The parser walks the input one character at a time. "(" remembers the
// current node, ";" reads the node's properties and appends it below the
// current node, ")" goes back to the remembered node. Everything else outside
// a node is skipped.
package parser

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"sgfkit/internal/domain/sgf"
)

type signal int

const (
	signalOther signal = iota
	signalOpenBranch
	signalCloseBranch
	signalNewNode
	signalEndOfInput
)

func classify(r rune, ok bool) signal {
	if !ok {
		return signalEndOfInput
	}
	switch r {
	case '(':
		return signalOpenBranch
	case ')':
		return signalCloseBranch
	case ';':
		return signalNewNode
	default:
		return signalOther
	}
}

type Parser struct {
	log     *zap.SugaredLogger
	checker Checker
}

// New returns a parser using checker. A nil logger disables logging.
func New(log *zap.SugaredLogger, checker Checker) *Parser {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Parser{log: log, checker: checker}
}

// Parse is a shortcut for New(nil, Strict|Lax).Parse(text).
func Parse(text string, strict bool) (*sgf.Collection, error) {
	checker := Lax
	if strict {
		checker = Strict
	}
	return New(nil, checker).Parse(text)
}

func (p *Parser) Parse(text string) (*sgf.Collection, error) {
	a, err := p.assemble(text)
	if err != nil {
		return nil, err
	}
	if a.depth() > 0 {
		p.log.Debugw("sgf ended with open branches", "open", a.depth())
	}
	return a.collection, nil
}

func (p *Parser) assemble(text string) (*assembler, error) {
	if err := p.checker.check(text); err != nil {
		p.log.Debugw("sgf rejected before parsing", "checker", p.checker, "error", err)
		return nil, err
	}

	s := newStream(text)
	a := newAssembler()
	for {
		switch classify(s.advance()) {
		case signalEndOfInput:
			return a, nil
		case signalOpenBranch:
			a.openBranch()
		case signalNewNode:
			props, err := readNodeProperties(s)
			if err != nil {
				return nil, err
			}
			a.createNodeWithProperties(props)
		case signalCloseBranch:
			if err := a.closeBranch(); err != nil {
				return nil, errors.Wrapf(err, "at offset %d", s.pos-1)
			}
		}
	}
}

func (p *Parser) ParseReader(r io.Reader) (*sgf.Collection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read sgf")
	}
	return p.Parse(string(data))
}

func (p *Parser) ParseFile(path string) (*sgf.Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read sgf file %s", path)
	}
	collection, err := p.Parse(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return collection, nil
}

// readNodeProperties collects identity/value pairs until the lookahead
// reaches a structural character or the end of input.
func readNodeProperties(s *stream) (*sgf.Properties, error) {
	props := sgf.NewProperties()
	for {
		if classify(s.peekSkippingWhitespace()) != signalOther {
			return props, nil
		}
		rawIdentity, err := s.readToken(identityFormat)
		if err != nil {
			return nil, err
		}
		identity := transformIdentity(rawIdentity)
		format := formatFor(identity)
		raw, err := s.readToken(format)
		if err != nil {
			return nil, errors.Wrapf(err, "value of %s", identity)
		}
		props.Set(identity, format.transformValue(raw))
	}
}
