package parser

import (
	"github.com/pkg/errors"

	"sgfkit/internal/domain/sgf"
	errs "sgfkit/internal/errors"
)

// assembler turns branch and node signals into tree mutations.
type assembler struct {
	collection *sgf.Collection
	current    *sgf.Node
	branches   []*sgf.Node
}

func newAssembler() *assembler {
	collection := sgf.NewCollection()
	return &assembler{
		collection: collection,
		current:    collection.Root(),
	}
}

func (a *assembler) openBranch() {
	a.branches = append(a.branches, a.current)
}

func (a *assembler) closeBranch() error {
	if len(a.branches) == 0 {
		return errors.Wrap(errs.ErrUnbalancedBranch, "')' without a matching '('")
	}
	last := len(a.branches) - 1
	a.current = a.branches[last]
	a.branches = a.branches[:last]
	return nil
}

func (a *assembler) createNodeWithProperties(props *sgf.Properties) {
	node := sgf.NewNode()
	a.current.AddChild(node)
	a.current = node
	node.SetProperties(props)
}

func (a *assembler) depth() int {
	return len(a.branches)
}
