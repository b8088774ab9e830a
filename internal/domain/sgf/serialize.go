package sgf

import (
	"strings"
)

var valueEscaper = strings.NewReplacer("]", `\]`)

// String writes the collection back to SGF text, one parenthesised tree per
// game. Properties come out in their original order.
func (c *Collection) String() string {
	var builder strings.Builder
	for _, game := range c.root.children {
		builder.WriteString("(")
		serializeGameTree(&builder, game)
		builder.WriteString(")")
	}
	return builder.String()
}

// serializeGameTree writes a sequence of single-child nodes inline and
// opens a parenthesised variation for every child once the line forks.
func serializeGameTree(builder *strings.Builder, node *Node) {
	for {
		serializeNode(builder, node)
		if len(node.children) != 1 {
			break
		}
		node = node.children[0]
	}

	for _, child := range node.children {
		builder.WriteString("(")
		serializeGameTree(builder, child)
		builder.WriteString(")")
	}
}

func serializeNode(builder *strings.Builder, node *Node) {
	builder.WriteString(";")
	for _, key := range node.properties.Keys() {
		value, _ := node.properties.Get(key)
		builder.WriteString(key)
		if !value.isList {
			builder.WriteString("[" + valueEscaper.Replace(value.single) + "]")
			continue
		}
		if len(value.list) == 0 {
			builder.WriteString("[]")
			continue
		}
		for _, item := range value.list {
			builder.WriteString("[" + valueEscaper.Replace(item) + "]")
		}
	}
}
