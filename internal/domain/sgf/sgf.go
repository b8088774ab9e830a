package sgf

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ListIdentities are the property identities whose value is an ordered list
// of strings (AB[aa][bb]) rather than a single string.
var ListIdentities = map[string]struct{}{
	"AW": {}, "AB": {}, "AE": {}, "AR": {}, "CR": {},
	"DD": {}, "LB": {}, "LN": {}, "MA": {}, "SL": {},
	"SQ": {}, "TR": {}, "VW": {}, "TB": {}, "TW": {},
}

// IsListIdentity matches case-insensitively.
func IsListIdentity(identity string) bool {
	_, ok := ListIdentities[strings.ToUpper(identity)]
	return ok
}

// Value is a property value: a single string or an ordered list of strings.
type Value struct {
	single string
	list   []string
	isList bool
}

func Single(s string) Value {
	return Value{single: s}
}

func List(items ...string) Value {
	if items == nil {
		items = []string{}
	}
	return Value{list: items, isList: true}
}

func (v Value) IsList() bool { return v.isList }

// String returns the single value, or the list items joined by a comma.
func (v Value) String() string {
	if v.isList {
		return strings.Join(v.list, ",")
	}
	return v.single
}

// Strings returns the list items, or the single value as a one-element list.
func (v Value) Strings() []string {
	if v.isList {
		out := make([]string, len(v.list))
		copy(out, v.list)
		return out
	}
	return []string{v.single}
}

func (v Value) Equal(other Value) bool {
	if v.isList != other.isList {
		return false
	}
	if !v.isList {
		return v.single == other.single
	}
	if len(v.list) != len(other.list) {
		return false
	}
	for i := range v.list {
		if v.list[i] != other.list[i] {
			return false
		}
	}
	return true
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.isList {
		return json.Marshal(v.list)
	}
	return json.Marshal(v.single)
}

// Properties is a property mapping that remembers insertion order.
// Setting an existing identity overwrites its value in place.
type Properties struct {
	keys   []string
	values map[string]Value
}

func NewProperties() *Properties {
	return &Properties{values: make(map[string]Value)}
}

func (p *Properties) Set(identity string, value Value) {
	if p.values == nil {
		p.values = make(map[string]Value)
	}
	if _, ok := p.values[identity]; !ok {
		p.keys = append(p.keys, identity)
	}
	p.values[identity] = value
}

func (p *Properties) Get(identity string) (Value, bool) {
	if p == nil {
		return Value{}, false
	}
	v, ok := p.values[identity]
	return v, ok
}

func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

func (p *Properties) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	// keys are written in insertion order, not the sorted order of a map
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Node is one record of a game tree (a move, a setup position, the game
// info node). Children are kept in parse order, the first child is the main
// line.
type Node struct {
	properties *Properties
	children   []*Node
}

func NewNode() *Node {
	return &Node{properties: NewProperties()}
}

// AddChild appends child as the last child of n.
func (n *Node) AddChild(child *Node) {
	n.children = append(n.children, child)
}

// SetProperties replaces the whole property mapping of n.
func (n *Node) SetProperties(props *Properties) {
	if props == nil {
		props = NewProperties()
	}
	n.properties = props
}

func (n *Node) Properties() *Properties { return n.properties }

func (n *Node) Children() []*Node { return n.children }

func (n *Node) Get(identity string) (Value, bool) {
	return n.properties.Get(identity)
}

// String returns the value of identity as a string, or "" when absent.
func (n *Node) String(identity string) string {
	v, _ := n.properties.Get(identity)
	return v.String()
}

// List returns the value of identity as a list, or nil when absent.
func (n *Node) List(identity string) []string {
	v, ok := n.properties.Get(identity)
	if !ok {
		return nil
	}
	return v.Strings()
}

func (n *Node) Keys() []string { return n.properties.Keys() }

// MainLine follows the first child from n down to a leaf, n included.
func (n *Node) MainLine() []*Node {
	line := []*Node{n}
	for cur := n; len(cur.children) > 0; {
		cur = cur.children[0]
		line = append(line, cur)
	}
	return line
}

// Walk visits n and its descendants depth first, children in order.
// Returning false from fn stops the descent below that node.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(node *Node, depth int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, child := range n.children {
		child.walk(fn, depth+1)
	}
}

type nodeJSON struct {
	Properties *Properties `json:"properties"`
	Children   []*Node     `json:"children,omitempty"`
}

func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(nodeJSON{Properties: n.properties, Children: n.children})
}

// Collection is the parse result. Its root is a placeholder, never a game
// node; the root's children are the game trees.
type Collection struct {
	root *Node
}

func NewCollection() *Collection {
	return &Collection{root: NewNode()}
}

func (c *Collection) Root() *Node { return c.root }

// Games returns the first node of every game tree.
func (c *Collection) Games() []*Node { return c.root.children }

// Game returns the i-th game tree, or false when out of range.
func (c *Collection) Game(i int) (*Node, bool) {
	if i < 0 || i >= len(c.root.children) {
		return nil, false
	}
	return c.root.children[i], true
}

// GameInfo looks identity up on the first node of the first game, where
// game-level properties (PB, PW, SZ, KM...) live.
func (c *Collection) GameInfo(identity string) (Value, bool) {
	game, ok := c.Game(0)
	if !ok {
		return Value{}, false
	}
	return game.Get(identity)
}

// NodeCount counts every node except the placeholder root.
func (c *Collection) NodeCount() int {
	count := 0
	c.root.Walk(func(*Node, int) bool {
		count++
		return true
	})
	return count - 1
}

func (c *Collection) MarshalJSON() ([]byte, error) {
	games := c.root.children
	if games == nil {
		games = []*Node{}
	}
	return json.Marshal(struct {
		Games []*Node `json:"games"`
	}{Games: games})
}
