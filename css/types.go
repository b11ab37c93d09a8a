package css

import (
	"iter"
	"slices"
	"strings"

	"github.com/tdewolff/parse/v2/css"
)

// NodeKind discriminates nodes of the rule tree.
type NodeKind int

const (
	AtRuleNode      NodeKind = iota // @media, @supports, @font-face, @import...
	RulesetNode                     // selector { declarations }
	DeclarationNode                 // property: value
)

// String returns readable name of the node kind.
func (k NodeKind) String() string {
	switch k {
	case AtRuleNode:
		return "at-rule"
	case RulesetNode:
		return "ruleset"
	case DeclarationNode:
		return "declaration"
	default:
		return "unknown"
	}
}

// Node is a single element of the rule tree. Which fields are meaningful
// depends on Kind.
type Node struct {
	Kind NodeKind

	Name    string    // at-rule name, lower-cased, without "@"
	Prelude string    // at-rule condition or ruleset selector text
	Block   *RuleList // nested rules or declarations, nil for block-less at-rules
	Raw     string    // verbatim block content of at-rules we do not understand

	Property string // declaration property name, lower-cased
	Value    Value  // declaration value
}

// IsAtRule returns true if node is an at-rule with the given name.
func (n *Node) IsAtRule(name string) bool {
	return n != nil && n.Kind == AtRuleNode && n.Name == name
}

// LastDeclaration returns the last declaration of property in the node block
// or nil if there is none.
func (n *Node) LastDeclaration(property string) *Node {
	if n == nil || n.Block == nil {
		return nil
	}
	decls := n.Block.Declarations(property)
	if len(decls) == 0 {
		return nil
	}
	return decls[len(decls)-1]
}

// NewAtRule creates at-rule node. Block is allocated when withBlock is set.
func NewAtRule(name, prelude string, withBlock bool, children ...*Node) *Node {
	n := &Node{Kind: AtRuleNode, Name: strings.ToLower(strings.TrimPrefix(name, "@")), Prelude: prelude}
	if withBlock {
		n.Block = NewRuleList(children...)
	}
	return n
}

// NewDeclaration creates declaration node. Invalid value text results in
// empty value.
func NewDeclaration(property, value string) *Node {
	v, _ := ParseValue(value)
	return &Node{Kind: DeclarationNode, Property: strings.ToLower(property), Value: v}
}

// RuleList is an ordered mutable list of nodes forming one scope of the tree.
type RuleList struct {
	nodes []*Node
}

// NewRuleList creates list with the given nodes in order.
func NewRuleList(nodes ...*Node) *RuleList {
	return &RuleList{nodes: slices.Clone(nodes)}
}

// Len returns number of nodes in the list.
func (l *RuleList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.nodes)
}

// Append adds nodes to the end of the list.
func (l *RuleList) Append(nodes ...*Node) {
	l.nodes = append(l.nodes, nodes...)
}

// At returns node at position i.
func (l *RuleList) At(i int) *Node {
	return l.nodes[i]
}

// All iterates over a snapshot of the list in document order, so nodes may be
// removed while iterating.
func (l *RuleList) All() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		if l == nil {
			return
		}
		for _, n := range slices.Clone(l.nodes) {
			if !yield(n) {
				return
			}
		}
	}
}

// Remove deletes node from the list by reference. Returns false if node was
// not found.
func (l *RuleList) Remove(node *Node) bool {
	if l == nil {
		return false
	}
	i := slices.Index(l.nodes, node)
	if i < 0 {
		return false
	}
	l.nodes = slices.Delete(l.nodes, i, i+1)
	return true
}

// Declarations returns all declarations of property in document order.
func (l *RuleList) Declarations(property string) []*Node {
	if l == nil {
		return nil
	}
	var decls []*Node
	for _, n := range l.nodes {
		if n.Kind == DeclarationNode && n.Property == property {
			decls = append(decls, n)
		}
	}
	return decls
}

// Value is a declaration value kept as a sequence of tokens.
type Value struct {
	tokens []css.Token
}

// newValue copies tokens, drops comments and surrounding whitespace.
func newValue(tokens []css.Token) Value {
	v := Value{tokens: make([]css.Token, 0, len(tokens))}
	for _, t := range tokens {
		if t.TokenType == css.CommentToken {
			continue
		}
		if t.TokenType == css.WhitespaceToken && (len(v.tokens) == 0 || v.tokens[len(v.tokens)-1].TokenType == css.WhitespaceToken) {
			continue
		}
		v.tokens = append(v.tokens, css.Token{TokenType: t.TokenType, Data: slices.Clone(t.Data)})
	}
	for len(v.tokens) > 0 && v.tokens[len(v.tokens)-1].TokenType == css.WhitespaceToken {
		v.tokens = v.tokens[:len(v.tokens)-1]
	}
	return v
}

// IsEmpty returns true if value has no tokens.
func (v Value) IsEmpty() bool {
	return len(v.tokens) == 0
}

// Tokens returns copy of value tokens.
func (v Value) Tokens() []css.Token {
	return slices.Clone(v.tokens)
}

// String generates value text. Whitespace runs are collapsed to a single space.
func (v Value) String() string {
	return tokensText(v.tokens)
}

func tokensText(tokens []css.Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		switch t.TokenType {
		case css.CommentToken:
		case css.WhitespaceToken:
			sb.WriteByte(' ')
		default:
			sb.Write(t.Data)
		}
	}
	return strings.TrimSpace(sb.String())
}

// Stylesheet represents a parsed CSS stylesheet.
type Stylesheet struct {
	Rules    *RuleList // Top-level rules in source order
	Charset  string    // Charset the source was decoded from, empty for UTF-8
	Warnings []string  // Problems encountered while parsing
}

// FontFaces returns all @font-face rules of the stylesheet, including the ones
// nested in conditional blocks, in document order.
func (s *Stylesheet) FontFaces() []*Node {
	var faces []*Node
	var collect func(l *RuleList)
	collect = func(l *RuleList) {
		for n := range l.All() {
			if n.Kind != AtRuleNode {
				continue
			}
			if n.Name == "font-face" {
				faces = append(faces, n)
				continue
			}
			if n.Block != nil {
				collect(n.Block)
			}
		}
	}
	collect(s.Rules)
	return faces
}
