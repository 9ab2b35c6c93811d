// Package syntax is a thin query layer over tree-sitter JavaScript trees.
//
// Detectors never touch tree-sitter directly: they work with Node values,
// which pair a tree-sitter node with the source unit it belongs to, and with
// the closed Kind tag set used for dispatch.
package syntax

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Kind is the closed set of node categories detectors dispatch on.
type Kind int

const (
	KindOther Kind = iota
	KindProgram
	KindForLoop
	KindForInLoop
	KindWhileLoop
	KindCall
	KindMember
	KindSubscript
	KindFunction
	KindArrow
	KindClassBody
	KindReturn
	KindThis
	KindIdentifier
	KindLiteral
	KindDeclaration
	KindDeclarator
	KindBlock
	KindIf
	KindExpressionStatement
	KindParenthesized
)

var kindByType = map[string]Kind{
	"program":                        KindProgram,
	"for_statement":                  KindForLoop,
	"for_in_statement":               KindForInLoop,
	"while_statement":                KindWhileLoop,
	"do_statement":                   KindWhileLoop,
	"call_expression":                KindCall,
	"member_expression":              KindMember,
	"subscript_expression":           KindSubscript,
	"function_declaration":           KindFunction,
	"function":                       KindFunction,
	"function_expression":            KindFunction,
	"generator_function":             KindFunction,
	"generator_function_declaration": KindFunction,
	"method_definition":              KindFunction,
	"arrow_function":                 KindArrow,
	"class_body":                     KindClassBody,
	"return_statement":               KindReturn,
	"this":                           KindThis,
	"identifier":                     KindIdentifier,
	"number":                         KindLiteral,
	"string":                         KindLiteral,
	"true":                           KindLiteral,
	"false":                          KindLiteral,
	"null":                           KindLiteral,
	"regex":                          KindLiteral,
	"lexical_declaration":            KindDeclaration,
	"variable_declaration":           KindDeclaration,
	"variable_declarator":            KindDeclarator,
	"statement_block":                KindBlock,
	"if_statement":                   KindIf,
	"expression_statement":           KindExpressionStatement,
	"parenthesized_expression":       KindParenthesized,
}

// KindOf maps a tree-sitter node type to its Kind.
func KindOf(nodeType string) Kind {
	if k, ok := kindByType[nodeType]; ok {
		return k
	}
	return KindOther
}

// Range is a half-open byte range [Start, End) in a source unit.
type Range struct {
	Start int
	End   int
}

// Contains reports whether r encloses o.
func (r Range) Contains(o Range) bool {
	return r.Start <= o.Start && o.End <= r.End
}

// Key identifies a node inside one unit. Tree-sitter node wrappers are not
// guaranteed to be pointer-stable, so maps are keyed by range and type.
type Key struct {
	Start int
	End   int
	Type  string
}

// Node is a borrowed handle on a syntax tree node. The zero Node is nil.
type Node struct {
	n    *sitter.Node
	unit *Unit
}

func wrap(n *sitter.Node, u *Unit) Node {
	if n == nil || n.IsNull() {
		return Node{}
	}
	return Node{n: n, unit: u}
}

func (n Node) IsNil() bool { return n.n == nil }

func (n Node) Unit() *Unit { return n.unit }

func (n Node) Type() string {
	if n.n == nil {
		return ""
	}
	return n.n.Type()
}

func (n Node) Kind() Kind { return KindOf(n.Type()) }

func (n Node) Start() int { return int(n.n.StartByte()) }

func (n Node) End() int { return int(n.n.EndByte()) }

func (n Node) Range() Range { return Range{Start: n.Start(), End: n.End()} }

func (n Node) Key() Key { return Key{Start: n.Start(), End: n.End(), Type: n.Type()} }

// Equal reports whether both handles denote the same node.
func (n Node) Equal(o Node) bool {
	if n.IsNil() || o.IsNil() {
		return n.IsNil() && o.IsNil()
	}
	return n.Key() == o.Key()
}

// Contains reports whether inner lies within n's range.
func (n Node) Contains(inner Node) bool {
	if n.IsNil() || inner.IsNil() {
		return false
	}
	return n.Range().Contains(inner.Range())
}

// StartLine returns the 1-based line of the first byte.
func (n Node) StartLine() int { return int(n.n.StartPoint().Row) + 1 }

// StartColumn returns the 1-based byte column of the first byte.
func (n Node) StartColumn() int { return int(n.n.StartPoint().Column) + 1 }

// EndLine returns the 1-based line of the last byte.
func (n Node) EndLine() int { return int(n.n.EndPoint().Row) + 1 }

// EndColumn returns the 1-based byte column just past the node.
func (n Node) EndColumn() int { return int(n.n.EndPoint().Column) + 1 }

// Text returns the raw source slice of the node.
func (n Node) Text() string {
	if n.IsNil() {
		return ""
	}
	return string(n.unit.Source[n.Start():n.End()])
}

func (n Node) Parent() Node {
	if n.IsNil() {
		return Node{}
	}
	return wrap(n.n.Parent(), n.unit)
}

// Field returns the child stored under a grammar field name.
func (n Node) Field(name string) Node {
	if n.IsNil() {
		return Node{}
	}
	return wrap(n.n.ChildByFieldName(name), n.unit)
}

// Children returns all children, anonymous tokens included.
func (n Node) Children() []Node {
	if n.IsNil() {
		return nil
	}
	count := int(n.n.ChildCount())
	out := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		if c := wrap(n.n.Child(i), n.unit); !c.IsNil() {
			out = append(out, c)
		}
	}
	return out
}

// NamedChildren returns the named children, skipping comments.
func (n Node) NamedChildren() []Node {
	if n.IsNil() {
		return nil
	}
	count := int(n.n.NamedChildCount())
	out := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		c := wrap(n.n.NamedChild(i), n.unit)
		if c.IsNil() || c.Type() == "comment" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// FirstNamedChild returns the first non-comment named child.
func (n Node) FirstNamedChild() Node {
	if children := n.NamedChildren(); len(children) > 0 {
		return children[0]
	}
	return Node{}
}

// HasToken reports whether n has a direct anonymous child of the given type,
// e.g. "async", "*", "in" or "of".
func (n Node) HasToken(token string) bool {
	return !n.Token(token).IsNil()
}

// Token returns the first direct anonymous child of the given type.
func (n Node) Token(token string) Node {
	for _, c := range n.Children() {
		if !c.n.IsNamed() && c.Type() == token {
			return c
		}
	}
	return Node{}
}

// Operator returns the operator token of a binary, assignment, update or
// unary expression.
func (n Node) Operator() string {
	if op := n.Field("operator"); !op.IsNil() {
		return op.Type()
	}
	for _, c := range n.Children() {
		if c.n.IsNamed() {
			continue
		}
		switch c.Type() {
		case "(", ")", ";", ",":
			continue
		}
		return c.Type()
	}
	return ""
}
