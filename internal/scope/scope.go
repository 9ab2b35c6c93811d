// Package scope resolves JavaScript bindings and their reference sites.
//
// Resolve builds the scope tree of a unit in one walk and then resolves
// every recorded reference through the scope chain, so hoisted declarations
// are found regardless of textual order. The index is read-only afterwards.
package scope

import (
	"jscheck/internal/syntax"
)

// Kind classifies a scope.
type Kind int

const (
	KindProgram Kind = iota
	KindFunction
	KindFunctionName
	KindClass
	KindBlock
	KindFor
	KindCatch
	KindSwitch
)

// Scope is one lexical scope.
type Scope struct {
	Kind     Kind
	Node     syntax.Node
	Parent   *Scope
	bindings map[string]*Binding
}

func newScope(kind Kind, node syntax.Node, parent *Scope) *Scope {
	return &Scope{Kind: kind, Node: node, Parent: parent, bindings: make(map[string]*Binding)}
}

// Own returns the binding declared directly in s.
func (s *Scope) Own(name string) *Binding {
	return s.bindings[name]
}

// hoistTarget returns the scope var declarations land in.
func (s *Scope) hoistTarget() *Scope {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Kind == KindFunction || cur.Kind == KindProgram {
			return cur
		}
	}
	return s
}

// Flag describes how a reference site uses its binding.
type Flag uint8

const (
	FlagRead Flag = 1 << iota
	FlagWrite
	FlagInit
)

// Reference is one identifier occurrence.
type Reference struct {
	Ident   syntax.Node
	Name    string
	Flags   Flag
	Scope   *Scope
	Binding *Binding
}

func (r *Reference) IsRead() bool  { return r.Flags&FlagRead != 0 }
func (r *Reference) IsWrite() bool { return r.Flags&FlagWrite != 0 }
func (r *Reference) IsInit() bool  { return r.Flags&FlagInit != 0 }

// Binding is a declared variable with its reference sites in source order.
type Binding struct {
	Name       string
	Kind       string
	Decl       syntax.Node
	Scope      *Scope
	References []*Reference
}

// Index is the resolved scope information of one unit.
type Index struct {
	Root     *Scope
	scopes   map[syntax.Key]*Scope
	declared map[syntax.Key][]*Binding
	fnNames  map[syntax.Key]*Binding
	refs     map[syntax.Key]*Reference
}

// ScopeAt returns the innermost scope enclosing n.
func (idx *Index) ScopeAt(n syntax.Node) *Scope {
	for cur := n; !cur.IsNil(); cur = cur.Parent() {
		if s, ok := idx.scopes[cur.Key()]; ok {
			return s
		}
	}
	return idx.Root
}

// Lookup resolves name from s outwards. It returns nil for globals that are
// never declared.
func (idx *Index) Lookup(s *Scope, name string) *Binding {
	for cur := s; cur != nil; cur = cur.Parent {
		if b := cur.bindings[name]; b != nil {
			return b
		}
	}
	return nil
}

// Declared returns the bindings introduced by a declaration, declarator,
// function, class, catch clause or for-in/of head, in declaration order.
func (idx *Index) Declared(n syntax.Node) []*Binding {
	return idx.declared[n.Key()]
}

// FunctionNameBinding returns the binding of a function's own name, or nil
// for anonymous functions.
func (idx *Index) FunctionNameBinding(fn syntax.Node) *Binding {
	return idx.fnNames[fn.Key()]
}

// ReferenceAt returns the reference recorded for an identifier node.
func (idx *Index) ReferenceAt(ident syntax.Node) *Reference {
	return idx.refs[ident.Key()]
}
