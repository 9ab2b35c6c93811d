package scope

import (
	"jscheck/internal/syntax"
)

type resolver struct {
	idx     *Index
	pending []*Reference
}

// Resolve builds the scope index of a unit.
func Resolve(unit *syntax.Unit) *Index {
	root := unit.Root()
	r := &resolver{idx: &Index{
		Root:     newScope(KindProgram, root, nil),
		scopes:   make(map[syntax.Key]*Scope),
		declared: make(map[syntax.Key][]*Binding),
		fnNames:  make(map[syntax.Key]*Binding),
		refs:     make(map[syntax.Key]*Reference),
	}}
	r.idx.scopes[root.Key()] = r.idx.Root

	for _, c := range root.NamedChildren() {
		r.visit(c, r.idx.Root)
	}

	for _, ref := range r.pending {
		if b := r.idx.Lookup(ref.Scope, ref.Name); b != nil {
			ref.Binding = b
			b.References = append(b.References, ref)
		}
	}

	return r.idx
}

func (r *resolver) open(kind Kind, n syntax.Node, parent *Scope) *Scope {
	s := newScope(kind, n, parent)
	if kind != KindFunctionName {
		r.idx.scopes[n.Key()] = s
	}
	return s
}

func (r *resolver) declare(s *Scope, ident syntax.Node, kind string) *Binding {
	name := ident.Text()
	if b := s.Own(name); b != nil {
		return b
	}
	b := &Binding{Name: name, Kind: kind, Decl: ident, Scope: s}
	s.bindings[name] = b
	return b
}

func (r *resolver) reference(ident syntax.Node, name string, flags Flag, s *Scope) {
	ref := &Reference{Ident: ident, Name: name, Flags: flags, Scope: s}
	r.idx.refs[ident.Key()] = ref
	r.pending = append(r.pending, ref)
}

func (r *resolver) visitChildren(n syntax.Node, s *Scope) {
	for _, c := range n.NamedChildren() {
		r.visit(c, s)
	}
}

func (r *resolver) visit(n syntax.Node, s *Scope) {
	switch n.Type() {
	case "identifier":
		r.reference(n, n.Text(), FlagRead, s)

	case "shorthand_property_identifier":
		r.reference(n, n.Text(), FlagRead, s)

	case "function_declaration", "generator_function_declaration":
		fnScope := r.open(KindFunction, n, s)
		if name := syntax.FunctionName(n); !name.IsNil() {
			b := r.declare(s, name, "function")
			r.idx.fnNames[n.Key()] = b
			r.idx.declared[n.Key()] = append(r.idx.declared[n.Key()], b)
		}
		r.function(n, fnScope)

	case "function", "function_expression", "generator_function":
		parent := s
		if name := syntax.FunctionName(n); !name.IsNil() {
			parent = r.open(KindFunctionName, n, s)
			b := r.declare(parent, name, "function")
			r.idx.fnNames[n.Key()] = b
			r.idx.declared[n.Key()] = append(r.idx.declared[n.Key()], b)
		}
		r.function(n, r.open(KindFunction, n, parent))

	case "arrow_function":
		r.function(n, r.open(KindFunction, n, s))

	case "method_definition":
		if name := n.Field("name"); name.Type() == "computed_property_name" {
			r.visit(name, s)
		}
		r.function(n, r.open(KindFunction, n, s))

	case "class_declaration", "class":
		classScope := r.open(KindClass, n, s)
		if name := n.Field("name"); !name.IsNil() {
			target := classScope
			if n.Type() == "class_declaration" {
				target = s
			}
			b := r.declare(target, name, "class")
			r.idx.declared[n.Key()] = append(r.idx.declared[n.Key()], b)
		}
		for _, c := range n.NamedChildren() {
			switch c.Type() {
			case "identifier":
			case "class_heritage":
				r.visitChildren(c, s)
			default:
				r.visit(c, classScope)
			}
		}

	case "statement_block":
		r.visitChildren(n, r.open(KindBlock, n, s))

	case "switch_body":
		r.visitChildren(n, r.open(KindSwitch, n, s))

	case "for_statement":
		r.visitChildren(n, r.open(KindFor, n, s))

	case "for_in_statement":
		r.forIn(n, r.open(KindFor, n, s))

	case "catch_clause":
		catchScope := r.open(KindCatch, n, s)
		if param := n.Field("parameter"); !param.IsNil() {
			var out []*Binding
			r.declarePattern(param, "catch", catchScope, catchScope, 0, &out)
			r.idx.declared[n.Key()] = out
		}
		if body := n.Field("body"); !body.IsNil() {
			r.visit(body, catchScope)
		}

	case "lexical_declaration", "variable_declaration":
		r.declaration(n, s)

	case "import_statement":
		r.imports(n)

	case "export_specifier":
		if name := n.Field("name"); name.Type() == "identifier" {
			r.reference(name, name.Text(), FlagRead, s)
		}

	case "assignment_expression":
		r.target(n.Field("left"), FlagWrite, s)
		r.visit(n.Field("right"), s)

	case "augmented_assignment_expression":
		left := n.Field("left")
		if left.Type() == "identifier" {
			r.reference(left, left.Text(), FlagRead|FlagWrite, s)
		} else {
			r.visit(left, s)
		}
		r.visit(n.Field("right"), s)

	case "update_expression":
		arg := syntax.Unparen(n.Field("argument"))
		if arg.Type() == "identifier" {
			r.reference(arg, arg.Text(), FlagRead|FlagWrite, s)
		} else {
			r.visit(arg, s)
		}

	case "labeled_statement":
		if body := n.Field("body"); !body.IsNil() {
			r.visit(body, s)
		}

	case "property_identifier", "statement_identifier", "private_property_identifier", "comment":

	default:
		r.visitChildren(n, s)
	}
}

func (r *resolver) function(fn syntax.Node, fnScope *Scope) {
	out := r.idx.declared[fn.Key()]
	for _, p := range syntax.Params(fn) {
		r.declarePattern(p, "param", fnScope, fnScope, 0, &out)
	}
	r.idx.declared[fn.Key()] = out

	body := syntax.Body(fn)
	if body.Kind() == syntax.KindBlock {
		// The function body shares the function scope.
		r.idx.scopes[body.Key()] = fnScope
		r.visitChildren(body, fnScope)
		return
	}
	r.visit(body, fnScope)
}

func (r *resolver) declaration(decl syntax.Node, s *Scope) {
	kind := syntax.DeclarationKind(decl)
	target := s
	if kind == "var" {
		target = s.hoistTarget()
	}

	var all []*Binding
	for _, d := range syntax.Declarators(decl) {
		value := d.Field("value")
		var flags Flag
		if !value.IsNil() {
			flags = FlagWrite | FlagInit
		}

		var out []*Binding
		r.declarePattern(d.Field("name"), kind, target, s, flags, &out)
		r.idx.declared[d.Key()] = out
		all = append(all, out...)

		if !value.IsNil() {
			r.visit(value, s)
		}
	}
	r.idx.declared[decl.Key()] = all
}

func (r *resolver) forIn(n syntax.Node, forScope *Scope) {
	left := n.Field("left")
	kind := ""
	for _, k := range []string{"let", "const", "var"} {
		if n.HasToken(k) {
			kind = k
		}
	}

	switch {
	case kind != "":
		target := forScope
		if kind == "var" {
			target = forScope.hoistTarget()
		}
		var out []*Binding
		r.declarePattern(left, kind, target, forScope, FlagWrite, &out)
		r.idx.declared[n.Key()] = out
	case !left.IsNil():
		r.target(left, FlagWrite, forScope)
	}

	for _, c := range n.NamedChildren() {
		if c.Equal(left) {
			continue
		}
		r.visit(c, forScope)
	}
}

// declarePattern declares every identifier bound by a pattern. When flags is
// non-zero each declared identifier also gets a reference with those flags.
func (r *resolver) declarePattern(p syntax.Node, kind string, declScope, refScope *Scope, flags Flag, out *[]*Binding) {
	switch p.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		b := r.declare(declScope, p, kind)
		*out = append(*out, b)
		if flags != 0 {
			r.reference(p, p.Text(), flags, refScope)
		}

	case "object_pattern", "array_pattern":
		for _, c := range p.NamedChildren() {
			r.declarePattern(c, kind, declScope, refScope, flags, out)
		}

	case "pair_pattern":
		if key := p.Field("key"); key.Type() == "computed_property_name" {
			r.visit(key, refScope)
		}
		r.declarePattern(p.Field("value"), kind, declScope, refScope, flags, out)

	case "assignment_pattern", "object_assignment_pattern":
		r.declarePattern(p.Field("left"), kind, declScope, refScope, flags, out)
		r.visit(p.Field("right"), refScope)

	case "rest_pattern":
		r.declarePattern(p.FirstNamedChild(), kind, declScope, refScope, flags, out)

	default:
		r.visit(p, refScope)
	}
}

// target records the identifiers written by an assignment left-hand side.
func (r *resolver) target(p syntax.Node, flags Flag, s *Scope) {
	switch p.Type() {
	case "identifier", "shorthand_property_identifier_pattern", "shorthand_property_identifier":
		r.reference(p, p.Text(), flags, s)

	case "parenthesized_expression":
		r.target(p.FirstNamedChild(), flags, s)

	case "object_pattern", "array_pattern", "array", "object":
		for _, c := range p.NamedChildren() {
			r.target(c, flags, s)
		}

	case "pair_pattern", "pair":
		if key := p.Field("key"); key.Type() == "computed_property_name" {
			r.visit(key, s)
		}
		r.target(p.Field("value"), flags, s)

	case "assignment_pattern", "object_assignment_pattern", "assignment_expression":
		r.target(p.Field("left"), flags, s)
		r.visit(p.Field("right"), s)

	case "rest_pattern", "spread_element":
		r.target(p.FirstNamedChild(), flags, s)

	default:
		r.visit(p, s)
	}
}

func (r *resolver) imports(n syntax.Node) {
	var out []*Binding
	syntax.Inspect(n, func(c syntax.Node) bool {
		switch c.Type() {
		case "string":
			return false
		case "import_specifier":
			name := c.Field("alias")
			if name.IsNil() {
				name = c.Field("name")
			}
			if name.Type() == "identifier" {
				out = append(out, r.declare(r.idx.Root, name, "import"))
			}
			return false
		case "namespace_import":
			if id := c.FirstNamedChild(); id.Type() == "identifier" {
				out = append(out, r.declare(r.idx.Root, id, "import"))
			}
			return false
		case "identifier":
			out = append(out, r.declare(r.idx.Root, c, "import"))
		}
		return true
	})
	r.idx.declared[n.Key()] = out
}
