package forof

import (
	"jscheck/internal/syntax"
)

// matchCountingLoop recognizes
//
//	for (let i = 0; i < seq.length; <i += 1>) body
//	for (let i = 0, n = seq.length; i < n; <i += 1>) body
//
// where seq is an identifier or this followed by non-computed member
// accesses. Anything else returns nil.
func matchCountingLoop(loop syntax.Node) *CountingLoop {
	init := loop.Field("initializer")
	if init.Type() != "lexical_declaration" || syntax.DeclarationKind(init) != "let" {
		return nil
	}

	decls := syntax.Declarators(init)
	if len(decls) != 1 && len(decls) != 2 {
		return nil
	}

	indexDecl := decls[0]
	name := indexDecl.Field("name")
	if name.Kind() != syntax.KindIdentifier || !syntax.IsNumber(indexDecl.Field("value"), 0) {
		return nil
	}
	index := name.Text()

	test := syntax.ForCondition(loop)
	if test.Type() != "binary_expression" || test.Operator() != "<" {
		return nil
	}
	if !syntax.IsIdent(test.Field("left"), index) {
		return nil
	}

	c := &CountingLoop{
		Loop:      loop,
		IndexDecl: indexDecl,
		Index:     index,
		Test:      test,
		Body:      loop.Field("body"),
	}

	right := test.Field("right")
	if len(decls) == 1 {
		seq, ok := syntax.LengthObject(right)
		if !ok {
			return nil
		}
		c.Sequence = seq
	} else {
		bound := decls[1]
		boundName := bound.Field("name")
		if boundName.Kind() != syntax.KindIdentifier {
			return nil
		}
		seq, ok := syntax.LengthObject(bound.Field("value"))
		if !ok || !syntax.IsIdent(right, boundName.Text()) {
			return nil
		}
		c.BoundDecl = bound
		c.Sequence = seq
	}

	if !syntax.IsSequenceReference(c.Sequence) {
		return nil
	}
	if !isIncrementByOne(syntax.ForIncrement(loop), index) {
		return nil
	}

	return c
}

// isIncrementByOne accepts i++, ++i, i += 1, i = i + 1 and i = 1 + i.
func isIncrementByOne(update syntax.Node, index string) bool {
	switch update.Type() {
	case "update_expression":
		return update.Operator() == "++" && syntax.IsIdent(update.Field("argument"), index)

	case "augmented_assignment_expression":
		return update.Operator() == "+=" &&
			syntax.IsIdent(update.Field("left"), index) &&
			syntax.IsNumber(update.Field("right"), 1)

	case "assignment_expression":
		if !syntax.IsIdent(update.Field("left"), index) {
			return false
		}
		sum := update.Field("right")
		if sum.Type() != "binary_expression" || sum.Operator() != "+" {
			return false
		}
		l, r := sum.Field("left"), sum.Field("right")
		return (syntax.IsIdent(l, index) && syntax.IsNumber(r, 1)) ||
			(syntax.IsNumber(l, 1) && syntax.IsIdent(r, index))

	default:
		return false
	}
}
