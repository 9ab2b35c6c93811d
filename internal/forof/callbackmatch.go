package forof

import (
	"jscheck/internal/scope"
	"jscheck/internal/syntax"
)

// matchCallback reports whether fn is the callback of a discarded
// receiver.forEach(fn, ...) statement that can be unrolled: one parameter
// without default or rest, and no reference to its own name.
func matchCallback(fn syntax.Node, idx *scope.Index, receiverAsContext bool) *CallbackIteration {
	args := fn.Parent()
	if args.Type() != "arguments" {
		return nil
	}
	list := args.NamedChildren()
	if len(list) == 0 || !list[0].Equal(fn) {
		return nil
	}

	call := args.Parent()
	if call.Kind() != syntax.KindCall || syntax.IsOptionalMember(call) {
		return nil
	}
	callee := call.Field("function")
	if syntax.PropertyName(callee) != "forEach" {
		return nil
	}
	stmt := call.Parent()
	if stmt.Kind() != syntax.KindExpressionStatement {
		return nil
	}

	params := syntax.Params(fn)
	if len(params) != 1 {
		return nil
	}
	switch params[0].Type() {
	case "assignment_pattern", "rest_pattern":
		return nil
	}

	if isCalledRecursively(fn, idx) {
		return nil
	}

	c := &CallbackIteration{
		Fn:        fn,
		Call:      call,
		Statement: stmt,
		Callee:    callee,
		Receiver:  callee.Field("object"),
		Param:     params[0],
	}

	var ctx syntax.Node
	switch {
	case len(list) >= 2:
		ctx = list[1]
	case receiverAsContext:
		ctx = c.Receiver
	}
	if !ctx.IsNil() && syntax.IsSimpleReference(ctx) {
		c.Context = ctx
		c.ContextBinding = contextBinding(ctx, idx)
	}

	return c
}

// isCalledRecursively is conservative: any reference to the function's own
// name counts.
func isCalledRecursively(fn syntax.Node, idx *scope.Index) bool {
	b := idx.FunctionNameBinding(fn)
	return b != nil && len(b.References) > 0
}

// contextBinding resolves the root identifier of a simple reference at the
// call site. Literals and undeclared globals have no binding.
func contextBinding(ctx syntax.Node, idx *scope.Index) *scope.Binding {
	root := syntax.RootObject(ctx)
	if root.Kind() != syntax.KindIdentifier {
		return nil
	}
	ref := idx.ReferenceAt(root)
	if ref == nil {
		return nil
	}
	return ref.Binding
}
