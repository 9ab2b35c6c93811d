package forof

import (
	"strings"

	"jscheck/internal/scope"
	"jscheck/internal/syntax"
)

// verdict is the outcome of the safety analysis for one candidate.
type verdict int

const (
	verdictReject     verdict = iota // no report
	verdictReportOnly                // report without fix
	verdictFixable
)

// Reasons attached to findings without a fix.
const (
	reasonForIn           = "for...in iterates keys; no equivalent for...of rewrite"
	reasonIndexWritten    = "the index is used to write into the sequence"
	reasonNoElementDecl   = "the loop body does not start with an element declaration"
	reasonIndexReused     = "the index is used beyond the element declaration"
	reasonBoundEscapes    = "the cached length is used outside the loop test"
	reasonSequenceWritten = "the sequence is reassigned inside the loop"
	reasonSequenceResized = "the sequence may change length while the cached bound stays fixed"
	reasonNameCollision   = "the element name is used in the sequence expression"
	reasonContextUnsafe   = "this cannot be replaced by a stable context reference"
	reasonMultilineCallee = "the forEach callee spans multiple lines"
	reasonAsyncCallback   = "async or generator callbacks change meaning inside a loop"
	reasonArguments       = "the callback reads its own arguments object"
	reasonVarDeclaration  = "a var declaration would escape the loop body"
	reasonReturnInLoop    = "a return inside a nested loop cannot become continue"
	reasonReturnValue     = "a returned expression may have side effects"
	reasonInternal        = "internal error composing the fix"
)

// indexUses classifies the references of the induction variable inside the
// loop body. Any use other than seq[i] rejects the candidate; a write through
// seq[i] keeps the report but drops the fix. reads holds the subscript
// expressions of the remaining element reads.
func indexUses(c *CountingLoop, idx *scope.Index) (v verdict, reads []syntax.Node, reason string) {
	bindings := idx.Declared(c.IndexDecl)
	if len(bindings) == 0 {
		return verdictReject, nil, ""
	}

	seqText := c.SequenceText()
	writes := 0
	for _, ref := range bindings[0].References {
		id := ref.Ident
		if !c.Body.Contains(id) {
			continue
		}
		access := id.Parent()
		if access.Kind() != syntax.KindSubscript ||
			syntax.IsOptionalMember(access) ||
			!access.Field("index").Equal(id) ||
			access.Field("object").Text() != seqText {
			return verdictReject, nil, ""
		}
		if syntax.IsAssignee(access) {
			writes++
			continue
		}
		reads = append(reads, access)
	}

	if writes > 0 {
		return verdictReportOnly, reads, reasonIndexWritten
	}
	return verdictFixable, reads, ""
}

// boundOnlyInTest reports whether a cached length is only initialized and
// compared in the loop test.
func boundOnlyInTest(c *CountingLoop, idx *scope.Index) bool {
	if c.BoundDecl.IsNil() {
		return true
	}
	bindings := idx.Declared(c.BoundDecl)
	if len(bindings) == 0 {
		return false
	}
	for _, ref := range bindings[0].References {
		if ref.IsInit() || c.Test.Contains(ref.Ident) {
			continue
		}
		return false
	}
	return true
}

// sequenceStable reports whether the loop body never reassigns the sequence
// or any prefix of its member chain.
func sequenceStable(c *CountingLoop, idx *scope.Index) bool {
	seqText := c.SequenceText()
	root := syntax.RootObject(c.Sequence)

	var rootBinding *scope.Binding
	rootName := ""
	if root.Kind() == syntax.KindIdentifier {
		rootName = root.Text()
		if ref := idx.ReferenceAt(root); ref != nil {
			rootBinding = ref.Binding
		}
	}

	stable := true
	syntax.Inspect(c.Body, func(n syntax.Node) bool {
		if !stable {
			return false
		}
		switch n.Type() {
		case "identifier":
			if n.Text() != rootName {
				return true
			}
			if ref := idx.ReferenceAt(n); ref != nil && ref.IsWrite() && ref.Binding == rootBinding {
				stable = false
			}
		case "assignment_expression", "augmented_assignment_expression":
			left := n.Field("left").Text()
			if left == seqText || strings.HasPrefix(seqText, left+".") {
				stable = false
			}
		}
		return true
	})
	return stable
}

// resizeMethods change an array's length in place.
var resizeMethods = map[string]bool{
	"push":    true,
	"pop":     true,
	"shift":   true,
	"unshift": true,
	"splice":  true,
}

// lengthFixed reports whether the body leaves the sequence length alone when
// the loop compares against a cached bound. for...of follows the live length,
// so a resizing method call on the sequence, a write to its length, or the
// sequence passed as a call argument all count as resizing.
func lengthFixed(c *CountingLoop) bool {
	if c.BoundDecl.IsNil() {
		return true
	}
	seqText := c.SequenceText()

	fixed := true
	syntax.Inspect(c.Body, func(n syntax.Node) bool {
		if !fixed {
			return false
		}
		switch {
		case n.Kind() == syntax.KindCall || n.Type() == "new_expression":
			callee := n.Field("function")
			if callee.IsNil() {
				callee = n.Field("constructor")
			}
			if callee.Kind() == syntax.KindMember && callee.Field("object").Text() == seqText && resizeMethods[syntax.PropertyName(callee)] {
				fixed = false
			}
			for _, arg := range n.Field("arguments").NamedChildren() {
				if syntax.Unparen(arg).Text() == seqText {
					fixed = false
				}
			}
		case n.Kind() == syntax.KindMember:
			if syntax.PropertyName(n) == "length" && n.Field("object").Text() == seqText && syntax.IsAssignee(n) {
				fixed = false
			}
		}
		return true
	})
	return fixed
}

// patternNames returns the identifiers bound by a declaration pattern.
func patternNames(p syntax.Node) []string {
	var names []string
	syntax.Inspect(p, func(n syntax.Node) bool {
		switch n.Type() {
		case "identifier", "shorthand_property_identifier_pattern":
			if !isDefaultValue(n, p) {
				names = append(names, n.Text())
			}
		}
		return true
	})
	return names
}

// isDefaultValue reports whether n sits in the default value of a pattern
// element rather than in a binding position.
func isDefaultValue(n, pattern syntax.Node) bool {
	for cur := n; !cur.Equal(pattern) && !cur.IsNil(); cur = cur.Parent() {
		parent := cur.Parent()
		switch parent.Type() {
		case "assignment_pattern", "object_assignment_pattern":
			if parent.Field("right").Equal(cur) {
				return true
			}
		case "pair_pattern":
			if parent.Field("key").Equal(cur) {
				return true
			}
		}
	}
	return false
}

// mentionsAny reports whether expr contains an identifier named in names.
func mentionsAny(expr syntax.Node, names []string) bool {
	found := false
	syntax.Inspect(expr, func(n syntax.Node) bool {
		if found {
			return false
		}
		if n.Kind() == syntax.KindIdentifier {
			for _, name := range names {
				if n.Text() == name {
					found = true
				}
			}
		}
		return true
	})
	return found
}

// contextStableAt reports whether the captured context binding is still what
// its name resolves to at site.
func contextStableAt(site syntax.Node, b *scope.Binding, idx *scope.Index) bool {
	if b == nil {
		return false
	}
	return idx.Lookup(idx.ScopeAt(site), b.Name) == b
}

// isLoopNode reports whether a continue statement at n would bind to n.
func isLoopNode(n syntax.Node) bool {
	switch n.Kind() {
	case syntax.KindForLoop, syntax.KindForInLoop, syntax.KindWhileLoop:
		return true
	}
	return false
}

// returnInsideLoop reports whether a loop lies between ret and fn.
func returnInsideLoop(ret, fn syntax.Node) bool {
	for cur := ret.Parent(); !cur.IsNil() && !cur.Equal(fn); cur = cur.Parent() {
		if isLoopNode(cur) {
			return true
		}
	}
	return false
}

// hasSimpleReturnValue reports whether dropping the returned expression is
// free of side effects.
func hasSimpleReturnValue(ret syntax.Node) bool {
	arg := ret.FirstNamedChild()
	if arg.IsNil() {
		return true
	}
	arg = syntax.Unparen(arg)
	return arg.Kind() == syntax.KindThis || syntax.IsSimpleReference(arg)
}

// callbackBlocker returns the reason a target callback cannot be fixed, or
// "" if the walk found nothing that blocks the rewrite.
func callbackBlocker(f *frame) string {
	c := f.cand
	switch {
	case c.Callee.StartLine() != c.Callee.EndLine():
		return reasonMultilineCallee
	case syntax.IsAsync(c.Fn) || syntax.IsGenerator(c.Fn):
		return reasonAsyncCallback
	case f.usesArguments:
		return reasonArguments
	case f.declaresVar:
		return reasonVarDeclaration
	case f.returnInLoop:
		return reasonReturnInLoop
	case f.complexReturn:
		return reasonReturnValue
	case f.ctx == contextUnsafe:
		return reasonContextUnsafe
	case mentionsAny(c.Receiver, patternNames(c.Param)):
		return reasonNameCollision
	}
	return ""
}
