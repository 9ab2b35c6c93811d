package syntax

import (
	"strconv"
	"strings"
)

// Unparen strips any number of enclosing parentheses.
func Unparen(n Node) Node {
	for n.Kind() == KindParenthesized {
		n = n.FirstNamedChild()
	}
	return n
}

// IsIdent reports whether n is the identifier name.
func IsIdent(n Node, name string) bool {
	return n.Kind() == KindIdentifier && n.Text() == name
}

// NumberValue returns the numeric value of a number literal. BigInt literals
// are not numbers.
func NumberValue(n Node) (float64, bool) {
	if n.Type() != "number" {
		return 0, false
	}
	text := strings.ReplaceAll(n.Text(), "_", "")
	if strings.HasSuffix(text, "n") {
		return 0, false
	}
	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0o") || strings.HasPrefix(lower, "0b") {
		v, err := strconv.ParseInt(lower, 0, 64)
		if err != nil {
			return 0, false
		}
		return float64(v), true
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// IsNumber reports whether n is a number literal with the given value.
func IsNumber(n Node, want float64) bool {
	v, ok := NumberValue(n)
	return ok && v == want
}

// IsOptionalMember reports whether a member or call expression uses ?. at
// its own level.
func IsOptionalMember(n Node) bool {
	for _, c := range n.Children() {
		if c.Type() == "optional_chain" || c.Type() == "?." {
			return true
		}
	}
	return false
}

// PropertyName returns the property name of a non-computed, non-optional
// member access, or "" otherwise.
func PropertyName(n Node) string {
	if n.Kind() != KindMember || IsOptionalMember(n) {
		return ""
	}
	prop := n.Field("property")
	if prop.Type() != "property_identifier" {
		return ""
	}
	return prop.Text()
}

// IsSimpleReference reports whether n is an identifier, a literal, or a chain
// of non-computed member accesses over simple references.
func IsSimpleReference(n Node) bool {
	switch n.Kind() {
	case KindIdentifier, KindLiteral:
		return true
	case KindMember:
		return PropertyName(n) != "" && IsSimpleReference(n.Field("object"))
	default:
		return false
	}
}

// IsSequenceReference reports whether n is an identifier or this, followed by
// any number of non-computed member accesses.
func IsSequenceReference(n Node) bool {
	switch n.Kind() {
	case KindIdentifier, KindThis:
		return true
	case KindMember:
		return PropertyName(n) != "" && IsSequenceReference(n.Field("object"))
	default:
		return false
	}
}

// RootObject returns the innermost object of a member chain.
func RootObject(n Node) Node {
	for n.Kind() == KindMember {
		n = n.Field("object")
	}
	return n
}

// LengthObject returns obj for an expression of the form obj.length.
func LengthObject(n Node) (Node, bool) {
	if PropertyName(n) != "length" {
		return Node{}, false
	}
	return n.Field("object"), true
}

// FirstLeaf returns the first token of n.
func FirstLeaf(n Node) Node {
	for {
		children := n.Children()
		if len(children) == 0 {
			return n
		}
		n = children[0]
	}
}

// IsFunctionLike reports whether n introduces a function body.
func IsFunctionLike(n Node) bool {
	k := n.Kind()
	return k == KindFunction || k == KindArrow
}

// Params returns the parameter nodes of a function-like node.
func Params(fn Node) []Node {
	if p := fn.Field("parameter"); !p.IsNil() {
		return []Node{p}
	}
	return fn.Field("parameters").NamedChildren()
}

// Body returns the body of a function-like node: a statement block, or an
// expression for concise arrow functions.
func Body(fn Node) Node {
	return fn.Field("body")
}

// FunctionName returns the declared name of a function, or a nil Node.
func FunctionName(fn Node) Node {
	if fn.Type() == "method_definition" {
		return Node{}
	}
	return fn.Field("name")
}

// IsAsync reports whether the function is declared async.
func IsAsync(fn Node) bool {
	return fn.HasToken("async")
}

// IsGenerator reports whether the function is a generator.
func IsGenerator(fn Node) bool {
	return strings.HasPrefix(fn.Type(), "generator_") || fn.HasToken("*")
}

// DeclarationKind returns "var", "let" or "const" for a declaration node.
func DeclarationKind(decl Node) string {
	for _, kind := range []string{"let", "const", "var"} {
		if decl.HasToken(kind) {
			return kind
		}
	}
	return ""
}

// Declarators returns the variable_declarator children of a declaration.
func Declarators(decl Node) []Node {
	var out []Node
	for _, c := range decl.NamedChildren() {
		if c.Kind() == KindDeclarator {
			out = append(out, c)
		}
	}
	return out
}

// ForCondition returns the test expression of a for statement, unwrapping
// the expression statement older grammars put around it.
func ForCondition(loop Node) Node {
	cond := loop.Field("condition")
	switch cond.Kind() {
	case KindExpressionStatement:
		return cond.FirstNamedChild()
	case KindOther:
		if cond.Type() == "empty_statement" {
			return Node{}
		}
	}
	return cond
}

// ForIncrement returns the update expression of a for statement.
func ForIncrement(loop Node) Node {
	if inc := loop.Field("increment"); !inc.IsNil() {
		return inc
	}
	return loop.Field("update")
}

// IsForIn reports whether a for_in_statement iterates keys (for...in)
// rather than values (for...of).
func IsForIn(loop Node) bool {
	return loop.Kind() == KindForInLoop && loop.HasToken("in")
}

// IsStatement reports whether n is a statement or declaration boundary.
func IsStatement(n Node) bool {
	t := n.Type()
	return strings.HasSuffix(t, "_statement") || strings.HasSuffix(t, "_declaration") || t == "statement_block" || t == "program"
}

// IsAssignee reports whether n, or an expression enclosing it within the same
// statement, is the target of an assignment, update or declaration.
func IsAssignee(n Node) bool {
	for node := n; !node.IsNil() && !IsStatement(node); {
		parent := node.Parent()
		if parent.IsNil() {
			return false
		}
		switch parent.Type() {
		case "assignment_expression", "augmented_assignment_expression", "assignment_pattern", "object_assignment_pattern":
			if parent.Field("left").Equal(node) {
				return true
			}
		case "variable_declarator":
			if parent.Field("name").Equal(node) {
				return true
			}
		case "update_expression":
			if parent.Field("argument").Equal(node) {
				return true
			}
		case "for_in_statement":
			if parent.Field("left").Equal(node) {
				return true
			}
		}
		node = parent
	}
	return false
}

// SameLine reports whether a ends on the line where b starts.
func SameLine(a, b Node) bool {
	return a.EndLine() == b.StartLine()
}
