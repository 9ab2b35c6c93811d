package forof

import (
	"fmt"

	"jscheck/internal/patch"
	"jscheck/internal/syntax"
)

// elementDeclaration finds `let|const x = seq[i];` as the first statement of
// the loop body and returns the declaration and its declarator.
func elementDeclaration(c *CountingLoop) (decl, declarator syntax.Node, ok bool) {
	if c.Body.Kind() != syntax.KindBlock {
		return syntax.Node{}, syntax.Node{}, false
	}
	stmts := c.Body.NamedChildren()
	if len(stmts) == 0 {
		return syntax.Node{}, syntax.Node{}, false
	}

	decl = stmts[0]
	if decl.Type() != "lexical_declaration" {
		return syntax.Node{}, syntax.Node{}, false
	}
	declarators := syntax.Declarators(decl)
	if len(declarators) != 1 {
		return syntax.Node{}, syntax.Node{}, false
	}

	declarator = declarators[0]
	value := declarator.Field("value")
	if value.Kind() != syntax.KindSubscript || syntax.IsOptionalMember(value) {
		return syntax.Node{}, syntax.Node{}, false
	}
	if !syntax.IsIdent(value.Field("index"), c.Index) || value.Field("object").Text() != c.SequenceText() {
		return syntax.Node{}, syntax.Node{}, false
	}

	return decl, declarator, true
}

// planCountingLoop replaces the loop header through the element declaration
// with a for...of header, leaving the rest of the body untouched.
func planCountingLoop(c *CountingLoop, reads []syntax.Node) (*Proposal, string) {
	decl, declarator, ok := elementDeclaration(c)
	if !ok {
		return nil, reasonNoElementDecl
	}
	if len(reads) != 1 || !reads[0].Equal(declarator.Field("value")) {
		return nil, reasonIndexReused
	}

	name := declarator.Field("name")
	root := syntax.RootObject(c.Sequence)
	if root.Kind() == syntax.KindIdentifier && mentionsAny(root, patternNames(name)) {
		return nil, reasonNameCollision
	}

	return &Proposal{
		Start: c.Loop.Start(),
		End:   decl.End(),
		Text:  fmt.Sprintf("for (let %s of %s) {", name.Text(), c.SequenceText()),
	}, ""
}

// planCallback rebuilds the forEach statement as a for...of loop. Returns
// become continue statements and recorded this expressions become the
// captured context, both spliced into the body text.
func planCallback(f *frame) (*Proposal, error) {
	c := f.cand
	body := syntax.Body(c.Fn)

	b := patch.NewBuilder(body.Start())
	for _, ret := range f.returns {
		b.Replace(ret.Start(), ret.End(), "continue;")
	}
	if len(f.contextRefs) > 0 {
		contextText := c.Context.Text()
		for _, ref := range f.contextRefs {
			b.Replace(ref.Start(), ref.End(), contextText)
		}
	}

	bodyText, err := b.Apply(body.Text())
	if err != nil {
		return nil, fmt.Errorf("compose callback body: %w", err)
	}

	semi := ""
	if body.Kind() != syntax.KindBlock {
		semi = ";"
		if startsAmbiguously(body) {
			bodyText = "(" + bodyText + ")"
		}
	}

	return &Proposal{
		Start: c.Statement.Start(),
		End:   c.Statement.End(),
		Text:  fmt.Sprintf("for (let %s of %s) %s%s", c.Param.Text(), c.Receiver.Text(), bodyText, semi),
	}, nil
}

// startsAmbiguously reports whether an expression would be read as a
// declaration or block if it opened a statement.
func startsAmbiguously(expr syntax.Node) bool {
	first := syntax.FirstLeaf(expr)
	switch first.Type() {
	case "function", "class", "async", "{":
		return true
	}
	return first.Text() == "let"
}
