package forof

import (
	"jscheck/internal/scope"
	"jscheck/internal/syntax"
)

// Candidate is an iteration pattern produced by a matcher. It is either a
// *CountingLoop or a *CallbackIteration.
type Candidate interface {
	candidate()
}

// CountingLoop is a matched for statement over seq.length.
type CountingLoop struct {
	Loop      syntax.Node
	IndexDecl syntax.Node // declarator of the induction variable
	BoundDecl syntax.Node // declarator caching the length, if any
	Index     string
	Sequence  syntax.Node
	Test      syntax.Node
	Body      syntax.Node
}

func (*CountingLoop) candidate() {}

// SequenceText is the source text of the iterated sequence.
func (c *CountingLoop) SequenceText() string {
	return c.Sequence.Text()
}

// CallbackIteration is a function passed as the first argument of a
// discarded <receiver>.forEach(...) call.
type CallbackIteration struct {
	Fn        syntax.Node
	Call      syntax.Node
	Statement syntax.Node
	Callee    syntax.Node
	Receiver  syntax.Node
	Param     syntax.Node

	// Context is the simple reference a this expression may be replaced
	// with, and ContextBinding its resolved root binding. Both may be nil.
	Context        syntax.Node
	ContextBinding *scope.Binding
}

func (*CallbackIteration) candidate() {}

// Proposal is the single replacement proposed for a candidate.
type Proposal struct {
	Start int
	End   int
	Text  string
}

// Pattern names the surface pattern of a finding.
type Pattern string

const (
	PatternCountingLoop Pattern = "counting-loop"
	PatternCallback     Pattern = "for-each"
	PatternForIn        Pattern = "for-in"
)

// Finding is one report: the node to flag and an optional fix. Reason
// explains a missing fix.
type Finding struct {
	Pattern Pattern
	Node    syntax.Node
	Fix     *Proposal
	Reason  string
}
