package forof

import (
	"jscheck/internal/scope"
	"jscheck/internal/syntax"
)

// contextState tracks whether every this expression of a target callback can
// be replaced by the captured context. It only moves forward: none, then
// safe or unsafe; unsafe is absorbing.
type contextState int

const (
	contextNone contextState = iota
	contextSafe
	contextUnsafe
)

func (s contextState) String() string {
	switch s {
	case contextNone:
		return "none"
	case contextSafe:
		return "safe"
	default:
		return "unsafe"
	}
}

// observe folds one more this reference into the state.
func (s contextState) observe(stable bool) contextState {
	if s == contextUnsafe || !stable {
		return contextUnsafe
	}
	return contextSafe
}

// frame is one entry of the function stack. Class bodies also push a frame
// because this inside field initializers is bound by the class.
type frame struct {
	upper *frame
	node  syntax.Node
	arrow bool

	isTarget bool
	cand     *CallbackIteration

	returns     []syntax.Node
	contextRefs []syntax.Node
	ctx         contextState

	// Gates found while walking the callback body; any of them drops the fix.
	usesArguments bool
	declaresVar   bool
	returnInLoop  bool
	complexReturn bool
}

func (f *frame) contextBinding() *scope.Binding {
	if f.cand == nil {
		return nil
	}
	return f.cand.ContextBinding
}

// contextOwner returns the closest frame that binds this, skipping arrows.
func (f *frame) contextOwner() *frame {
	cur := f
	for cur != nil && cur.arrow {
		cur = cur.upper
	}
	return cur
}

// insideReturn reports whether n lies within a recorded return site.
func (f *frame) insideReturn(n syntax.Node) bool {
	for _, r := range f.returns {
		if r.Contains(n) {
			return true
		}
	}
	return false
}

// stack is the explicit frame stack owned by the traversal.
type stack struct {
	top *frame
}

func (s *stack) push(f *frame) {
	f.upper = s.top
	s.top = f
}

func (s *stack) pop() *frame {
	f := s.top
	if f != nil {
		s.top = f.upper
	}
	return f
}
