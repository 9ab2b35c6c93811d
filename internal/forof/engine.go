package forof

import (
	"log/slog"
	"sort"

	"jscheck/internal/scope"
	"jscheck/internal/syntax"
)

// Options tune the engine.
type Options struct {
	// ReceiverAsContext lets the forEach receiver stand in for this when no
	// thisArg is passed. When false only an explicit thisArg is captured.
	ReceiverAsContext bool

	Logger *slog.Logger
}

// Engine runs the canonicalization analysis over one unit.
type Engine struct {
	opts     Options
	unit     *syntax.Unit
	idx      *scope.Index
	frames   stack
	findings []Finding
}

// Run walks the unit once and returns its findings ordered by position.
func Run(unit *syntax.Unit, idx *scope.Index, opts Options) []Finding {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	e := &Engine{opts: opts, unit: unit, idx: idx}

	d := &syntax.Dispatcher{
		OnEnter: map[syntax.Kind]syntax.Handler{
			syntax.KindFunction:    e.enterFunction,
			syntax.KindArrow:       e.enterFunction,
			syntax.KindClassBody:   e.enterClassBody,
			syntax.KindReturn:      e.onReturn,
			syntax.KindThis:        e.onThis,
			syntax.KindIdentifier:  e.onIdentifier,
			syntax.KindDeclaration: e.onDeclaration,
			syntax.KindForInLoop:   e.onForIn,
		},
		OnExit: map[syntax.Kind]syntax.Handler{
			syntax.KindFunction:  e.exitFunction,
			syntax.KindArrow:     e.exitFunction,
			syntax.KindClassBody: e.exitFunction,
			syntax.KindForLoop:   e.exitForLoop,
		},
	}
	syntax.Walk(unit.Root(), d)

	sort.SliceStable(e.findings, func(i, j int) bool {
		return e.findings[i].Node.Start() < e.findings[j].Node.Start()
	})
	return e.findings
}

func (e *Engine) enterFunction(n syntax.Node) {
	f := &frame{node: n, arrow: n.Kind() == syntax.KindArrow}
	if c := matchCallback(n, e.idx, e.opts.ReceiverAsContext); c != nil {
		f.isTarget = true
		f.cand = c
	}
	e.frames.push(f)
}

func (e *Engine) enterClassBody(n syntax.Node) {
	e.frames.push(&frame{node: n})
}

func (e *Engine) exitFunction(syntax.Node) {
	f := e.frames.pop()
	if f == nil || !f.isTarget {
		return
	}
	e.evaluate(f.cand, f)
}

func (e *Engine) onReturn(n syntax.Node) {
	f := e.frames.top
	if f == nil || !f.isTarget {
		return
	}
	f.returns = append(f.returns, n)
	if returnInsideLoop(n, f.node) {
		f.returnInLoop = true
	}
	if !hasSimpleReturnValue(n) {
		f.complexReturn = true
	}
}

func (e *Engine) onThis(n syntax.Node) {
	f := e.frames.top.contextOwner()
	if f == nil || !f.isTarget || f.insideReturn(n) {
		return
	}
	f.contextRefs = append(f.contextRefs, n)
	f.ctx = f.ctx.observe(contextStableAt(n, f.contextBinding(), e.idx))
}

func (e *Engine) onIdentifier(n syntax.Node) {
	if n.Text() != "arguments" {
		return
	}
	if f := e.frames.top.contextOwner(); f != nil && f.isTarget {
		f.usesArguments = true
	}
}

func (e *Engine) onDeclaration(n syntax.Node) {
	f := e.frames.top
	if f != nil && f.isTarget && syntax.DeclarationKind(n) == "var" {
		f.declaresVar = true
	}
}

func (e *Engine) onForIn(n syntax.Node) {
	if !syntax.IsForIn(n) {
		return
	}
	e.findings = append(e.findings, Finding{Pattern: PatternForIn, Node: n, Reason: reasonForIn})
}

func (e *Engine) exitForLoop(n syntax.Node) {
	if c := matchCountingLoop(n); c != nil {
		e.evaluate(c, nil)
	}
}

// evaluate runs the safety analysis and the planner for one candidate.
func (e *Engine) evaluate(c Candidate, f *frame) {
	switch c := c.(type) {
	case *CountingLoop:
		e.evaluateLoop(c)
	case *CallbackIteration:
		e.evaluateCallback(f)
	}
}

func (e *Engine) evaluateLoop(c *CountingLoop) {
	v, reads, reason := indexUses(c, e.idx)
	if v == verdictReject {
		return
	}

	finding := Finding{Pattern: PatternCountingLoop, Node: c.Loop, Reason: reason}
	if v == verdictFixable {
		switch {
		case !boundOnlyInTest(c, e.idx):
			finding.Reason = reasonBoundEscapes
		case !sequenceStable(c, e.idx):
			finding.Reason = reasonSequenceWritten
		case !lengthFixed(c):
			finding.Reason = reasonSequenceResized
		default:
			finding.Fix, finding.Reason = planCountingLoop(c, reads)
		}
	}

	e.report(finding)
}

func (e *Engine) evaluateCallback(f *frame) {
	finding := Finding{Pattern: PatternCallback, Node: f.cand.Statement}

	if reason := callbackBlocker(f); reason != "" {
		finding.Reason = reason
		e.report(finding)
		return
	}

	fix, err := planCallback(f)
	if err != nil {
		e.opts.Logger.Error("internal error", "rule", "prefer-for-of", "file", e.unit.Path,
			"line", f.cand.Statement.StartLine(), "context", f.ctx.String(), "error", err)
		finding.Reason = reasonInternal
	}
	finding.Fix = fix
	e.report(finding)
}

func (e *Engine) report(f Finding) {
	if f.Fix == nil {
		e.opts.Logger.Debug("reported without fix", "file", e.unit.Path,
			"line", f.Node.StartLine(), "pattern", string(f.Pattern), "reason", f.Reason)
	}
	e.findings = append(e.findings, f)
}
