package detectors

import (
	"jscheck/internal/config"
	"jscheck/internal/models"
	"jscheck/internal/scope"
	"jscheck/internal/syntax"
)

// IfNewlineDetector requires a line break between an if condition and a
// consequent that is not a block.
type IfNewlineDetector struct {
	severity models.Severity
}

func NewIfNewlineDetector() *IfNewlineDetector {
	return NewIfNewlineDetectorWithConfig(config.DefaultConfig())
}

func NewIfNewlineDetectorWithConfig(cfg *config.Config) *IfNewlineDetector {
	return &IfNewlineDetector{severity: cfg.RuleSeverity(models.RuleIfNewline)}
}

func (d *IfNewlineDetector) Name() string {
	return "If Newline Detector"
}

func (d *IfNewlineDetector) Rule() models.RuleID {
	return models.RuleIfNewline
}

func (d *IfNewlineDetector) Detect(unit *syntax.Unit, _ *scope.Index) []models.Issue {
	var issues []models.Issue

	syntax.Inspect(unit.Root(), func(n syntax.Node) bool {
		if n.Kind() != syntax.KindIf {
			return true
		}
		cond, cons := n.Field("condition"), n.Field("consequence")
		if cond.IsNil() || cons.IsNil() || cons.Kind() == syntax.KindBlock {
			return true
		}
		if !syntax.SameLine(cond, cons) {
			return true
		}

		issue := newIssue(models.RuleIfNewline, d.severity, unit, n, "Expect newline after if")
		issue.Line, issue.Column = cond.EndLine(), cond.EndColumn()
		issue.EndLine, issue.EndColumn = cons.StartLine(), cons.StartColumn()
		issue.Suggestion = "Move the statement after the condition to its own line"
		issue.Fix = &models.Fix{Start: cons.Start(), End: cons.Start(), Text: "\n"}
		issues = append(issues, issue)
		return true
	})

	return issues
}
