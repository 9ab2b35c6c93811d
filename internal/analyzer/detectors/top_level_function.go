package detectors

import (
	"fmt"

	"jscheck/internal/config"
	"jscheck/internal/models"
	"jscheck/internal/scope"
	"jscheck/internal/syntax"
)

// TopLevelFunctionDetector reports top-level `const name = () => ...` and
// `const name = function () ...` declarations.
type TopLevelFunctionDetector struct {
	severity models.Severity
}

func NewTopLevelFunctionDetector() *TopLevelFunctionDetector {
	return NewTopLevelFunctionDetectorWithConfig(config.DefaultConfig())
}

func NewTopLevelFunctionDetectorWithConfig(cfg *config.Config) *TopLevelFunctionDetector {
	return &TopLevelFunctionDetector{severity: cfg.RuleSeverity(models.RuleTopLevelFunction)}
}

func (d *TopLevelFunctionDetector) Name() string {
	return "Top-level Function Detector"
}

func (d *TopLevelFunctionDetector) Rule() models.RuleID {
	return models.RuleTopLevelFunction
}

func (d *TopLevelFunctionDetector) Detect(unit *syntax.Unit, _ *scope.Index) []models.Issue {
	var issues []models.Issue

	for _, stmt := range unit.Root().NamedChildren() {
		decl := stmt
		if stmt.Type() == "export_statement" {
			decl = stmt.Field("declaration")
		}
		if decl.Type() != "lexical_declaration" {
			continue
		}
		if issue, ok := d.check(unit, decl); ok {
			issues = append(issues, issue)
		}
	}

	return issues
}

func (d *TopLevelFunctionDetector) check(unit *syntax.Unit, decl syntax.Node) (models.Issue, bool) {
	if syntax.DeclarationKind(decl) != "const" {
		return models.Issue{}, false
	}
	declarators := syntax.Declarators(decl)
	if len(declarators) != 1 {
		return models.Issue{}, false
	}

	name := declarators[0].Field("name")
	fn := declarators[0].Field("value")
	if name.Kind() != syntax.KindIdentifier {
		return models.Issue{}, false
	}

	if !syntax.IsFunctionLike(fn) {
		return models.Issue{}, false
	}

	body := syntax.Body(fn)
	if body.Kind() != syntax.KindBlock && name.StartLine() == body.EndLine() {
		return models.Issue{}, false
	}

	issue := newIssue(models.RuleTopLevelFunction, d.severity, unit, decl,
		"Top-level functions should be declared with function keyword")
	issue.Line, issue.Column = name.StartLine(), name.StartColumn()
	issue.EndLine, issue.EndColumn = body.StartLine(), body.StartColumn()

	switch {
	case fn.Kind() == syntax.KindArrow && bindsFunctionContext(body):
		issue.Suggestion = "Declare with the function keyword; the arrow reads this, arguments, super or new.target, so the rewrite is left to you"
		return issue, true
	case syntax.IsGenerator(fn):
		issue.Suggestion = "Declare as function* " + name.Text() + "; generators are rewritten by hand"
		return issue, true
	case !syntax.FunctionName(fn).IsNil():
		issue.Suggestion = "Declare with the function keyword; the inner name " + syntax.FunctionName(fn).Text() + " differs from " + name.Text()
		return issue, true
	}

	text := functionDeclarationText(name, fn, body)
	issue.Suggestion = "Rewrite as: " + firstLine(text)
	issue.Fix = &models.Fix{Start: decl.Start(), End: decl.End(), Text: text}
	return issue, true
}

func functionDeclarationText(name, fn, body syntax.Node) string {
	async := ""
	if syntax.IsAsync(fn) {
		async = "async "
	}

	args := ""
	if params := syntax.Params(fn); len(params) > 0 {
		unit := fn.Unit()
		args = unit.Slice(syntax.Range{Start: params[0].Start(), End: params[len(params)-1].End()})
	}

	bodyText := body.Text()
	if body.Kind() != syntax.KindBlock {
		bodyText = fmt.Sprintf("{\n  return %s\n}", bodyText)
	}

	return fmt.Sprintf("%sfunction %s(%s) %s", async, name.Text(), args, bodyText)
}

// bindsFunctionContext reports whether an arrow body reads bindings that an
// ordinary function would rebind. Nested non-arrow functions and class bodies
// have their own and are skipped.
func bindsFunctionContext(body syntax.Node) bool {
	found := false
	syntax.Inspect(body, func(n syntax.Node) bool {
		if found {
			return false
		}
		switch n.Kind() {
		case syntax.KindFunction, syntax.KindClassBody:
			return false
		case syntax.KindThis:
			found = true
		case syntax.KindIdentifier:
			found = n.Text() == "arguments"
		}
		switch n.Type() {
		case "super", "meta_property":
			found = true
		}
		return !found
	})
	return found
}
