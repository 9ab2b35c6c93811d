package detectors

import (
	"strings"

	"jscheck/internal/models"
	"jscheck/internal/syntax"
)

// newIssue builds an issue spanning node, with the first source line of the
// node as snippet.
func newIssue(rule models.RuleID, sev models.Severity, unit *syntax.Unit, node syntax.Node, message string) models.Issue {
	return models.Issue{
		Rule:        rule,
		Severity:    sev,
		File:        unit.Path,
		Line:        node.StartLine(),
		Column:      node.StartColumn(),
		EndLine:     node.EndLine(),
		EndColumn:   node.EndColumn(),
		Message:     message,
		CodeSnippet: snippet(unit, node),
	}
}

// snippet returns the trimmed source line on which node starts.
func snippet(unit *syntax.Unit, node syntax.Node) string {
	src := unit.Source
	start := node.Start()
	for start > 0 && src[start-1] != '\n' {
		start--
	}
	end := node.Start()
	for end < len(src) && src[end] != '\n' {
		end++
	}
	return strings.TrimSpace(string(src[start:end]))
}
