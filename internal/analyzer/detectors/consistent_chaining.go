package detectors

import (
	"fmt"

	"jscheck/internal/config"
	"jscheck/internal/models"
	"jscheck/internal/scope"
	"jscheck/internal/syntax"
)

// ConsistentChainingDetector requires every property access of a call chain
// to agree on whether the dot starts a new line.
type ConsistentChainingDetector struct {
	severity     models.Severity
	allowLeading bool
}

func NewConsistentChainingDetector() *ConsistentChainingDetector {
	return NewConsistentChainingDetectorWithConfig(config.DefaultConfig())
}

func NewConsistentChainingDetectorWithConfig(cfg *config.Config) *ConsistentChainingDetector {
	return &ConsistentChainingDetector{
		severity:     cfg.RuleSeverity(models.RuleConsistentChaining),
		allowLeading: cfg.Rules.ConsistentChaining.AllowLeadingPropertyAccess,
	}
}

func (d *ConsistentChainingDetector) Name() string {
	return "Consistent Chaining Detector"
}

func (d *ConsistentChainingDetector) Rule() models.RuleID {
	return models.RuleConsistentChaining
}

func (d *ConsistentChainingDetector) Detect(unit *syntax.Unit, _ *scope.Index) []models.Issue {
	v := &chainingVisitor{
		detector: d,
		unit:     unit,
		seen:     make(map[syntax.Key]bool),
	}
	syntax.Inspect(unit.Root(), v.visit)
	return v.issues
}

type chainingVisitor struct {
	detector *ConsistentChainingDetector
	unit     *syntax.Unit
	seen     map[syntax.Key]bool
	issues   []models.Issue
}

type chainMode int

const (
	modeUnset chainMode = iota
	modeSingle
	modeMulti
)

func isChainLink(n syntax.Node) bool {
	switch n.Kind() {
	case syntax.KindMember, syntax.KindSubscript, syntax.KindCall:
		return true
	}
	return false
}

func (v *chainingVisitor) visit(n syntax.Node) bool {
	switch n.Kind() {
	case syntax.KindMember, syntax.KindSubscript:
	default:
		return true
	}

	root := n
	for parent, ok := chainParent(root); ok; parent, ok = chainParent(root) {
		root = parent
	}
	if v.seen[root.Key()] {
		return true
	}
	v.seen[root.Key()] = true

	v.checkChain(root, chainMembers(root))
	return true
}

// chainParent returns the member, subscript or call a chain continues into.
// A call argument climbs into the call, so a chain passed as an argument
// belongs to the enclosing call and is not checked on its own.
func chainParent(n syntax.Node) (syntax.Node, bool) {
	parent := n.Parent()
	if parent.Type() == "arguments" && parent.Parent().Kind() == syntax.KindCall {
		return parent.Parent(), true
	}
	return parent, isChainLink(parent)
}

// chainMembers lists the non-computed member accesses of a chain, innermost
// first.
func chainMembers(root syntax.Node) []syntax.Node {
	var members []syntax.Node
	for cur := root; !cur.IsNil(); {
		switch cur.Kind() {
		case syntax.KindMember:
			members = append([]syntax.Node{cur}, members...)
			cur = cur.Field("object")
		case syntax.KindSubscript:
			cur = cur.Field("object")
		case syntax.KindCall:
			cur = cur.Field("function")
		default:
			cur = syntax.Node{}
		}
	}
	return members
}

func (v *chainingVisitor) checkChain(root syntax.Node, members []syntax.Node) {
	leading := v.detector.allowLeading
	mode := modeUnset

	for _, m := range members {
		object := m.Field("object")
		dot, ok := dotToken(m)
		if !ok {
			continue
		}

		current := modeSingle
		if dot.StartLine() != object.EndLine() {
			current = modeMulti
		}

		if leading && current == modeSingle && isLeadingObject(object) {
			continue
		}
		leading = false

		if mode == modeUnset {
			mode = current
			continue
		}
		if mode == current {
			continue
		}

		v.report(root, object, dot, mode)
	}
}

func (v *chainingVisitor) report(root, object, dot syntax.Node, mode chainMode) {
	name := estreeName(root)

	var message string
	var fix *models.Fix
	if mode == modeSingle {
		message = fmt.Sprintf("Should not have line breaks between items, in node %s", name)
		fix = &models.Fix{Start: object.End(), End: dot.Start(), Text: ""}
	} else {
		message = fmt.Sprintf("Should have line breaks between items, in node %s", name)
		fix = &models.Fix{Start: object.End(), End: object.End(), Text: "\n"}
	}

	issue := newIssue(models.RuleConsistentChaining, v.detector.severity, v.unit, dot, message)
	issue.Suggestion = "Break every link of the chain the same way"
	issue.Fix = fix
	v.issues = append(v.issues, issue)
}

// dotToken returns the `.` or `?.` token before the property.
func dotToken(member syntax.Node) (syntax.Node, bool) {
	prop := member.Field("property")
	var prev syntax.Node
	for _, c := range member.Children() {
		if c.Equal(prop) {
			break
		}
		prev = c
	}
	switch prev.Type() {
	case ".", "?.", "optional_chain":
		return prev, true
	}
	return syntax.Node{}, false
}

func isLeadingObject(object syntax.Node) bool {
	switch object.Kind() {
	case syntax.KindThis, syntax.KindIdentifier, syntax.KindMember, syntax.KindSubscript, syntax.KindLiteral:
		return true
	}
	return false
}

// estreeName names the chain root the way ESLint users know it.
func estreeName(root syntax.Node) string {
	if root.Kind() == syntax.KindCall {
		return "CallExpression"
	}
	return "MemberExpression"
}
