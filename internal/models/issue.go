package models

import (
	"fmt"
	"strings"
)

type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity accepts the lower or upper case severity names.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW":
		return SeverityLow, nil
	case "MEDIUM":
		return SeverityMedium, nil
	case "HIGH":
		return SeverityHigh, nil
	case "CRITICAL":
		return SeverityCritical, nil
	default:
		return SeverityLow, fmt.Errorf("unknown severity %q", s)
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type RuleID string

const (
	RulePreferForOf        RuleID = "prefer-for-of"
	RuleIfNewline          RuleID = "if-newline"
	RuleTopLevelFunction   RuleID = "top-level-function"
	RuleConsistentChaining RuleID = "consistent-chaining"
)

// AllRules lists every rule in registration order.
var AllRules = []RuleID{
	RulePreferForOf,
	RuleIfNewline,
	RuleTopLevelFunction,
	RuleConsistentChaining,
}

// Fix is a single contiguous replacement in absolute byte offsets.
type Fix struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

type Issue struct {
	Rule        RuleID   `json:"rule"`
	Severity    Severity `json:"severity"`
	File        string   `json:"file"`
	Line        int      `json:"line"`
	Column      int      `json:"column"`
	EndLine     int      `json:"end_line"`
	EndColumn   int      `json:"end_column"`
	Message     string   `json:"message"`
	Suggestion  string   `json:"suggestion,omitempty"`
	CodeSnippet string   `json:"code_snippet,omitempty"`
	Fix         *Fix     `json:"fix,omitempty"`
}

// Fixable reports whether the issue carries a fix.
func (i *Issue) Fixable() bool {
	return i.Fix != nil
}

type AnalysisResult struct {
	Files            []string       `json:"files_analyzed"`
	TotalIssues      int            `json:"total_issues"`
	FixableIssues    int            `json:"fixable_issues"`
	IssuesBySeverity map[string]int `json:"issues_by_severity"`
	IssuesByRule     map[string]int `json:"issues_by_rule"`
	Issues           []Issue        `json:"issues"`
	Score            int            `json:"score"` // 0-100 scale
	AnalysisDuration string         `json:"analysis_duration"`
}

func NewAnalysisResult() *AnalysisResult {
	return &AnalysisResult{
		Files:            make([]string, 0),
		Issues:           make([]Issue, 0),
		IssuesBySeverity: make(map[string]int),
		IssuesByRule:     make(map[string]int),
	}
}

func (ar *AnalysisResult) AddIssue(issue Issue) {
	ar.Issues = append(ar.Issues, issue)
	ar.TotalIssues++
	if issue.Fixable() {
		ar.FixableIssues++
	}
	ar.IssuesBySeverity[issue.Severity.String()]++
	ar.IssuesByRule[string(issue.Rule)]++
}

func (ar *AnalysisResult) CalculateScore() {
	if ar.TotalIssues == 0 {
		ar.Score = 100
		return
	}

	penalty := 0
	for _, issue := range ar.Issues {
		basePenalty := 0
		switch issue.Severity {
		case SeverityLow:
			basePenalty = 2
		case SeverityMedium:
			basePenalty = 5
		case SeverityHigh:
			basePenalty = 15
		case SeverityCritical:
			basePenalty = 30
		}

		// Layout rules weigh less than rules that change code shape
		switch issue.Rule {
		case RuleIfNewline, RuleConsistentChaining:
			basePenalty = basePenalty / 2
		case RulePreferForOf:
			if !issue.Fixable() {
				basePenalty = int(float64(basePenalty) * 1.5) // needs a manual rewrite
			}
		}

		penalty += basePenalty
	}

	ar.Score = max(100-penalty, 0)
}
