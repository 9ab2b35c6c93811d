package detectors

import (
	"log/slog"

	"jscheck/internal/config"
	"jscheck/internal/forof"
	"jscheck/internal/models"
	"jscheck/internal/scope"
	"jscheck/internal/syntax"
)

// PreferForOfDetector reports counting loops and forEach calls that can be
// written as for...of, with a fix when the rewrite is provably safe.
type PreferForOfDetector struct {
	severity models.Severity
	opts     forof.Options
}

func NewPreferForOfDetectorWithConfig(cfg *config.Config, logger *slog.Logger) *PreferForOfDetector {
	return &PreferForOfDetector{
		severity: cfg.RuleSeverity(models.RulePreferForOf),
		opts: forof.Options{
			ReceiverAsContext: cfg.Rules.PreferForOf.ReceiverAsContext,
			Logger:            logger,
		},
	}
}

func (d *PreferForOfDetector) Name() string {
	return "Prefer for-of Detector"
}

func (d *PreferForOfDetector) Rule() models.RuleID {
	return models.RulePreferForOf
}

func (d *PreferForOfDetector) Detect(unit *syntax.Unit, idx *scope.Index) []models.Issue {
	findings := forof.Run(unit, idx, d.opts)

	issues := make([]models.Issue, 0, len(findings))
	for _, f := range findings {
		issue := newIssue(models.RulePreferForOf, d.severity, unit, f.Node, "Expected for-of statement.")
		issue.Suggestion = suggestion(f)
		if f.Fix != nil {
			issue.Fix = &models.Fix{Start: f.Fix.Start, End: f.Fix.End, Text: f.Fix.Text}
		}
		issues = append(issues, issue)
	}
	return issues
}

func suggestion(f forof.Finding) string {
	if f.Fix != nil {
		return "Rewrite as: " + firstLine(f.Fix.Text)
	}
	if f.Reason != "" {
		return "Rewrite manually; no automatic fix because " + f.Reason
	}
	return "Rewrite manually as a for...of loop"
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i] + " ..."
		}
	}
	return s
}
