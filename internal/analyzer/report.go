package analyzer

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"jscheck/internal/config"
	"jscheck/internal/models"
)

// ReportGenerator handles formatting and displaying analysis results
type ReportGenerator struct {
	format string
	config *config.Config
}

// NewReportGenerator creates a new report generator
func NewReportGenerator(format string) *ReportGenerator {
	return &ReportGenerator{
		format: format,
		config: config.DefaultConfig(),
	}
}

func NewReportGeneratorWithConfig(cfg *config.Config) *ReportGenerator {
	return &ReportGenerator{
		format: cfg.Output.Format,
		config: cfg,
	}
}

// Generate creates a formatted report from analysis results
func (r *ReportGenerator) Generate(result *models.AnalysisResult) string {
	switch r.format {
	case "json":
		return r.generateJSON(result)
	default:
		return r.generateConsole(result)
	}
}

// generateJSON creates a JSON report
func (r *ReportGenerator) generateJSON(result *models.AnalysisResult) string {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error generating JSON report: %v", err)
	}
	return string(data)
}

// generateConsole creates a colorized console report
func (r *ReportGenerator) generateConsole(result *models.AnalysisResult) string {
	var report strings.Builder

	useColors := r.config.Output.Colors
	verbose := r.config.Output.Verbose
	showSuggestions := r.config.Output.ShowSuggestions

	if useColors {
		report.WriteString(color.CyanString("🔍 jscheck Analysis Report\n"))
		report.WriteString(color.WhiteString("═══════════════════════════════════════\n\n"))
	} else {
		report.WriteString("jscheck Analysis Report\n")
		report.WriteString("=======================================\n\n")
	}

	if verbose {
		r.writeConfigInfo(&report, useColors)
	}

	r.writeSummary(&report, result, useColors)
	r.writeScore(&report, result)

	if len(result.Issues) > 0 {
		r.writeIssuesSummary(&report, result, useColors)
		r.writeRuleTable(&report, result)
		report.WriteString("\n")
		r.writeDetailedIssues(&report, result, useColors, showSuggestions)
	} else {
		if useColors {
			report.WriteString(color.GreenString("🎉 No issues detected! Great job!\n\n"))
		} else {
			report.WriteString("No issues detected! Great job!\n\n")
		}
	}

	if useColors {
		report.WriteString(color.WhiteString("Analysis completed in %s\n", result.AnalysisDuration))
	} else {
		report.WriteString(fmt.Sprintf("Analysis completed in %s\n", result.AnalysisDuration))
	}

	return report.String()
}

// writeScore writes the score with color coding
func (r *ReportGenerator) writeScore(report *strings.Builder, result *models.AnalysisResult) {
	score := result.Score
	thresholds := r.config.Analysis.ScoreThresholds

	var scoreColor func(a ...interface{}) string
	var emoji string
	switch {
	case score >= thresholds.Excellent:
		scoreColor = color.New(color.FgGreen).SprintFunc()
		emoji = "🌟"
	case score >= thresholds.Good:
		scoreColor = color.New(color.FgYellow).SprintFunc()
		emoji = "⚡"
	case score >= thresholds.Fair:
		scoreColor = color.New(color.FgHiYellow).SprintFunc()
		emoji = "⚠️"
	default:
		scoreColor = color.New(color.FgRed).SprintFunc()
		emoji = "🚨"
	}

	if r.config.Output.Colors {
		scoreText := scoreColor(fmt.Sprintf("%d", score))
		report.WriteString(fmt.Sprintf("%s Score: %s/100\n\n", emoji, scoreText))
	} else {
		report.WriteString(fmt.Sprintf("Score: %d/100\n\n", score))
	}
}

// getSeverityDisplay returns emoji and color function for a severity level
func (r *ReportGenerator) getSeverityDisplay(severity string) (string, func(a ...interface{}) string) {
	switch severity {
	case "CRITICAL":
		return "🚨", color.New(color.FgRed, color.Bold).SprintFunc()
	case "HIGH":
		return "❌", color.New(color.FgRed).SprintFunc()
	case "MEDIUM":
		return "⚠️", color.New(color.FgYellow).SprintFunc()
	case "LOW":
		return "ℹ️", color.New(color.FgBlue).SprintFunc()
	default:
		return "❓", color.New(color.FgWhite).SprintFunc()
	}
}

func (r *ReportGenerator) enabledRules() []string {
	var rules []string
	for _, rule := range models.AllRules {
		if r.config.IsRuleEnabled(rule) {
			rules = append(rules, string(rule))
		}
	}
	return rules
}

func (r *ReportGenerator) writeConfigInfo(report *strings.Builder, useColors bool) {
	rules := strings.Join(r.enabledRules(), ", ")
	st := r.config.Analysis.ScoreThresholds
	if useColors {
		report.WriteString(color.WhiteString("📋 Configuration:\n"))
		report.WriteString(fmt.Sprintf("   Enabled rules: %s\n", color.CyanString(rules)))
		report.WriteString(fmt.Sprintf("   Score thresholds: %s\n", color.CyanString("%d/%d/%d", st.Excellent, st.Good, st.Fair)))
	} else {
		report.WriteString("Configuration:\n")
		report.WriteString(fmt.Sprintf("   Enabled rules: %s\n", rules))
		report.WriteString(fmt.Sprintf("   Score thresholds: %d/%d/%d\n", st.Excellent, st.Good, st.Fair))
	}
	report.WriteString("\n")
}

func (r *ReportGenerator) writeSummary(report *strings.Builder, result *models.AnalysisResult, useColors bool) {
	if useColors {
		report.WriteString(color.WhiteString("📊 Summary:\n"))
	} else {
		report.WriteString("Summary:\n")
	}
	report.WriteString(fmt.Sprintf("   Files analyzed: %d\n", len(result.Files)))
	report.WriteString(fmt.Sprintf("   Issues found: %d\n", result.TotalIssues))
	report.WriteString(fmt.Sprintf("   Fixable: %d\n", result.FixableIssues))
	report.WriteString("\n")
}

func (r *ReportGenerator) writeIssuesSummary(report *strings.Builder, result *models.AnalysisResult, useColors bool) {
	if useColors {
		report.WriteString(color.WhiteString("📋 Issues by Severity:\n"))
	} else {
		report.WriteString("Issues by Severity:\n")
	}

	severities := []string{"CRITICAL", "HIGH", "MEDIUM", "LOW"}
	for _, severity := range severities {
		count := result.IssuesBySeverity[severity]
		if count == 0 {
			continue
		}
		if useColors {
			emoji, colorFunc := r.getSeverityDisplay(severity)
			countText := colorFunc(fmt.Sprintf("%d", count))
			report.WriteString(fmt.Sprintf("   %s %s: %s\n", emoji, severity, countText))
		} else {
			report.WriteString(fmt.Sprintf("   %s: %d\n", severity, count))
		}
	}
	report.WriteString("\n")
}

// writeRuleTable renders issue and fix counts per rule.
func (r *ReportGenerator) writeRuleTable(report *strings.Builder, result *models.AnalysisResult) {
	fixable := make(map[models.RuleID]int)
	for _, issue := range result.Issues {
		if issue.Fixable() {
			fixable[issue.Rule]++
		}
	}

	table := tablewriter.NewWriter(report)
	table.SetHeader([]string{"Rule", "Issues", "Fixable"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER})

	for _, rule := range models.AllRules {
		count := result.IssuesByRule[string(rule)]
		if count == 0 {
			continue
		}
		table.Append([]string{string(rule), fmt.Sprintf("%d", count), fmt.Sprintf("%d", fixable[rule])})
	}

	table.SetFooter([]string{"Total", fmt.Sprintf("%d", result.TotalIssues), fmt.Sprintf("%d", result.FixableIssues)})
	table.Render()
}

func (r *ReportGenerator) writeDetailedIssues(report *strings.Builder, result *models.AnalysisResult, useColors, showSuggestions bool) {
	if useColors {
		report.WriteString(color.WhiteString("🔍 Detailed Issues:\n"))
	} else {
		report.WriteString("Detailed Issues:\n")
	}
	report.WriteString(strings.Repeat("─", 50) + "\n\n")

	// Severity first, then source order
	sortedIssues := make([]models.Issue, len(result.Issues))
	copy(sortedIssues, result.Issues)
	sort.SliceStable(sortedIssues, func(i, j int) bool {
		return sortedIssues[i].Severity > sortedIssues[j].Severity
	})

	for i, issue := range sortedIssues {
		r.writeIssueDetail(report, issue, i+1, useColors, showSuggestions)
		report.WriteString("\n")
	}
}

func (r *ReportGenerator) writeIssueDetail(report *strings.Builder, issue models.Issue, index int, useColors, showSuggestions bool) {
	fixState := "no fix available"
	if issue.Fixable() {
		fixState = "fixable with --fix"
	}

	if useColors {
		emoji, severityColor := r.getSeverityDisplay(issue.Severity.String())

		report.WriteString(fmt.Sprintf("%s Issue #%d - %s %s\n",
			emoji, index, severityColor(issue.Severity.String()),
			color.WhiteString(string(issue.Rule))))
		report.WriteString(color.CyanString("   📍 Location: %s:%d:%d\n", issue.File, issue.Line, issue.Column))
		report.WriteString(color.WhiteString("   💭 Issue: %s\n", issue.Message))
		if issue.CodeSnippet != "" {
			report.WriteString(color.WhiteString("   📄 Code: %s\n", issue.CodeSnippet))
		}
		if issue.Fixable() {
			report.WriteString(color.GreenString("   🔧 Fix: %s\n", fixState))
		} else {
			report.WriteString(color.YellowString("   🔧 Fix: %s\n", fixState))
		}

		if showSuggestions {
			report.WriteString(color.GreenString("   💡 Suggestion:\n"))
			for _, line := range suggestionLines(issue) {
				report.WriteString(color.GreenString("      %s\n", line))
			}
		}
		return
	}

	report.WriteString(fmt.Sprintf("Issue #%d - %s %s\n", index, issue.Severity.String(), issue.Rule))
	report.WriteString(fmt.Sprintf("   Location: %s:%d:%d\n", issue.File, issue.Line, issue.Column))
	report.WriteString(fmt.Sprintf("   Issue: %s\n", issue.Message))
	if issue.CodeSnippet != "" {
		report.WriteString(fmt.Sprintf("   Code: %s\n", issue.CodeSnippet))
	}
	report.WriteString(fmt.Sprintf("   Fix: %s\n", fixState))

	if showSuggestions {
		report.WriteString("   Suggestion:\n")
		for _, line := range suggestionLines(issue) {
			report.WriteString(fmt.Sprintf("      %s\n", line))
		}
	}
}

// suggestionLines returns the suggestion followed by the proposed fix text.
func suggestionLines(issue models.Issue) []string {
	var lines []string
	for _, line := range strings.Split(issue.Suggestion, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimSpace(line))
		}
	}
	if issue.Fixable() && strings.TrimSpace(issue.Fix.Text) != "" {
		lines = append(lines, "Proposed replacement:")
		for _, line := range strings.Split(issue.Fix.Text, "\n") {
			lines = append(lines, "  "+line)
		}
	}
	return lines
}
