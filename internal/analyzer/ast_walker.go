package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"jscheck/internal/analyzer/detectors"
	"jscheck/internal/config"
	"jscheck/internal/models"
	"jscheck/internal/scope"
	"jscheck/internal/syntax"
)

type Analyzer struct {
	parser    *syntax.Parser
	config    *config.Config
	logger    *slog.Logger
	detectors []Detector
}

type Detector interface {
	Name() string
	Rule() models.RuleID
	Detect(unit *syntax.Unit, idx *scope.Index) []models.Issue
}

// NewAnalyzerWithConfig registers the detectors of every enabled rule.
func NewAnalyzerWithConfig(cfg *config.Config, logger *slog.Logger) *Analyzer {
	analyzer := &Analyzer{
		parser: syntax.NewParser(),
		config: cfg,
		logger: logger,
	}

	all := []Detector{
		detectors.NewPreferForOfDetectorWithConfig(cfg, logger),
		detectors.NewIfNewlineDetectorWithConfig(cfg),
		detectors.NewTopLevelFunctionDetectorWithConfig(cfg),
		detectors.NewConsistentChainingDetectorWithConfig(cfg),
	}
	for _, d := range all {
		if cfg.IsRuleEnabled(d.Rule()) {
			analyzer.detectors = append(analyzer.detectors, d)
		}
	}

	return analyzer
}

// AnalyzeFiles checks files on a bounded worker pool. Files that cannot be
// read or parsed are logged and skipped; the result keeps input order.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, filenames []string) (*models.AnalysisResult, error) {
	startTime := time.Now()

	perFile := make([][]models.Issue, len(filenames))
	analyzed := make([]bool, len(filenames))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.Analysis.MaxWorkers)

	for i, filename := range filenames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			issues, err := a.analyzeFile(ctx, filename)
			if err != nil {
				a.logger.Warn("skipping file", "file", filename, "error", err)
				return nil
			}
			perFile[i] = issues
			analyzed[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analysis interrupted: %w", err)
	}

	result := models.NewAnalysisResult()
	for i, filename := range filenames {
		if !analyzed[i] {
			continue
		}
		result.Files = append(result.Files, filename)
		for _, issue := range perFile[i] {
			result.AddIssue(issue)
		}
	}

	result.AnalysisDuration = time.Since(startTime).String()
	result.CalculateScore()
	return result, nil
}

func (a *Analyzer) analyzeFile(ctx context.Context, filename string) ([]models.Issue, error) {
	info, err := os.Stat(filename)
	if err != nil {
		return nil, err
	}
	if limit := int64(a.config.Files.MaxFileSize) * 1024; limit > 0 && info.Size() > limit {
		return nil, fmt.Errorf("file is larger than %d KB", a.config.Files.MaxFileSize)
	}

	source, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeSource(ctx, filename, source)
}

// AnalyzeSource runs every detector over an in-memory buffer.
func (a *Analyzer) AnalyzeSource(ctx context.Context, filename string, source []byte) ([]models.Issue, error) {
	unit, err := a.parser.Parse(ctx, filename, source)
	if err != nil {
		return nil, err
	}
	idx := scope.Resolve(unit)

	var allIssues []models.Issue
	for _, detector := range a.detectors {
		issues := detector.Detect(unit, idx)
		a.logger.Debug("detector finished", "file", filename, "detector", detector.Name(), "issues", len(issues))
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

// GetDetectorCount returns the number of active detectors
func (a *Analyzer) GetDetectorCount() int {
	return len(a.detectors)
}

// GetDetectorNames returns the names of all active detectors
func (a *Analyzer) GetDetectorNames() []string {
	names := make([]string, len(a.detectors))
	for i, detector := range a.detectors {
		names[i] = detector.Name()
	}
	return names
}
