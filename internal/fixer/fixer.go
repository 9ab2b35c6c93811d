// Package fixer writes rule fixes back into source text.
package fixer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"jscheck/internal/models"
	"jscheck/internal/patch"
)

// SourceAnalyzer produces the issues of one in-memory source file.
type SourceAnalyzer interface {
	AnalyzeSource(ctx context.Context, path string, source []byte) ([]models.Issue, error)
}

// Result summarizes the fixes written to one file.
type Result struct {
	Path    string
	Passes  int
	Applied int
	Changed bool
}

type Fixer struct {
	analyzer  SourceAnalyzer
	maxPasses int
	logger    *slog.Logger
}

func New(analyzer SourceAnalyzer, maxPasses int, logger *slog.Logger) *Fixer {
	if maxPasses < 1 {
		maxPasses = 1
	}
	return &Fixer{analyzer: analyzer, maxPasses: maxPasses, logger: logger}
}

// Apply splices the fixes of issues into src. Fixes are taken in source
// order; a fix that starts at or before the end of an accepted one is left
// for a later pass. It returns the new text and the number of fixes applied.
func Apply(src string, issues []models.Issue) (string, int, error) {
	fixes := make([]models.Fix, 0, len(issues))
	for _, issue := range issues {
		if issue.Fixable() {
			fixes = append(fixes, *issue.Fix)
		}
	}
	sort.SliceStable(fixes, func(i, j int) bool {
		if fixes[i].Start != fixes[j].Start {
			return fixes[i].Start < fixes[j].Start
		}
		return fixes[i].End < fixes[j].End
	})

	frags := make([]patch.EditFragment, 0, len(fixes))
	lastEnd := -1
	for _, fix := range fixes {
		if fix.Start <= lastEnd {
			continue
		}
		frags = append(frags, patch.EditFragment{Start: fix.Start, End: fix.End, Text: fix.Text})
		lastEnd = fix.End
	}

	out, err := patch.Compose(src, frags)
	if err != nil {
		return src, 0, fmt.Errorf("apply fixes: %w", err)
	}
	return out, len(frags), nil
}

// FixSource analyzes and fixes src until no fix applies or the pass limit
// is reached.
func (f *Fixer) FixSource(ctx context.Context, path string, src []byte) ([]byte, Result, error) {
	res := Result{Path: path}
	text := string(src)

	for res.Passes < f.maxPasses {
		if err := ctx.Err(); err != nil {
			return nil, res, err
		}

		issues, err := f.analyzer.AnalyzeSource(ctx, path, []byte(text))
		if err != nil {
			// A previous pass produced an unparsable file; nothing is written.
			if res.Passes > 0 {
				f.logger.Error("internal error: fix produced invalid source", "file", path, "pass", res.Passes, "error", err)
			}
			return nil, res, fmt.Errorf("analyze %s: %w", path, err)
		}

		next, applied, err := Apply(text, issues)
		if err != nil {
			return nil, res, err
		}
		res.Passes++
		if applied == 0 {
			break
		}

		f.logger.Debug("fix pass", "file", path, "pass", res.Passes, "applied", applied)
		res.Applied += applied
		text = next
	}

	res.Changed = text != string(src)
	return []byte(text), res, nil
}

// FixFile rewrites path in place when any fix applies.
func (f *Fixer) FixFile(ctx context.Context, path string) (Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	out, res, err := f.FixSource(ctx, path, src)
	if err != nil || !res.Changed {
		return res, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return res, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return res, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return res, nil
}
