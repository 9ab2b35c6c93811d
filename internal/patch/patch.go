// Package patch composes text edits against one base string.
package patch

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrOverlap reports two fragments touching the same bytes.
	ErrOverlap = errors.New("overlapping edit fragments")
	// ErrOutOfRange reports a fragment outside the base text.
	ErrOutOfRange = errors.New("edit fragment out of range")
)

// EditFragment replaces the bytes [Start, End) of a base text.
type EditFragment struct {
	Start int
	End   int
	Text  string
}

// Builder accumulates fragments relative to an anchor offset. Fragments are
// recorded in absolute offsets and rebased when added.
type Builder struct {
	anchor    int
	Fragments []EditFragment
}

// NewBuilder creates a builder whose fragments are relative to anchor.
func NewBuilder(anchor int) *Builder {
	return &Builder{anchor: anchor}
}

// Replace adds a fragment replacing the absolute range [start, end).
func (b *Builder) Replace(start, end int, text string) {
	b.Fragments = append(b.Fragments, EditFragment{
		Start: start - b.anchor,
		End:   end - b.anchor,
		Text:  text,
	})
}

// Apply composes the accumulated fragments over base.
func (b *Builder) Apply(base string) (string, error) {
	return Compose(base, b.Fragments)
}

// Compose splices fragments into base in ascending order. Ranges must lie
// within base and must not overlap; two insertions at the same offset count
// as overlapping. The input slice is not modified.
func Compose(base string, frags []EditFragment) (string, error) {
	if len(frags) == 0 {
		return base, nil
	}

	sorted := make([]EditFragment, len(frags))
	copy(sorted, frags)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	var out strings.Builder
	last := 0
	for i, f := range sorted {
		if f.Start < 0 || f.End < f.Start || f.End > len(base) {
			return "", fmt.Errorf("fragment [%d,%d) of %d bytes: %w", f.Start, f.End, len(base), ErrOutOfRange)
		}
		if i > 0 && (f.Start < last || f.Start == sorted[i-1].Start) {
			return "", fmt.Errorf("fragment [%d,%d) after offset %d: %w", f.Start, f.End, last, ErrOverlap)
		}
		out.WriteString(base[last:f.Start])
		out.WriteString(f.Text)
		last = f.End
	}
	out.WriteString(base[last:])

	return out.String(), nil
}
