package report

import (
	"context"
	"fmt"
	"image/color"
)

// FillSolid is the solid surface fill pattern.
const FillSolid = "solid"

// Override is the visual override applied to exposed floors.
type Override struct {
	Color        color.RGBA
	Transparency int // 0 opaque .. 100 invisible
	FillPattern  string
}

// DefaultOverride is translucent red with a solid fill.
func DefaultOverride() Override {
	return Override{
		Color:        color.RGBA{R: 255, G: 50, B: 50, A: 255},
		Transparency: 60,
		FillPattern:  FillSolid,
	}
}

// Highlighter applies an override to every listed element as one unit:
// either all are highlighted or none are.
type Highlighter interface {
	Highlight(ctx context.Context, ids []string, o Override) error
}

// Selector replaces the host's active selection.
type Selector interface {
	Select(ctx context.Context, ids []string) error
}

// Select returns the first max identifiers. max <= 0 selects nothing.
func Select(ids []string, max int) []string {
	if max <= 0 {
		return nil
	}
	if len(ids) > max {
		ids = ids[:max]
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// Dispatch highlights every exposed floor of r and then selects up to
// max of them in report order. Floors past max stay highlighted but are
// not selected. Nothing is called when r has no exposed floors. A
// highlight failure aborts before the selection changes.
func Dispatch(ctx context.Context, r *Report, h Highlighter, s Selector, o Override, max int) ([]string, error) {
	ids := r.ExposedIDs()
	if len(ids) == 0 {
		return nil, nil
	}
	if err := h.Highlight(ctx, ids, o); err != nil {
		return nil, fmt.Errorf("highlight %d floors: %w", len(ids), err)
	}

	selected := Select(ids, max)
	if err := s.Select(ctx, selected); err != nil {
		return nil, fmt.Errorf("select %d floors: %w", len(selected), err)
	}
	for i := range r.Entries {
		r.Entries[i].Selected = i < len(selected)
	}
	r.SelectedCount = len(selected)
	return selected, nil
}
