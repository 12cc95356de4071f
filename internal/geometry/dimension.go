// Package geometry holds the size/position primitives shared by panes and
// the layout tree: the Fixed/Percent Dimension tag and resolved rectangles.
package geometry

import "fmt"

// Kind tags a Dimension as an absolute cell count or a share of its parent.
type Kind int

const (
	// Fixed is an absolute cell count that must not change under resize.
	Fixed Kind = iota
	// Percent is a share (0,100] of the parent extent.
	Percent
)

// Dimension is either Fixed(cells) or Percent(share), with a cached
// resolved cell count filled in by the layout resolver.
type Dimension struct {
	Kind    Kind
	Cells   int     // meaningful when Kind == Fixed
	Share   float64 // meaningful when Kind == Percent, in (0, 100]
	inner   int     // cached resolved cell count
	resolved bool
}

// NewFixed returns a Fixed dimension of the given cell count.
func NewFixed(cells int) Dimension {
	return Dimension{Kind: Fixed, Cells: cells}
}

// NewPercent returns a Percent dimension. Panics if share is not in (0,100].
func NewPercent(share float64) Dimension {
	if share <= 0 || share > 100 {
		panic(fmt.Sprintf("geometry: percent share out of range: %v", share))
	}
	return Dimension{Kind: Percent, Share: share}
}

// IsFixed reports whether d is a Fixed dimension.
func (d Dimension) IsFixed() bool { return d.Kind == Fixed }

// Inner returns the cached resolved cell count.
func (d Dimension) Inner() int { return d.inner }

// Resolved reports whether SetInner has been called at least once.
func (d Dimension) Resolved() bool { return d.resolved }

// SetInner returns a copy of d with its resolved cell count updated.
func (d Dimension) SetInner(cells int) Dimension {
	d.inner = cells
	d.resolved = true
	return d
}

func (d Dimension) String() string {
	if d.Kind == Fixed {
		return fmt.Sprintf("%dcells", d.Cells)
	}
	return fmt.Sprintf("%.2f%%", d.Share)
}

// Rect is a resolved rectangle in terminal cell coordinates.
type Rect struct {
	X, Y, Rows, Cols int
}

// Area returns Rows*Cols.
func (r Rect) Area() int { return r.Rows * r.Cols }

// Overlaps reports whether r and o share any cell.
func (r Rect) Overlaps(o Rect) bool {
	if r.Area() == 0 || o.Area() == 0 {
		return false
	}
	return r.X < o.X+o.Cols && o.X < r.X+r.Cols &&
		r.Y < o.Y+o.Rows && o.Y < r.Y+r.Rows
}
