// Package layout is the split tree and constraint solver (spec.md §4.7):
// panes are leaves of a tree of Fixed/Percent-sized splits, and resizing
// a terminal window or dragging a pane boundary re-solves (all or part
// of) the tree rather than moving pixels directly.
//
// h2 has no multi-pane layout of its own to generalize from — every
// Client owns exactly one VT — so this package is grounded in zellij's
// publicly documented split-tree design (per spec.md §1's "mirrors
// zellij's architecture") expressed the way the rest of this codebase
// expresses tree/constraint problems: plain structs and slices, no
// generics beyond what internal/bus already uses, errors via fmt.Errorf.
package layout

import (
	"fmt"

	"loom/internal/geometry"
	"loom/internal/pane"
)

// Direction is the axis a Split divides its rect along.
type Direction int

const (
	// Horizontal splits a rect into left-to-right columns.
	Horizontal Direction = iota
	// Vertical splits a rect into top-to-bottom rows.
	Vertical
)

// percentFloor is the minimum share a Percent child may be resized down
// to interactively; below this a pane becomes unusably thin.
const percentFloor = 5.0

// Node is one node of the split tree: either a pane leaf or a Split
// with its own children.
type Node struct {
	Pane  pane.ID // valid when Split == nil
	Split *Split
}

// IsLeaf reports whether this node is a pane rather than a further split.
func (n *Node) IsLeaf() bool { return n.Split == nil }

// Leaf constructs a pane leaf node.
func Leaf(id pane.ID) *Node { return &Node{Pane: id} }

// Child is one entry of a Split: its sizing constraint and subtree.
type Child struct {
	Size geometry.Dimension
	Node *Node
}

// Split divides a rect along Direction among its Children, in order.
type Split struct {
	Direction Direction
	Children  []Child
}

// SplitNode constructs a Split node from children.
func SplitNode(dir Direction, children ...Child) *Node {
	return &Node{Split: &Split{Direction: dir, Children: children}}
}

// Resolve assigns every leaf in the tree a geometry.Rect within root,
// per spec.md §4.7's algorithm: subtract fixed-size children's cells,
// subtract one-cell boundary gaps between siblings, distribute the
// remainder across Percent children by share, and give any rounding
// remainder to the last Percent child so every cell in root is
// accounted for exactly once.
func Resolve(root *Node, rect geometry.Rect) (map[pane.ID]geometry.Rect, error) {
	out := make(map[pane.ID]geometry.Rect)
	if err := resolve(root, rect, out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveSplitRects behaves like Resolve but also returns each Split
// node's own resolved rect, keyed by pointer. A boundary resize needs
// a Split's rect to know the cell extent its children's Percent shares
// are relative to.
func ResolveSplitRects(root *Node, rect geometry.Rect) (map[pane.ID]geometry.Rect, map[*Split]geometry.Rect, error) {
	leaves := make(map[pane.ID]geometry.Rect)
	splits := make(map[*Split]geometry.Rect)
	if err := resolve(root, rect, leaves, splits); err != nil {
		return nil, nil, err
	}
	return leaves, splits, nil
}

func resolve(n *Node, rect geometry.Rect, out map[pane.ID]geometry.Rect, splits map[*Split]geometry.Rect) error {
	if n.IsLeaf() {
		out[n.Pane] = rect
		return nil
	}
	s := n.Split
	if splits != nil {
		splits[s] = rect
	}
	if len(s.Children) == 0 {
		return fmt.Errorf("layout: split has no children")
	}

	extent := rect.Cols
	if s.Direction == Vertical {
		extent = rect.Rows
	}

	sizes, err := solveSizes(s.Children, extent)
	if err != nil {
		return err
	}

	offset := 0
	for i, c := range s.Children {
		var sub geometry.Rect
		if s.Direction == Horizontal {
			sub = geometry.Rect{X: rect.X + offset, Y: rect.Y, Cols: sizes[i], Rows: rect.Rows}
		} else {
			sub = geometry.Rect{X: rect.X, Y: rect.Y + offset, Cols: rect.Cols, Rows: sizes[i]}
		}
		if err := resolve(c.Node, sub, out, splits); err != nil {
			return err
		}
		offset += sizes[i]
	}
	return nil
}

// solveSizes resolves the per-child cell counts along one axis: fixed
// children keep their exact size, boundary gaps (one cell between each
// pair of siblings) come off the top, and the remainder is shared
// across Percent children by relative share, with leftover rounding
// cells folded into the last Percent child so the total always equals
// extent exactly.
func solveSizes(children []Child, extent int) ([]int, error) {
	gaps := 0
	if len(children) > 1 {
		gaps = len(children) - 1
	}
	available := extent - gaps
	if available < 0 {
		available = 0
	}

	fixedTotal := 0
	percentTotal := 0.0
	lastPercentIdx := -1
	for i, c := range children {
		if c.Size.IsFixed() {
			fixedTotal += c.Size.Cells
		} else {
			percentTotal += c.Size.Share
			lastPercentIdx = i
		}
	}
	if fixedTotal > available {
		return nil, fmt.Errorf("layout: fixed children (%d cells) exceed available space (%d)", fixedTotal, available)
	}
	flexSpace := available - fixedTotal

	sizes := make([]int, len(children))
	assigned := 0
	for i, c := range children {
		if c.Size.IsFixed() {
			sizes[i] = c.Size.Cells
		} else if percentTotal > 0 {
			sizes[i] = int(float64(flexSpace) * c.Size.Share / percentTotal)
		}
		assigned += sizes[i]
	}

	// Boundary gaps are distributed as +1 cell onto every non-Fixed child
	// but the last, matching a single-cell separator drawn between each
	// pair. A Fixed child keeps exactly its Cells; the gap cell it would
	// have carried is picked up by the remainder below.
	for i, c := range children {
		if i < len(children)-1 && !c.Size.IsFixed() {
			sizes[i]++
			assigned++
		}
	}

	remainder := extent - assigned
	if remainder != 0 {
		if lastPercentIdx >= 0 {
			sizes[lastPercentIdx] += remainder
		} else {
			sizes[len(sizes)-1] += remainder
		}
	}
	return sizes, nil
}

// Locate finds the Split whose direct child is target's leaf, along
// with target's index among that Split's Children. ok is false if
// target isn't a direct child of any split in the tree (e.g. root is
// itself target's leaf).
func Locate(root *Node, target pane.ID) (split *Split, index int, ok bool) {
	if root.IsLeaf() {
		return nil, 0, false
	}
	for i, c := range root.Split.Children {
		if c.Node.IsLeaf() && c.Node.Pane == target {
			return root.Split, i, true
		}
	}
	for _, c := range root.Split.Children {
		if s, i, ok := Locate(c.Node, target); ok {
			return s, i, true
		}
	}
	return nil, 0, false
}

// Leaves returns every pane ID in the tree, in left-to-right / top-to-
// bottom traversal order.
func Leaves(n *Node) []pane.ID {
	if n.IsLeaf() {
		return []pane.ID{n.Pane}
	}
	var out []pane.ID
	for _, c := range n.Split.Children {
		out = append(out, Leaves(c.Node)...)
	}
	return out
}
