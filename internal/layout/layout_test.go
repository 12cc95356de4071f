package layout

import (
	"testing"

	"loom/internal/geometry"
	"loom/internal/pane"
)

func TestResolveEvenPercentSplitAccountsForGap(t *testing.T) {
	tree := SplitNode(Horizontal,
		Child{Size: geometry.NewPercent(50), Node: Leaf(1)},
		Child{Size: geometry.NewPercent(50), Node: Leaf(2)},
	)
	rects, err := Resolve(tree, geometry.Rect{Rows: 10, Cols: 21})
	if err != nil {
		t.Fatal(err)
	}
	if rects[1].Cols+rects[2].Cols != 21 {
		t.Fatalf("expected total cols to sum to 21, got %d+%d", rects[1].Cols, rects[2].Cols)
	}
	if rects[2].X != rects[1].Cols {
		t.Fatalf("expected second pane to start right after the first: %+v %+v", rects[1], rects[2])
	}
}

func TestResolveFixedChildKeepsExactSize(t *testing.T) {
	tree := SplitNode(Horizontal,
		Child{Size: geometry.NewFixed(10), Node: Leaf(1)},
		Child{Size: geometry.NewPercent(100), Node: Leaf(2)},
	)
	rects, err := Resolve(tree, geometry.Rect{Rows: 10, Cols: 50})
	if err != nil {
		t.Fatal(err)
	}
	if rects[1].Cols != 10 {
		t.Fatalf("expected fixed child to keep exactly 10 cols, got %d", rects[1].Cols)
	}
}

func TestResolveFixedExceedsAvailableIsError(t *testing.T) {
	tree := SplitNode(Horizontal,
		Child{Size: geometry.NewFixed(100), Node: Leaf(1)},
		Child{Size: geometry.NewPercent(100), Node: Leaf(2)},
	)
	_, err := Resolve(tree, geometry.Rect{Rows: 10, Cols: 50})
	if err == nil {
		t.Fatal("expected error when fixed children exceed available space")
	}
}

func TestResolveNestedSplitRecurses(t *testing.T) {
	inner := SplitNode(Vertical,
		Child{Size: geometry.NewPercent(50), Node: Leaf(2)},
		Child{Size: geometry.NewPercent(50), Node: Leaf(3)},
	)
	tree := SplitNode(Horizontal,
		Child{Size: geometry.NewPercent(50), Node: Leaf(1)},
		Child{Size: geometry.NewPercent(50), Node: &Node{Split: inner.Split}},
	)
	rects, err := Resolve(tree, geometry.Rect{Rows: 20, Cols: 40})
	if err != nil {
		t.Fatal(err)
	}
	if len(rects) != 3 {
		t.Fatalf("expected 3 resolved leaves, got %d", len(rects))
	}
	if rects[2].Rows+rects[3].Rows != rects[1].Rows {
		t.Fatalf("expected nested split rows to sum to parent rows: %+v %+v vs %+v", rects[2], rects[3], rects[1])
	}
}

func TestLeavesTraversalOrder(t *testing.T) {
	tree := SplitNode(Horizontal,
		Child{Size: geometry.NewPercent(34), Node: Leaf(1)},
		Child{Size: geometry.NewPercent(33), Node: Leaf(2)},
		Child{Size: geometry.NewPercent(33), Node: Leaf(3)},
	)
	got := Leaves(tree)
	want := []pane.ID{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("unexpected leaf count: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected leaf order: %v", got)
		}
	}
}

func TestResizeBoundaryBothFixedIsError(t *testing.T) {
	s := &Split{Direction: Horizontal, Children: []Child{
		{Size: geometry.NewFixed(10)},
		{Size: geometry.NewFixed(20)},
	}}
	err := s.ResizeBoundary(0, 5, 100)
	if err == nil {
		t.Fatal("expected error: neither side of an all-fixed boundary can absorb a resize")
	}
	if s.Children[0].Size.Cells != 10 || s.Children[1].Size.Cells != 20 {
		t.Fatal("expected both fixed children untouched")
	}
}

func TestResizeBoundaryFixedChildNeverChanges(t *testing.T) {
	s := &Split{Direction: Horizontal, Children: []Child{
		{Size: geometry.NewFixed(10)},
		{Size: geometry.NewPercent(100)},
	}}
	if err := s.ResizeBoundary(0, 5, 100); err != nil {
		t.Fatal(err)
	}
	if s.Children[0].Size.Cells != 10 {
		t.Fatalf("expected fixed child's Size to never change, got %d", s.Children[0].Size.Cells)
	}
}

func TestResizeBoundaryRespectsPercentFloor(t *testing.T) {
	s := &Split{Direction: Horizontal, Children: []Child{
		{Size: geometry.Dimension{Kind: geometry.Percent, Share: 10}},
		{Size: geometry.Dimension{Kind: geometry.Percent, Share: 90}},
	}}
	_ = s.ResizeBoundary(0, -90, 100)
	if s.Children[0].Size.Share < percentFloor {
		t.Fatalf("expected left share clamped at floor, got %v", s.Children[0].Size.Share)
	}
}
