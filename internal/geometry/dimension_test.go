package geometry

import "testing"

func TestNewPercentRejectsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for share > 100")
		}
	}()
	NewPercent(150)
}

func TestSetInnerRoundTrips(t *testing.T) {
	d := NewPercent(50)
	if d.Resolved() {
		t.Fatal("fresh dimension should not be resolved")
	}
	d = d.SetInner(40)
	if !d.Resolved() || d.Inner() != 40 {
		t.Fatalf("expected resolved inner=40, got resolved=%v inner=%d", d.Resolved(), d.Inner())
	}
}

func TestRectOverlaps(t *testing.T) {
	a := Rect{X: 0, Y: 0, Rows: 10, Cols: 10}
	b := Rect{X: 5, Y: 5, Rows: 10, Cols: 10}
	c := Rect{X: 20, Y: 20, Rows: 5, Cols: 5}
	if !a.Overlaps(b) {
		t.Fatal("expected a and b to overlap")
	}
	if a.Overlaps(c) {
		t.Fatal("expected a and c not to overlap")
	}
}
