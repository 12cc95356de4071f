package compositor

import (
	"bytes"
	"testing"

	"loom/internal/geometry"
	"loom/internal/pane"
)

func TestRenderProducesBytesOnFirstFrame(t *testing.T) {
	c := New()
	p := pane.New(1, geometry.Rect{X: 0, Y: 0, Rows: 5, Cols: 20}, 0)
	p.Borderless = true
	p.Write([]byte("hello"))

	out := c.Render(1, geometry.Rect{Rows: 5, Cols: 20}, []*pane.Pane{p}, nil, 0, 5, true)
	if len(out) == 0 {
		t.Fatal("expected non-empty output on first render")
	}
	if !bytes.Contains(out, []byte("hello")) {
		t.Fatalf("expected rendered content to include pane text, got %q", out)
	}
}

func TestRenderIsQuietWhenNothingChanged(t *testing.T) {
	c := New()
	p := pane.New(1, geometry.Rect{X: 0, Y: 0, Rows: 5, Cols: 20}, 0)
	p.Borderless = true
	p.Write([]byte("hello"))

	_ = c.Render(1, geometry.Rect{Rows: 5, Cols: 20}, []*pane.Pane{p}, nil, 0, 5, true)
	second := c.Render(1, geometry.Rect{Rows: 5, Cols: 20}, []*pane.Pane{p}, nil, 0, 5, true)

	if bytes.Contains(second, []byte("hello")) {
		t.Fatal("expected second render with no content change to skip redrawing rows")
	}
}

func TestForgetForcesFullRedraw(t *testing.T) {
	c := New()
	p := pane.New(1, geometry.Rect{X: 0, Y: 0, Rows: 5, Cols: 20}, 0)
	p.Borderless = true
	p.Write([]byte("hello"))

	_ = c.Render(1, geometry.Rect{Rows: 5, Cols: 20}, []*pane.Pane{p}, nil, 0, 5, true)
	c.Forget(1)
	second := c.Render(1, geometry.Rect{Rows: 5, Cols: 20}, []*pane.Pane{p}, nil, 0, 5, true)

	if !bytes.Contains(second, []byte("hello")) {
		t.Fatal("expected Forget to force a full redraw including pane content")
	}
}

func TestFloatingPaneDrawsOverTiledPane(t *testing.T) {
	c := New()
	base := pane.New(1, geometry.Rect{X: 0, Y: 0, Rows: 5, Cols: 20}, 0)
	base.Borderless = true
	base.Write([]byte("background"))

	float := pane.New(2, geometry.Rect{X: 0, Y: 0, Rows: 5, Cols: 20}, 0)
	float.Borderless = true
	float.Write([]byte("foreground"))

	out := c.Render(1, geometry.Rect{Rows: 5, Cols: 20}, []*pane.Pane{base}, []*pane.Pane{float}, 0, 0, true)
	if !bytes.Contains(out, []byte("foreground")) {
		t.Fatal("expected floating pane content visible")
	}
}
