package screen

import (
	"testing"

	"loom/internal/bus"
	"loom/internal/compositor"
	"loom/internal/geometry"
	"loom/internal/ipc"
	"loom/internal/keybind"
	"loom/internal/layout"
	"loom/internal/pane"
)

func noopCtx() ipc.ErrorContext { return ipc.NewErrorContext() }

type fakeSink struct {
	delivered int
}

func (f *fakeSink) DeliverFrame(clientID int, frame []byte) { f.delivered++ }
func (f *fakeSink) ExitClient(clientID int, reason ipc.ExitReason, message string) {}
func (f *fakeSink) Quit(reason ipc.ExitReason, message string)                     {}

func newTestScreen() *Screen {
	return New(bus.New(), &fakeSink{}, keybind.NewRouter(keybind.DefaultTable()), compositor.New(), "/bin/sh", 1000, "test-session")
}

func TestNewTabCreatesSinglePaneLeaf(t *testing.T) {
	s := newTestScreen()
	tab, err := s.NewTab("main", geometry.Rect{Rows: 24, Cols: 80}, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if len(tab.Panes) != 1 {
		t.Fatalf("expected 1 pane, got %d", len(tab.Panes))
	}
	if !tab.Layout.IsLeaf() {
		t.Fatal("expected single-pane tab to be a leaf layout")
	}
}

func TestSplitPaneCreatesSecondPaneAndSplitsLayout(t *testing.T) {
	s := newTestScreen()
	s.clientRows = map[int]geometry.Rect{0: {Rows: 24, Cols: 80}}
	tab, _ := s.NewTab("main", geometry.Rect{Rows: 24, Cols: 80}, 0)

	newID, err := s.SplitPane(layout.Horizontal, noopCtx(), 24, 40)
	if err != nil {
		t.Fatal(err)
	}
	if len(tab.Panes) != 2 {
		t.Fatalf("expected 2 panes after split, got %d", len(tab.Panes))
	}
	if tab.Layout.IsLeaf() {
		t.Fatal("expected split layout after SplitPane")
	}
	if tab.Focused != newID {
		t.Fatalf("expected focus to move to new pane %d, got %d", newID, tab.Focused)
	}
}

func TestClosePaneCollapsesSplitToSurvivor(t *testing.T) {
	s := newTestScreen()
	s.clientRows = map[int]geometry.Rect{0: {Rows: 24, Cols: 80}}
	tab, _ := s.NewTab("main", geometry.Rect{Rows: 24, Cols: 80}, 0)
	newID, _ := s.SplitPane(layout.Vertical, noopCtx(), 24, 40)

	s.ClosePane(newID)
	if len(tab.Panes) != 1 {
		t.Fatalf("expected 1 pane after close, got %d", len(tab.Panes))
	}
	if !tab.Layout.IsLeaf() {
		t.Fatal("expected split to collapse back to a single leaf")
	}
}

func TestFloatThenEmbedRoundTrips(t *testing.T) {
	s := newTestScreen()
	s.clientRows = map[int]geometry.Rect{0: {Rows: 24, Cols: 80}}
	tab, _ := s.NewTab("main", geometry.Rect{Rows: 24, Cols: 80}, 0)
	newID, _ := s.SplitPane(layout.Horizontal, noopCtx(), 24, 40)

	s.Float(newID)
	if len(tab.Floating) != 1 {
		t.Fatalf("expected pane floated, got %d floating", len(tab.Floating))
	}
	if _, ok := tab.Panes[newID]; ok {
		t.Fatal("expected floated pane removed from tiled set")
	}

	if err := s.Embed(newID, layout.Vertical); err != nil {
		t.Fatal(err)
	}
	if len(tab.Floating) != 0 {
		t.Fatal("expected no floating panes after embed")
	}
	if _, ok := tab.Panes[newID]; !ok {
		t.Fatal("expected embedded pane back in tiled set")
	}
}

func TestToggleFullscreenRestoresPriorLayout(t *testing.T) {
	s := newTestScreen()
	s.clientRows = map[int]geometry.Rect{0: {Rows: 24, Cols: 80}}
	tab, _ := s.NewTab("main", geometry.Rect{Rows: 24, Cols: 80}, 0)
	s.SplitPane(layout.Horizontal, noopCtx(), 24, 40)

	splitLayout := tab.Layout
	prior := map[pane.ID]*layout.Node{}
	tab.ToggleFullscreen(prior)
	if !tab.Layout.IsLeaf() {
		t.Fatal("expected fullscreen to collapse to a leaf")
	}
	tab.ToggleFullscreen(prior)
	if tab.Layout != splitLayout {
		t.Fatal("expected second toggle to restore the prior split layout")
	}
}

func TestForwardRawWritesToFocusedPanesTerminal(t *testing.T) {
	s := newTestScreen()
	s.clientRows = map[int]geometry.Rect{0: {Rows: 24, Cols: 80}}
	s.NewTab("main", geometry.Rect{Rows: 24, Cols: 80}, 0)

	s.dispatch(bus.NewClientKey(noopCtx(), 0, []byte("echo hi\n")))

	instr, ok := s.b.Pty.Recv()
	if !ok {
		t.Fatal("expected a WritePty instruction on the bus")
	}
	wp, ok := instr.(bus.WritePty)
	if !ok {
		t.Fatalf("expected WritePty, got %T", instr)
	}
	if string(wp.Data) != "echo hi\n" {
		t.Errorf("WritePty.Data = %q, want %q", wp.Data, "echo hi\n")
	}
}

func TestForwardRawDuplicatesToEveryPaneWhenSyncInputOn(t *testing.T) {
	s := newTestScreen()
	s.clientRows = map[int]geometry.Rect{0: {Rows: 24, Cols: 80}}
	tab, _ := s.NewTab("main", geometry.Rect{Rows: 24, Cols: 80}, 0)
	s.SplitPane(layout.Horizontal, noopCtx(), 24, 40)
	tab.SyncInput = true

	s.dispatch(bus.NewClientKey(noopCtx(), 0, []byte("x")))

	seen := map[pane.ID]bool{}
	for range tab.Panes {
		instr, ok := s.b.Pty.Recv()
		if !ok {
			t.Fatal("expected a WritePty instruction for every pane in the tab")
		}
		wp, ok := instr.(bus.WritePty)
		if !ok {
			t.Fatalf("expected WritePty, got %T", instr)
		}
		seen[pane.ID(wp.TerminalID)] = true
	}
	for id := range tab.Panes {
		if !seen[id] {
			t.Errorf("pane %d never received the synced write", id)
		}
	}
}

func TestDispatchSplitHorizontalSpawnsAndSplits(t *testing.T) {
	s := newTestScreen()
	s.clientRows = map[int]geometry.Rect{0: {Rows: 24, Cols: 80}}
	tab, _ := s.NewTab("main", geometry.Rect{Rows: 24, Cols: 80}, 0)
	s.router.SetMode(0, keybind.Pane)

	// With the client already in Pane mode, 'n' splits, per DefaultTable.
	s.dispatch(bus.NewClientKey(noopCtx(), 0, []byte("n")))

	if len(tab.Panes) != 2 {
		t.Fatalf("expected 2 panes after dispatched split, got %d", len(tab.Panes))
	}

	instr, ok := s.b.Pty.Recv()
	if !ok {
		t.Fatal("expected a SpawnPty instruction on the bus")
	}
	if _, ok := instr.(bus.SpawnPty); !ok {
		t.Fatalf("expected SpawnPty, got %T", instr)
	}
}

func TestHandleRenderDeliversFrameToAttachedClient(t *testing.T) {
	s := newTestScreen()
	s.clientRows = map[int]geometry.Rect{0: {Rows: 24, Cols: 80}}
	s.NewTab("main", geometry.Rect{Rows: 24, Cols: 80}, 0)

	sink := s.sink.(*fakeSink)
	s.dispatch(bus.NewRender(noopCtx(), 0))
	if sink.delivered == 0 {
		t.Fatal("expected a frame delivered on first render of a populated tab")
	}
}
