package vt

import (
	"strings"
	"testing"
)

func TestScrollbackEvictsOldestFirst(t *testing.T) {
	sb := NewScrollback(2)
	sb.Push([]rune("one"))
	sb.Push([]rune("two"))
	sb.Push([]rune("three"))

	if sb.Len() != 2 {
		t.Fatalf("expected 2 lines retained, got %d", sb.Len())
	}
	if string(sb.Line(0)) != "three" {
		t.Fatalf("expected most recent line at offset 0, got %q", string(sb.Line(0)))
	}
	if string(sb.Line(1)) != "two" {
		t.Fatalf("expected 'two' retained, got %q", string(sb.Line(1)))
	}
}

func TestScrollbackDisabledWithZeroCapacity(t *testing.T) {
	sb := NewScrollback(0)
	sb.Push([]rune("x"))
	if sb.Len() != 0 {
		t.Fatalf("expected scrollback disabled, got len %d", sb.Len())
	}
}

func TestScrollbackPopTail(t *testing.T) {
	sb := NewScrollback(5)
	sb.Push([]rune("a"))
	sb.Push([]rune("b"))
	sb.Push([]rune("c"))

	popped := sb.PopTail(2)
	if len(popped) != 2 || string(popped[0]) != "b" || string(popped[1]) != "c" {
		t.Fatalf("unexpected PopTail result: %v", popped)
	}
	if sb.Len() != 1 {
		t.Fatalf("expected 1 line left, got %d", sb.Len())
	}
}

func TestGridAlternateScreenSnapshotRestore(t *testing.T) {
	g := NewGrid(4, 10, 100)
	g.Write([]byte("hello"))
	if g.InAlternateScreen() {
		t.Fatal("should not start in alt screen")
	}

	g.Write([]byte(altScreenEnter))
	if !g.InAlternateScreen() {
		t.Fatal("expected alt screen active after DECSET 1049")
	}
	if gridHasText(g, "hello") {
		t.Fatal("expected alt screen to start blank, not merged with primary screen content")
	}
	g.Write([]byte("alt content"))

	g.Write([]byte(altScreenExit))
	if g.InAlternateScreen() {
		t.Fatal("expected alt screen cleared after DECSET 1049 exit")
	}
	if !gridHasText(g, "hello") {
		t.Fatal("expected primary screen content restored after alt screen exit")
	}
}

func gridHasText(g *Grid, want string) bool {
	for _, row := range g.Vt.Content {
		if strings.Contains(string(row), want) {
			return true
		}
	}
	return false
}

func TestGridScrollbackCapsAtRowCount(t *testing.T) {
	g := NewGrid(2, 10, 10)
	for i := 0; i < 5; i++ {
		g.Write([]byte("line\r\n"))
	}
	if len(g.Vt.Content) > g.Rows {
		t.Fatalf("expected live content capped at %d rows, got %d", g.Rows, len(g.Vt.Content))
	}
}

func TestHyperlinkTrackerEvictsLRU(t *testing.T) {
	tr := NewHyperlinkTracker()
	tr.Capacity = 2
	tr.Observe([]byte("see https://a.example"), 0)
	tr.Observe([]byte("see https://b.example"), 1)
	tr.Observe([]byte("see https://c.example"), 2)

	if tr.Len() != 2 {
		t.Fatalf("expected capacity enforced at 2, got %d", tr.Len())
	}
	for _, l := range tr.Links() {
		if l.URL == "https://a.example" {
			t.Fatal("expected least-recently-seen link evicted")
		}
	}
}

func TestLinkHandlerRecordsOSC8Span(t *testing.T) {
	lh := NewLinkHandler()
	data := []byte("\x1b]8;id=1;http://example.com\x1b\\click\x1b]8;;\x1b\\")
	lh.Process(data, 0, 0, 0, 5)

	if len(lh.Spans) != 1 {
		t.Fatalf("expected one recorded span, got %d", len(lh.Spans))
	}
	if lh.Spans[0].URL != "http://example.com" {
		t.Fatalf("unexpected URL: %q", lh.Spans[0].URL)
	}
	if lh.Spans[0].ID != "1" {
		t.Fatalf("unexpected ID: %q", lh.Spans[0].ID)
	}
}
