// Package vt is the VT parser + grid (spec.md §4.5), the largest single
// subsystem. It keeps h2's choice of *midterm.Terminal as the byte-level
// VTE engine (see _examples/dcosson-h2/internal/session/session.go and
// client/render.go, which already drive Vt.Write/Vt.Resize/Vt.Cursor/
// Vt.Content/Vt.Format.Regions and ForwardRequests/ForwardResponses for
// OSC passthrough) and layers the additional semantics spec.md §3 and
// §4.5 require that midterm's own VT100 coverage doesn't give for free:
// a capacity-bounded scrollback deque, explicit alternate-screen
// snapshot/restore, and plaintext-URL hyperlink auto-detection.
package vt

import (
	"bytes"
	"sync"

	"github.com/vito/midterm"
)

// Grid is one pane's 2-D character matrix with scrollback, matching
// spec.md §3's Grid data model. Cursor/Row/Character state all live
// inside Vt; Grid adds the parts midterm doesn't track.
type Grid struct {
	mu sync.Mutex

	Vt   *midterm.Terminal
	Rows int
	Cols int

	// ScrollbackLines bounds LinesAbove; 0 disables scrollback entirely.
	ScrollbackLines int
	LinesAbove      *Scrollback

	// ScrollOffset is how many rows above the live viewport are
	// currently shown (0 = viewing the live screen).
	ScrollOffset int

	alt *altScreenState // non-nil while DECSET 1049 is active

	Links  *LinkHandler
	Hyperlinks *HyperlinkTracker

	// OscFg/OscBg cache OSC 10/11 responses the way h2's
	// virtualterminal.VT.OscFg/OscBg do, so a query from the child can
	// be answered without round-tripping to the real outer terminal.
	OscFg string
	OscBg string
}

// NewGrid creates a Grid of the given size with scrollback capped at
// scrollbackLines.
func NewGrid(rows, cols, scrollbackLines int) *Grid {
	return &Grid{
		Vt:              midterm.NewTerminal(rows, cols),
		Rows:            rows,
		Cols:            cols,
		ScrollbackLines: scrollbackLines,
		LinesAbove:      NewScrollback(scrollbackLines),
		Links:           NewLinkHandler(),
		Hyperlinks:      NewHyperlinkTracker(),
	}
}

// Write feeds raw child-output bytes through the grid: alternate-screen
// mode changes are intercepted first (the same raw-byte-scan technique
// h2's RespondOSCColors uses for OSC 10/11), the bytes are then handed
// to midterm for VT100+ state machine processing, and finally the same
// bytes are scanned for OSC 8 hyperlink markers and for bare URLs.
func (g *Grid) Write(data []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.interceptAltScreen(data)
	startX, startY := g.Vt.Cursor.X, g.Vt.Cursor.Y

	g.Vt.Write(data)
	g.pullScrollback()

	g.Links.Process(data, startY, startX, g.Vt.Cursor.Y, g.Vt.Cursor.X)
	g.Hyperlinks.Observe(data, g.Vt.Cursor.Y)
}

// pullScrollback trims midterm's Content back down to Rows lines,
// moving anything pushed off the top into the bounded LinesAbove deque.
// This is how Grid gets FIFO-capped scrollback (spec.md §3 invariant:
// "Scrollback length never exceeds scrollback_lines; oldest lines are
// dropped first") out of a midterm terminal that, left to itself
// (AutoResizeY, as h2 configures its own Scrollback terminal), would
// grow Content without bound.
func (g *Grid) pullScrollback() {
	overflow := len(g.Vt.Content) - g.Rows
	if overflow <= 0 {
		return
	}
	for i := 0; i < overflow; i++ {
		g.LinesAbove.Push(g.Vt.Content[i])
	}
	g.Vt.Content = g.Vt.Content[overflow:]
	if g.Vt.Cursor.Y >= overflow {
		g.Vt.Cursor.Y -= overflow
	} else {
		g.Vt.Cursor.Y = 0
	}
}

// Resize reflows the grid to new dimensions per spec.md §4.5: content
// is preserved best-effort, overflow rows move to/from LinesAbove, and
// the cursor clamps into the new bounds. The scroll region resets to
// the full grid (midterm.Resize already does this internally the way
// h2 relies on it when relaunching a child at a new size).
func (g *Grid) Resize(rows, cols int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}

	if rows > g.Rows {
		// Pull rows back from scrollback to fill the newly available
		// viewport space before resizing midterm itself.
		need := rows - g.Rows
		pulled := g.LinesAbove.PopTail(need)
		if len(pulled) > 0 {
			g.Vt.Content = append(pulled, g.Vt.Content...)
			g.Vt.Cursor.Y += len(pulled)
		}
	}

	g.Rows, g.Cols = rows, cols
	g.Vt.Resize(rows, cols)
	g.pullScrollback()

	if g.Vt.Cursor.Y >= rows {
		g.Vt.Cursor.Y = rows - 1
	}
	if g.Vt.Cursor.Y < 0 {
		g.Vt.Cursor.Y = 0
	}
	if g.Vt.Cursor.X >= cols {
		g.Vt.Cursor.X = cols - 1
	}
	if g.Vt.Cursor.X < 0 {
		g.Vt.Cursor.X = 0
	}

	g.ClampScrollOffset()
}

// ClampScrollOffset keeps ScrollOffset within [0, len(LinesAbove)].
func (g *Grid) ClampScrollOffset() {
	maxOffset := g.LinesAbove.Len()
	if g.ScrollOffset > maxOffset {
		g.ScrollOffset = maxOffset
	}
	if g.ScrollOffset < 0 {
		g.ScrollOffset = 0
	}
}

// RespondOSCColors answers OSC 10/11 color queries from the child with
// cached values, exactly mirroring h2's virtualterminal.VT.RespondOSCColors.
func (g *Grid) RespondOSCColors(data []byte, reply func([]byte)) {
	if g.OscFg != "" && bytes.Contains(data, []byte("\033]10;?")) {
		reply([]byte("\033]10;" + g.OscFg + "\033\\"))
	}
	if g.OscBg != "" && bytes.Contains(data, []byte("\033]11;?")) {
		reply([]byte("\033]11;" + g.OscBg + "\033\\"))
	}
}

const (
	altScreenEnter = "\x1b[?1049h"
	altScreenExit  = "\x1b[?1049l"
)

type altScreenState struct {
	content    [][]rune
	cursorX, cursorY int
}

// interceptAltScreen snapshots/restores the grid around DECSET 1049,
// matching spec.md §4.5's "on enter, snapshot the entire grid ...; on
// exit, restore."
func (g *Grid) interceptAltScreen(data []byte) {
	if bytes.Contains(data, []byte(altScreenEnter)) && g.alt == nil {
		snapshot := make([][]rune, len(g.Vt.Content))
		for i, row := range g.Vt.Content {
			cp := make([]rune, len(row))
			copy(cp, row)
			snapshot[i] = cp
		}
		g.alt = &altScreenState{content: snapshot, cursorX: g.Vt.Cursor.X, cursorY: g.Vt.Cursor.Y}
		g.clearContent()
	}
	if bytes.Contains(data, []byte(altScreenExit)) && g.alt != nil {
		g.Vt.Content = g.alt.content
		g.Vt.Cursor.X = g.alt.cursorX
		g.Vt.Cursor.Y = g.alt.cursorY
		g.alt = nil
	}
}

// clearContent blanks every cell of the live buffer and homes the
// cursor, so whatever a child draws after entering the alternate
// screen starts on an empty canvas instead of over the primary
// screen's content.
func (g *Grid) clearContent() {
	for _, row := range g.Vt.Content {
		for i := range row {
			row[i] = ' '
		}
	}
	g.Vt.Cursor.X = 0
	g.Vt.Cursor.Y = 0
}

// InAlternateScreen reports whether the grid is currently showing the
// alternate screen buffer.
func (g *Grid) InAlternateScreen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.alt != nil
}
