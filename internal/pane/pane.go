// Package pane is the pane model (spec.md §4.6): each pane owns a
// *vt.Grid, a resolved screen rectangle from the layout tree, and the
// client-facing state (focus, frame, selection, search) h2 keeps on its
// single Client/VT pair in internal/session/client. Generalized from
// "the one pane this client has" to "one of several panes in a tab,"
// keeping h2's field names and render technique (DECSC/DECRC cursor
// save, explicit SGR resets between format regions) wherever they still
// apply to a single pane's own rectangle of output.
package pane

import (
	"bytes"
	"fmt"

	"github.com/vito/midterm"

	"loom/internal/geometry"
	"loom/internal/vt"
)

// ID identifies a pane within its tab, matching the pane_id/terminal_id
// space the bus instructions already key PTY output by.
type ID int

// FrameStyle selects how a pane's border is drawn.
type FrameStyle int

const (
	FrameNone FrameStyle = iota
	FrameSingle
	FrameRounded
)

// Selection is a text-selection span in grid coordinates, inclusive.
type Selection struct {
	Active               bool
	StartRow, StartCol   int
	EndRow, EndCol       int
}

// SearchState tracks an in-pane text search (spec.md's EnterSearch/
// Search modes act on this).
type SearchState struct {
	Active  bool
	Query   string
	Matches []SearchMatch
	Current int
}

// SearchMatch is one match location in grid coordinates.
type SearchMatch struct {
	Row, Col, Len int
}

// Pane is one rectangle of the tiled or floating pane tree, wrapping a
// single child process's virtual terminal.
type Pane struct {
	ID    ID
	Title string

	// Command is the shell command this pane's child was spawned with,
	// recorded so the resurrection cache (internal/server) can respawn
	// the same command on restore.
	Command string

	Grid *vt.Grid
	Geom geometry.Rect

	// IsStacked mirrors zellij's stacked-pane concept: a pane that is
	// fully obscured except for a one-line title bar when its stack
	// group isn't focused (spec.md §4.6).
	IsStacked bool

	Focused    bool
	Frame      FrameStyle
	Borderless bool

	Selection   Selection
	Search      SearchState
	ScrollOffset int // rows scrolled up from live; mirrors Grid.ScrollOffset
}

// New creates a pane sized to geom with scrollbackLines of history.
func New(id ID, geom geometry.Rect, scrollbackLines int) *Pane {
	return &Pane{
		ID:    id,
		Grid:  vt.NewGrid(geom.Rows, geom.Cols, scrollbackLines),
		Geom:  geom,
		Frame: FrameSingle,
	}
}

// Write feeds child output into the pane's grid.
func (p *Pane) Write(data []byte) {
	p.Grid.Write(data)
}

// Resize reflows the pane to a new resolved rectangle.
func (p *Pane) Resize(geom geometry.Rect) {
	p.Geom = geom
	p.Grid.Resize(geom.Rows, geom.Cols)
}

// ContentRows returns the rows available for terminal content, after
// subtracting the frame if one is drawn.
func (p *Pane) ContentRows() int {
	if p.Borderless || p.Frame == FrameNone {
		return p.Geom.Rows
	}
	return p.Geom.Rows - 2
}

// ContentCols returns the cols available for terminal content, after
// subtracting the frame if one is drawn.
func (p *Pane) ContentCols() int {
	if p.Borderless || p.Frame == FrameNone {
		return p.Geom.Cols
	}
	return p.Geom.Cols - 2
}

// RenderLineFrom writes one row of the pane's grid to buf, using
// explicit SGR resets between format regions — midterm's own Format
// rendering doesn't reset between regions, so a later narrower region's
// background would otherwise bleed into what follows it.
func (p *Pane) RenderLineFrom(buf *bytes.Buffer, row int) {
	content := p.Grid.Vt.Content
	if row < 0 || row >= len(content) {
		return
	}
	line := content[row]
	var pos int
	var lastFormat midterm.Format
	for region := range p.Grid.Vt.Format.Regions(row) {
		f := region.F
		if f != lastFormat {
			buf.WriteString("\033[0m")
			buf.WriteString(f.Render())
			lastFormat = f
		}
		end := pos + region.Size
		contentEnd := end
		if contentEnd > len(line) {
			contentEnd = len(line)
		}
		if pos < len(line) {
			buf.WriteString(string(line[pos:contentEnd]))
		}
		pos = end
	}
}

// CursorScreenPos returns the pane's cursor position translated into
// absolute screen coordinates, for the compositor's final cursor
// placement pass. Returns ok=false if the pane isn't showing its live
// viewport (e.g. scrolled into history).
func (p *Pane) CursorScreenPos() (row, col int, ok bool) {
	if p.ScrollOffset != 0 {
		return 0, 0, false
	}
	frameOffset := 0
	if !p.Borderless && p.Frame != FrameNone {
		frameOffset = 1
	}
	row = p.Geom.Y + frameOffset + p.Grid.Vt.Cursor.Y
	col = p.Geom.X + frameOffset + p.Grid.Vt.Cursor.X
	return row, col, true
}

// DefaultTitle composes a default title for panes that never receive an OSC 0/2
// title-set sequence from their child.
func DefaultTitle(id ID) string {
	return fmt.Sprintf("pane %d", id)
}
