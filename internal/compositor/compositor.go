// Package compositor is the diff-aware per-client renderer (spec.md
// §4.10): it draws every visible pane of the active tab (tiled panes
// first, floating panes on top in z-order) into one full-screen frame,
// diffs that frame against what the client last received, and emits
// escape sequences only for the rows that actually changed. A client
// whose screen hasn't changed since its last render still gets the
// cursor sequence: the compositor does not remember the cursor between
// renders, so a render never produces zero bytes.
//
// Grounded in h2's RenderScreen (_examples/dcosson-h2/internal/session/
// client/render.go): DECSC/DECRC cursor save-restore bracketing the
// frame, explicit SGR resets between regions, and a final cursor
// placement pass, generalized from "the one pane" to "every visible
// pane, composited."
package compositor

import (
	"bytes"
	"fmt"

	"loom/internal/geometry"
	"loom/internal/pane"
)

// Compositor holds the last frame sent to each client so Render can
// diff against it.
type Compositor struct {
	lastFrame map[int][][]byte // clientID -> rendered lines, each rect.Cols wide
}

// New creates an empty Compositor.
func New() *Compositor {
	return &Compositor{lastFrame: make(map[int][][]byte)}
}

// Forget drops a client's last-frame cache, forcing its next Render to
// redraw every row — used on attach/reattach so a client that may have
// a stale or blank terminal gets a full repaint.
func (c *Compositor) Forget(clientID int) {
	delete(c.lastFrame, clientID)
}

// Render composites every pane in panes (tiled, in any order) plus
// floating (in back-to-front z-order) into a rect.Rows x rect.Cols
// frame, diffs it against clientID's last frame, and returns the bytes
// to send. When no row changed, the result is only the cursor-position
// sequence (cursorOK) or DECSC/DECRC around a hide-cursor sequence
// (!cursorOK); it is never empty. cursor is the (row, col) to
// position the real cursor at, in the same absolute coordinates as the
// pane rects; ok=false hides the cursor entirely.
func (c *Compositor) Render(clientID int, rect geometry.Rect, panes []*pane.Pane, floating []*pane.Pane, cursorRow, cursorCol int, cursorOK bool) []byte {
	lines := blankFrame(rect)
	for _, p := range panes {
		drawPane(lines, rect, p)
	}
	for _, p := range floating {
		drawPane(lines, rect, p)
	}

	prev := c.lastFrame[clientID]
	var buf bytes.Buffer
	buf.WriteString("\0337") // DECSC

	changed := false
	for row := 0; row < rect.Rows; row++ {
		if rowsEqual(prev, row, lines[row]) {
			continue
		}
		changed = true
		fmt.Fprintf(&buf, "\033[%d;1H", row+1)
		buf.Write(lines[row])
		buf.WriteString("\033[0m\033[K")
	}
	c.lastFrame[clientID] = lines

	buf.WriteString("\0338") // DECRC
	if cursorOK {
		fmt.Fprintf(&buf, "\033[%d;%dH\033[?25h", cursorRow+1, cursorCol+1)
	} else {
		buf.WriteString("\033[?25l")
	}

	if !changed && cursorOK {
		// Nothing on screen changed: send only the cursor position. The
		// previous cursor position is not tracked, so this is sent even
		// when the cursor has not moved.
		return []byte(fmt.Sprintf("\033[%d;%dH", cursorRow+1, cursorCol+1))
	}
	return buf.Bytes()
}

func rowsEqual(prev [][]byte, row int, line []byte) bool {
	if prev == nil || row >= len(prev) {
		return false
	}
	return bytes.Equal(prev[row], line)
}

func blankFrame(rect geometry.Rect) [][]byte {
	lines := make([][]byte, rect.Rows)
	for i := range lines {
		line := make([]byte, rect.Cols)
		for j := range line {
			line[j] = ' '
		}
		lines[i] = line
	}
	return lines
}

// drawPane paints p's frame (if any) and content into lines, clipped to
// rect. Later calls (floating panes, drawn after tiled ones) overwrite
// earlier content, giving floats top z-order.
func drawPane(lines [][]byte, rect geometry.Rect, p *pane.Pane) {
	g := p.Geom
	hasFrame := !p.Borderless && p.Frame != pane.FrameNone

	if hasFrame {
		drawFrame(lines, rect, g)
	}

	contentTop := g.Y
	contentLeft := g.X
	if hasFrame {
		contentTop++
		contentLeft++
	}

	var rowBuf bytes.Buffer
	for r := 0; r < p.ContentRows(); r++ {
		row := contentTop + r
		if row < 0 || row >= rect.Rows {
			continue
		}
		rowBuf.Reset()
		p.RenderLineFrom(&rowBuf, r)
		plain := stripSGR(rowBuf.Bytes())
		writeClipped(lines[row], contentLeft, plain, rect.Cols)
	}
}

func writeClipped(dst []byte, col int, src []byte, width int) {
	for i, b := range src {
		c := col + i
		if c < 0 || c >= width {
			continue
		}
		dst[c] = b
	}
}

// stripSGR removes escape sequences, leaving plain cell bytes — the
// compositor's diff operates on visible content; SGR attributes are
// re-emitted by the frame's own "\033[0m\033[K" reset per row rather
// than tracked cell-by-cell here.
func stripSGR(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] == 0x1b {
			for i < len(b) && b[i] != 'm' {
				i++
			}
			continue
		}
		out = append(out, b[i])
	}
	return out
}

// Frame characters are plain ASCII: the compositor's internal grid is
// one byte per column, so a multi-byte box-drawing rune would occupy
// more than one cell and throw off every writeClipped offset after it.
const (
	boxH  = '-'
	boxV  = '|'
	boxTL = '+'
	boxTR = '+'
	boxBL = '+'
	boxBR = '+'
)

func drawFrame(lines [][]byte, rect geometry.Rect, g geometry.Rect) {
	if g.Y >= 0 && g.Y < rect.Rows {
		top := make([]byte, g.Cols)
		fillFrameRow(top, boxTL, boxH, boxTR)
		writeClipped(lines[g.Y], g.X, top, rect.Cols)
	}
	bottom := g.Y + g.Rows - 1
	if bottom >= 0 && bottom < rect.Rows {
		bot := make([]byte, g.Cols)
		fillFrameRow(bot, boxBL, boxH, boxBR)
		writeClipped(lines[bottom], g.X, bot, rect.Cols)
	}
	for row := g.Y + 1; row < bottom; row++ {
		if row < 0 || row >= rect.Rows {
			continue
		}
		writeClipped(lines[row], g.X, []byte{boxV}, rect.Cols)
		writeClipped(lines[row], g.X+g.Cols-1, []byte{boxV}, rect.Cols)
	}
}

func fillFrameRow(row []byte, left, fill, right byte) {
	if len(row) == 0 {
		return
	}
	for i := range row {
		row[i] = fill
	}
	row[0] = left
	row[len(row)-1] = right
}
