package vt

import (
	"bytes"
	"regexp"
)

// Hyperlink is a resolved OSC 8 span: the URL the child explicitly
// attached to the cells between Start and End.
type Hyperlink struct {
	ID                 string
	URL                string
	StartRow, StartCol int
	EndRow, EndCol     int
}

var osc8Open = regexp.MustCompile(`\x1b\]8;([^;]*);([^\x1b\x07]*)(?:\x1b\\|\x07)`)

// LinkHandler parses OSC 8 ( https://gist.github.com/egmontkob/eb114294efbcd5adb1944c9f3cb5feda )
// open/close markers out of child output and records the resulting
// spans. Grounded in h2's RespondOSCColors-style raw OSC interception
// (_examples/dcosson-h2/internal/virtualterminal/vt.go), generalized
// from "answer a query" to "record a span."
type LinkHandler struct {
	open   *Hyperlink
	Spans  []Hyperlink
	MaxSpans int
}

// NewLinkHandler creates a LinkHandler with a bounded span history.
func NewLinkHandler() *LinkHandler {
	return &LinkHandler{MaxSpans: 4096}
}

// Process scans data for OSC 8 markers, opening or closing a link span.
// startRow/startCol is the cursor position before data was written to
// the grid; endRow/endCol is the position after, used as the close
// position when a link is still open at the end of this chunk.
func (h *LinkHandler) Process(data []byte, startRow, startCol, endRow, endCol int) {
	if !bytes.Contains(data, []byte("\x1b]8;")) {
		return
	}
	matches := osc8Open.FindAllSubmatch(data, -1)
	row, col := startRow, startCol
	for _, m := range matches {
		params, uri := string(m[1]), string(m[2])
		if uri == "" {
			// Close marker: OSC 8 ; ; ST
			if h.open != nil {
				h.open.EndRow, h.open.EndCol = row, col
				h.appendSpan(*h.open)
				h.open = nil
			}
			continue
		}
		if h.open != nil {
			h.open.EndRow, h.open.EndCol = row, col
			h.appendSpan(*h.open)
		}
		h.open = &Hyperlink{ID: extractID(params), URL: uri, StartRow: row, StartCol: col}
	}
	if h.open != nil {
		// Still open at the end of this chunk: record the current cursor
		// as a provisional end on h.open and leave it set so a later
		// Process call can extend it. The link is not in Spans (and At
		// does not find it) until a close or a following open marker
		// arrives.
		h.open.EndRow, h.open.EndCol = endRow, endCol
	}
}

func (h *LinkHandler) appendSpan(link Hyperlink) {
	h.Spans = append(h.Spans, link)
	if len(h.Spans) > h.MaxSpans {
		h.Spans = h.Spans[len(h.Spans)-h.MaxSpans:]
	}
}

func extractID(params string) string {
	const prefix = "id="
	for _, kv := range bytes.Split([]byte(params), []byte(":")) {
		if bytes.HasPrefix(kv, []byte(prefix)) {
			return string(kv[len(prefix):])
		}
	}
	return ""
}

// At returns the URL of the hyperlink span covering (row, col), if any.
func (h *LinkHandler) At(row, col int) (string, bool) {
	for i := len(h.Spans) - 1; i >= 0; i-- {
		s := h.Spans[i]
		if row < s.StartRow || row > s.EndRow {
			continue
		}
		if row == s.StartRow && col < s.StartCol {
			continue
		}
		if row == s.EndRow && col > s.EndCol {
			continue
		}
		return s.URL, true
	}
	return "", false
}
