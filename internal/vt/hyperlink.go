package vt

import "regexp"

// autoDetectURL matches bare http(s) URLs in plain terminal output, the
// same class of pattern a terminal's clickable-link feature looks for
// (cf. termenv's OSC-8-wrapping helpers in the pack, which assume the
// application already did this detection).
var autoDetectURL = regexp.MustCompile(`https?://[^\s<>"'\x1b\x07]+`)

// AutoLink is a plaintext URL the tracker noticed without an explicit
// OSC 8 wrapper from the child.
type AutoLink struct {
	URL string
	Row int
}

// HyperlinkTracker auto-detects bare URLs in a pane's output stream, for
// click-to-open support in panes whose programs never emit OSC 8
// themselves (spec.md §4.5's "hyperlink auto-detection"). It keeps at
// most Capacity links, evicting least-recently-seen first — the Open
// Question spec.md §9 leaves unresolved is settled here in favor of an
// LRU cap rather than unbounded growth, since an interactive pane can
// otherwise print URLs indefinitely (build logs, crawlers).
type HyperlinkTracker struct {
	Capacity int
	order    []string // least-recently-seen first
	links    map[string]AutoLink
}

// NewHyperlinkTracker creates a tracker with a reasonable default cap.
func NewHyperlinkTracker() *HyperlinkTracker {
	return &HyperlinkTracker{Capacity: 512, links: make(map[string]AutoLink)}
}

// Observe scans a chunk of freshly-written output for bare URLs and
// records them against the row the cursor ended up on. row should be
// the grid row the chunk was rendered into.
func (t *HyperlinkTracker) Observe(data []byte, row int) {
	for _, m := range autoDetectURL.FindAll(data, -1) {
		url := string(m)
		t.touch(url, row)
	}
}

func (t *HyperlinkTracker) touch(url string, row int) {
	if _, ok := t.links[url]; ok {
		t.removeFromOrder(url)
	} else if len(t.links) >= t.Capacity {
		t.evictOldest()
	}
	t.links[url] = AutoLink{URL: url, Row: row}
	t.order = append(t.order, url)
}

func (t *HyperlinkTracker) removeFromOrder(url string) {
	for i, u := range t.order {
		if u == url {
			t.order = append(t.order[:i], t.order[i+1:]...)
			return
		}
	}
}

func (t *HyperlinkTracker) evictOldest() {
	if len(t.order) == 0 {
		return
	}
	oldest := t.order[0]
	t.order = t.order[1:]
	delete(t.links, oldest)
}

// Links returns all currently-tracked auto-detected links.
func (t *HyperlinkTracker) Links() []AutoLink {
	out := make([]AutoLink, 0, len(t.links))
	for _, l := range t.links {
		out = append(out, l)
	}
	return out
}

// Len reports how many links are currently tracked.
func (t *HyperlinkTracker) Len() int {
	return len(t.links)
}
