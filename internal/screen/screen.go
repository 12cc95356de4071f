// Package screen is the screen/tab layer (spec.md §4.8): it owns the
// tabs, each tab's tiled-pane split tree and floating panes, and the
// routing of ScreenInstructions arriving on the bus into pane/layout
// operations. Grounded in h2's Session/Daemon split (each owns a
// goroutine loop reacting to a queue of ops) generalized from "one
// pane, one client, mirrored always" to "N tabs, each with its own
// split tree, floating panes, and per-client or mirrored focus."
package screen

import (
	"fmt"

	"github.com/google/shlex"

	"loom/internal/bus"
	"loom/internal/compositor"
	"loom/internal/geometry"
	"loom/internal/ipc"
	"loom/internal/keybind"
	"loom/internal/layout"
	"loom/internal/pane"
)

// ClientSink is how Screen hands finished frames to the server's
// per-client writers, and how it asks the server to end a client's (or
// the whole session's) connection; the server package implements it.
type ClientSink interface {
	DeliverFrame(clientID int, frame []byte)
	ExitClient(clientID int, reason ipc.ExitReason, message string)
	Quit(reason ipc.ExitReason, message string)
}

// Tab owns one tiled-pane split tree plus any floating panes stacked
// above it.
type Tab struct {
	ID       int
	Name     string
	Layout   *layout.Node
	Panes    map[pane.ID]*pane.Pane
	Floating []*pane.Pane

	// Focused is the tiled pane with input focus when the screen isn't
	// mirroring per-client focus (spec.md §4.8's mirrored-vs-per-client
	// focus mode). FocusedByClient holds the per-client alternative.
	Focused          pane.ID
	FocusedByClient  map[int]pane.ID
	SyncInput        bool
}

// pane looks up id in either the tiled set or the floating stack, the
// two places a focused pane may live.
func (t *Tab) pane(id pane.ID) *pane.Pane {
	if p, ok := t.Panes[id]; ok {
		return p
	}
	for _, p := range t.Floating {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Screen owns every tab and the pane/terminal id allocation for a
// session.
type Screen struct {
	b    *bus.Bus
	sink ClientSink

	router *keybind.Router
	comp   *compositor.Compositor
	shell  string

	// sessionName is exported to every spawned pane's child as
	// LOOM_SESSION, so a shell running inside a pane can tell which
	// session it's in (ls's "(current)" marker reads this back).
	sessionName string

	Mirrored bool // spec.md §9 Open Question: default true (single shared view)

	Tabs      []*Tab
	ActiveTab int

	nextPaneID     pane.ID
	nextTerminalID int
	scrollbackLines int

	clientRows, clientCols map[int]geometry.Rect // each client's full terminal rect

	fullscreenPrior map[pane.ID]*layout.Node

	// paletteFg/paletteBg/paletteDark cache the attached terminal's
	// detected colors (set via SetPalette), applied to every pane's
	// Grid so OSC 10/11 queries from children can be answered locally.
	paletteFg   string
	paletteBg   string
	paletteDark bool
}

// New creates an empty Screen wired to b, delivering finished frames
// through sink. router decodes client input per spec.md §4.9 and comp
// composites frames per spec.md §4.10; shell is the command spawned
// for new panes and scrollbackLines the default scrollback depth for
// them (spec.md §4.11).
func New(b *bus.Bus, sink ClientSink, router *keybind.Router, comp *compositor.Compositor, shell string, scrollbackLines int, sessionName string) *Screen {
	return &Screen{
		b:               b,
		sink:            sink,
		router:          router,
		comp:            comp,
		shell:           shell,
		sessionName:     sessionName,
		scrollbackLines: scrollbackLines,
		Mirrored:        true,
		clientRows:      make(map[int]geometry.Rect),
		fullscreenPrior: make(map[pane.ID]*layout.Node),
	}
}

// Run consumes ScreenInstructions until the bus is shut down or an
// ScreenExit arrives on the rendezvous channel, matching spec.md §4.3's
// deterministic-shutdown requirement.
func (s *Screen) Run() {
	for {
		select {
		case exit := <-s.b.Exit:
			close(exit.Done)
			return
		default:
		}
		instr, ok := s.b.Screen.Recv()
		if !ok {
			return
		}
		s.dispatch(instr)
	}
}

func (s *Screen) dispatch(instr bus.ScreenInstruction) {
	switch i := instr.(type) {
	case bus.PtyBytes:
		s.handlePtyBytes(i)
	case bus.Render:
		s.handleRender(i)
	case bus.ClientKey:
		s.handleClientKey(i)
	case bus.TerminalResize:
		s.handleTerminalResize(i)
	case bus.PaneExited:
		s.handlePaneExited(i)
	case bus.ClientAttached:
		s.handleClientAttached(i)
	case bus.ClientAction:
		s.dispatchAction(i.ClientID, i.Action, i.Context())
	case bus.ClientLeft:
		delete(s.clientRows, i.ClientID)
		for _, t := range s.Tabs {
			delete(t.FocusedByClient, i.ClientID)
		}
	}
}

func (s *Screen) handlePtyBytes(i bus.PtyBytes) {
	p := s.findPane(pane.ID(i.TerminalID))
	if p == nil {
		return
	}
	p.Write(i.Data)
	p.Grid.RespondOSCColors(i.Data, func(reply []byte) {
		s.b.Pty.Send(bus.NewWritePty(i.Context(), i.TerminalID, reply))
	})
}

func (s *Screen) handleRender(bus.Render) {
	tab := s.activeTab()
	if tab == nil {
		return
	}
	tiled := make([]*pane.Pane, 0, len(tab.Panes))
	for _, p := range tab.Panes {
		tiled = append(tiled, p)
	}
	for clientID, rect := range s.clientRows {
		focused := s.focusedFor(tab, clientID)
		row, col, ok := 0, 0, false
		if p := tab.pane(focused); p != nil {
			row, col, ok = p.CursorScreenPos()
		}
		frame := s.comp.Render(clientID, rect, tiled, tab.Floating, row, col, ok)
		if len(frame) > 0 {
			s.sink.DeliverFrame(clientID, frame)
		}
	}
}

// focusedFor returns the pane focused for clientID, honoring
// per-client focus when the tab isn't mirrored.
func (s *Screen) focusedFor(tab *Tab, clientID int) pane.ID {
	if !s.Mirrored && tab.FocusedByClient != nil {
		if id, ok := tab.FocusedByClient[clientID]; ok {
			return id
		}
	}
	return tab.Focused
}

// handleClientKey decodes a client's raw input through the keybind
// router, which calls back into Screen (as a keybind.Handler) once it
// resolves bound actions or unbound raw forwards.
func (s *Screen) handleClientKey(i bus.ClientKey) {
	if s.router == nil {
		return
	}
	s.router.Route(i.ClientID, i.Raw, screenHandler{s, i.Context()})
}

// screenHandler adapts Screen to keybind.Handler for one ClientKey's
// worth of routing, carrying that instruction's ErrorContext through
// to any bus sends Dispatch/ForwardRaw make.
type screenHandler struct {
	s   *Screen
	ctx ipc.ErrorContext
}

func (h screenHandler) Dispatch(clientID int, action keybind.Action) {
	h.s.dispatchAction(clientID, action, h.ctx)
}

func (h screenHandler) ForwardRaw(clientID int, data []byte) {
	h.s.forwardRaw(clientID, data, h.ctx)
}

// forwardRaw writes an unbound/raw keystroke to the focused pane's
// child. Per spec.md §4.8 ("sync-input"), when the active tab has its
// sync flag set the write is duplicated to every pane in that tab, not
// just the focused one — and not to other tabs.
func (s *Screen) forwardRaw(clientID int, data []byte, ctx ipc.ErrorContext) {
	tab := s.activeTab()
	if tab == nil {
		return
	}
	focused := s.focusedFor(tab, clientID)
	if tab.pane(focused) == nil {
		return
	}
	if !tab.SyncInput {
		s.b.Pty.Send(bus.NewWritePty(ctx, int(focused), data))
		return
	}
	for id := range tab.Panes {
		s.b.Pty.Send(bus.NewWritePty(ctx, int(id), data))
	}
	for _, p := range tab.Floating {
		s.b.Pty.Send(bus.NewWritePty(ctx, int(p.ID), data))
	}
}

// dispatchAction translates one resolved Action into pane/tab
// mutations and, where a new child needs forking, a SpawnPty request
// onto the bus.
func (s *Screen) dispatchAction(clientID int, action keybind.Action, ctx ipc.ErrorContext) {
	tab := s.activeTab()
	rect := s.clientRows[clientID]

	switch action.Kind {
	case keybind.ActionSplitHorizontal:
		s.splitAndSpawn(layout.Horizontal, rect, ctx)
	case keybind.ActionSplitVertical:
		s.splitAndSpawn(layout.Vertical, rect, ctx)
	case keybind.ActionClosePane:
		if tab == nil {
			return
		}
		id := tab.Focused
		s.b.Pty.Send(bus.NewClosePty(ctx, int(id)))
	case keybind.ActionToggleFullscreen:
		if tab != nil {
			tab.ToggleFullscreen(s.fullscreenPrior)
			s.resolveTab(tab, rect)
		}
	case keybind.ActionFocusNextPane:
		s.cycleFocus(tab, clientID, 1)
	case keybind.ActionFocusPreviousPane:
		s.cycleFocus(tab, clientID, -1)
	case keybind.ActionFocusPaneDirection:
		s.focusDirection(tab, clientID, action.Arg)
	case keybind.ActionResizePaneDirection:
		s.resizeFocused(tab, clientID, action.Arg)
	case keybind.ActionToggleFloating:
		s.toggleFloating(tab, clientID)
	case keybind.ActionNewTab:
		s.newTabAndSpawn(rect, ctx)
	case keybind.ActionCloseTab:
		s.closeTab(s.ActiveTab)
	case keybind.ActionGotoTab:
		s.gotoTabArg(action.Arg)
	case keybind.ActionScrollUp:
		s.scrollActive(tab, clientID, 1)
	case keybind.ActionScrollDown:
		s.scrollActive(tab, clientID, -1)
	case keybind.ActionScrollToBottom:
		s.scrollActiveToBottom(tab, clientID)
	case keybind.ActionToggleSyncInput:
		if tab != nil {
			tab.SyncInput = !tab.SyncInput
		}
	case keybind.ActionEnterSearch:
		if tab != nil {
			if p := tab.pane(s.focusedFor(tab, clientID)); p != nil {
				p.Search = pane.SearchState{Active: true}
			}
		}
	case keybind.ActionSearchNext:
		s.stepSearch(tab, clientID, 1)
	case keybind.ActionSearchPrevious:
		s.stepSearch(tab, clientID, -1)
	case keybind.ActionDetach:
		s.sink.ExitClient(clientID, ipc.ExitNormal, "detached")
	case keybind.ActionQuit:
		s.sink.Quit(ipc.ExitKilled, "session killed")
	}
}

func (s *Screen) splitAndSpawn(dir layout.Direction, rect geometry.Rect, ctx ipc.ErrorContext) {
	newID, err := s.SplitPane(dir, ctx, rect.Rows, rect.Cols)
	if err != nil {
		return
	}
	s.spawnShell(newID, rect, ctx)
}

func (s *Screen) newTabAndSpawn(rect geometry.Rect, ctx ipc.ErrorContext) {
	tab, err := s.NewTab(fmt.Sprintf("tab-%d", len(s.Tabs)+1), rect, s.scrollbackLines)
	if err != nil {
		return
	}
	s.spawnShell(tab.Focused, rect, ctx)
}

func (s *Screen) spawnShell(paneID pane.ID, rect geometry.Rect, ctx ipc.ErrorContext) {
	s.SpawnInPane(paneID, s.shell, rect, ctx)
}

// SpawnInPane requests a child be forked for an existing pane, running
// command (falling back to the screen's configured shell when empty),
// and records it on the pane for the resurrection cache. Exported for
// the server package's initial-tab and restore-from-cache paths, which
// need to spawn without going through a keybind action.
func (s *Screen) SpawnInPane(paneID pane.ID, command string, rect geometry.Rect, ctx ipc.ErrorContext) {
	if command == "" {
		command = s.shell
	}
	if p := s.findPane(paneID); p != nil {
		p.Command = command
	}
	var env []string
	if s.sessionName != "" {
		env = append(env, "LOOM_SESSION="+s.sessionName)
	}
	if s.paletteFg != "" || s.paletteBg != "" {
		colorfgbg := "0;15"
		if s.paletteDark {
			colorfgbg = "15;0"
		}
		env = append(env, "COLORFGBG="+colorfgbg)
	}
	argv, err := shlex.Split(command)
	if err != nil || len(argv) == 0 {
		argv = []string{command}
	}
	s.b.Pty.Send(bus.NewSpawnPty(ctx, int(paneID), argv[0], argv[1:], rect.Rows, rect.Cols, env))
}

// Shell returns the command spawned for new panes, for callers outside
// this package (the resurrection cache) that need to know what a
// restored leaf without a recorded command should run.
func (s *Screen) Shell() string { return s.shell }

func (s *Screen) closeTab(index int) {
	if index < 0 || index >= len(s.Tabs) {
		return
	}
	s.Tabs = append(s.Tabs[:index], s.Tabs[index+1:]...)
	if s.ActiveTab >= len(s.Tabs) {
		s.ActiveTab = len(s.Tabs) - 1
	}
}

func (s *Screen) gotoTabArg(arg string) {
	var idx int
	if _, err := fmt.Sscanf(arg, "%d", &idx); err != nil {
		return
	}
	if idx >= 0 && idx < len(s.Tabs) {
		s.ActiveTab = idx
	}
}

func (s *Screen) cycleFocus(tab *Tab, clientID int, step int) {
	if tab == nil {
		return
	}
	leaves := layout.Leaves(tab.Layout)
	if len(leaves) == 0 {
		return
	}
	cur := s.focusedFor(tab, clientID)
	at := 0
	for i, id := range leaves {
		if id == cur {
			at = i
			break
		}
	}
	next := leaves[(at+step+len(leaves))%len(leaves)]
	s.setFocus(tab, clientID, next)
}

// setFocus moves focus to id, honoring per-client focus when the tab
// isn't mirrored.
func (s *Screen) setFocus(tab *Tab, clientID int, id pane.ID) {
	if !s.Mirrored {
		if tab.FocusedByClient == nil {
			tab.FocusedByClient = make(map[int]pane.ID)
		}
		tab.FocusedByClient[clientID] = id
		return
	}
	tab.Focused = id
}

// focusDirection moves focus to the tiled pane geometrically adjacent
// to the current one in the named direction ("left"/"right"/"up"/
// "down"), per spec.md's MoveFocus(direction). Floating panes aren't
// considered neighbors since they aren't part of the tiled geometry.
func (s *Screen) focusDirection(tab *Tab, clientID int, arg string) {
	if tab == nil {
		return
	}
	rect, ok := s.clientRows[clientID]
	if !ok {
		return
	}
	rects, err := layout.Resolve(tab.Layout, rect)
	if err != nil {
		return
	}
	cur := s.focusedFor(tab, clientID)
	curRect, ok := rects[cur]
	if !ok {
		return
	}

	var best pane.ID
	bestDist := -1
	for id, r := range rects {
		if id == cur {
			continue
		}
		dist, ok := neighborDistance(curRect, r, arg)
		if !ok {
			continue
		}
		if bestDist == -1 || dist < bestDist {
			bestDist = dist
			best = id
		}
	}
	if bestDist == -1 {
		return
	}
	s.setFocus(tab, clientID, best)
}

// neighborDistance reports how far candidate lies from cur in the
// named direction, and whether it lies in that direction at all (past
// cur's edge on that axis, overlapping cur's extent on the other).
// Smaller distances are closer.
func neighborDistance(cur, candidate geometry.Rect, dir string) (int, bool) {
	switch dir {
	case "left":
		if candidate.X+candidate.Cols > cur.X || !overlapsRows(cur, candidate) {
			return 0, false
		}
		return cur.X - (candidate.X + candidate.Cols), true
	case "right":
		if candidate.X < cur.X+cur.Cols || !overlapsRows(cur, candidate) {
			return 0, false
		}
		return candidate.X - (cur.X + cur.Cols), true
	case "up":
		if candidate.Y+candidate.Rows > cur.Y || !overlapsCols(cur, candidate) {
			return 0, false
		}
		return cur.Y - (candidate.Y + candidate.Rows), true
	case "down":
		if candidate.Y < cur.Y+cur.Rows || !overlapsCols(cur, candidate) {
			return 0, false
		}
		return candidate.Y - (cur.Y + cur.Rows), true
	default:
		return 0, false
	}
}

func overlapsRows(a, b geometry.Rect) bool {
	return a.Y < b.Y+b.Rows && b.Y < a.Y+a.Rows
}

func overlapsCols(a, b geometry.Rect) bool {
	return a.X < b.X+b.Cols && b.X < a.X+a.Cols
}

// resizeStepCells is how many cells one ActionResizePaneDirection
// moves a boundary, matching a single keypress to a perceptible but not
// jarring step.
const resizeStepCells = 2

// resizeFocused pushes the named edge ("left"/"right"/"up"/"down") of
// the focused pane outward by resizeStepCells, growing it at its
// immediate sibling's expense. Only the focused pane's direct parent
// split is considered; a resize doesn't propagate past that boundary
// to ancestor splits.
func (s *Screen) resizeFocused(tab *Tab, clientID int, arg string) {
	if tab == nil {
		return
	}
	focused := s.focusedFor(tab, clientID)
	split, index, ok := layout.Locate(tab.Layout, focused)
	if !ok {
		return
	}
	rect, ok := s.clientRows[clientID]
	if !ok {
		return
	}
	_, splitRects, err := layout.ResolveSplitRects(tab.Layout, rect)
	if err != nil {
		return
	}
	splitRect := splitRects[split]
	extent := splitRect.Cols
	if split.Direction == layout.Vertical {
		extent = splitRect.Rows
	}

	var boundary, delta int
	switch arg {
	case "left":
		if split.Direction != layout.Horizontal || index == 0 {
			return
		}
		boundary, delta = index-1, -resizeStepCells
	case "right":
		if split.Direction != layout.Horizontal || index >= len(split.Children)-1 {
			return
		}
		boundary, delta = index, resizeStepCells
	case "up":
		if split.Direction != layout.Vertical || index == 0 {
			return
		}
		boundary, delta = index-1, -resizeStepCells
	case "down":
		if split.Direction != layout.Vertical || index >= len(split.Children)-1 {
			return
		}
		boundary, delta = index, resizeStepCells
	default:
		return
	}

	if err := split.ResizeBoundary(boundary, delta, extent); err != nil {
		return
	}
	s.resolveTab(tab, rect)
}

// toggleFloating moves the focused pane between the tiled tree and the
// floating stack. Floating refuses to float a tab's only pane (it
// would leave the tiled tree empty) and refocuses to the first
// remaining tiled leaf, since Embed needs Focused to reference a tiled
// pane to splice the re-embedded pane next to.
func (s *Screen) toggleFloating(tab *Tab, clientID int) {
	if tab == nil {
		return
	}
	focused := s.focusedFor(tab, clientID)
	rect, hasRect := s.clientRows[clientID]

	if _, tiled := tab.Panes[focused]; tiled {
		if len(tab.Panes) < 2 {
			return
		}
		s.Float(focused)
		if leaves := layout.Leaves(tab.Layout); len(leaves) > 0 {
			s.setFocus(tab, clientID, leaves[0])
		}
		if hasRect {
			s.resolveTab(tab, rect)
		}
		return
	}
	for _, p := range tab.Floating {
		if p.ID != focused {
			continue
		}
		if err := s.Embed(focused, layout.Horizontal); err != nil {
			return
		}
		s.setFocus(tab, clientID, focused)
		if hasRect {
			s.resolveTab(tab, rect)
		}
		return
	}
}

// stepSearch cycles the focused pane's current search match, wrapping
// around the match list in either direction.
func (s *Screen) stepSearch(tab *Tab, clientID int, step int) {
	if tab == nil {
		return
	}
	p := tab.pane(s.focusedFor(tab, clientID))
	if p == nil || len(p.Search.Matches) == 0 {
		return
	}
	n := len(p.Search.Matches)
	p.Search.Current = ((p.Search.Current+step)%n + n) % n
}

func (s *Screen) scrollActive(tab *Tab, clientID int, delta int) {
	if tab == nil {
		return
	}
	if p := tab.pane(s.focusedFor(tab, clientID)); p != nil {
		p.Grid.ScrollOffset += delta
		p.Grid.ClampScrollOffset()
	}
}

func (s *Screen) scrollActiveToBottom(tab *Tab, clientID int) {
	if tab == nil {
		return
	}
	if p := tab.pane(s.focusedFor(tab, clientID)); p != nil {
		p.Grid.ScrollOffset = 0
	}
}

func (s *Screen) handleTerminalResize(i bus.TerminalResize) {
	rect := geometry.Rect{Rows: i.Rows, Cols: i.Cols}
	s.clientRows[i.ClientID] = rect
	tab := s.activeTab()
	if tab == nil || tab.Layout == nil {
		return
	}
	s.resolveTab(tab, rect)
}

func (s *Screen) handlePaneExited(i bus.PaneExited) {
	s.ClosePane(pane.ID(i.TerminalID))
}

func (s *Screen) handleClientAttached(i bus.ClientAttached) {
	s.clientRows[i.ClientID] = geometry.Rect{Rows: i.Rows, Cols: i.Cols}
}

// SetPalette records a client's detected terminal palette (OSC 10/11
// foreground/background, X11 rgb: format, plus a light/dark guess) so
// OSC 10/11 queries from children can be answered from the cache
// instead of round-tripping to the real outer terminal. It applies to
// every pane that exists now and every pane spawned afterward.
func (s *Screen) SetPalette(fg, bg string, dark bool) {
	s.paletteFg, s.paletteBg, s.paletteDark = fg, bg, dark
	for _, t := range s.Tabs {
		for _, p := range t.Panes {
			p.Grid.OscFg, p.Grid.OscBg = fg, bg
		}
		for _, p := range t.Floating {
			p.Grid.OscFg, p.Grid.OscBg = fg, bg
		}
	}
}

func (s *Screen) findPane(id pane.ID) *pane.Pane {
	for _, t := range s.Tabs {
		if p, ok := t.Panes[id]; ok {
			return p
		}
		for _, p := range t.Floating {
			if p.ID == id {
				return p
			}
		}
	}
	return nil
}

func (s *Screen) activeTab() *Tab {
	if s.ActiveTab < 0 || s.ActiveTab >= len(s.Tabs) {
		return nil
	}
	return s.Tabs[s.ActiveTab]
}

// NewTab creates a tab with a single pane filling rect and makes it
// active.
func (s *Screen) NewTab(name string, rect geometry.Rect, scrollbackLines int) (*Tab, error) {
	id := s.nextPaneID
	s.nextPaneID++
	p := pane.New(id, rect, scrollbackLines)
	p.Grid.OscFg, p.Grid.OscBg = s.paletteFg, s.paletteBg

	t := &Tab{
		Name:            name,
		ID:              len(s.Tabs),
		Layout:          layout.Leaf(id),
		Panes:           map[pane.ID]*pane.Pane{id: p},
		Focused:         id,
		FocusedByClient: make(map[int]pane.ID),
	}
	s.Tabs = append(s.Tabs, t)
	s.ActiveTab = len(s.Tabs) - 1
	return t, nil
}

// AllocTerminalID hands out the next terminal (pane) id for a new PTY
// spawn, keeping pane.ID and the Pty role's TerminalID in the same
// space.
func (s *Screen) AllocTerminalID() int {
	id := s.nextTerminalID
	s.nextTerminalID++
	return id
}

// SplitPane splits the focused pane of the active tab along dir,
// replacing its leaf with a Split of the old pane and a freshly
// allocated one, then re-resolving the tab's layout.
func (s *Screen) SplitPane(dir layout.Direction, ctx ipc.ErrorContext, rows, cols int) (pane.ID, error) {
	tab := s.activeTab()
	if tab == nil {
		return 0, fmt.Errorf("screen: no active tab")
	}
	focused := tab.Focused

	newID := s.nextPaneID
	s.nextPaneID++
	newPane := pane.New(newID, geometry.Rect{Rows: rows, Cols: cols}, 0)
	newPane.Grid.OscFg, newPane.Grid.OscBg = s.paletteFg, s.paletteBg
	tab.Panes[newID] = newPane

	replaced := replaceLeaf(tab.Layout, focused, func() *layout.Node {
		return layout.SplitNode(dir,
			layout.Child{Size: geometry.NewPercent(50), Node: layout.Leaf(focused)},
			layout.Child{Size: geometry.NewPercent(50), Node: layout.Leaf(newID)},
		)
	})
	if !replaced {
		return 0, fmt.Errorf("screen: focused pane %d not found in layout", focused)
	}
	tab.Focused = newID

	if rect, ok := s.clientRows[0]; ok {
		s.resolveTab(tab, rect)
	}
	return newID, nil
}

// replaceLeaf finds the leaf holding target and replaces it with the
// node build() produces, returning whether a replacement was made.
func replaceLeaf(n *layout.Node, target pane.ID, build func() *layout.Node) bool {
	if n.IsLeaf() {
		if n.Pane != target {
			return false
		}
		*n = *build()
		return true
	}
	for i, c := range n.Split.Children {
		if c.Node.IsLeaf() && c.Node.Pane == target {
			n.Split.Children[i].Node = build()
			return true
		}
		if replaceLeaf(c.Node, target, build) {
			return true
		}
	}
	return false
}

// ClosePane removes a pane from whichever tab holds it, collapsing its
// parent split if it was one of exactly two children.
func (s *Screen) ClosePane(id pane.ID) {
	for _, t := range s.Tabs {
		if _, ok := t.Panes[id]; ok {
			t.Layout = removeLeaf(t.Layout, id)
			delete(t.Panes, id)
			if t.Focused == id && len(t.Panes) > 0 {
				t.Focused = layout.Leaves(t.Layout)[0]
			}
			return
		}
		for i, p := range t.Floating {
			if p.ID == id {
				t.Floating = append(t.Floating[:i], t.Floating[i+1:]...)
				return
			}
		}
	}
}

// removeLeaf returns a tree with target's leaf removed. When a Split
// has exactly two children and one is removed, the split collapses
// into its surviving sibling directly (so single-child splits never
// accumulate).
func removeLeaf(n *layout.Node, target pane.ID) *layout.Node {
	if n.IsLeaf() {
		return n
	}
	children := n.Split.Children
	for i, c := range children {
		if c.Node.IsLeaf() && c.Node.Pane == target {
			if len(children) == 2 {
				return children[1-i].Node
			}
			n.Split.Children = append(children[:i], children[i+1:]...)
			return n
		}
	}
	for i, c := range children {
		n.Split.Children[i].Node = removeLeaf(c.Node, target)
	}
	return n
}

// ToggleFullscreen replaces the active tab's split tree with a single
// leaf for the focused pane, remembering the prior tree so a second
// toggle restores it. Matches spec.md §4.8's "fullscreen is a layout
// transform, not a rendering mode."
func (t *Tab) ToggleFullscreen(prior map[pane.ID]*layout.Node) {
	if saved, ok := prior[t.Focused]; ok {
		t.Layout = saved
		delete(prior, t.Focused)
		return
	}
	prior[t.Focused] = t.Layout
	t.Layout = layout.Leaf(t.Focused)
}

// resolveTab re-solves rect through the tab's split tree and resizes
// every resulting pane, per spec.md §4.7's "a terminal-window resize
// re-solves the whole tree."
func (s *Screen) resolveTab(t *Tab, rect geometry.Rect) error {
	rects, err := layout.Resolve(t.Layout, rect)
	if err != nil {
		return err
	}
	for id, r := range rects {
		if p, ok := t.Panes[id]; ok {
			p.Resize(r)
		}
	}
	return nil
}

// Float moves a tiled pane out of the split tree into the floating
// stack, on top of any existing floats. If the pane was the tab's
// Focused pane, Focused moves to the first remaining tiled leaf.
func (s *Screen) Float(id pane.ID) {
	for _, t := range s.Tabs {
		p, ok := t.Panes[id]
		if !ok {
			continue
		}
		t.Layout = removeLeaf(t.Layout, id)
		delete(t.Panes, id)
		t.Floating = append(t.Floating, p)
		if t.Focused == id {
			if leaves := layout.Leaves(t.Layout); len(leaves) > 0 {
				t.Focused = leaves[0]
			}
		}
		return
	}
}

// Embed moves a floating pane back into the tiled tree, splitting the
// currently-focused tiled pane to make room for it.
func (s *Screen) Embed(id pane.ID, dir layout.Direction) error {
	for _, t := range s.Tabs {
		for i, p := range t.Floating {
			if p.ID != id {
				continue
			}
			t.Floating = append(t.Floating[:i], t.Floating[i+1:]...)
			t.Panes[id] = p
			if !replaceLeaf(t.Layout, t.Focused, func() *layout.Node {
				return layout.SplitNode(dir,
					layout.Child{Size: geometry.NewPercent(50), Node: layout.Leaf(t.Focused)},
					layout.Child{Size: geometry.NewPercent(50), Node: layout.Leaf(id)},
				)
			}) {
				return fmt.Errorf("screen: could not embed pane %d", id)
			}
			return nil
		}
	}
	return fmt.Errorf("screen: floating pane %d not found", id)
}
