// Package keybind is the input router and mode-indexed keybind table
// (spec.md §4.9): raw bytes from a client are decoded into key events,
// looked up against the current mode's bindings, and either dispatched
// as an Action or — in character-input modes with no matching binding —
// forwarded raw to the focused pane's child process.
//
// h2 has no mode system (it's always "type into the one pane" plus a
// couple of chorded overlay triggers in internal/session/client/overlay.go),
// so the mode/table design itself is grounded in zellij's documented
// mode list (spec.md §1); the byte-decoding and bracketed-paste handling
// below follow h2's own raw-byte interception style in
// internal/virtualterminal/vt.go (scan for a known escape prefix, act,
// otherwise pass through untouched).
package keybind

import "bytes"

// Mode is one of the multiplexer's input modes; the same physical key
// can mean different things depending on which mode is active.
type Mode int

const (
	Normal Mode = iota
	Locked
	Resize
	Pane
	Tab
	Scroll
	EnterSearch
	Search
	RenameTab
	RenamePane
	Session
	Move
	Tmux
)

// charInputModes are modes where an unbound key should be forwarded to
// the focused pane's child rather than silently dropped.
var charInputModes = map[Mode]bool{
	Normal: true,
	Locked: true,
	Search: true,
}

// BareKey is a key identity independent of modifiers: a rune for
// printable keys, or one of the named special keys below.
type BareKey struct {
	Rune    rune
	Special SpecialKey
}

// SpecialKey names non-printable keys. SpecialNone means Rune is valid
// instead.
type SpecialKey int

const (
	SpecialNone SpecialKey = iota
	Enter
	Esc
	Backspace
	Tab_
	Up
	Down
	Left
	Right
	PageUp
	PageDown
	Home
	End
	Delete
	F1
	F2
	F3
	F4
	F5
	F6
	F7
	F8
	F9
	F10
	F11
	F12
)

// ModifierSet is a bitmask of held modifiers.
type ModifierSet int

const (
	ModNone  ModifierSet = 0
	ModCtrl  ModifierSet = 1 << iota
	ModAlt
	ModShift
)

// KeyWithModifier is one fully-decoded key event: a bare key plus
// whichever modifiers were held.
type KeyWithModifier struct {
	Key       BareKey
	Modifiers ModifierSet
}

func (k KeyWithModifier) has(m ModifierSet) bool { return k.Modifiers&m != 0 }

// Action is the tagged vocabulary a keybind resolves to. Most actions
// carry no payload; the few that do embed it directly (no separate
// payload struct, matching the single-file low-ceremony style of
// spec.md's other tagged-variant types in internal/bus).
type Action struct {
	Kind ActionKind
	Arg  string // direction/name/count, meaning depends on Kind
}

type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionWriteChars
	ActionSwitchMode
	ActionSplitHorizontal
	ActionSplitVertical
	ActionClosePane
	ActionToggleFullscreen
	ActionFocusNextPane
	ActionFocusPreviousPane
	ActionFocusPaneDirection // Arg: "up"/"down"/"left"/"right"
	ActionResizePaneDirection
	ActionNewTab
	ActionCloseTab
	ActionGotoTab // Arg: tab index as string
	ActionToggleFloating
	ActionScrollUp
	ActionScrollDown
	ActionScrollToBottom
	ActionEnterSearch
	ActionSearchNext
	ActionSearchPrevious
	ActionDetach
	ActionQuit
	ActionToggleSyncInput
)

// Binding maps one (mode, key) pair to an Action.
type Binding struct {
	Mode Mode
	Key  KeyWithModifier
	Action Action
}

// Table is the mode-indexed keybind table: Lookup is the hot path, so
// bindings are indexed by mode then by key for O(1) lookup instead of a
// linear scan of a flat Binding slice.
type Table struct {
	byMode map[Mode]map[KeyWithModifier]Action
}

// NewTable builds a Table from a flat binding list, such as one decoded
// from a config file (config parsing itself is out of scope; this
// takes already-decoded bindings).
func NewTable(bindings []Binding) *Table {
	t := &Table{byMode: make(map[Mode]map[KeyWithModifier]Action)}
	for _, b := range bindings {
		t.Bind(b.Mode, b.Key, b.Action)
	}
	return t
}

// Bind adds or replaces a binding.
func (t *Table) Bind(mode Mode, key KeyWithModifier, action Action) {
	m, ok := t.byMode[mode]
	if !ok {
		m = make(map[KeyWithModifier]Action)
		t.byMode[mode] = m
	}
	m[key] = action
}

// Lookup returns the Action bound to key in mode, if any.
func (t *Table) Lookup(mode Mode, key KeyWithModifier) (Action, bool) {
	m, ok := t.byMode[mode]
	if !ok {
		return Action{}, false
	}
	a, ok := m[key]
	return a, ok
}

// DefaultTable returns the built-in bindings most modes ship with: Esc
// back to Normal in Pane, Tab, Resize, Scroll, Session, Move, RenamePane
// and RenameTab, plus a few Pane, Tab, Scroll and Session actions.
// Normal mode has no default bindings, so entering another mode from
// Normal takes a binding from the config file. This is intentionally
// small — a real install supplies its own config-driven table — but it
// keeps the router usable without one.
func DefaultTable() *Table {
	t := NewTable(nil)
	leaderModes := []Mode{Pane, Tab, Resize, Scroll, Session, Move, RenamePane, RenameTab}
	for _, m := range leaderModes {
		t.Bind(m, KeyWithModifier{Key: BareKey{Special: Esc}}, Action{Kind: ActionSwitchMode})
	}
	t.Bind(Pane, KeyWithModifier{Key: BareKey{Rune: 'n'}}, Action{Kind: ActionSplitHorizontal})
	t.Bind(Pane, KeyWithModifier{Key: BareKey{Rune: 'x'}}, Action{Kind: ActionClosePane})
	t.Bind(Pane, KeyWithModifier{Key: BareKey{Rune: 'f'}}, Action{Kind: ActionToggleFullscreen})
	t.Bind(Pane, KeyWithModifier{Key: BareKey{Rune: 'p'}}, Action{Kind: ActionFocusNextPane})
	t.Bind(Tab, KeyWithModifier{Key: BareKey{Rune: 'n'}}, Action{Kind: ActionNewTab})
	t.Bind(Tab, KeyWithModifier{Key: BareKey{Rune: 'x'}}, Action{Kind: ActionCloseTab})
	t.Bind(Scroll, KeyWithModifier{Key: BareKey{Special: Up}}, Action{Kind: ActionScrollUp})
	t.Bind(Scroll, KeyWithModifier{Key: BareKey{Special: Down}}, Action{Kind: ActionScrollDown})
	t.Bind(Session, KeyWithModifier{Key: BareKey{Rune: 'd'}}, Action{Kind: ActionDetach})
	t.Bind(Tab, KeyWithModifier{Key: BareKey{Rune: 's'}}, Action{Kind: ActionToggleSyncInput})
	return t
}

const bracketedPasteStart = "\x1b[200~"
const bracketedPasteEnd = "\x1b[201~"

// ExtractBracketedPaste reports whether data contains a bracketed-paste
// start marker, per spec.md §4.9's "pasted text bypasses keybind lookup
// entirely and is forwarded as literal input." It returns the bytes
// after the start marker, up to the end marker or to the end of data
// when no end marker follows, and whether a start marker was found.
// Bytes before the start marker are not returned, and a chunk that
// continues a paste without its own start marker is not recognized.
func ExtractBracketedPaste(data []byte) (payload []byte, isPaste bool) {
	if !bytes.Contains(data, []byte(bracketedPasteStart)) {
		return nil, false
	}
	start := bytes.Index(data, []byte(bracketedPasteStart))
	rest := data[start+len(bracketedPasteStart):]
	if end := bytes.Index(rest, []byte(bracketedPasteEnd)); end >= 0 {
		return rest[:end], true
	}
	return rest, true
}

// ShouldForwardRaw reports whether an undecoded or unbound key in mode
// should be written straight to the focused pane's child, per
// charInputModes.
func ShouldForwardRaw(mode Mode) bool {
	return charInputModes[mode]
}
