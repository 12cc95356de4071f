package keybind

// Handler receives dispatched Actions and raw bytes to forward, one
// call at a time, in the order Router decoded them. screen.Screen
// implements Handler on its own goroutine (the Screen role's Run
// loop), translating Actions into its own pane/tab operations and
// forwarded raw bytes into bus.WritePty instructions, so every mutation
// of tab/pane state stays on that one thread regardless of whether it
// originated from PTY output or client input.
type Handler interface {
	Dispatch(clientID int, action Action)
	ForwardRaw(clientID int, data []byte)
}

// Router is the per-client input state machine: it tracks the active
// mode, decodes raw bytes into key events, and either looks an event up
// in the Table or forwards it raw.
type Router struct {
	Table *Table
	mode  map[int]Mode // per client
}

// NewRouter creates a Router starting every client in Normal mode.
func NewRouter(table *Table) *Router {
	return &Router{Table: table, mode: make(map[int]Mode)}
}

// ModeOf returns clientID's current mode (Normal if never set).
func (r *Router) ModeOf(clientID int) Mode {
	return r.mode[clientID]
}

// SetMode forces clientID into mode, used both by ActionSwitchMode
// dispatch and by the attach path resetting a freshly-connected client.
func (r *Router) SetMode(clientID int, mode Mode) {
	r.mode[clientID] = mode
}

// Route decodes raw client input and dispatches every resulting key
// event through h, per spec.md §4.9:
//
//  1. a bracketed-paste payload is always forwarded raw, regardless of
//     mode, and never looked up in the keybind table;
//  2. otherwise each decoded key is looked up in the Table for the
//     client's current mode;
//  3. a match dispatches the bound Action (SwitchMode is handled here
//     directly so every mode transition goes through one place);
//  4. a miss in a character-input mode forwards the key's raw bytes to
//     the pane; a miss in a command mode is silently dropped.
func (r *Router) Route(clientID int, raw []byte, h Handler) {
	if payload, isPaste := ExtractBracketedPaste(raw); isPaste {
		h.ForwardRaw(clientID, payload)
		return
	}

	mode := r.ModeOf(clientID)
	pos := 0
	for pos < len(raw) {
		key, n := DecodeKey(raw[pos:])
		if n == 0 {
			break
		}
		chunk := raw[pos : pos+n]
		pos += n

		action, bound := r.Table.Lookup(mode, key)
		switch {
		case bound && action.Kind == ActionSwitchMode:
			r.transitionMode(clientID, mode, action)
			mode = r.ModeOf(clientID)
		case bound:
			h.Dispatch(clientID, action)
		case ShouldForwardRaw(mode):
			h.ForwardRaw(clientID, chunk)
		}
	}
}

// transitionMode resolves an ActionSwitchMode's target: Arg names the
// destination mode by the leader-chord binding that produced it, or
// (when Arg is empty, as with the Esc-to-Normal bindings DefaultTable
// installs) returns to Normal.
func (r *Router) transitionMode(clientID int, from Mode, action Action) {
	target, ok := modeByName[action.Arg]
	if !ok {
		target = Normal
	}
	r.SetMode(clientID, target)
	_ = from
}

var modeByName = map[string]Mode{
	"normal": Normal, "locked": Locked, "resize": Resize, "pane": Pane,
	"tab": Tab, "scroll": Scroll, "enter_search": EnterSearch, "search": Search,
	"rename_tab": RenameTab, "rename_pane": RenamePane, "session": Session,
	"move": Move, "tmux": Tmux,
}
