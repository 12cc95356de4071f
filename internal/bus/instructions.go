package bus

import (
	"loom/internal/ipc"
	"loom/internal/keybind"
)

// Role names one of the six server thread roles spec.md §4.3 lists.
// Only Screen, Pty and BackgroundJobs have a channel on Bus; PluginHost,
// PtyWriter and ServerRouter are names only, with no channel behind them.
type Role string

const (
	RoleScreen         Role = "screen"
	RolePty            Role = "pty"
	RolePluginHost     Role = "plugin_host"
	RolePtyWriter      Role = "pty_writer"
	RoleBackgroundJobs Role = "background_jobs"
	RoleServerRouter   Role = "server_router"
)

// ScreenInstruction is the tagged-variant vocabulary delivered to the
// Screen role's channel. Concrete types implement the marker method so
// only this package's types satisfy the interface; dispatch is a type
// switch, matching spec.md §9's "sum types dispatched by pattern
// matching" note.
type ScreenInstruction interface {
	screenInstruction()
	Context() ipc.ErrorContext
}

type base struct{ ctx ipc.ErrorContext }

func (b base) Context() ipc.ErrorContext { return b.ctx }

// PtyBytes delivers a chunk of raw child output for a terminal (pane) id.
// Outside the pty reader's backed-up state it is immediately followed,
// on the same channel, by a Render; while backed up the reader sends no
// per-chunk Render (see internal/pty's coalescer). Invariant 4 in
// spec.md §8 depends on both riding this one channel.
type PtyBytes struct {
	base
	TerminalID int
	Data       []byte
}

func (PtyBytes) screenInstruction() {}

// NewPtyBytes constructs a PtyBytes instruction carrying ctx.
func NewPtyBytes(ctx ipc.ErrorContext, terminalID int, data []byte) PtyBytes {
	return PtyBytes{base: base{ctx: ctx}, TerminalID: terminalID, Data: data}
}

// Render asks Screen to recompute and push frames to affected clients.
type Render struct {
	base
	TerminalID int // 0 means "whichever pane(s) changed", set by the sender
}

func (Render) screenInstruction() {}

func NewRender(ctx ipc.ErrorContext, terminalID int) Render {
	return Render{base: base{ctx: ctx}, TerminalID: terminalID}
}

// ClientKey delivers one decoded keystroke from a specific client.
type ClientKey struct {
	base
	ClientID int
	Raw      []byte
}

func (ClientKey) screenInstruction() {}

func NewClientKey(ctx ipc.ErrorContext, clientID int, raw []byte) ClientKey {
	return ClientKey{base: base{ctx: ctx}, ClientID: clientID, Raw: raw}
}

// TerminalResize reports a physical terminal resize from a client.
type TerminalResize struct {
	base
	ClientID   int
	Rows, Cols int
}

func (TerminalResize) screenInstruction() {}

func NewTerminalResize(ctx ipc.ErrorContext, clientID, rows, cols int) TerminalResize {
	return TerminalResize{base: base{ctx: ctx}, ClientID: clientID, Rows: rows, Cols: cols}
}

// PaneExited notifies Screen that a child process terminated.
type PaneExited struct {
	base
	TerminalID int
	ExitCode   int
	Err        error
}

func (PaneExited) screenInstruction() {}

func NewPaneExited(ctx ipc.ErrorContext, terminalID, exitCode int, err error) PaneExited {
	return PaneExited{base: base{ctx: ctx}, TerminalID: terminalID, ExitCode: exitCode, Err: err}
}

// ClientAttached/ClientLeft notify Screen of connection table changes.
type ClientAttached struct {
	base
	ClientID int
	Rows     int
	Cols     int
}

func (ClientAttached) screenInstruction() {}

// NewClientAttached constructs a ClientAttached instruction carrying ctx.
func NewClientAttached(ctx ipc.ErrorContext, clientID, rows, cols int) ClientAttached {
	return ClientAttached{base: base{ctx: ctx}, ClientID: clientID, Rows: rows, Cols: cols}
}

type ClientLeft struct {
	base
	ClientID int
}

func (ClientLeft) screenInstruction() {}

// NewClientLeft constructs a ClientLeft instruction carrying ctx.
func NewClientLeft(ctx ipc.ErrorContext, clientID int) ClientLeft {
	return ClientLeft{base: base{ctx: ctx}, ClientID: clientID}
}

// ClientAction delivers a pre-resolved action that bypassed the
// keybind router entirely: the server's own `loom action` wire
// message names an action directly rather than a raw keystroke.
type ClientAction struct {
	base
	ClientID int
	Action   keybind.Action
}

func (ClientAction) screenInstruction() {}

// NewClientAction constructs a ClientAction instruction carrying ctx.
func NewClientAction(ctx ipc.ErrorContext, clientID int, action keybind.Action) ClientAction {
	return ClientAction{base: base{ctx: ctx}, ClientID: clientID, Action: action}
}

// ScreenExit is the deterministic shutdown instruction. It is sent on a
// sync rendezvous channel (Bus.Exit), never on the unbounded Screen
// channel, so shutdown can't be starved behind a backlog of other work.
type ScreenExit struct {
	base
	Done chan struct{}
}

func (ScreenExit) screenInstruction() {}

// PtyInstruction is the tagged vocabulary delivered to the Pty role.
type PtyInstruction interface {
	ptyInstruction()
	Context() ipc.ErrorContext
}

// SpawnPty asks the Pty role to fork a new child.
type SpawnPty struct {
	base
	TerminalID int
	Command    string
	Args       []string
	Rows, Cols int
	// Env is appended to the child's inherited environment, the way
	// h2's ForkDaemon appends H2_DIR/H2_POD for its own child.
	Env []string
}

func (SpawnPty) ptyInstruction() {}

// NewSpawnPty constructs a SpawnPty instruction carrying ctx.
func NewSpawnPty(ctx ipc.ErrorContext, terminalID int, command string, args []string, rows, cols int, env []string) SpawnPty {
	return SpawnPty{base: base{ctx: ctx}, TerminalID: terminalID, Command: command, Args: args, Rows: rows, Cols: cols, Env: env}
}

// WritePty asks the Pty role to write bytes to a child's stdin.
type WritePty struct {
	base
	TerminalID int
	Data       []byte
}

func (WritePty) ptyInstruction() {}

// NewWritePty constructs a WritePty instruction carrying ctx.
func NewWritePty(ctx ipc.ErrorContext, terminalID int, data []byte) WritePty {
	return WritePty{base: base{ctx: ctx}, TerminalID: terminalID, Data: data}
}

// ResizePty asks the Pty role to change a child's TIOCSWINSZ.
type ResizePty struct {
	base
	TerminalID       int
	Rows, Cols       int
	PxWidth, PxHeight int
}

func (ResizePty) ptyInstruction() {}

// NewResizePty constructs a ResizePty instruction carrying ctx.
func NewResizePty(ctx ipc.ErrorContext, terminalID, rows, cols, pxWidth, pxHeight int) ResizePty {
	return ResizePty{base: base{ctx: ctx}, TerminalID: terminalID, Rows: rows, Cols: cols, PxWidth: pxWidth, PxHeight: pxHeight}
}

// ClosePty asks the Pty role to terminate a child (SIGHUP, escalating).
type ClosePty struct {
	base
	TerminalID int
}

func (ClosePty) ptyInstruction() {}

// NewClosePty constructs a ClosePty instruction carrying ctx.
func NewClosePty(ctx ipc.ErrorContext, terminalID int) ClosePty {
	return ClosePty{base: base{ctx: ctx}, TerminalID: terminalID}
}
