package ipc

import (
	"encoding/json"
	"fmt"
)

// ClientToServerKind tags the wire vocabulary a client may send.
type ClientToServerKind string

const (
	KindAttachClient        ClientToServerKind = "attach_client"
	KindFirstClientConnected ClientToServerKind = "first_client_connected"
	KindAction               ClientToServerKind = "action"
	KindTerminalResize       ClientToServerKind = "terminal_resize"
	KindKey                  ClientToServerKind = "key"
	KindClientExited         ClientToServerKind = "client_exited"
	KindListClients          ClientToServerKind = "list_clients"
	KindKillSession          ClientToServerKind = "kill_session"
)

// ServerToClientKind tags the wire vocabulary the server may send.
type ServerToClientKind string

const (
	KindRender            ServerToClientKind = "render"
	KindUnblockInputThread ServerToClientKind = "unblock_input_thread"
	KindSwitchToMode       ServerToClientKind = "switch_to_mode"
	KindExit               ServerToClientKind = "exit"
	KindLog                ServerToClientKind = "log"
)

// Envelope is the self-describing JSON body carried inside a FrameControl
// frame: a kind tag plus a raw payload, resolved by the matching
// ClientToServerKind/ServerToClientKind constant. ErrorContext travels
// alongside so the receiving side can extend the call chain before it
// dispatches.
type Envelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Context []string        `json:"ctx,omitempty"`
}

// AttachClientPayload requests the server bind this connection to a
// named session, reporting the client's current terminal size and its
// detected palette (Fg/Bg in X11 rgb: format, Dark a light/dark
// background guess), so the server can answer OSC 10/11 queries from
// children without round-tripping to the real outer terminal.
type AttachClientPayload struct {
	SessionName string `json:"session_name"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	Fg          string `json:"fg,omitempty"`
	Bg          string `json:"bg,omitempty"`
	Dark        bool   `json:"dark,omitempty"`
}

// ActionPayload carries a pre-resolved action (already looked up by the
// client's own keybind table, or sent directly by `loom action ...`).
type ActionPayload struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

// TerminalResizePayload reports the client's terminal dimensions, with
// optional pixel geometry fields for sixel/image passthrough. loom's
// client does not query pixel geometry (no CSI 14 t / CSI 16 t) and
// leaves PxW/PxH zero; the server reads only Rows and Cols.
type TerminalResizePayload struct {
	Rows  int `json:"rows"`
	Cols  int `json:"cols"`
	PxW   int `json:"px_w,omitempty"`
	PxH   int `json:"px_h,omitempty"`
}

// KeyPayload carries one decoded keystroke.
type KeyPayload struct {
	Raw []byte `json:"raw"`
}

// ClientExitedPayload is sent just before the client closes its
// connection, so the server can remove it from the client table
// without waiting on a read error.
type ClientExitedPayload struct{}

// KillSessionPayload requests the named session be torn down.
type KillSessionPayload struct {
	SessionName string `json:"session_name"`
}

// RenderPayload carries one composed frame's raw bytes.
type RenderPayload struct {
	Bytes []byte `json:"bytes"`
}

// SwitchToModePayload echoes a server-initiated mode change (e.g. after
// an action that changes mode server-side) back to the client's status
// line.
type SwitchToModePayload struct {
	Mode string `json:"mode"`
}

// ExitReason enumerates why the server is telling a client to exit.
type ExitReason string

const (
	ExitNormal  ExitReason = "normal"
	ExitError   ExitReason = "error"
	ExitKilled  ExitReason = "killed"
)

// ExitPayload is sent when the server wants the client to tear down its
// terminal and quit (detach, session kill, or fatal server error).
type ExitPayload struct {
	Reason  ExitReason `json:"reason"`
	Message string     `json:"message,omitempty"`
}

// LogPayload carries a server-side log line the client may choose to
// surface (e.g. in a debug overlay).
type LogPayload struct {
	Line string `json:"line"`
}

// EncodeEnvelope marshals kind/payload/ctx into an Envelope's JSON bytes.
func EncodeEnvelope(kind string, payload any, ctx ErrorContext) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload for %s: %w", kind, err)
	}
	env := Envelope{Kind: kind, Payload: raw, Context: ctx.Tags()}
	out, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope for %s: %w", kind, err)
	}
	return out, nil
}

// DecodeEnvelope parses the outer envelope, leaving Payload raw for the
// caller to unmarshal once it knows the concrete payload type from Kind.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

// ContextValue reconstructs the ErrorContext carried by an envelope.
func (e Envelope) ContextValue() ErrorContext {
	tags := make([]string, len(e.Context))
	copy(tags, e.Context)
	return ErrorContext{tags: tags}
}
