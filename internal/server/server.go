// Package server is the daemon side of session lifecycle (spec.md
// §4.11): it owns the listening Unix socket, the per-client connection
// table, and the glue that wires internal/screen, internal/pty, and
// internal/compositor together over internal/bus.
//
// Grounded in h2's internal/session.Daemon + internal/session/attach.go
// (one *Session pointer threaded through connection handlers, a
// per-client goroutine reading the framed protocol), generalized from
// "exactly one attach client" to the client table spec.md §4.11
// requires, and from h2's JSON-only message.Request/Response handshake
// to the typed ipc.Envelope vocabulary internal/ipc defines.
package server

import (
	"fmt"
	"log"
	"net"
	"os"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"loom/internal/bus"
	"loom/internal/compositor"
	"loom/internal/config"
	"loom/internal/geometry"
	"loom/internal/ipc"
	"loom/internal/keybind"
	"loom/internal/pty"
	"loom/internal/screen"
	"loom/internal/socketdir"
)

// Server owns one session: its screen state, its PTY children, and
// every client connection currently attached to it.
type Server struct {
	Name string
	ID   string // random instance ID, for log correlation across restarts

	bus    *bus.Bus
	screen *screen.Screen
	pty    *pty.Subsystem
	comp   *compositor.Compositor
	router *keybind.Router

	ln   net.Listener
	lock *flock.Flock

	mu           sync.Mutex
	clients      map[int]*clientConn
	nextClientID int
}

type clientConn struct {
	id       int
	conn     net.Conn
	writeMu  sync.Mutex
}

// New builds a Server for a not-yet-listening session named name,
// wiring a fresh bus/screen/pty/compositor/router stack from cfg.
func New(name string, cfg *config.Config) (*Server, error) {
	table, err := keybind.BuildTable(configBindings(cfg))
	if err != nil {
		return nil, fmt.Errorf("server: building keybind table: %w", err)
	}

	s := &Server{
		Name:    name,
		ID:      uuid.NewString(),
		bus:     bus.New(),
		comp:    compositor.New(),
		router:  keybind.NewRouter(table),
		clients: make(map[int]*clientConn),
	}
	s.pty = pty.New(s.bus)
	s.screen = screen.New(s.bus, s, s.router, s.comp, cfg.ShellOrDefault(), cfg.ScrollbackOrDefault(), name)
	return s, nil
}

func configBindings(cfg *config.Config) []keybind.ConfigBinding {
	out := make([]keybind.ConfigBinding, 0, len(cfg.Keybinds))
	for _, k := range cfg.Keybinds {
		out = append(out, keybind.ConfigBinding{Mode: k.Mode, Key: k.Key, Action: k.Action, Arg: k.Arg})
	}
	return out
}

// Listen binds the session's Unix socket, removing a stale one left
// behind by a crashed prior server (spec.md §11's "a session's socket
// disappearing is equivalent to the session not existing").
//
// A named file lock guards the bind: two `loom run` invocations racing
// on the same session name would otherwise both pass the stale-socket
// check and both bind, with the loser's listener silently shadowed.
// TryLock fails fast instead, so the loser reports "session already
// running" rather than two daemons fighting over one socket path.
func (s *Server) Listen() error {
	lock := flock.New(socketdir.Path(s.Name) + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("server: locking session %q: %w", s.Name, err)
	}
	if !locked {
		return fmt.Errorf("server: session %q is already running", s.Name)
	}
	s.lock = lock

	path := socketdir.Path(s.Name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		lock.Unlock()
		return fmt.Errorf("server: removing stale socket: %w", err)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		lock.Unlock()
		return fmt.Errorf("server: listen on %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		ln.Close()
		lock.Unlock()
		return fmt.Errorf("server: chmod socket: %w", err)
	}
	s.ln = ln
	return nil
}

// Bootstrap gives the session its starting tabs: a restored cache if
// one exists for this session name, else one default tab running the
// configured shell. Call it once, before Serve, sized to the first
// client's expected terminal dimensions (a later TerminalResize
// re-solves everything once the real client attaches).
func (s *Server) Bootstrap(rect geometry.Rect) error {
	cache, err := LoadLayout(s.Name)
	if err != nil {
		log.Printf("server: loading layout cache: %v", err)
	}
	if cache != nil && len(cache.Tabs) > 0 {
		return Restore(s.screen, cache, rect)
	}

	tab, err := s.screen.NewTab("main", rect, 0)
	if err != nil {
		return err
	}
	s.screen.SpawnInPane(tab.Focused, "", rect, ipc.NewErrorContext().Add("server_bootstrap"))
	return nil
}

// Serve runs the Screen and Pty role loops and accepts client
// connections until the listener closes. It blocks until Close is
// called or the listener errors.
func (s *Server) Serve() error {
	go s.screen.Run()
	go s.pty.Run()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return err
		}
		go s.handleConn(conn)
	}
}

// Close tears down the listener, saves the resurrection cache, and
// shuts the bus down deterministically, telling every attached client
// to exit cleanly first (spec.md §5's "server sends Exit" rather than
// just dropping the socket out from under them).
func (s *Server) Close() error {
	return s.closeWithExit(ipc.ExitKilled, "session killed")
}

// Quit implements screen.ClientSink: an ActionQuit reaches here from
// Screen and tears the whole session down the same way Close does,
// carrying whatever reason/message the action supplied.
func (s *Server) Quit(reason ipc.ExitReason, message string) {
	go s.closeWithExit(reason, message)
}

func (s *Server) closeWithExit(reason ipc.ExitReason, message string) error {
	s.exitAllClients(reason, message)
	if s.ln != nil {
		s.ln.Close()
	}
	if err := SaveLayout(s.Name, s.screen); err != nil {
		log.Printf("server: saving layout cache: %v", err)
	}
	s.bus.Shutdown()
	err := os.Remove(socketdir.Path(s.Name))
	if s.lock != nil {
		s.lock.Unlock()
		os.Remove(s.lock.Path())
	}
	return err
}

// ExitClient implements screen.ClientSink: it tells one client to tear
// down and exit, rather than waiting for that client's connection to
// error out on its own once its pane is gone.
func (s *Server) ExitClient(clientID int, reason ipc.ExitReason, message string) {
	s.mu.Lock()
	c, ok := s.clients[clientID]
	s.mu.Unlock()
	if !ok {
		return
	}
	s.sendExit(c, reason, message)
}

// exitAllClients sends an Exit notice to every currently attached
// client, best-effort — a write failing just means that client's
// connection is already gone.
func (s *Server) exitAllClients(reason ipc.ExitReason, message string) {
	s.mu.Lock()
	clients := make([]*clientConn, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()
	for _, c := range clients {
		s.sendExit(c, reason, message)
	}
}

func (s *Server) sendExit(c *clientConn, reason ipc.ExitReason, message string) {
	env, err := ipc.EncodeEnvelope(string(ipc.KindExit), ipc.ExitPayload{Reason: reason, Message: message}, ipc.NewErrorContext())
	if err != nil {
		return
	}
	c.writeEnvelope(env)
}

// DeliverFrame implements screen.ClientSink: it writes a composed
// frame to the one client it belongs to.
func (s *Server) DeliverFrame(clientID int, frame []byte) {
	s.mu.Lock()
	c, ok := s.clients[clientID]
	s.mu.Unlock()
	if !ok {
		return
	}
	env, err := ipc.EncodeEnvelope(string(ipc.KindRender), ipc.RenderPayload{Bytes: frame}, ipc.NewErrorContext())
	if err != nil {
		return
	}
	c.writeEnvelope(env)
}

func (c *clientConn) writeEnvelope(env []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return ipc.WriteFrame(c.conn, ipc.FrameControl, env)
}
