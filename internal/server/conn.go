package server

import (
	"encoding/json"
	"log"
	"net"

	"loom/internal/bus"
	"loom/internal/ipc"
	"loom/internal/keybind"
)

// handleConn runs one client connection end to end: the attach
// handshake, then a read loop translating framed client messages into
// bus instructions until the connection closes.
func (s *Server) handleConn(conn net.Conn) {
	clientID, ok := s.attach(conn)
	if !ok {
		conn.Close()
		return
	}
	defer s.detach(clientID, conn)

	for {
		ft, payload, err := ipc.ReadFrame(conn)
		if err != nil {
			return
		}
		if ft != ipc.FrameControl {
			continue
		}
		env, err := ipc.DecodeEnvelope(payload)
		if err != nil {
			log.Printf("server: decode envelope from client %d: %v", clientID, err)
			continue
		}
		if !s.handleEnvelope(clientID, env) {
			return
		}
	}
}

// attach performs the first message a connection must send
// (AttachClientPayload), registers the client, and tells Screen about
// it. It returns false if the handshake fails.
func (s *Server) attach(conn net.Conn) (int, bool) {
	ft, payload, err := ipc.ReadFrame(conn)
	if err != nil || ft != ipc.FrameControl {
		return 0, false
	}
	env, err := ipc.DecodeEnvelope(payload)
	if err != nil || env.Kind != string(ipc.KindAttachClient) {
		return 0, false
	}
	var req ipc.AttachClientPayload
	if err := json.Unmarshal(env.Payload, &req); err != nil {
		return 0, false
	}

	s.mu.Lock()
	clientID := s.nextClientID
	s.nextClientID++
	s.clients[clientID] = &clientConn{id: clientID, conn: conn}
	s.mu.Unlock()

	s.comp.Forget(clientID)
	if req.Fg != "" || req.Bg != "" {
		s.screen.SetPalette(req.Fg, req.Bg, req.Dark)
	}
	ctx := env.ContextValue().Add("attach")
	s.bus.Screen.Send(bus.NewClientAttached(ctx, clientID, req.Rows, req.Cols))
	s.bus.Screen.Send(bus.NewRender(ctx, 0))
	return clientID, true
}

func (s *Server) detach(clientID int, conn net.Conn) {
	conn.Close()
	s.mu.Lock()
	delete(s.clients, clientID)
	s.mu.Unlock()
	s.bus.Screen.Send(bus.NewClientLeft(ipc.NewErrorContext().Add("detach"), clientID))
}

// handleEnvelope dispatches one decoded client message onto the bus.
// It returns false when the connection should close (a client_exited
// notice or a kill_session request); a payload that fails to decode is
// skipped and the connection stays open.
func (s *Server) handleEnvelope(clientID int, env ipc.Envelope) bool {
	ctx := env.ContextValue().Add("server_router")
	switch ipc.ClientToServerKind(env.Kind) {
	case ipc.KindKey:
		var p ipc.KeyPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return true
		}
		s.bus.Screen.Send(bus.NewClientKey(ctx, clientID, p.Raw))
	case ipc.KindTerminalResize:
		var p ipc.TerminalResizePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return true
		}
		s.bus.Screen.Send(bus.NewTerminalResize(ctx, clientID, p.Rows, p.Cols))
	case ipc.KindClientExited:
		return false
	case ipc.KindKillSession:
		go s.Close()
		return false
	case ipc.KindAction:
		var p ipc.ActionPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return true
		}
		var arg string
		if len(p.Args) > 0 {
			json.Unmarshal(p.Args, &arg)
		}
		action, err := keybind.ParseAction(p.Name, arg)
		if err != nil {
			log.Printf("server: action from client %d: %v", clientID, err)
			return true
		}
		s.bus.Screen.Send(bus.NewClientAction(ctx, clientID, action))
	case ipc.KindListClients, ipc.KindFirstClientConnected:
		// Connection-bookkeeping messages have no server-side effect yet;
		// acknowledging nothing is harmless since the client doesn't block
		// on a reply.
	}
	return true
}
