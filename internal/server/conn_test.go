package server

import (
	"encoding/json"
	"net"
	"testing"

	"loom/internal/config"
	"loom/internal/ipc"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	srv, err := New("conn-test", &config.Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv
}

func TestAttachRegistersClient(t *testing.T) {
	srv := newTestServer(t)
	local, remote := net.Pipe()
	defer local.Close()
	defer remote.Close()

	done := make(chan struct{})
	var id int
	var ok bool
	go func() {
		id, ok = srv.attach(local)
		close(done)
	}()

	env, err := ipc.EncodeEnvelope(string(ipc.KindAttachClient), ipc.AttachClientPayload{
		SessionName: "conn-test", Rows: 24, Cols: 80,
	}, ipc.NewErrorContext())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := ipc.WriteFrame(remote, ipc.FrameControl, env); err != nil {
		t.Fatalf("write attach frame: %v", err)
	}
	<-done

	if !ok {
		t.Fatal("attach() reported failure for a valid handshake")
	}
	srv.mu.Lock()
	_, registered := srv.clients[id]
	srv.mu.Unlock()
	if !registered {
		t.Fatalf("client %d not registered after attach", id)
	}
}

func TestAttachRejectsNonAttachFirstMessage(t *testing.T) {
	srv := newTestServer(t)
	local, remote := net.Pipe()
	defer local.Close()
	defer remote.Close()

	done := make(chan struct{})
	var ok bool
	go func() {
		_, ok = srv.attach(local)
		close(done)
	}()

	env, _ := ipc.EncodeEnvelope(string(ipc.KindKey), ipc.KeyPayload{Raw: []byte("x")}, ipc.NewErrorContext())
	if err := ipc.WriteFrame(remote, ipc.FrameControl, env); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	<-done

	if ok {
		t.Fatal("attach() accepted a non-attach first message")
	}
}

func TestHandleEnvelopeClientExitedEndsConnection(t *testing.T) {
	srv := newTestServer(t)
	env, err := ipc.EncodeEnvelope(string(ipc.KindClientExited), ipc.ClientExitedPayload{}, ipc.NewErrorContext())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := ipc.DecodeEnvelope(env)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if keepOpen := srv.handleEnvelope(1, decoded); keepOpen {
		t.Fatal("want handleEnvelope to signal connection close on client_exited")
	}
}

func TestHandleEnvelopeKeyForwardsWithoutClosing(t *testing.T) {
	srv := newTestServer(t)
	payload, _ := json.Marshal(ipc.KeyPayload{Raw: []byte("a")})
	env := ipc.Envelope{Kind: string(ipc.KindKey), Payload: payload}
	if keepOpen := srv.handleEnvelope(1, env); !keepOpen {
		t.Fatal("want handleEnvelope to keep the connection open for a key message")
	}
}
