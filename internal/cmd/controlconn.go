package cmd

import (
	"fmt"
	"net"

	"loom/internal/ipc"
	"loom/internal/socketdir"
)

// dialControl opens a one-shot control connection to name's session:
// the attach handshake, without entering the interactive I/O loop
// internal/client drives. kill-session and action use this to send a
// single envelope and disconnect.
func dialControl(name string) (net.Conn, error) {
	path, err := socketdir.Find(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, name)
	}
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, name)
	}

	env, err := ipc.EncodeEnvelope(string(ipc.KindAttachClient), ipc.AttachClientPayload{
		SessionName: name,
	}, ipc.NewErrorContext().Add("cli_control"))
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ipc.WriteFrame(conn, ipc.FrameControl, env); err != nil {
		conn.Close()
		return nil, fmt.Errorf("control connection to %q: %w", name, err)
	}
	return conn, nil
}

// sendControl opens a control connection to name, sends one envelope,
// and closes it without waiting for a reply (none of the control-only
// messages get one).
func sendControl(name, kind string, payload any) error {
	conn, err := dialControl(name)
	if err != nil {
		return err
	}
	defer conn.Close()

	env, err := ipc.EncodeEnvelope(kind, payload, ipc.NewErrorContext().Add("cli_control"))
	if err != nil {
		return err
	}
	return ipc.WriteFrame(conn, ipc.FrameControl, env)
}
