// Package client is the attach side of a loom session: it dials the
// session's Unix socket, puts the local terminal into raw mode, and
// shuttles bytes between stdin/stdout and the server's framed protocol.
//
// Grounded in h2's internal/session/client/overlay.go Run/ReadInput/
// WatchResize (raw-mode setup via golang.org/x/term, termenv color-hint
// detection, a SIGWINCH-driven resize goroutine), generalized from h2's
// single in-process VT pair to a network client that knows nothing
// about panes — every byte it reads from stdin becomes a KeyPayload,
// every RenderPayload it receives is written straight to stdout, and
// internal/screen on the other end of the socket does all the
// compositing.
package client

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"loom/internal/ipc"
	"loom/internal/ptyio"
	"loom/internal/socketdir"
)

// Client owns one attached connection to a running session.
type Client struct {
	conn    io.ReadWriteCloser
	out     *termenv.Output
	restore func() error

	exitCh chan ipc.ExitPayload
}

// Dial connects to sessionName's socket and performs the attach
// handshake, reporting rows/cols as the client's current terminal size.
func Dial(sessionName string, rows, cols int, dialer func(path string) (io.ReadWriteCloser, error)) (*Client, error) {
	path, err := socketdir.Find(sessionName)
	if err != nil {
		return nil, err
	}
	conn, err := dialer(path)
	if err != nil {
		return nil, fmt.Errorf("client: dial %s: %w", path, err)
	}

	out := termenv.NewOutput(os.Stdout)
	var fg, bg string
	if c := out.ForegroundColor(); c != nil {
		fg = colorToX11(c)
	}
	if c := out.BackgroundColor(); c != nil {
		bg = colorToX11(c)
	}

	env, err := ipc.EncodeEnvelope(string(ipc.KindAttachClient), ipc.AttachClientPayload{
		SessionName: sessionName,
		Rows:        rows,
		Cols:        cols,
		Fg:          fg,
		Bg:          bg,
		Dark:        out.HasDarkBackground(),
	}, ipc.NewErrorContext().Add("client_attach"))
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ipc.WriteFrame(conn, ipc.FrameControl, env); err != nil {
		conn.Close()
		return nil, fmt.Errorf("client: send attach: %w", err)
	}

	return &Client{
		conn:   conn,
		out:    out,
		exitCh: make(chan ipc.ExitPayload, 1),
	}, nil
}

// EnterRawMode puts the controlling terminal into raw mode, returning
// false without error when stdout isn't a TTY (e.g. piped output),
// since there is nothing to restore in that case.
func (c *Client) EnterRawMode() (bool, error) {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return false, nil
	}
	st, err := ptyio.MakeRaw(os.Stdin)
	if err != nil {
		return false, err
	}
	c.restore = func() error { return ptyio.Restore(os.Stdin, st) }
	return true, nil
}

// Restore undoes EnterRawMode, if it was entered.
func (c *Client) Restore() error {
	if c.restore == nil {
		return nil
	}
	return c.restore()
}

// Run drives the client until the server sends an exit notice or the
// connection drops: a read loop forwarding stdin keystrokes, a
// SIGWINCH-driven resize watcher, and the frame loop below all run
// concurrently, with ReadFrames as the one that blocks the caller.
func (c *Client) Run() error {
	stop := make(chan struct{})
	defer close(stop)

	go c.readStdin()
	go ptyio.WatchResize(stop, c.sendResize)

	return c.readFrames()
}

// readStdin forwards every byte read from stdin as a KeyPayload. A read
// error (EOF on a closed terminal, most often) ends the loop silently;
// the frame loop's own termination is what actually ends Run.
func (c *Client) readStdin() {
	buf := make([]byte, 4096)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			raw := make([]byte, n)
			copy(raw, buf[:n])
			if sendErr := c.send(string(ipc.KindKey), ipc.KeyPayload{Raw: raw}); sendErr != nil {
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// sendResize reports the terminal's current size, called once per
// SIGWINCH.
func (c *Client) sendResize() {
	cols, rows, err := ptyio.GetSize(os.Stdout)
	if err != nil {
		return
	}
	_ = c.send(string(ipc.KindTerminalResize), ipc.TerminalResizePayload{Rows: rows, Cols: cols})
}

func (c *Client) send(kind string, payload any) error {
	env, err := ipc.EncodeEnvelope(kind, payload, ipc.NewErrorContext().Add("client_send"))
	if err != nil {
		return err
	}
	return ipc.WriteFrame(c.conn, ipc.FrameControl, env)
}

// readFrames is the server-to-client loop: every RenderPayload is
// written straight to stdout (the server already composited it into
// final escape sequences), and an ExitPayload ends the loop.
func (c *Client) readFrames() error {
	for {
		ft, payload, err := ipc.ReadFrame(c.conn)
		if err != nil {
			return err
		}
		if ft != ipc.FrameControl {
			continue
		}
		env, err := ipc.DecodeEnvelope(payload)
		if err != nil {
			continue
		}
		switch ipc.ServerToClientKind(env.Kind) {
		case ipc.KindRender:
			var p ipc.RenderPayload
			if err := json.Unmarshal(env.Payload, &p); err == nil {
				c.out.Write(p.Bytes)
			}
		case ipc.KindExit:
			var p ipc.ExitPayload
			json.Unmarshal(env.Payload, &p)
			c.exitCh <- p
			return nil
		case ipc.KindLog, ipc.KindUnblockInputThread, ipc.KindSwitchToMode:
			// Status-line and input-unblock notices have no terminal
			// rendering of their own yet; the composed RenderPayload that
			// follows them already reflects any mode change.
		}
	}
}

// Exit returns the reason the server ended the session, if Run returned
// because of a KindExit message rather than a connection error.
func (c *Client) Exit() (ipc.ExitPayload, bool) {
	select {
	case p := <-c.exitCh:
		return p, true
	default:
		return ipc.ExitPayload{}, false
	}
}

// SendClientExited tells the server this client is detaching
// cleanly, so it's removed from the client table without waiting on a
// read error on the now-closing connection.
func (c *Client) SendClientExited() error {
	return c.send(string(ipc.KindClientExited), ipc.ClientExitedPayload{})
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
