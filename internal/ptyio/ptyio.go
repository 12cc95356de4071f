// Package ptyio is the OS-input abstraction (spec.md §4.1): forking a
// pseudo-terminal child, toggling raw mode, delivering signals, and
// querying terminal size. It generalizes h2's single-VT
// internal/virtualterminal.VT.StartPTY/Resize (one PTY per process) into
// a factory usable once per pane.
package ptyio

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/creack/pty"
)

// Handle owns one child process's PTY master and exec.Cmd. All
// operations return an error rather than panicking: a failed op
// degrades the owning pane to an error state (spec.md §7) instead of
// taking down the server.
type Handle struct {
	Master *os.File
	Cmd    *exec.Cmd
	pid    int
}

// SpawnConfig describes a child to fork onto a new pseudo-terminal.
type SpawnConfig struct {
	Command    string
	Args       []string
	Rows, Cols int
	Env        []string // appended to os.Environ(); nil means inherit only
	Dir        string
}

// Spawn forks command/args onto a new PTY sized rows×cols and starts it.
// The returned Handle's Master is the PTY master end; read from it to
// receive the child's output (see internal/pty for the coalescing
// reader built on top of this).
func Spawn(cfg SpawnConfig) (*Handle, error) {
	cmd := exec.Command(cfg.Command, cfg.Args...)
	if cfg.Dir != "" {
		cmd.Dir = cfg.Dir
	}
	if len(cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), cfg.Env...)
	}
	master, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(cfg.Rows),
		Cols: uint16(cfg.Cols),
	})
	if err != nil {
		return nil, fmt.Errorf("spawn_terminal: start command %q: %w", cfg.Command, err)
	}
	pid := 0
	if cmd.Process != nil {
		pid = cmd.Process.Pid
	}
	return &Handle{Master: master, Cmd: cmd, pid: pid}, nil
}

// Pid returns the child's process id.
func (h *Handle) Pid() int { return h.pid }

// Write writes to the child's stdin (the PTY master, which the child
// reads from as its controlling terminal's input).
func (h *Handle) Write(p []byte) (int, error) {
	n, err := h.Master.Write(p)
	if err != nil {
		return n, fmt.Errorf("write_to_tty_stdin: %w", err)
	}
	return n, nil
}

// Tcdrain blocks until all queued output has been transmitted, matching
// the POSIX tcdrain(3) semantics spec.md §4.1 names explicitly. The PTY
// master doesn't expose a drain syscall directly; Sync approximates it
// for the common case of "give the child a moment to consume its queue"
// the way h2's 3-second WritePTY timeout already treats a non-draining
// child as hung (see internal/virtualterminal/vt.go ErrPTYWriteTimeout).
func (h *Handle) Tcdrain() error {
	if err := h.Master.Sync(); err != nil && !errors.Is(err, syscall.EINVAL) {
		return fmt.Errorf("tcdrain: %w", err)
	}
	return nil
}

// SetTerminalSize issues TIOCSWINSZ with both cell and pixel dimensions,
// passing pxW/pxH through as given. loom's client does not query pixel
// geometry (CSI 14 t / CSI 16 t), so no caller supplies nonzero values.
func (h *Handle) SetTerminalSize(cols, rows, pxW, pxH int) error {
	if err := pty.Setsize(h.Master, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
		X:    uint16(pxW),
		Y:    uint16(pxH),
	}); err != nil {
		return fmt.Errorf("set_terminal_size: %w", err)
	}
	return nil
}

// Kill sends SIGHUP, the polite "hang up the line" signal most shells
// and interactive programs treat as a request to exit.
func (h *Handle) Kill() error {
	if h.Cmd.Process == nil {
		return nil
	}
	if err := h.Cmd.Process.Signal(syscall.SIGHUP); err != nil {
		return fmt.Errorf("kill(SIGHUP): %w", err)
	}
	return nil
}

// ForceKill sends SIGKILL, used after a grace window elapses following
// Kill (spec.md §5 "Child kill uses SIGHUP then, if a grace window
// elapses, SIGKILL").
func (h *Handle) ForceKill() error {
	if h.Cmd.Process == nil {
		return nil
	}
	if err := h.Cmd.Process.Signal(syscall.SIGKILL); err != nil {
		return fmt.Errorf("force_kill(SIGKILL): %w", err)
	}
	return nil
}

// SendSigint sends SIGINT, used for the interrupt-priority delivery path.
func (h *Handle) SendSigint() error {
	if h.Cmd.Process == nil {
		return nil
	}
	if err := h.Cmd.Process.Signal(syscall.SIGINT); err != nil {
		return fmt.Errorf("send_sigint: %w", err)
	}
	return nil
}

// KillThenForceKill sends SIGHUP and escalates to SIGKILL if the process
// hasn't exited within grace.
func (h *Handle) KillThenForceKill(grace time.Duration, exited <-chan struct{}) {
	_ = h.Kill()
	select {
	case <-exited:
		return
	case <-time.After(grace):
		_ = h.ForceKill()
	}
}

// Close closes the PTY master file descriptor.
func (h *Handle) Close() error {
	return h.Master.Close()
}
