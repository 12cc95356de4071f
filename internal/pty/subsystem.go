// Package pty is the PTY subsystem (spec.md §4.4): it turns "spawn"
// requests from the thread bus into running children with dedicated
// reader goroutines, and implements the adaptive render-coalescing
// protocol that keeps interactive latency low while amortizing
// rendering cost under output flooding.
//
// Grounded in h2's internal/virtualterminal.VT.PipeOutput
// (_examples/dcosson-h2/internal/virtualterminal/vt.go), generalized
// from "one VT, one reader" to "one reader per pane id" and extended
// with the coalescing state machine h2 doesn't need (h2 always renders
// synchronously after every read).
package pty

import (
	"io"
	"sync"
	"time"

	"loom/internal/bus"
	"loom/internal/ipc"
	"loom/internal/ptyio"
)

const readChunkSize = 64 * 1024

// Subsystem owns the live PTY handles and their reader goroutines.
type Subsystem struct {
	bus *bus.Bus

	mu      sync.Mutex
	handles map[int]*ptyio.Handle
	exited  map[int]chan struct{}
}

// New creates a Subsystem that delivers PtyBytes/Render/PaneExited onto
// b.Screen.
func New(b *bus.Bus) *Subsystem {
	return &Subsystem{
		bus:     b,
		handles: make(map[int]*ptyio.Handle),
		exited:  make(map[int]chan struct{}),
	}
}

// Spawn forks a child for terminalID and starts its reader goroutine.
func (s *Subsystem) Spawn(ctx ipc.ErrorContext, terminalID int, cfg ptyio.SpawnConfig) error {
	h, err := ptyio.Spawn(cfg)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.handles[terminalID] = h
	s.exited[terminalID] = make(chan struct{})
	s.mu.Unlock()

	go s.readLoop(ctx.Add("pty"), terminalID, h)
	return nil
}

// Run is the Pty role's event loop (spec.md §4.3): it consumes
// PtyInstructions off b.Pty until the queue is closed, dispatching each
// to the matching Subsystem method. It is the Pty-role counterpart to
// screen.Screen.Run, completing the six-thread bus spec.md §4.3
// enumerates (Screen, Pty, PluginHost, PtyWriter, BackgroundJobs,
// ServerRouter) — here PtyWriter's job (writing to a child's stdin) is
// folded into this same loop rather than its own goroutine, since
// writes are cheap and ordering them behind spawns/resizes/closes on
// one channel is simpler than a second thread with its own races.
func (s *Subsystem) Run() {
	for {
		instr, ok := s.bus.Pty.Recv()
		if !ok {
			return
		}
		s.dispatch(instr)
	}
}

func (s *Subsystem) dispatch(instr bus.PtyInstruction) {
	switch i := instr.(type) {
	case bus.SpawnPty:
		cfg := ptyio.SpawnConfig{Command: i.Command, Args: i.Args, Rows: i.Rows, Cols: i.Cols, Env: i.Env}
		if err := s.Spawn(i.Context(), i.TerminalID, cfg); err != nil {
			s.bus.Screen.Send(bus.NewPaneExited(i.Context(), i.TerminalID, -1, err))
		}
	case bus.WritePty:
		if h, ok := s.Handle(i.TerminalID); ok {
			_, _ = h.Write(i.Data)
		}
	case bus.ResizePty:
		_ = s.Resize(i.TerminalID, i.Cols, i.Rows, i.PxWidth, i.PxHeight)
	case bus.ClosePty:
		// readLoop's handleExit owns the Cmd.Wait() call (it already
		// observes the child's exit via EOF on the PTY master and closes
		// s.exited[terminalID] once that completes), so KillThenForceKill
		// only needs to watch that channel rather than waiting itself.
		if h, ok := s.Handle(i.TerminalID); ok {
			s.mu.Lock()
			exited := s.exited[i.TerminalID]
			s.mu.Unlock()
			if exited != nil {
				go h.KillThenForceKill(5*time.Second, exited)
			}
		}
	}
}

// Handle returns the live handle for a pane, if any.
func (s *Subsystem) Handle(terminalID int) (*ptyio.Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.handles[terminalID]
	return h, ok
}

// Resize forwards to ptyio.Handle.SetTerminalSize for a live pane.
func (s *Subsystem) Resize(terminalID, cols, rows, pxW, pxH int) error {
	h, ok := s.Handle(terminalID)
	if !ok {
		return nil
	}
	return h.SetTerminalSize(cols, rows, pxW, pxH)
}

// Close terminates and forgets a pane's handle.
func (s *Subsystem) Close(terminalID int) {
	s.mu.Lock()
	h, ok := s.handles[terminalID]
	delete(s.handles, terminalID)
	s.mu.Unlock()
	if ok {
		_ = h.Close()
	}
}

// readLoop reads child output in readChunkSize chunks and delivers
// PtyBytes+Render pairs to Screen, applying the coalescing protocol
// from spec.md §4.4. It returns (and calls the exit callback) once the
// child's PTY read fails — in practice, once the child exits and its
// PTY master returns EOF/EIO.
func (s *Subsystem) readLoop(ctx ipc.ErrorContext, terminalID int, h *ptyio.Handle) {
	buf := make([]byte, readChunkSize)
	cs := newCoalescer()
	var flushTimer *time.Timer
	var flushC <-chan time.Time

	sendRender := func() {
		s.bus.Screen.Send(bus.NewRender(ctx, terminalID))
	}

	for {
		n, err := h.Master.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			s.bus.Screen.Send(bus.NewPtyBytes(ctx, terminalID, chunk))

			sendStart := time.Now()
			if cs.beforeSend(sendStart) {
				sendRender()
				cs.observeSendDuration(time.Since(sendStart))
			} else if flushTimer == nil {
				flushTimer = time.NewTimer(cs.flushDeadline)
				flushC = flushTimer.C
			}
		}
		if flushC != nil {
			select {
			case <-flushC:
				sendRender()
				flushTimer = nil
				flushC = nil
			default:
			}
		}
		if err != nil {
			if flushTimer != nil {
				flushTimer.Stop()
			}
			s.handleExit(ctx, terminalID, h, err)
			return
		}
	}
}

func (s *Subsystem) handleExit(ctx ipc.ErrorContext, terminalID int, h *ptyio.Handle, readErr error) {
	s.mu.Lock()
	delete(s.handles, terminalID)
	exited := s.exited[terminalID]
	delete(s.exited, terminalID)
	s.mu.Unlock()

	waitErr := h.Cmd.Wait()
	if exited != nil {
		close(exited)
	}
	exitCode := 0
	if waitErr != nil {
		exitCode = -1
	} else if readErr != io.EOF {
		exitCode = 0
	}
	s.bus.Screen.Send(bus.NewPaneExited(ctx, terminalID, exitCode, waitErr))
}
