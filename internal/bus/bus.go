// Package bus implements the typed thread bus for the server's
// cooperating roles (spec.md §4.3 names six: Screen, PTY, PluginHost,
// PtyWriter, BackgroundJobs, and the server-router). Only Screen, Pty
// and BackgroundJobs have a channel here; PluginHost, PtyWriter and the
// server-router have none.
//
// Within any one role's channel, delivery is FIFO; there is no ordering
// guarantee across channels. A ScreenInstruction and any instruction it
// causes the Pty role to emit back to Screen (e.g. the PtyBytes+Render
// pair in internal/pty) must therefore ride the same channel to preserve
// invariant 4 in spec.md §8.
package bus

// Bus holds one unbounded channel each for the Screen, Pty and
// BackgroundJobs roles plus the single synchronous rendezvous channel
// reserved for deterministic shutdown. There is no channel for the
// PluginHost, PtyWriter or server-router roles.
type Bus struct {
	Screen         *Unbounded[ScreenInstruction]
	Pty            *Unbounded[PtyInstruction]
	BackgroundJobs *Unbounded[func()]

	// Exit is a sync (unbuffered) channel: sending blocks until Screen's
	// loop receives it, so a caller that wants "shutdown has begun" to be
	// observable doesn't race the unbounded queue's backlog.
	Exit chan ScreenExit
}

// New creates a Bus with all channels ready to use.
func New() *Bus {
	return &Bus{
		Screen:         NewUnbounded[ScreenInstruction](),
		Pty:            NewUnbounded[PtyInstruction](),
		BackgroundJobs: NewUnbounded[func()](),
		Exit:           make(chan ScreenExit),
	}
}

// Shutdown sends a ScreenExit on the rendezvous channel and blocks until
// the Screen role signals Done, giving the caller a deterministic point
// at which the Screen loop has stopped processing new instructions.
func (b *Bus) Shutdown() {
	done := make(chan struct{})
	b.Exit <- ScreenExit{Done: done}
	<-done
	b.Screen.Close()
	b.Pty.Close()
	b.BackgroundJobs.Close()
}
