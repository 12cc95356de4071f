package ptyio

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"
)

// GetSize queries the given terminal file's current size.
func GetSize(f *os.File) (cols, rows int, err error) {
	cols, rows, err = term.GetSize(int(f.Fd()))
	if err != nil {
		return 0, 0, fmt.Errorf("get terminal size: %w", err)
	}
	return cols, rows, nil
}

// MakeRaw puts fd into raw mode, returning the prior state for Restore.
func MakeRaw(f *os.File) (*term.State, error) {
	st, err := term.MakeRaw(int(f.Fd()))
	if err != nil {
		return nil, fmt.Errorf("set raw mode: %w", err)
	}
	return st, nil
}

// Restore restores a terminal file to the state MakeRaw saved.
func Restore(f *os.File, st *term.State) error {
	if err := term.Restore(int(f.Fd()), st); err != nil {
		return fmt.Errorf("restore terminal state: %w", err)
	}
	return nil
}

// WatchResize notifies onResize whenever SIGWINCH fires, until stop is
// closed. Mirrors h2's client/overlay.go WatchResize goroutine, whose
// sole job was calling a single VT's resize; here the callback is left
// to the caller (the client's own input-router-facing resize path) so
// it can re-run the layout solver across every pane instead.
func WatchResize(stop <-chan struct{}, onResize func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGWINCH)
	defer signal.Stop(sigCh)
	for {
		select {
		case <-sigCh:
			onResize()
		case <-stop:
			return
		}
	}
}
