package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"loom/internal/socketdir"
	"loom/internal/tmpl"
)

func newRunCmd() *cobra.Command {
	var detach bool

	cmd := &cobra.Command{
		Use:   "run [name]",
		Short: "Start a new session",
		Long:  "Fork a daemon process owning a new session, then attach to it.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			if name == "" {
				name = tmpl.GenerateName()
			}

			if err := forkDaemon(name); err != nil {
				return err
			}

			if detach {
				fmt.Fprintf(cmd.ErrOrStderr(), "Session %q started (detached). Use 'loom attach %s' to connect.\n", name, name)
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Session %q started. Attaching...\n", name)
			return doAttach(name)
		},
	}

	cmd.Flags().BoolVar(&detach, "detach", false, "Don't auto-attach after starting")
	return cmd
}

// forkDaemon starts a detached `loom _daemon` process owning name's
// session and waits for its socket to appear.
//
// Grounded in h2's internal/session.ForkDaemon (internal/session/daemon.go):
// same re-exec-self-as-daemon shape, same /dev/null stdio redirection,
// same poll-for-socket handshake instead of a synchronous ready signal.
func forkDaemon(name string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("find executable: %w", err)
	}

	daemonCmd := exec.Command(exe, "_daemon", "--name", name)
	daemonCmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open /dev/null: %w", err)
	}
	daemonCmd.Stdin = devNull
	daemonCmd.Stdout = devNull
	daemonCmd.Stderr = devNull

	if err := daemonCmd.Start(); err != nil {
		devNull.Close()
		return fmt.Errorf("start daemon: %w", err)
	}
	go func() {
		daemonCmd.Wait()
		devNull.Close()
	}()

	sockPath := socketdir.Path(name)
	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		if _, err := os.Stat(sockPath); err == nil {
			return nil
		}
	}
	return fmt.Errorf("daemon did not start (socket %s not found)", sockPath)
}
