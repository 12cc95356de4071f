package cmd

import (
	"fmt"
	"io"
	"net"
	"os"

	"github.com/spf13/cobra"

	"loom/internal/client"
	"loom/internal/ipc"
	"loom/internal/ptyio"
)

func newAttachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attach <name>",
		Short: "Attach to a running session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doAttach(args[0])
		},
	}
}

func unixDialer(path string) (io.ReadWriteCloser, error) {
	return net.Dial("unix", path)
}

// doAttach dials name's session socket, puts the terminal into raw
// mode, and pumps bytes until the server ends the session or the
// connection drops.
func doAttach(name string) error {
	cols, rows, err := ptyio.GetSize(os.Stdout)
	if err != nil {
		cols, rows = 80, 24
	}

	c, err := client.Dial(name, rows, cols, unixDialer)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, name)
	}
	defer c.Close()

	entered, err := c.EnterRawMode()
	if err != nil {
		return fmt.Errorf("attach: %w", err)
	}
	if entered {
		defer c.Restore()
	}

	if err := c.Run(); err != nil {
		return fmt.Errorf("session %q: %w", name, err)
	}

	if exit, ok := c.Exit(); ok && exit.Reason == ipc.ExitError {
		return fmt.Errorf("session %q exited: %s", name, exit.Message)
	}
	return nil
}
