package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"loom/internal/config"
	"loom/internal/geometry"
	"loom/internal/server"
)

// defaultBootstrapRect sizes a session before any client has attached
// and reported its real terminal size; the first TerminalResize a
// client sends re-solves every tab's layout against its actual
// dimensions.
var defaultBootstrapRect = geometry.Rect{Rows: 24, Cols: 80}

// newDaemonCmd returns the hidden command `run` re-execs itself as:
// the actual session process, detached from any controlling terminal.
func newDaemonCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:    "_daemon",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(name)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Session name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func runDaemon(name string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	srv, err := server.New(name, cfg)
	if err != nil {
		return err
	}
	if err := srv.Listen(); err != nil {
		return err
	}
	defer srv.Close()
	log.Printf("loom: session %q up (instance %s)", name, srv.ID)

	if err := srv.Bootstrap(defaultBootstrapRect); err != nil {
		return err
	}
	return srv.Serve()
}
