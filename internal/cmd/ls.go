package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"loom/internal/socketdir"
)

// newLsCmd lists every session with a live socket, one per line,
// marking the one LOOM_SESSION names (a shell running inside a pane
// has this set, the same way tmux exports $TMUX) as "(current)".
//
// Grounded in h2's internal/cmd/ls.go: the print-one-line-per-agent
// shape, narrowed to sessions that need no live status query since
// loom's socket alone (not a request/response roundtrip) is already
// the signal a session exists.
func newLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List running sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := socketdir.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No running sessions.")
				return nil
			}
			current := os.Getenv("LOOM_SESSION")
			for _, e := range entries {
				if e.Name == current {
					fmt.Fprintf(cmd.OutOrStdout(), "%s (current)\n", e.Name)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), e.Name)
				}
			}
			return nil
		},
	}
}

// newLsAlias returns a hidden "ls" command that delegates to "list".
func newLsAlias(listCmd *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:    "ls",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listCmd.RunE(listCmd, args)
		},
	}
}
