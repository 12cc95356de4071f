// Package cmd is the CLI surface (spec.md §6): starting, attaching to,
// listing, and killing sessions, plus sending a pre-resolved action to
// a running one. Built with the same github.com/spf13/cobra tree h2's
// internal/cmd uses, one file per subcommand.
package cmd

import (
	"github.com/spf13/cobra"

	"loom/internal/version"
)

// NewRootCmd creates the root cobra command with all subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "loom",
		Short:         "A terminal multiplexer",
		Long:          "loom splits one terminal into tiled panes and tabs, each running its own child process, and keeps them running across disconnects.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	lsCmd := newLsCmd()
	rootCmd.AddCommand(
		newRunCmd(),
		newAttachCmd(),
		lsCmd,
		newLsAlias(lsCmd),
		newActionCmd(),
		newKillSessionCmd(),
		newKillAllCmd(),
		newDaemonCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the loom version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Println(version.DisplayVersion())
			return nil
		},
	}
}
