package cmd

import (
	"github.com/spf13/cobra"

	"loom/internal/ipc"
)

func newKillSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kill <name>",
		Short: "Kill a running session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendControl(args[0], string(ipc.KindKillSession), ipc.KillSessionPayload{SessionName: args[0]})
		},
	}
}
