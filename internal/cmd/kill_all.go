package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"loom/internal/ipc"
	"loom/internal/socketdir"
)

func newKillAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kill-all",
		Short: "Kill every running session",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := socketdir.List()
			if err != nil {
				return err
			}
			var firstErr error
			for _, e := range entries {
				if err := sendControl(e.Name, string(ipc.KindKillSession), ipc.KillSessionPayload{SessionName: e.Name}); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "kill %q: %v\n", e.Name, err)
					if firstErr == nil {
						firstErr = err
					}
				}
			}
			return firstErr
		},
	}
}
