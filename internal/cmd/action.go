package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"loom/internal/ipc"
)

// newActionCmd sends a pre-resolved action to a running session,
// bypassing the keybind table entirely — the same ActionPayload a
// client sends after its own keybind lookup, but issued directly from
// the host shell (e.g. wiring a window-manager hotkey to
// `loom action work split_horizontal`).
func newActionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "action <name> <action> [arg]",
		Short: "Send a pre-resolved action to a running session",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, action := args[0], args[1]
			var argPayload json.RawMessage
			if len(args) == 3 {
				raw, err := json.Marshal(args[2])
				if err != nil {
					return err
				}
				argPayload = raw
			}
			return sendControl(name, string(ipc.KindAction), ipc.ActionPayload{Name: action, Args: argPayload})
		},
	}
}
