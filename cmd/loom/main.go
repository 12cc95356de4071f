// Command loom is a terminal multiplexer: tiled panes and tabs, each
// running its own child process, persisted in a background session
// that survives the attached terminal closing.
package main

import (
	"errors"
	"fmt"
	"os"

	"loom/internal/cmd"
)

func main() {
	root := cmd.NewRootCmd()
	if err := root.Execute(); err != nil {
		code := 1
		if errors.Is(err, cmd.ErrSessionNotFound) {
			code = 2
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(code)
	}
}
