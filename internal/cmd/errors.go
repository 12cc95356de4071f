package cmd

import "errors"

// ErrSessionNotFound is returned (wrapped) by any subcommand that
// couldn't resolve a session name to a live socket, so main can map it
// to exit code 2 per spec.md §6 without the cobra layer knowing about
// exit codes at all.
var ErrSessionNotFound = errors.New("session not found")
