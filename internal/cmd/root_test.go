package cmd

import "testing"

func TestNewRootCmdWiresExpectedSubcommands(t *testing.T) {
	root := NewRootCmd()
	want := []string{"run", "attach", "list", "ls", "action", "kill", "kill-all", "_daemon", "version"}
	for _, name := range want {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not wired (err=%v)", name, err)
		}
	}
}

func TestDaemonSubcommandIsHidden(t *testing.T) {
	root := NewRootCmd()
	cmd, _, err := root.Find([]string{"_daemon"})
	if err != nil {
		t.Fatalf("Find(_daemon): %v", err)
	}
	if !cmd.Hidden {
		t.Fatal("_daemon should not appear in --help output")
	}
}
