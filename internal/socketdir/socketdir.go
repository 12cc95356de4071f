// Package socketdir names and discovers the Unix-domain session sockets
// spec.md §11 describes: one socket per session, named after the
// session, in a per-user directory with mode 0700.
//
// Grounded in h2's internal/socketdir (identical Format/Parse/Find/
// List/ListByType shape), narrowed from h2's two socket types
// ("agent"/"bridge", since h2 also ran an inter-agent message bridge
// out of scope here) down to loom's one: every socket names a session.
// The short-path symlink trick in resolveDir is kept from h2 as-is —
// AF_UNIX's sun_path is capped at 104-108 bytes depending on platform,
// and $XDG_RUNTIME_DIR or $HOME can easily make the natural path longer
// than that.
package socketdir

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"loom/internal/config"
)

// Entry is one discovered session socket.
type Entry struct {
	Name string // session name
	Path string // full path to the .sock file
}

// Format returns the socket filename for a session name: "work.sock".
func Format(name string) string {
	return name + ".sock"
}

// Parse extracts a session name from a socket filename like "work.sock".
// Returns false if the filename doesn't end in ".sock".
func Parse(filename string) (Entry, bool) {
	if !strings.HasSuffix(filename, ".sock") || filename == ".sock" {
		return Entry{}, false
	}
	return Entry{Name: strings.TrimSuffix(filename, ".sock")}, true
}

var (
	dirOnce   sync.Once
	dirCached string
)

// maxSockPathLen is a conservative cross-platform bound on sockaddr_un's
// sun_path (Linux allows 108 bytes, Darwin 104); the directory path
// alone must leave room for "/<name>.sock".
const maxSockPathLen = 80

// Dir returns the directory loom creates session sockets in, creating
// it (mode 0700) if necessary. Prefers $XDG_RUNTIME_DIR (cleared on
// reboot, already user-private) and falls back to ~/.loom/sockets. If
// the natural path is too long for AF_UNIX's sun_path, a short symlink
// under os.TempDir() is created and returned instead — h2 hit this in
// practice with long usernames under /Users on macOS.
func Dir() string {
	dirOnce.Do(func() {
		dirCached = resolveDir()
	})
	return dirCached
}

// ResetDirCache clears the memoized directory, for tests that need to
// exercise resolution against a different environment.
func ResetDirCache() {
	dirOnce = sync.Once{}
	dirCached = ""
}

func resolveDir() string {
	base := os.Getenv("XDG_RUNTIME_DIR")
	dir := filepath.Join(base, "loom", "sockets")
	if base == "" {
		dir = filepath.Join(config.ConfigDir(), "sockets")
	}
	_ = os.MkdirAll(dir, 0o700)

	if len(dir) <= maxSockPathLen {
		return dir
	}

	link := filepath.Join(os.TempDir(), "loom-sock")
	if target, err := os.Readlink(link); err == nil && target == dir {
		return link
	}
	os.Remove(link)
	if err := os.Symlink(dir, link); err != nil {
		return dir // can't shorten; caller's bind may still fail
	}
	return link
}

// Path returns the full socket path for a session name.
func Path(name string) string {
	return filepath.Join(Dir(), Format(name))
}

// Find globs for "<name>.sock" in the default socket directory.
// Returns an error if zero or more than one match (the latter should
// be impossible since names are unique, but a stale socket from a
// differently-cased name collision is handled the same way h2 did).
func Find(name string) (string, error) {
	return FindIn(Dir(), name)
}

// FindIn globs for "<name>.sock" in dir.
func FindIn(dir, name string) (string, error) {
	pattern := filepath.Join(dir, name+".sock")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no session socket found for %q", name)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous name %q: %d sockets match", name, len(matches))
	}
}

// List returns every session socket in the default directory.
func List() ([]Entry, error) {
	return ListIn(Dir())
}

// ListIn returns every session socket in dir.
func ListIn(dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var entries []Entry
	for _, de := range dirEntries {
		entry, ok := Parse(de.Name())
		if !ok {
			continue
		}
		entry.Path = filepath.Join(dir, de.Name())
		entries = append(entries, entry)
	}
	return entries, nil
}
