package socketdir

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"work", "work.sock"},
		{"silent-deer", "silent-deer.sock"},
	}
	for _, tt := range tests {
		if got := Format(tt.name); got != tt.want {
			t.Errorf("Format(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		filename string
		wantName string
		wantOK   bool
	}{
		{"work.sock", "work", true},
		{"silent-deer.sock", "silent-deer", true},
		{"notasocket.txt", "", false},
		{".sock", "", false},
	}
	for _, tt := range tests {
		entry, ok := Parse(tt.filename)
		if ok != tt.wantOK {
			t.Errorf("Parse(%q) ok = %v, want %v", tt.filename, ok, tt.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if entry.Name != tt.wantName {
			t.Errorf("Parse(%q).Name = %q, want %q", tt.filename, entry.Name, tt.wantName)
		}
	}
}

func TestPath(t *testing.T) {
	got := Path("work")
	want := filepath.Join(Dir(), "work.sock")
	if got != want {
		t.Errorf("Path(work) = %q, want %q", got, want)
	}
}

func TestFind(t *testing.T) {
	dir := t.TempDir()

	os.WriteFile(filepath.Join(dir, "work.sock"), nil, 0o600)
	os.WriteFile(filepath.Join(dir, "play.sock"), nil, 0o600)

	t.Run("single match", func(t *testing.T) {
		path, err := FindIn(dir, "work")
		if err != nil {
			t.Fatal(err)
		}
		want := filepath.Join(dir, "work.sock")
		if path != want {
			t.Errorf("Find(work) = %q, want %q", path, want)
		}
	})

	t.Run("no match", func(t *testing.T) {
		_, err := FindIn(dir, "nonexistent")
		if err == nil {
			t.Fatal("expected error for no match")
		}
	})
}

func TestList(t *testing.T) {
	dir := t.TempDir()

	os.WriteFile(filepath.Join(dir, "work.sock"), nil, 0o600)
	os.WriteFile(filepath.Join(dir, "play.sock"), nil, 0o600)
	os.WriteFile(filepath.Join(dir, "random.txt"), nil, 0o600) // ignored

	entries, err := ListIn(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
	}
	for _, e := range entries {
		if e.Path == "" {
			t.Error("entry has empty Path")
		}
	}
}

func TestListIn_EmptyDir(t *testing.T) {
	entries, err := ListIn(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(entries))
	}
}

func TestListIn_NonexistentDir(t *testing.T) {
	entries, err := ListIn("/nonexistent/path")
	if err != nil {
		t.Fatal(err)
	}
	if entries != nil {
		t.Errorf("expected nil, got %v", entries)
	}
}

func TestDir_ReferencesSockets(t *testing.T) {
	ResetDirCache()
	defer ResetDirCache()

	dir := Dir()
	if !strings.Contains(dir, "sock") {
		t.Errorf("Dir() = %q, expected it to reference sockets", dir)
	}
}

func TestDir_ShortensLongBase(t *testing.T) {
	ResetDirCache()
	defer ResetDirCache()

	longBase := filepath.Join(t.TempDir(), strings.Repeat("x", 200))
	t.Setenv("XDG_RUNTIME_DIR", longBase)

	dir := Dir()
	if len(dir) > maxSockPathLen {
		t.Errorf("Dir() = %q (%d bytes), want <= %d after shortening", dir, len(dir), maxSockPathLen)
	}
}

func TestDir_CachesAcrossCalls(t *testing.T) {
	ResetDirCache()
	defer ResetDirCache()

	first := Dir()
	second := Dir()
	if first != second {
		t.Errorf("Dir() not stable across calls: %q vs %q", first, second)
	}
}
