package server

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"loom/internal/config"
	"loom/internal/geometry"
	"loom/internal/ipc"
	"loom/internal/layout"
	"loom/internal/pane"
	"loom/internal/screen"
)

// cacheNode and cacheTab mirror layout.Node/screen.Tab in a form
// gopkg.in/yaml.v3 can (de)serialize directly, since layout.Node's Pane
// IDs are only meaningful within one running Screen and are
// renumbered on restore.
type cacheNode struct {
	Leaf     bool         `yaml:"leaf,omitempty"`
	Command  string       `yaml:"command,omitempty"` // leaf only
	Dir      int          `yaml:"dir,omitempty"`      // split only
	Children []cacheChild `yaml:"children,omitempty"` // split only
}

type cacheChild struct {
	Share float64   `yaml:"share"`
	Node  cacheNode `yaml:"node"`
}

type cacheTab struct {
	Name string    `yaml:"name"`
	Root cacheNode `yaml:"root"`
}

// layoutCache is the YAML document written to
// <config.ConfigDir()>/cache/<session>.layout (~/.loom/cache/) when the
// session closes (spec.md §4.11), so a later `loom run <name>` can
// resurrect the same tab/pane shape instead of starting with one blank
// pane. Closing a single tab does not write it.
type layoutCache struct {
	Tabs []cacheTab `yaml:"tabs"`
}

func cachePath(sessionName string) string {
	return filepath.Join(config.ConfigDir(), "cache", sessionName+".layout")
}

// SaveLayout writes s's current tabs to the resurrection cache,
// recording each pane's spawn command (the command SpawnInPane last
// recorded on the pane, or the screen's shell when none was recorded)
// and the split tree's shape with each Percent child's share (Fixed
// children are recorded as 50). Restore does not apply the recorded
// shares.
func SaveLayout(sessionName string, s *screen.Screen) error {
	path := cachePath(sessionName)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("layout cache: mkdir: %w", err)
	}

	cache := layoutCache{}
	for _, t := range s.Tabs {
		cache.Tabs = append(cache.Tabs, cacheTab{
			Name: t.Name,
			Root: encodeNode(t.Layout, t.Panes, s.Shell()),
		})
	}

	out, err := yaml.Marshal(cache)
	if err != nil {
		return fmt.Errorf("layout cache: marshal: %w", err)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("layout cache: write: %w", err)
	}
	return nil
}

func encodeNode(n *layout.Node, panes map[pane.ID]*pane.Pane, shell string) cacheNode {
	if n.IsLeaf() {
		cmd := shell
		if p, ok := panes[n.Pane]; ok && p.Command != "" {
			cmd = p.Command
		}
		return cacheNode{Leaf: true, Command: cmd}
	}
	children := make([]cacheChild, 0, len(n.Split.Children))
	for _, c := range n.Split.Children {
		share := 50.0
		if c.Size.Kind == geometry.Percent {
			share = c.Size.Share
		}
		children = append(children, cacheChild{Share: share, Node: encodeNode(c.Node, panes, shell)})
	}
	return cacheNode{Dir: int(n.Split.Direction), Children: children}
}

// LoadLayout reads back a session's resurrection cache, if any. A
// missing file is not an error: the caller falls back to a single
// default tab.
func LoadLayout(sessionName string) (*layoutCache, error) {
	path := cachePath(sessionName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("layout cache: read: %w", err)
	}
	var cache layoutCache
	if err := yaml.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("layout cache: unmarshal: %w", err)
	}
	return &cache, nil
}

// Restore rebuilds s's tabs from a cache loaded by LoadLayout, spawning
// each leaf's recorded command via s.SpawnInPane. rect sizes every
// restored tab, since every client shares one terminal size at attach
// time.
func Restore(s *screen.Screen, cache *layoutCache, rect geometry.Rect) error {
	ctx := ipc.NewErrorContext().Add("server_restore")
	for _, ct := range cache.Tabs {
		tab, err := s.NewTab(ct.Name, rect, 0)
		if err != nil {
			return err
		}
		if err := restoreNode(s, tab, ct.Root, rect, ctx); err != nil {
			return err
		}
	}
	return nil
}

func restoreNode(s *screen.Screen, tab *screen.Tab, n cacheNode, rect geometry.Rect, ctx ipc.ErrorContext) error {
	if n.Leaf {
		// tab.Focused already names the lone starting pane NewTab
		// created; reuse it as the first leaf instead of allocating a
		// second one.
		s.SpawnInPane(tab.Focused, n.Command, rect, ctx)
		return nil
	}
	// Every split is rebuilt through SplitPane's public API, which
	// always splits the focused pane 50/50. Deeper trees become a chain
	// of binary splits, each nested in the previous split's second
	// child: pane count is preserved, but the recorded shares and the
	// exact nesting are not reproduced.
	if len(n.Children) == 0 {
		return nil
	}
	if err := restoreNode(s, tab, n.Children[0].Node, rect, ctx); err != nil {
		return err
	}
	for _, c := range n.Children[1:] {
		newID, err := s.SplitPane(layout.Direction(n.Dir), ctx, rect.Rows, rect.Cols)
		if err != nil {
			return err
		}
		if err := restoreLeafOrSplit(s, tab, c.Node, newID, rect, ctx); err != nil {
			return err
		}
	}
	return nil
}

func restoreLeafOrSplit(s *screen.Screen, tab *screen.Tab, n cacheNode, newID pane.ID, rect geometry.Rect, ctx ipc.ErrorContext) error {
	if n.Leaf {
		s.SpawnInPane(newID, n.Command, rect, ctx)
		return nil
	}
	return restoreNode(s, tab, n, rect, ctx)
}
