package keybind

import (
	"fmt"
	"strings"
)

// ParseMode resolves a config mode name ("pane", "tab", ...) the same
// way transitionMode resolves an ActionSwitchMode's Arg.
func ParseMode(name string) (Mode, error) {
	m, ok := modeByName[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("keybind: unknown mode %q", name)
	}
	return m, nil
}

var actionByName = map[string]ActionKind{
	"switch_mode":          ActionSwitchMode,
	"split_horizontal":     ActionSplitHorizontal,
	"split_vertical":       ActionSplitVertical,
	"close_pane":           ActionClosePane,
	"toggle_fullscreen":    ActionToggleFullscreen,
	"focus_next_pane":      ActionFocusNextPane,
	"focus_previous_pane":  ActionFocusPreviousPane,
	"focus_pane_direction": ActionFocusPaneDirection,
	"resize_pane_direction": ActionResizePaneDirection,
	"new_tab":              ActionNewTab,
	"close_tab":            ActionCloseTab,
	"goto_tab":             ActionGotoTab,
	"toggle_floating":      ActionToggleFloating,
	"scroll_up":            ActionScrollUp,
	"scroll_down":          ActionScrollDown,
	"scroll_to_bottom":     ActionScrollToBottom,
	"enter_search":         ActionEnterSearch,
	"search_next":          ActionSearchNext,
	"search_previous":      ActionSearchPrevious,
	"detach":               ActionDetach,
	"quit":                 ActionQuit,
	"toggle_sync_input":    ActionToggleSyncInput,
}

// ParseAction resolves a config action name plus its optional argument
// into an Action.
func ParseAction(name, arg string) (Action, error) {
	kind, ok := actionByName[strings.ToLower(name)]
	if !ok {
		return Action{}, fmt.Errorf("keybind: unknown action %q", name)
	}
	return Action{Kind: kind, Arg: arg}, nil
}

// ParseKey decodes a config key string such as "ctrl-n", "alt-x", or
// "esc" into a KeyWithModifier, reusing DecodeKey's special-key names
// where they overlap and adding the modifier-prefix grammar config
// files need that raw terminal input never spells out explicitly.
func ParseKey(s string) (KeyWithModifier, error) {
	var mods ModifierSet
	parts := strings.Split(s, "-")
	body := parts[len(parts)-1]
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(p) {
		case "ctrl":
			mods |= ModCtrl
		case "alt":
			mods |= ModAlt
		case "shift":
			mods |= ModShift
		default:
			return KeyWithModifier{}, fmt.Errorf("keybind: unknown modifier %q in %q", p, s)
		}
	}

	if special, ok := specialKeyNames[strings.ToLower(body)]; ok {
		return KeyWithModifier{Key: BareKey{Special: special}, Modifiers: mods}, nil
	}
	runes := []rune(body)
	if len(runes) != 1 {
		return KeyWithModifier{}, fmt.Errorf("keybind: key %q is not a single rune or named special key", body)
	}
	return KeyWithModifier{Key: BareKey{Rune: runes[0]}, Modifiers: mods}, nil
}

var specialKeyNames = map[string]SpecialKey{
	"enter": Enter, "esc": Esc, "escape": Esc, "backspace": Backspace,
	"tab": Tab_, "up": Up, "down": Down, "left": Left, "right": Right,
	"pageup": PageUp, "pagedown": PageDown, "home": Home, "end": End,
	"delete": Delete,
	"f1": F1, "f2": F2, "f3": F3, "f4": F4, "f5": F5, "f6": F6,
	"f7": F7, "f8": F8, "f9": F9, "f10": F10, "f11": F11, "f12": F12,
}

// BuildTable starts from DefaultTable and applies config-driven
// overrides/additions on top, so a user's ~/.loom/config.yaml can
// rebind or extend without losing the built-in leader chords.
func BuildTable(entries []ConfigBinding) (*Table, error) {
	t := DefaultTable()
	for _, e := range entries {
		mode, err := ParseMode(e.Mode)
		if err != nil {
			return nil, err
		}
		key, err := ParseKey(e.Key)
		if err != nil {
			return nil, err
		}
		action, err := ParseAction(e.Action, e.Arg)
		if err != nil {
			return nil, err
		}
		t.Bind(mode, key, action)
	}
	return t, nil
}

// ConfigBinding is the keybind package's view of one config-file
// binding entry, decoupled from internal/config's YAML struct tags so
// this package has no dependency on the config package.
type ConfigBinding struct {
	Mode, Key, Action, Arg string
}
