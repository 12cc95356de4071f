package keybind

import "unicode/utf8"

// specialSeqs maps common CSI/SS3 escape sequences (as sent by most
// terminals in application-cursor-keys-off mode) to SpecialKey values.
// This is intentionally the common subset, not an exhaustive terminfo
// database — the full table belongs to whatever terminfo/termcap
// library a config layer would pull in, which is out of scope here.
var specialSeqs = map[string]SpecialKey{
	"\x1b[A": Up, "\x1b[B": Down, "\x1b[C": Right, "\x1b[D": Left,
	"\x1bOA": Up, "\x1bOB": Down, "\x1bOC": Right, "\x1bOD": Left,
	"\x1b[H": Home, "\x1b[F": End,
	"\x1b[5~": PageUp, "\x1b[6~": PageDown,
	"\x1b[3~": Delete,
	"\x1bOP": F1, "\x1bOQ": F2, "\x1bOR": F3, "\x1bOS": F4,
}

// DecodeKey decodes the first key event out of raw client input,
// returning the event and how many bytes it consumed. It recognizes
// bare control characters (Ctrl-modified letters arrive as 0x01-0x1a),
// the common cursor/function-key escape sequences above, and otherwise
// decodes one UTF-8 rune as a plain keypress.
func DecodeKey(raw []byte) (KeyWithModifier, int) {
	if len(raw) == 0 {
		return KeyWithModifier{}, 0
	}

	for seq, special := range specialSeqs {
		if len(raw) >= len(seq) && string(raw[:len(seq)]) == seq {
			return KeyWithModifier{Key: BareKey{Special: special}}, len(seq)
		}
	}

	b := raw[0]
	switch b {
	case 0x1b:
		if len(raw) == 1 {
			return KeyWithModifier{Key: BareKey{Special: Esc}}, 1
		}
		// Unrecognized escape sequence or a bare Alt-modified key
		// (ESC followed by one printable byte, as most terminals send
		// for Alt+key when meta-sends-escape is configured).
		if len(raw) >= 2 && raw[1] >= 0x20 && raw[1] < 0x7f {
			r, size := utf8.DecodeRune(raw[1:])
			return KeyWithModifier{Key: BareKey{Rune: r}, Modifiers: ModAlt}, 1 + size
		}
		return KeyWithModifier{Key: BareKey{Special: Esc}}, 1
	case '\r', '\n':
		return KeyWithModifier{Key: BareKey{Special: Enter}}, 1
	case 0x7f, 0x08:
		return KeyWithModifier{Key: BareKey{Special: Backspace}}, 1
	case '\t':
		return KeyWithModifier{Key: BareKey{Special: Tab_}}, 1
	}

	if b >= 0x01 && b <= 0x1a && b != '\t' && b != '\r' && b != '\n' {
		// Ctrl-a through Ctrl-z, excluding the ones already handled above.
		return KeyWithModifier{Key: BareKey{Rune: rune('a' + b - 1)}, Modifiers: ModCtrl}, 1
	}

	r, size := utf8.DecodeRune(raw)
	if r == utf8.RuneError && size <= 1 {
		return KeyWithModifier{Key: BareKey{Rune: rune(b)}}, 1
	}
	return KeyWithModifier{Key: BareKey{Rune: r}}, size
}

// DecodeAll decodes every key event in raw, in order. A client's single
// read may contain several keys (fast typing, pasted text without
// bracketed-paste markers, or a multi-byte escape sequence followed by
// more input).
func DecodeAll(raw []byte) []KeyWithModifier {
	var out []KeyWithModifier
	for len(raw) > 0 {
		k, n := DecodeKey(raw)
		if n == 0 {
			break
		}
		out = append(out, k)
		raw = raw[n:]
	}
	return out
}
