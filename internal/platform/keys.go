package platform

import (
	"fmt"
	"strconv"
	"strings"
)

// Canonical modifier names.
const (
	ModControl = "Control"
	ModShift   = "Shift"
	ModAlt     = "Alt"
	ModSuper   = "Super"
	ModMeta    = "Meta"
)

// modifierAliases maps lower-case modifier spellings to canonical names.
var modifierAliases = map[string]string{
	"control": ModControl, "ctrl": ModControl, "primary": ModControl,
	"shift": ModShift,
	"alt":   ModAlt, "mod1": ModAlt, "opt": ModAlt, "option": ModAlt,
	"super": ModSuper, "cmd": ModSuper, "command": ModSuper, "win": ModSuper,
	"meta": ModMeta,
}

// keyNameMap maps lower-case key spellings to X keysym names.
var keyNameMap = map[string]string{
	"return": "Return", "enter": "Return", "tab": "Tab", "space": "space",
	"delete": "Delete", "backspace": "BackSpace", "escape": "Escape", "esc": "Escape",
	"up": "Up", "down": "Down", "left": "Left", "right": "Right",
	"home": "Home", "end": "End", "pageup": "Page_Up", "pagedown": "Page_Down",
	"insert": "Insert", "plus": "plus", "minus": "minus",
	"f1": "F1", "f2": "F2", "f3": "F3", "f4": "F4", "f5": "F5", "f6": "F6",
	"f7": "F7", "f8": "F8", "f9": "F9", "f10": "F10", "f11": "F11", "f12": "F12",
}

// Chord is a base key plus the modifiers held while it is pressed. Key is
// an X keysym name; Code, when non-zero, is a raw keycode used instead.
type Chord struct {
	Modifiers []string `yaml:"modifiers,omitempty" json:"modifiers,omitempty"`
	Key       string   `yaml:"key,omitempty"       json:"key,omitempty"`
	Code      int      `yaml:"code,omitempty"      json:"code,omitempty"`
}

// String renders the chord in accelerator form, e.g. "<Control><Shift>Right".
func (c Chord) String() string {
	var b strings.Builder
	for _, m := range c.Modifiers {
		fmt.Fprintf(&b, "<%s>", m)
	}
	if c.Code != 0 {
		fmt.Fprintf(&b, "#%d", c.Code)
	} else {
		b.WriteString(c.Key)
	}
	return b.String()
}

// ParseChord parses a key combination in accelerator form
// ("<Control>Home", "KP_Enter") or plus form ("ctrl+shift+t", "enter").
// A key of the form "#38" is a raw keycode.
func ParseChord(s string) (Chord, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Chord{}, fmt.Errorf("empty key combination")
	}
	var mods []string
	var key string

	if strings.HasPrefix(s, "<") {
		rest := s
		for strings.HasPrefix(rest, "<") {
			end := strings.Index(rest, ">")
			if end < 0 {
				return Chord{}, fmt.Errorf("invalid key combination %q: unterminated modifier", s)
			}
			mod, err := canonicalModifier(rest[1:end])
			if err != nil {
				return Chord{}, fmt.Errorf("invalid key combination %q: %w", s, err)
			}
			mods = append(mods, mod)
			rest = rest[end+1:]
		}
		key = rest
	} else {
		parts := strings.Split(s, "+")
		for i, p := range parts {
			p = strings.TrimSpace(p)
			if i == len(parts)-1 {
				key = p
				break
			}
			mod, err := canonicalModifier(p)
			if err != nil {
				return Chord{}, fmt.Errorf("invalid key combination %q: %w", s, err)
			}
			mods = append(mods, mod)
		}
	}

	if key == "" {
		return Chord{}, fmt.Errorf("no key specified in combo %q, only modifiers", s)
	}
	c := Chord{Modifiers: mods}
	if strings.HasPrefix(key, "#") {
		code, err := strconv.Atoi(key[1:])
		if err != nil || code <= 0 {
			return Chord{}, fmt.Errorf("invalid keycode %q", key)
		}
		c.Code = code
		return c, nil
	}
	c.Key = canonicalKey(key)
	return c, nil
}

// ParseModifiers parses a list of modifier names into canonical form.
func ParseModifiers(names []string) ([]string, error) {
	var mods []string
	for _, n := range names {
		m, err := canonicalModifier(n)
		if err != nil {
			return nil, err
		}
		mods = append(mods, m)
	}
	return mods, nil
}

func canonicalModifier(s string) (string, error) {
	if m, ok := modifierAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m, nil
	}
	return "", fmt.Errorf("unknown modifier: %q", s)
}

func canonicalKey(s string) string {
	if k, ok := keyNameMap[strings.ToLower(s)]; ok {
		return k
	}
	return s
}

// UnresolvedKeyError reports a character or key with no mapping in the
// active keymap.
type UnresolvedKeyError struct {
	Key string
}

func (e *UnresolvedKeyError) Error() string {
	return fmt.Sprintf("no key mapping for %q", e.Key)
}

// Keymap maps typed characters to the chords that produce them.
type Keymap map[rune]Chord

// Resolve returns the chord for r, or an *UnresolvedKeyError.
func (k Keymap) Resolve(r rune) (Chord, error) {
	if c, ok := k[r]; ok {
		return c, nil
	}
	return Chord{}, &UnresolvedKeyError{Key: string(r)}
}

// ResolveText resolves every character of text. It fails on the first
// unmapped character without returning a partial result.
func (k Keymap) ResolveText(text string) ([]Chord, error) {
	chords := make([]Chord, 0, len(text))
	for _, r := range text {
		c, err := k.Resolve(r)
		if err != nil {
			return nil, err
		}
		chords = append(chords, c)
	}
	return chords, nil
}

// usShifted maps shifted US-layout characters to their base key.
var usShifted = map[rune]string{
	'!': "1", '@': "2", '#': "3", '$': "4", '%': "5", '^': "6", '&': "7",
	'*': "8", '(': "9", ')': "0", '_': "minus", '+': "equal", '{': "bracketleft",
	'}': "bracketright", '|': "backslash", ':': "semicolon", '"': "apostrophe",
	'<': "comma", '>': "period", '?': "slash", '~': "grave",
}

// usUnshifted maps unshifted US-layout punctuation to keysym names.
var usUnshifted = map[rune]string{
	' ': "space", '\n': "Return", '\t': "Tab",
	'-': "minus", '=': "equal", '[': "bracketleft", ']': "bracketright",
	'\\': "backslash", ';': "semicolon", '\'': "apostrophe", ',': "comma",
	'.': "period", '/': "slash", '`': "grave",
}

// DefaultKeymap returns the US keyboard layout for printable ASCII.
func DefaultKeymap() Keymap {
	k := make(Keymap, 100)
	for r := 'a'; r <= 'z'; r++ {
		k[r] = Chord{Key: string(r)}
		k[r-'a'+'A'] = Chord{Modifiers: []string{ModShift}, Key: string(r)}
	}
	for r := '0'; r <= '9'; r++ {
		k[r] = Chord{Key: string(r)}
	}
	for r, name := range usUnshifted {
		k[r] = Chord{Key: name}
	}
	for r, base := range usShifted {
		k[r] = Chord{Modifiers: []string{ModShift}, Key: base}
	}
	return k
}
