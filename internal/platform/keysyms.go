package platform

import (
	"regexp"
	"strings"
)

// namedKeysyms lists the X keysym names accepted as chord keys besides
// single ASCII letters and digits.
var namedKeysyms = map[string]bool{}

func init() {
	for _, names := range [][]string{
		{"Return", "Tab", "ISO_Left_Tab", "space", "BackSpace", "Delete", "Escape", "Insert",
			"Home", "End", "Prior", "Next", "Page_Up", "Page_Down", "Up", "Down", "Left", "Right",
			"Begin", "Menu", "Print", "Pause", "Break", "Sys_Req", "Linefeed", "Clear", "Find",
			"Cancel", "Help", "Undo", "Redo"},
		{"Shift_L", "Shift_R", "Control_L", "Control_R", "Alt_L", "Alt_R", "Meta_L", "Meta_R",
			"Super_L", "Super_R", "Hyper_L", "Hyper_R", "Caps_Lock", "Num_Lock", "Scroll_Lock",
			"ISO_Level3_Shift", "Mode_switch"},
		{"KP_Enter", "KP_Insert", "KP_Delete", "KP_Home", "KP_End", "KP_Prior", "KP_Next",
			"KP_Page_Up", "KP_Page_Down", "KP_Up", "KP_Down", "KP_Left", "KP_Right", "KP_Begin",
			"KP_Add", "KP_Subtract", "KP_Multiply", "KP_Divide", "KP_Decimal", "KP_Separator",
			"KP_Equal", "KP_Space", "KP_Tab"},
		{"exclam", "quotedbl", "numbersign", "dollar", "percent", "ampersand", "apostrophe",
			"parenleft", "parenright", "asterisk", "plus", "comma", "minus", "period", "slash",
			"colon", "semicolon", "less", "equal", "greater", "question", "at", "bracketleft",
			"backslash", "bracketright", "asciicircum", "underscore", "grave", "braceleft",
			"bar", "braceright", "asciitilde", "quoteleft", "quoteright"},
	} {
		for _, n := range names {
			namedKeysyms[n] = true
		}
	}
	for i := 0; i <= 9; i++ {
		namedKeysyms["KP_"+string(rune('0'+i))] = true
	}
}

var (
	functionKey = regexp.MustCompile(`^F([1-9]|[12][0-9]|3[0-5])$`)
	unicodeKey  = regexp.MustCompile(`^U\+?[0-9A-Fa-f]{4,6}$`)
)

// KnownKey reports whether name is an X keysym the input backends can
// send: an ASCII letter or digit, a named keysym, F1 to F35, an XF86
// multimedia key, or a Unicode keysym such as U00E9.
func KnownKey(name string) bool {
	if len(name) == 1 {
		c := name[0]
		return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
	}
	if namedKeysyms[name] {
		return true
	}
	if strings.HasPrefix(name, "XF86") && len(name) > len("XF86") {
		return true
	}
	return functionKey.MatchString(name) || unicodeKey.MatchString(name)
}

// CheckChord returns an *UnresolvedKeyError when chord names a key no
// backend can send. Raw keycodes are not checked.
func CheckChord(chord Chord) error {
	if chord.Code != 0 {
		return nil
	}
	if !KnownKey(chord.Key) {
		return &UnresolvedKeyError{Key: chord.Key}
	}
	return nil
}
