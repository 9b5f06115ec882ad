package platform

import (
	"errors"
	"testing"
)

func TestKnownKey(t *testing.T) {
	known := []string{"a", "Z", "7", "Return", "Tab", "ISO_Left_Tab", "KP_Enter", "KP_5",
		"F4", "F35", "semicolon", "Page_Down", "XF86AudioPlay", "U00E9", "U+263A"}
	for _, k := range known {
		if !KnownKey(k) {
			t.Errorf("KnownKey(%q) = false", k)
		}
	}
	unknown := []string{"", "Retrun", "return", "F0", "F36", "XF86", "é", "KP_Foo", "U12"}
	for _, k := range unknown {
		if KnownKey(k) {
			t.Errorf("KnownKey(%q) = true", k)
		}
	}
}

func TestDefaultKeymap_AllKeysKnown(t *testing.T) {
	for r, c := range DefaultKeymap() {
		if err := CheckChord(c); err != nil {
			t.Errorf("keymap entry %q: %v", r, err)
		}
	}
}

func TestCheckChord(t *testing.T) {
	c, err := ParseChord("<Control>Retrun")
	if err != nil {
		t.Fatalf("ParseChord: %v", err)
	}
	err = CheckChord(c)
	var unresolved *UnresolvedKeyError
	if !errors.As(err, &unresolved) {
		t.Fatalf("expected UnresolvedKeyError, got %v", err)
	}
	if unresolved.Key != "Retrun" {
		t.Errorf("Key = %q", unresolved.Key)
	}
	if err := CheckChord(Chord{Modifiers: []string{ModAlt}, Code: 38}); err != nil {
		t.Errorf("keycode chord: %v", err)
	}
}
