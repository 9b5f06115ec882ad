package action

import (
	"fmt"
	"strconv"
	"time"

	"github.com/GNOME/orca-sub019/internal/platform"
)

func delaySuffix(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	return ", delay=" + d.String()
}

// KeyPress sends the press half of a key event.
type KeyPress struct {
	Chord platform.Chord
	Delay time.Duration
}

func (a *KeyPress) Kind() Kind { return KindKeyPress }

func (a *KeyPress) String() string {
	return fmt.Sprintf("KeyPress(%s%s)", a.Chord, delaySuffix(a.Delay))
}

func (a *KeyPress) Execute(c *Context) Outcome {
	if err := c.sleep(a.Delay); err != nil {
		return fail(a, err)
	}
	if err := c.Dispatcher.KeyPress(a.Chord); err != nil {
		return fail(a, err)
	}
	return ok(a)
}

// KeyRelease sends the release half of a key event.
type KeyRelease struct {
	Chord platform.Chord
	Delay time.Duration
}

func (a *KeyRelease) Kind() Kind { return KindKeyRelease }

func (a *KeyRelease) String() string {
	return fmt.Sprintf("KeyRelease(%s%s)", a.Chord, delaySuffix(a.Delay))
}

func (a *KeyRelease) Execute(c *Context) Outcome {
	if err := c.sleep(a.Delay); err != nil {
		return fail(a, err)
	}
	if err := c.Dispatcher.KeyRelease(a.Chord); err != nil {
		return fail(a, err)
	}
	return ok(a)
}

// KeyCombo presses and releases a chord as one unit.
type KeyCombo struct {
	Chord platform.Chord
	Delay time.Duration
}

func (a *KeyCombo) Kind() Kind { return KindKeyCombo }

func (a *KeyCombo) String() string {
	return fmt.Sprintf("KeyCombo(%s%s)", a.Chord, delaySuffix(a.Delay))
}

func (a *KeyCombo) Execute(c *Context) Outcome {
	if err := c.sleep(a.Delay); err != nil {
		return fail(a, err)
	}
	if err := c.Dispatcher.KeyCombo(a.Chord); err != nil {
		return fail(a, err)
	}
	return ok(a)
}

// Type sends one key combination per character of Text. Every character
// is resolved before the first one is sent.
type Type struct {
	Text  string
	Delay time.Duration
}

func (a *Type) Kind() Kind { return KindType }

func (a *Type) String() string {
	return fmt.Sprintf("Type(%s%s)", strconv.Quote(a.Text), delaySuffix(a.Delay))
}

func (a *Type) Execute(c *Context) Outcome {
	chords, err := c.Dispatcher.Keymap().ResolveText(a.Text)
	if err != nil {
		return fail(a, err)
	}
	if err := c.sleep(a.Delay); err != nil {
		return fail(a, err)
	}
	for _, chord := range chords {
		if err := c.Dispatcher.KeyCombo(chord); err != nil {
			return fail(a, err)
		}
	}
	return ok(a)
}

// Pause suspends the sequence for Duration.
type Pause struct {
	Duration time.Duration
}

func (a *Pause) Kind() Kind { return KindPause }

func (a *Pause) String() string {
	return fmt.Sprintf("Pause(%s)", a.Duration)
}

func (a *Pause) Execute(c *Context) Outcome {
	if err := c.sleep(a.Duration); err != nil {
		return fail(a, err)
	}
	return ok(a)
}
