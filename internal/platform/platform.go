package platform

import (
	"time"

	"github.com/GNOME/orca-sub019/internal/model"
)

// Dispatcher delivers synthetic key events to the active window of the
// target application. Calls are fire-and-forget: a nil error means the
// event was handed to the backend, not that the target reacted.
type Dispatcher interface {
	// KeyPress sends the press half of a chord: modifiers first, then the key.
	KeyPress(chord Chord) error

	// KeyRelease sends the release half of a chord: the key first, then modifiers.
	KeyRelease(chord Chord) error

	// KeyCombo presses and releases a full chord as one unit.
	KeyCombo(chord Chord) error

	// Keymap returns the character-to-chord mapping used for typing text.
	Keymap() Keymap
}

// Bus is the subscribable feed of lifecycle and output events.
type Bus interface {
	// Now returns the bus clock. Every event published after Now returns
	// carries a timestamp at or after the returned value.
	Now() time.Time

	// Subscribe registers fn for events on the given channels (all channels
	// when none are given). fn is called synchronously in arrival order and
	// must not block. The returned function removes the subscription.
	Subscribe(fn func(model.Event), channels ...model.Channel) (unsubscribe func())

	// Done is closed once the bus can no longer deliver events.
	Done() <-chan struct{}

	// Err returns a non-nil error once Done is closed.
	Err() error
}
