// Package recorder buffers speech and braille output into recording
// windows.
package recorder

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/GNOME/orca-sub019/internal/model"
	"github.com/GNOME/orca-sub019/internal/platform"
)

// Window is one recording span. Only events stamped at or after Start are
// visible through Snapshot.
type Window struct {
	ID    int
	Start time.Time

	mu     sync.Mutex
	events []model.Event
	closed bool
}

func (w *Window) append(ev model.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.events = append(w.events, ev)
}

func (w *Window) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
}

// Snapshot returns a copy of the buffered events in arrival order.
func (w *Window) Snapshot() []model.Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]model.Event, 0, len(w.events))
	for _, ev := range w.events {
		if ev.Timestamp.Before(w.Start) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// Recorder appends every speech and braille event to the active window.
type Recorder struct {
	bus         platform.Bus
	current     atomic.Pointer[Window]
	unsubscribe func()
	seq         atomic.Int64 // last window ID
}

// New subscribes a recorder to b. Call Close to detach it.
func New(b platform.Bus) *Recorder {
	r := &Recorder{bus: b}
	r.unsubscribe = b.Subscribe(func(ev model.Event) {
		if w := r.current.Load(); w != nil {
			w.append(ev)
		}
	}, model.ChannelSpeech, model.ChannelBraille)
	return r
}

// Start opens a new window anchored at the bus clock and closes the
// previous one. The window is installed before its start time is taken.
func (r *Recorder) Start() *Window {
	w := &Window{ID: int(r.seq.Add(1))}
	if old := r.current.Swap(w); old != nil {
		old.close()
	}
	start := r.bus.Now()
	w.mu.Lock()
	w.Start = start
	w.mu.Unlock()
	return w
}

// Current returns the active window, or nil before the first Start.
func (r *Recorder) Current() *Window {
	return r.current.Load()
}

// Reset closes the active window without opening a new one. The
// sequencer calls it between sequences.
func (r *Recorder) Reset() {
	if old := r.current.Swap(nil); old != nil {
		old.close()
	}
}

// Close detaches the recorder from the bus.
func (r *Recorder) Close() {
	r.Reset()
	if r.unsubscribe != nil {
		r.unsubscribe()
	}
}
