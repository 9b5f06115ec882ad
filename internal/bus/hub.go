package bus

import (
	"fmt"
	"sync"
	"time"

	"github.com/GNOME/orca-sub019/internal/model"
	"github.com/GNOME/orca-sub019/internal/platform"
)

// Publisher accepts events from a source.
type Publisher interface {
	Publish(ev model.Event)
}

type subscription struct {
	fn       func(model.Event)
	channels map[model.Channel]bool
}

func (s *subscription) wants(ch model.Channel) bool {
	return len(s.channels) == 0 || s.channels[ch]
}

// Hub is an in-process event bus. It implements platform.Bus and
// Publisher. Subscriber callbacks run with the hub lock held and must not
// call back into the hub.
type Hub struct {
	mu     sync.Mutex
	clock  func() time.Time
	last   time.Time
	subs   map[int]*subscription
	order  []int
	nextID int

	done chan struct{}
	err  error
}

// NewHub returns a hub stamping events with clock (time.Now when nil).
func NewHub(clock func() time.Time) *Hub {
	if clock == nil {
		clock = time.Now
	}
	return &Hub{
		clock: clock,
		subs:  make(map[int]*subscription),
		done:  make(chan struct{}),
	}
}

// Now returns the current bus time. Events published afterwards carry a
// timestamp at or after it.
func (h *Hub) Now() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stamp(time.Time{})
}

// stamp returns ts (or the clock when ts is zero) clamped to the last
// issued timestamp. Callers hold h.mu.
func (h *Hub) stamp(ts time.Time) time.Time {
	if ts.IsZero() {
		ts = h.clock()
	}
	if ts.Before(h.last) {
		ts = h.last
	}
	h.last = ts
	return ts
}

// Publish stamps ev and delivers it to every matching subscriber in
// subscription order. Events published after Fail are dropped.
func (h *Hub) Publish(ev model.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return
	}
	ev.Timestamp = h.stamp(ev.Timestamp)
	for _, id := range h.order {
		s := h.subs[id]
		if s.wants(ev.Channel) {
			s.fn(ev)
		}
	}
}

// Subscribe registers fn for events on channels (all when empty).
func (h *Hub) Subscribe(fn func(model.Event), channels ...model.Channel) func() {
	s := &subscription{fn: fn}
	if len(channels) > 0 {
		s.channels = make(map[model.Channel]bool, len(channels))
		for _, ch := range channels {
			s.channels[ch] = true
		}
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = s
	h.order = append(h.order, id)
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { h.unsubscribe(id) })
	}
}

func (h *Hub) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
	for i, v := range h.order {
		if v == id {
			h.order = append(h.order[:i:i], h.order[i+1:]...)
			break
		}
	}
}

// Fail marks the hub unavailable. The first call wins.
func (h *Hub) Fail(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return
	}
	if err == nil {
		err = fmt.Errorf("%w: bus closed", platform.ErrAdapterUnavailable)
	}
	h.err = err
	close(h.done)
}

// Done is closed after Fail.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Err returns the failure recorded by Fail, or nil.
func (h *Hub) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

var _ platform.Bus = (*Hub)(nil)
