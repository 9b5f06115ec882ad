package bus

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/GNOME/orca-sub019/internal/model"
	"github.com/GNOME/orca-sub019/internal/platform"
)

// fakeClock returns queued instants in order, then repeats the last one.
type fakeClock struct {
	mu    sync.Mutex
	times []time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.times[0]
	if len(c.times) > 1 {
		c.times = c.times[1:]
	}
	return t
}

func TestHub_DeliversInArrivalOrder(t *testing.T) {
	h := NewHub(nil)
	var got []string
	unsubscribe := h.Subscribe(func(ev model.Event) {
		got = append(got, ev.Payload)
	}, model.ChannelSpeech, model.ChannelBraille)
	defer unsubscribe()

	h.Publish(model.Event{Channel: model.ChannelSpeech, Payload: "a"})
	h.Publish(model.Event{Channel: model.ChannelBraille, Payload: "b"})
	h.Publish(model.Event{Channel: model.ChannelLifecycle, Kind: model.KindFocus})
	h.Publish(model.Event{Channel: model.ChannelSpeech, Payload: "c"})

	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestHub_ClampsTimestamps(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{times: []time.Time{
		base.Add(2 * time.Second),
		base.Add(1 * time.Second), // clock stepped backwards
		base.Add(3 * time.Second),
	}}
	h := NewHub(clock.Now)

	var stamps []time.Time
	h.Subscribe(func(ev model.Event) { stamps = append(stamps, ev.Timestamp) })
	for i := 0; i < 3; i++ {
		h.Publish(model.Event{Channel: model.ChannelSpeech})
	}
	for i := 1; i < len(stamps); i++ {
		if stamps[i].Before(stamps[i-1]) {
			t.Errorf("timestamp %d (%v) before %d (%v)", i, stamps[i], i-1, stamps[i-1])
		}
	}
	if !stamps[1].Equal(base.Add(2 * time.Second)) {
		t.Errorf("backwards step should clamp, got %v", stamps[1])
	}
}

func TestHub_NowBoundsLaterEvents(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{times: []time.Time{base.Add(time.Second), base}}
	h := NewHub(clock.Now)

	now := h.Now()
	var ts time.Time
	h.Subscribe(func(ev model.Event) { ts = ev.Timestamp })
	h.Publish(model.Event{Channel: model.ChannelSpeech})
	if ts.Before(now) {
		t.Errorf("event at %v precedes Now() %v", ts, now)
	}
}

func TestHub_Unsubscribe(t *testing.T) {
	h := NewHub(nil)
	count := 0
	unsubscribe := h.Subscribe(func(model.Event) { count++ })
	h.Publish(model.Event{Channel: model.ChannelSpeech})
	unsubscribe()
	unsubscribe()
	h.Publish(model.Event{Channel: model.ChannelSpeech})
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestHub_Fail(t *testing.T) {
	h := NewHub(nil)
	if h.Err() != nil {
		t.Fatal("fresh hub should not have an error")
	}
	h.Fail(nil)
	h.Fail(errors.New("second"))
	select {
	case <-h.Done():
	default:
		t.Fatal("Done should be closed after Fail")
	}
	if !errors.Is(h.Err(), platform.ErrAdapterUnavailable) {
		t.Errorf("Err() = %v", h.Err())
	}

	count := 0
	h.Subscribe(func(model.Event) { count++ })
	h.Publish(model.Event{Channel: model.ChannelSpeech})
	if count != 0 {
		t.Error("events after Fail should be dropped")
	}
}
