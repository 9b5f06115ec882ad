package recorder

import (
	"sync"
	"testing"
	"time"

	"github.com/GNOME/orca-sub019/internal/bus"
	"github.com/GNOME/orca-sub019/internal/model"
)

func speech(text string) model.Event {
	return model.Event{Channel: model.ChannelSpeech, Payload: text}
}

func payloads(evs []model.Event) []string {
	out := make([]string, len(evs))
	for i, ev := range evs {
		out[i] = ev.Payload
	}
	return out
}

func TestRecorder_NoWindowBeforeStart(t *testing.T) {
	hub := bus.NewHub(nil)
	r := New(hub)
	defer r.Close()

	hub.Publish(speech("dropped"))
	if r.Current() != nil {
		t.Fatal("Current() should be nil before Start")
	}
}

func TestRecorder_InterleavesChannels(t *testing.T) {
	hub := bus.NewHub(nil)
	r := New(hub)
	defer r.Close()

	w := r.Start()
	hub.Publish(speech("a"))
	hub.Publish(model.Event{Channel: model.ChannelBraille, Payload: "b"})
	hub.Publish(model.Event{Channel: model.ChannelLifecycle, Kind: model.KindFocus})
	hub.Publish(speech("a"))

	got := payloads(w.Snapshot())
	want := []string{"a", "b", "a"}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRecorder_NewWindowSupersedes(t *testing.T) {
	hub := bus.NewHub(nil)
	r := New(hub)
	defer r.Close()

	first := r.Start()
	hub.Publish(speech("one"))
	second := r.Start()
	hub.Publish(speech("two"))

	if first.ID == second.ID {
		t.Errorf("window IDs should differ: %d", first.ID)
	}
	if got := payloads(first.Snapshot()); len(got) != 1 || got[0] != "one" {
		t.Errorf("first window = %q", got)
	}
	if got := payloads(second.Snapshot()); len(got) != 1 || got[0] != "two" {
		t.Errorf("second window = %q, want no carry-over", got)
	}
	if r.Current() != second {
		t.Error("Current() should be the newest window")
	}
}

func TestRecorder_FiltersEventsBeforeStart(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	hub := bus.NewHub(func() time.Time { return base })
	r := New(hub)
	defer r.Close()

	w := r.Start()
	hub.Publish(model.Event{Channel: model.ChannelSpeech, Payload: "late", Timestamp: base.Add(time.Second)})
	// Directly appended stale event, as a source stamping on its own clock might produce.
	w.append(model.Event{Channel: model.ChannelSpeech, Payload: "stale", Timestamp: base.Add(-time.Second)})

	got := payloads(w.Snapshot())
	if len(got) != 1 || got[0] != "late" {
		t.Errorf("got %q", got)
	}
}

func TestRecorder_ConcurrentPublish(t *testing.T) {
	hub := bus.NewHub(nil)
	r := New(hub)
	defer r.Close()
	w := r.Start()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				hub.Publish(speech("x"))
			}
		}()
	}
	wg.Wait()
	evs := w.Snapshot()
	if len(evs) != 200 {
		t.Errorf("got %d events, want 200", len(evs))
	}
	for i := 1; i < len(evs); i++ {
		if evs[i].Timestamp.Before(evs[i-1].Timestamp) {
			t.Fatalf("event %d out of order", i)
		}
	}
}

func TestRecorder_CloseDetaches(t *testing.T) {
	hub := bus.NewHub(nil)
	r := New(hub)
	w := r.Start()
	r.Close()
	hub.Publish(speech("after close"))
	if n := len(w.Snapshot()); n != 0 {
		t.Errorf("got %d events after Close", n)
	}
}
