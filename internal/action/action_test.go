package action

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GNOME/orca-sub019/internal/bus"
	"github.com/GNOME/orca-sub019/internal/model"
	"github.com/GNOME/orca-sub019/internal/platform"
	"github.com/GNOME/orca-sub019/internal/recorder"
)

// fakeDispatcher records dispatched chords.
type fakeDispatcher struct {
	calls []string
	err   error
}

func (d *fakeDispatcher) record(verb string, c platform.Chord) error {
	if d.err != nil {
		return d.err
	}
	d.calls = append(d.calls, verb+" "+c.String())
	return nil
}

func (d *fakeDispatcher) KeyPress(c platform.Chord) error   { return d.record("press", c) }
func (d *fakeDispatcher) KeyRelease(c platform.Chord) error { return d.record("release", c) }
func (d *fakeDispatcher) KeyCombo(c platform.Chord) error   { return d.record("combo", c) }
func (d *fakeDispatcher) Keymap() platform.Keymap           { return platform.DefaultKeymap() }

func newContext(t *testing.T) (*Context, *bus.Hub, *fakeDispatcher, *[]time.Duration) {
	t.Helper()
	hub := bus.NewHub(nil)
	rec := recorder.New(hub)
	t.Cleanup(rec.Close)
	d := &fakeDispatcher{}
	var slept []time.Duration
	c := &Context{
		Ctx:        context.Background(),
		Sequence:   "test",
		Dispatcher: d,
		Bus:        hub,
		Recorder:   rec,
		Sleep: func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
	}
	return c, hub, d, &slept
}

func mustChord(t *testing.T, s string) platform.Chord {
	t.Helper()
	c, err := platform.ParseChord(s)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestKeyActions_Dispatch(t *testing.T) {
	c, _, d, slept := newContext(t)
	chord := mustChord(t, "<Control>Home")

	for _, a := range []Action{
		&KeyPress{Chord: mustChord(t, "KP_Insert")},
		&KeyCombo{Chord: chord, Delay: 500 * time.Millisecond},
		&KeyRelease{Chord: mustChord(t, "KP_Insert")},
	} {
		if out := a.Execute(c); !out.OK {
			t.Fatalf("%s: %s", a, out.Error)
		}
	}
	want := []string{"press KP_Insert", "combo <Control>Home", "release KP_Insert"}
	if len(d.calls) != len(want) {
		t.Fatalf("calls = %q", d.calls)
	}
	for i := range want {
		if d.calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, d.calls[i], want[i])
		}
	}
	if len(*slept) != 1 || (*slept)[0] != 500*time.Millisecond {
		t.Errorf("slept = %v, want one 500ms delay", *slept)
	}
}

func TestType_ResolvesBeforeDispatch(t *testing.T) {
	c, _, d, _ := newContext(t)

	out := (&Type{Text: "Hi!"}).Execute(c)
	if !out.OK {
		t.Fatal(out.Error)
	}
	if len(d.calls) != 3 || d.calls[0] != "combo <Shift>h" || d.calls[2] != "combo <Shift>1" {
		t.Errorf("calls = %q", d.calls)
	}

	d.calls = nil
	out = (&Type{Text: "ab€"}).Execute(c)
	if out.OK {
		t.Fatal("unmapped character should fail")
	}
	var unresolved *platform.UnresolvedKeyError
	if !errors.As(out.Err, &unresolved) {
		t.Errorf("Err = %v, want UnresolvedKeyError", out.Err)
	}
	if len(d.calls) != 0 {
		t.Errorf("nothing should be dispatched, got %q", d.calls)
	}
}

func TestKeyCombo_DispatcherFailure(t *testing.T) {
	c, _, d, _ := newContext(t)
	d.err = platform.ErrAdapterUnavailable
	out := (&KeyCombo{Chord: mustChord(t, "Tab")}).Execute(c)
	if out.OK || !errors.Is(out.Err, platform.ErrAdapterUnavailable) {
		t.Errorf("outcome = %+v", out)
	}
}

func TestPause(t *testing.T) {
	c, _, _, slept := newContext(t)
	out := (&Pause{Duration: 2 * time.Second}).Execute(c)
	if !out.OK || len(*slept) != 1 || (*slept)[0] != 2*time.Second {
		t.Errorf("outcome = %+v, slept = %v", out, *slept)
	}
}

func TestSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep = %v", err)
	}
}

func TestWaitForFocus_Matches(t *testing.T) {
	c, hub, _, _ := newContext(t)
	name, _ := model.NewPattern(model.MatchExact, "Save")
	a := &WaitForFocus{Name: name, Role: "btn", Timeout: 2 * time.Second}

	go func() {
		time.Sleep(20 * time.Millisecond)
		hub.Publish(model.Event{Channel: model.ChannelLifecycle, Kind: model.KindFocus, Name: "Save", Role: "label"})
		hub.Publish(model.Event{Channel: model.ChannelLifecycle, Kind: model.KindFocus, Name: "Save", Role: "ROLE_PUSH_BUTTON"})
	}()

	out := a.Execute(c)
	if !out.OK {
		t.Fatalf("outcome = %+v", out)
	}
	if out.Match == "" {
		t.Error("Match should describe the matched event")
	}
}

func TestWaitForFocus_TimeoutIsLocal(t *testing.T) {
	c, _, _, _ := newContext(t)
	name, _ := model.NewPattern(model.MatchExact, "Never")
	out := (&WaitForFocus{Name: name, Timeout: 30 * time.Millisecond}).Execute(c)
	if out.OK {
		t.Fatal("wait should time out")
	}
	if !errors.Is(out.Err, ErrTimeout) {
		t.Errorf("Err = %v, want ErrTimeout", out.Err)
	}
}

func TestWaitForWindowActivate_DefaultTimeout(t *testing.T) {
	c, hub, _, _ := newContext(t)
	c.WaitTimeout = 2 * time.Second
	title, _ := model.NewPattern(model.MatchContains, "gedit")

	go func() {
		time.Sleep(20 * time.Millisecond)
		hub.Publish(model.Event{Channel: model.ChannelLifecycle, Kind: model.KindWindowActivate, Name: "Unsaved Document 1 - gedit"})
	}()
	if out := (&WaitForWindowActivate{Title: title}).Execute(c); !out.OK {
		t.Errorf("outcome = %+v", out)
	}
}

func TestWaitForDocLoadAndEvent(t *testing.T) {
	c, hub, _, _ := newContext(t)
	go func() {
		time.Sleep(20 * time.Millisecond)
		hub.Publish(model.Event{Channel: model.ChannelLifecycle, Kind: model.KindDocLoad})
	}()
	if out := (&WaitForDocLoad{Timeout: 2 * time.Second}).Execute(c); !out.OK {
		t.Errorf("doc load: %+v", out)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		hub.Publish(model.Event{Channel: model.ChannelLifecycle, Kind: "object:state-changed:checked", Role: "check box"})
	}()
	a := &WaitForEvent{Event: "object:state-changed:checked", Role: "ROLE_CHECK_BOX", Timeout: 2 * time.Second}
	if out := a.Execute(c); !out.OK {
		t.Errorf("event: %+v", out)
	}
}

func TestWait_BusFailure(t *testing.T) {
	c, hub, _, _ := newContext(t)
	hub.Fail(nil)
	out := (&WaitForDocLoad{Timeout: time.Second}).Execute(c)
	if !errors.Is(out.Err, platform.ErrAdapterUnavailable) {
		t.Errorf("Err = %v", out.Err)
	}
}

func TestAssertPresentation(t *testing.T) {
	c, hub, _, _ := newContext(t)
	c.Settle = time.Second

	(&StartRecording{}).Execute(c)
	hub.Publish(model.Event{Channel: model.ChannelSpeech, Payload: "Save push button"})

	a := &AssertPresentation{Label: "save", Expected: []model.Line{{Text: "Save push button"}}}
	out := a.Execute(c)
	if !out.OK || out.Assertion == nil || out.Assertion.Index != 1 {
		t.Fatalf("outcome = %+v", out)
	}

	b := &AssertPresentation{Label: "wrong", Expected: []model.Line{{Text: "Cancel"}}}
	out = b.Execute(c)
	if out.OK || out.Assertion.Index != 2 || out.Assertion.Sequence != "test" {
		t.Errorf("outcome = %+v", out)
	}
}

func TestAssertPresentation_NoAssert(t *testing.T) {
	c, _, _, _ := newContext(t)
	c.NoAssert = true
	out := (&AssertPresentation{Label: "x", Expected: []model.Line{{Text: "y"}}}).Execute(c)
	if !out.OK || !out.Skipped || out.Assertion != nil {
		t.Errorf("outcome = %+v", out)
	}
}

func TestSequence_Assertions(t *testing.T) {
	s := &Sequence{Actions: []Action{
		&StartRecording{},
		&AssertPresentation{Label: "a"},
		&Pause{},
		&AssertPresentation{Label: "b"},
		&AssertionSummary{},
	}}
	if got := s.Assertions(); len(got) != 2 || got[1].Label != "b" {
		t.Errorf("Assertions() = %v", got)
	}
}

func TestString(t *testing.T) {
	name, _ := model.NewPattern(model.MatchExact, "OK")
	tests := []struct {
		action Action
		want   string
	}{
		{&KeyCombo{Chord: platform.Chord{Key: "Return"}, Delay: 500 * time.Millisecond}, "KeyCombo(Return, delay=500ms)"},
		{&Type{Text: "about:blank"}, `Type("about:blank")`},
		{&Pause{Duration: time.Second}, "Pause(1s)"},
		{&WaitForFocus{Name: name, Role: "push button"}, `WaitForFocus(name="OK" role="push button")`},
		{&AssertPresentation{Label: "open"}, `AssertPresentation("open")`},
	}
	for _, tt := range tests {
		if got := tt.action.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
