package suite

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/GNOME/orca-sub019/internal/action"
	"github.com/GNOME/orca-sub019/internal/bus"
	"github.com/GNOME/orca-sub019/internal/fixture"
	"github.com/GNOME/orca-sub019/internal/model"
	"github.com/GNOME/orca-sub019/internal/platform"
	"github.com/GNOME/orca-sub019/internal/recorder"
	"github.com/GNOME/orca-sub019/internal/sequencer"
)

// scriptedTarget answers key combinations with canned speech and
// lifecycle events, standing in for the application plus screen reader.
type scriptedTarget struct {
	hub     *bus.Hub
	replies map[string][]model.Event
}

func (s *scriptedTarget) KeyPress(c platform.Chord) error   { return nil }
func (s *scriptedTarget) KeyRelease(c platform.Chord) error { return nil }
func (s *scriptedTarget) Keymap() platform.Keymap           { return platform.DefaultKeymap() }

func (s *scriptedTarget) KeyCombo(c platform.Chord) error {
	for _, ev := range s.replies[c.String()] {
		s.hub.Publish(ev)
	}
	return nil
}

func speech(lines ...string) []model.Event {
	out := make([]model.Event, len(lines))
	for i, l := range lines {
		out[i] = model.Event{Channel: model.ChannelSpeech, Payload: l}
	}
	return out
}

const progressFixture = `
name: progress-bar
actions:
  - start-recording:
  - key-combo: "space"
  - assert-presentation:
      label: "progress"
      expected:
        - "10 percent."
        - "20 percent."
        - "30 percent."
        - "40 percent."
        - "50 percent."
        - "60 percent."
        - "70 percent."
        - "80 percent."
        - "90 percent."
        - "100 percent."
  - start-recording:
  - assert-presentation:
      label: "quiet"
      expected: [""]
  - start-recording:
  - key-combo: "Tab"
  - assert-presentation:
      label: "tab"
      expected:
        - "Line 1"
        - "Line 2"
  - start-recording:
  - key-combo: "Down"
  - assert-presentation:
      label: "down"
      expected:
        - "KNOWN ISSUE: role announced twice"
        - line: "Check box"
          known-issue: "spoken as toggle button"
  - assertion-summary:
`

func percentLines() []string {
	var lines []string
	for p := 10; p <= 100; p += 10 {
		lines = append(lines, fmt.Sprintf("%d percent.", p))
	}
	return lines
}

func newRunner(t *testing.T, progress *bytes.Buffer) *Runner {
	t.Helper()
	hub := bus.NewHub(nil)
	rec := recorder.New(hub)
	t.Cleanup(rec.Close)
	target := &scriptedTarget{hub: hub, replies: map[string][]model.Event{
		"space": speech(percentLines()...),
		"Tab":   speech("Line 1"),
		"Down":  speech("Toggle button"),
	}}
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	var out io.Writer = io.Discard
	if progress != nil {
		out = progress
	}
	return New(sequencer.Options{
		Dispatcher: target,
		Bus:        hub,
		Recorder:   rec,
		Sleep:      func(ctx context.Context, d time.Duration) error { return nil },
	}, Options{
		Progress: out,
		NewID:    func() string { return "run-1" },
		Clock:    func() time.Time { return clock },
	})
}

func loadFixture(t *testing.T, data string) []*action.Sequence {
	t.Helper()
	seqs, err := fixture.Parse([]byte(data), "inline.yaml")
	if err != nil {
		t.Fatal(err)
	}
	return seqs
}

func TestRunner_Run(t *testing.T) {
	var progress bytes.Buffer
	r := newRunner(t, &progress)
	res := r.Run(context.Background(), loadFixture(t, progressFixture))

	if res.ID != "run-1" {
		t.Errorf("ID = %q", res.ID)
	}
	if res.Total != 4 || res.Passed != 3 || res.Failed != 1 || res.KnownIssues != 1 {
		t.Errorf("counts = total %d passed %d failed %d known %d", res.Total, res.Passed, res.Failed, res.KnownIssues)
	}
	if res.Total != len(res.Results) {
		t.Error("Total must equal the number of results")
	}
	if res.OK() {
		t.Error("a failed assertion must make the suite not OK")
	}

	failures := res.Failures()
	if len(failures) != 1 || failures[0].Label != "tab" {
		t.Fatalf("failures = %+v", failures)
	}
	last := failures[0].Diff[len(failures[0].Diff)-1]
	if last.Op != model.DiffMissing || last.Index != 1 || last.Expected != "Line 2" {
		t.Errorf("diff tail = %+v", last)
	}

	lines := strings.Split(strings.TrimSpace(progress.String()), "\n")
	want := []string{
		"Test 1 of 4 SUCCEEDED: progress-bar:progress",
		"Test 2 of 4 SUCCEEDED: progress-bar:quiet",
		"Test 3 of 4 FAILED: progress-bar:tab",
		"Test 4 of 4 SUCCEEDED: progress-bar:down",
		"SUMMARY: 3 SUCCEEDED and 1 FAILED (1 KNOWN ISSUES) of 4 for progress-bar",
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("progress =\n%s\nwant\n%s", strings.Join(lines, "\n"), strings.Join(want, "\n"))
	}
}

func TestRunner_AllPassIsOK(t *testing.T) {
	data := `
name: passing
actions:
  - start-recording:
  - key-combo: "space"
  - assert-presentation:
      label: "progress"
      expected: ["10 percent.", "20 percent.", "30 percent.", "40 percent.", "50 percent.", "60 percent.", "70 percent.", "80 percent.", "90 percent.", "100 percent."]
`
	res := newRunner(t, nil).Run(context.Background(), loadFixture(t, data))
	if !res.OK() || res.Failed != 0 || res.Passed != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestRunner_Deterministic(t *testing.T) {
	seqs := loadFixture(t, progressFixture)
	first := newRunner(t, nil).Run(context.Background(), seqs)
	second := newRunner(t, nil).Run(context.Background(), seqs)
	if !reflect.DeepEqual(first.Results, second.Results) {
		t.Error("identical runs should produce identical results")
	}
	if first.Total != second.Total || first.Passed != second.Passed || first.Failed != second.Failed {
		t.Error("identical runs should produce identical counts")
	}
}

func TestRunner_Filter(t *testing.T) {
	data := "name: alpha\nactions:\n  - start-recording:\n---\nname: beta\nactions:\n  - start-recording:\n"
	hub := bus.NewHub(nil)
	rec := recorder.New(hub)
	defer rec.Close()
	r := New(sequencer.Options{Dispatcher: platform.NewNullDispatcher(nil), Bus: hub, Recorder: rec}, Options{Filter: "bet"})

	res := r.Run(context.Background(), loadFixture(t, data))
	if len(res.Sequences) != 1 || res.Sequences[0].Name != "beta" {
		t.Errorf("sequences = %+v", res.Sequences)
	}
	if !res.OK() {
		t.Error("a suite without assertions passes")
	}
}

func TestRunner_AbortedSequenceFailsSuite(t *testing.T) {
	hub := bus.NewHub(nil)
	rec := recorder.New(hub)
	defer rec.Close()
	var progress bytes.Buffer
	r := New(sequencer.Options{Dispatcher: platform.NewNullDispatcher(nil), Bus: hub, Recorder: rec}, Options{Progress: &progress})

	data := "name: dead\nactions:\n  - start-recording:\n  - assert-presentation: { label: x, expected: [\"\"] }\n"
	hub.Fail(nil)
	res := r.Run(context.Background(), loadFixture(t, data))
	if res.Aborted != 1 || res.OK() {
		t.Errorf("aborted = %d, OK = %v", res.Aborted, res.OK())
	}
	if !strings.Contains(progress.String(), "ABORTED: dead") {
		t.Errorf("progress = %q", progress.String())
	}
}

func TestReport_WriteText(t *testing.T) {
	res := newRunner(t, nil).Run(context.Background(), loadFixture(t, progressFixture))
	var buf bytes.Buffer
	if err := (Report{Result: res}).WriteText(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"SEQUENCE",
		"progress-bar",
		`FAILED: progress-bar #3 "tab"`,
		"EXPECTED:",
		`    "Line 2"`,
		`[2] missing "Line 2"`,
		"SUMMARY: 3 SUCCEEDED and 1 FAILED (1 KNOWN ISSUES) of 4",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestSequenceSummaryLine(t *testing.T) {
	got := SequenceSummaryLine("empty", nil)
	if got != "SUMMARY: 0 SUCCEEDED and 0 FAILED (0 KNOWN ISSUES) of 0 for empty" {
		t.Errorf("got %q", got)
	}
}
