package action

import (
	"fmt"

	"github.com/GNOME/orca-sub019/internal/evaluate"
	"github.com/GNOME/orca-sub019/internal/model"
)

// StartRecording opens a new recording window at the bus clock.
type StartRecording struct{}

func (a *StartRecording) Kind() Kind { return KindStartRecording }

func (a *StartRecording) String() string { return "StartRecording()" }

func (a *StartRecording) Execute(c *Context) Outcome {
	if err := c.sleep(c.Settle); err != nil {
		return fail(a, err)
	}
	w := c.Recorder.Start()
	c.logger().Debug("recording started", "sequence", c.Sequence, "window", w.ID)
	return ok(a)
}

// AssertPresentation compares the current window's output against Expected.
type AssertPresentation struct {
	Label    string
	Expected []model.Line
}

func (a *AssertPresentation) Kind() Kind { return KindAssertPresentation }

func (a *AssertPresentation) String() string {
	return fmt.Sprintf("AssertPresentation(%q)", a.Label)
}

func (a *AssertPresentation) Execute(c *Context) Outcome {
	index := c.NextAssertion()
	if c.NoAssert {
		out := ok(a)
		out.Skipped = true
		return out
	}
	if err := c.sleep(c.Settle); err != nil {
		return fail(a, err)
	}
	if err := c.Bus.Err(); err != nil {
		return fail(a, err)
	}

	ev := c.Evaluator
	if ev == nil {
		ev = &evaluate.Evaluator{}
	}
	res := ev.Evaluate(c.Sequence, index, a.Label, a.Expected, c.Recorder.Current())
	out := ok(a)
	out.Assertion = &res
	if err := evaluate.Failed(res); err != nil {
		out.OK = false
		out.Err = err
		out.Error = err.Error()
	}
	return out
}

// AssertionSummary marks where the per-sequence summary is reported.
type AssertionSummary struct{}

func (a *AssertionSummary) Kind() Kind { return KindAssertionSummary }

func (a *AssertionSummary) String() string { return "AssertionSummary()" }

func (a *AssertionSummary) Execute(c *Context) Outcome { return ok(a) }
