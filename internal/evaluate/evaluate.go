// Package evaluate compares recorded output against expected transcripts.
package evaluate

import (
	"errors"
	"fmt"

	"github.com/GNOME/orca-sub019/internal/model"
	"github.com/GNOME/orca-sub019/internal/recorder"
)

// ErrAssertionMismatch is returned for an assertion whose verdict is fail.
var ErrAssertionMismatch = errors.New("assertion mismatch")

// ErrNoWindow is recorded when an assertion runs before any recording
// window was opened in its sequence.
var ErrNoWindow = errors.New("no active recording window")

// Evaluator performs strict ordered comparisons. The zero value compares
// speech and braille lines interleaved in arrival order.
type Evaluator struct {
	// Channels restricts the compared output to these channels.
	Channels []model.Channel
}

// Evaluate snapshots w and compares it against expected. It never waits
// for more output.
func (e *Evaluator) Evaluate(sequence string, index int, label string, expected []model.Line, w *recorder.Window) model.AssertionResult {
	res := model.AssertionResult{
		Sequence: sequence,
		Index:    index,
		Label:    label,
		Expected: expected,
	}
	if w == nil {
		res.Diff, _ = model.DiffLines(expected, nil)
		res.Verdict = model.VerdictFail
		res.Error = ErrNoWindow.Error()
		return res
	}
	res.WindowID = w.ID
	res.Actual = model.Transcript(e.filter(w.Snapshot()))

	diff, pass := model.DiffLines(expected, res.Actual)
	res.Diff = diff
	if pass {
		res.Verdict = model.VerdictPass
	} else {
		res.Verdict = model.VerdictFail
	}
	return res
}

func (e *Evaluator) filter(events []model.Event) []model.Event {
	if len(e.Channels) == 0 {
		return events
	}
	out := events[:0:0]
	for _, ev := range events {
		for _, ch := range e.Channels {
			if ev.Channel == ch {
				out = append(out, ev)
				break
			}
		}
	}
	return out
}

// Failed returns an error wrapping ErrAssertionMismatch when res did not
// pass, and nil otherwise.
func Failed(res model.AssertionResult) error {
	if res.Passed() {
		return nil
	}
	if res.Error != "" {
		return fmt.Errorf("%w: %s: %s", ErrAssertionMismatch, res.Label, res.Error)
	}
	return fmt.Errorf("%w: %s", ErrAssertionMismatch, res.Label)
}
