// Package sequencer executes the actions of one sequence in order.
package sequencer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GNOME/orca-sub019/internal/action"
	"github.com/GNOME/orca-sub019/internal/evaluate"
	"github.com/GNOME/orca-sub019/internal/model"
	"github.com/GNOME/orca-sub019/internal/platform"
	"github.com/GNOME/orca-sub019/internal/recorder"
)

// Observer is notified as a sequence progresses. Calls happen on the
// sequencer's goroutine.
type Observer interface {
	ActionDone(seq *action.Sequence, out action.Outcome)
	AssertionDone(seq *action.Sequence, res model.AssertionResult)
}

// Options configures a Sequencer.
type Options struct {
	Dispatcher  platform.Dispatcher
	Bus         platform.Bus
	Recorder    *recorder.Recorder
	Evaluator   *evaluate.Evaluator
	Logger      *slog.Logger
	Observer    Observer
	WaitTimeout time.Duration
	Settle      time.Duration
	NoAssert    bool
	Sleep       func(ctx context.Context, d time.Duration) error
}

// Sequencer runs sequences one at a time.
type Sequencer struct {
	opts Options
}

// New returns a Sequencer.
func New(opts Options) *Sequencer {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Evaluator == nil {
		opts.Evaluator = &evaluate.Evaluator{}
	}
	return &Sequencer{opts: opts}
}

// Result is everything one sequence run produced.
type Result struct {
	Sequence   *action.Sequence
	Outcomes   []action.Outcome
	Assertions []model.AssertionResult
	Aborted    error
	Elapsed    time.Duration
}

// FailedActions counts outcomes that did not succeed.
func (r *Result) FailedActions() int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.OK {
			n++
		}
	}
	return n
}

// Summary condenses r for a suite result.
func (r *Result) Summary() model.SequenceSummary {
	s := model.SequenceSummary{
		Name:          r.Sequence.Name,
		Source:        r.Sequence.Source,
		Actions:       len(r.Sequence.Actions),
		FailedActions: r.FailedActions(),
		Assertions:    len(r.Assertions),
		Elapsed:       r.Elapsed.Round(time.Millisecond).String(),
	}
	if r.Aborted != nil {
		s.Aborted = r.Aborted.Error()
	}
	return s
}

// Run executes every action of seq in order. Failed actions do not stop
// the run; an unavailable adapter or a cancelled ctx does, and every
// assertion not yet evaluated is then recorded as failed.
func (s *Sequencer) Run(ctx context.Context, seq *action.Sequence) *Result {
	start := time.Now()
	log := s.opts.Logger.With("sequence", seq.Name)
	s.opts.Recorder.Reset()
	defer s.opts.Recorder.Reset()

	c := &action.Context{
		Ctx:         ctx,
		Sequence:    seq.Name,
		Dispatcher:  s.opts.Dispatcher,
		Bus:         s.opts.Bus,
		Recorder:    s.opts.Recorder,
		Evaluator:   s.opts.Evaluator,
		Logger:      log,
		WaitTimeout: s.opts.WaitTimeout,
		Settle:      s.opts.Settle,
		NoAssert:    s.opts.NoAssert,
		Sleep:       s.opts.Sleep,
	}

	res := &Result{Sequence: seq}
	for i, a := range seq.Actions {
		if err := ctx.Err(); err != nil {
			res.Aborted = err
			s.abandon(res, i, err)
			break
		}

		actionStart := time.Now()
		out := a.Execute(c)
		out.Step = i + 1
		if out.Elapsed == "" {
			out.Elapsed = time.Since(actionStart).Round(time.Millisecond).String()
		}
		res.Outcomes = append(res.Outcomes, out)

		if out.OK {
			log.Debug("action done", "index", out.Step, "action", out.Desc, "elapsed", out.Elapsed)
		} else {
			log.Warn("action failed", "index", out.Step, "action", out.Desc, "error", out.Error)
		}
		s.notifyAction(seq, out)
		if out.Assertion != nil {
			res.Assertions = append(res.Assertions, *out.Assertion)
			s.notifyAssertion(seq, *out.Assertion)
		}

		if isFatal(ctx, out.Err) {
			res.Aborted = out.Err
			log.Error("sequence aborted", "index", out.Step, "error", out.Err)
			from := i + 1
			if out.Assertion == nil {
				from = i
			}
			s.abandon(res, from, out.Err)
			break
		}
	}
	res.Elapsed = time.Since(start)
	return res
}

func isFatal(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, platform.ErrAdapterUnavailable) {
		return true
	}
	return ctx.Err() != nil && errors.Is(err, ctx.Err())
}

// abandon records a failed result for every assertion at or after
// action index from.
func (s *Sequencer) abandon(res *Result, from int, cause error) {
	if s.opts.NoAssert {
		return
	}
	seq := res.Sequence
	index := 0
	for i, a := range seq.Actions {
		ap, ok := a.(*action.AssertPresentation)
		if !ok {
			continue
		}
		index++
		if i < from {
			continue
		}
		r := model.AssertionResult{
			Sequence: seq.Name,
			Index:    index,
			Label:    ap.Label,
			Expected: ap.Expected,
			Verdict:  model.VerdictFail,
			Error:    fmt.Sprintf("sequence aborted: %v", cause),
		}
		r.Diff, _ = model.DiffLines(ap.Expected, nil)
		res.Assertions = append(res.Assertions, r)
		s.notifyAssertion(seq, r)
	}
}

func (s *Sequencer) notifyAction(seq *action.Sequence, out action.Outcome) {
	if s.opts.Observer != nil {
		s.opts.Observer.ActionDone(seq, out)
	}
}

func (s *Sequencer) notifyAssertion(seq *action.Sequence, res model.AssertionResult) {
	if s.opts.Observer != nil {
		s.opts.Observer.AssertionDone(seq, res)
	}
}
