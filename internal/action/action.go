// Package action defines the steps a sequence is built from and how each
// one executes against the dispatcher, the bus and the recorder.
package action

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/GNOME/orca-sub019/internal/evaluate"
	"github.com/GNOME/orca-sub019/internal/model"
	"github.com/GNOME/orca-sub019/internal/platform"
	"github.com/GNOME/orca-sub019/internal/recorder"
)

// Kind names an action variant. Kinds double as fixture step names.
type Kind string

const (
	KindKeyPress              Kind = "key-press"
	KindKeyRelease            Kind = "key-release"
	KindKeyCombo              Kind = "key-combo"
	KindType                  Kind = "type"
	KindPause                 Kind = "pause"
	KindWaitForWindowActivate Kind = "wait-for-window-activate"
	KindWaitForFocus          Kind = "wait-for-focus"
	KindWaitForDocLoad        Kind = "wait-for-doc-load"
	KindWaitForEvent          Kind = "wait-for-event"
	KindStartRecording        Kind = "start-recording"
	KindAssertPresentation    Kind = "assert-presentation"
	KindAssertionSummary      Kind = "assertion-summary"
)

// Kinds lists every action kind in documentation order.
var Kinds = []Kind{
	KindKeyPress, KindKeyRelease, KindKeyCombo, KindType, KindPause,
	KindWaitForWindowActivate, KindWaitForFocus, KindWaitForDocLoad, KindWaitForEvent,
	KindStartRecording, KindAssertPresentation, KindAssertionSummary,
}

// ErrTimeout is returned when a wait's deadline elapses before a matching
// lifecycle event arrives.
var ErrTimeout = errors.New("timed out")

// DefaultWaitTimeout applies to waits that set no deadline of their own.
const DefaultWaitTimeout = 30 * time.Second

// Action is one immutable step of a sequence.
type Action interface {
	Kind() Kind
	Execute(c *Context) Outcome
	String() string
}

// Sequence is a named, ordered list of actions loaded from one fixture.
type Sequence struct {
	Name    string
	Source  string
	Actions []Action
}

// Assertions returns the AssertPresentation actions of s in order.
func (s *Sequence) Assertions() []*AssertPresentation {
	var out []*AssertPresentation
	for _, a := range s.Actions {
		if ap, ok := a.(*AssertPresentation); ok {
			out = append(out, ap)
		}
	}
	return out
}

// Outcome is the result of executing one action.
type Outcome struct {
	Step      int                    `yaml:"step"                json:"step"`
	Action    Kind                   `yaml:"action"              json:"action"`
	Desc      string                 `yaml:"desc"                json:"desc"`
	OK        bool                   `yaml:"ok"                  json:"ok"`
	Skipped   bool                   `yaml:"skipped,omitempty"   json:"skipped,omitempty"`
	Error     string                 `yaml:"error,omitempty"     json:"error,omitempty"`
	Match     string                 `yaml:"match,omitempty"     json:"match,omitempty"`
	Elapsed   string                 `yaml:"elapsed,omitempty"   json:"elapsed,omitempty"`
	Assertion *model.AssertionResult `yaml:"assertion,omitempty" json:"assertion,omitempty"`

	Err error `yaml:"-" json:"-"`
}

func ok(a Action) Outcome {
	return Outcome{Action: a.Kind(), Desc: a.String(), OK: true}
}

func fail(a Action, err error) Outcome {
	return Outcome{Action: a.Kind(), Desc: a.String(), Error: err.Error(), Err: err}
}

// Context carries everything an action needs while its sequence runs.
// One Context serves one sequence.
type Context struct {
	Ctx        context.Context
	Sequence   string
	Dispatcher platform.Dispatcher
	Bus        platform.Bus
	Recorder   *recorder.Recorder
	Evaluator  *evaluate.Evaluator
	Logger     *slog.Logger

	WaitTimeout time.Duration // default wait deadline
	Settle      time.Duration // pre-delay for StartRecording and AssertPresentation
	NoAssert    bool          // skip evaluation entirely

	// Sleep suspends the sequence. Replaced in tests.
	Sleep func(ctx context.Context, d time.Duration) error

	assertions int
}

// NextAssertion advances and returns the 1-based assertion index.
func (c *Context) NextAssertion() int {
	c.assertions++
	return c.assertions
}

func (c *Context) context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

func (c *Context) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c *Context) sleep(d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if c.Sleep != nil {
		return c.Sleep(c.context(), d)
	}
	return Sleep(c.context(), d)
}

func (c *Context) waitTimeout(d time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	if c.WaitTimeout > 0 {
		return c.WaitTimeout
	}
	return DefaultWaitTimeout
}

// Sleep blocks for d or until ctx ends.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
