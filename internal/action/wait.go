package action

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GNOME/orca-sub019/internal/bus"
	"github.com/GNOME/orca-sub019/internal/model"
)

// waitFor blocks until match accepts a lifecycle event or timeout elapses.
func waitFor(c *Context, a Action, timeout time.Duration, match func(model.Event) bool) Outcome {
	timeout = c.waitTimeout(timeout)
	ctx, cancel := context.WithTimeout(c.context(), timeout)
	defer cancel()

	start := time.Now()
	ev, err := bus.WaitFor(ctx, c.Bus, match)
	elapsed := time.Since(start).Round(time.Millisecond).String()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && c.context().Err() == nil {
			err = fmt.Errorf("%w after %s waiting for %s", ErrTimeout, timeout, a)
		}
		out := fail(a, err)
		out.Elapsed = elapsed
		return out
	}
	out := ok(a)
	out.Match = ev.String()
	out.Elapsed = elapsed
	return out
}

// WaitForWindowActivate waits for a window whose title matches Title.
type WaitForWindowActivate struct {
	Title   model.Pattern
	Timeout time.Duration
}

func (a *WaitForWindowActivate) Kind() Kind { return KindWaitForWindowActivate }

func (a *WaitForWindowActivate) String() string {
	return fmt.Sprintf("WaitForWindowActivate(%s)", a.Title)
}

func (a *WaitForWindowActivate) Execute(c *Context) Outcome {
	return waitFor(c, a, a.Timeout, func(ev model.Event) bool {
		return ev.Kind == model.KindWindowActivate && a.Title.Match(ev.Name)
	})
}

// WaitForFocus waits for focus to land on an object matching Name and Role.
type WaitForFocus struct {
	Name    model.Pattern
	Role    string
	Timeout time.Duration
}

func (a *WaitForFocus) Kind() Kind { return KindWaitForFocus }

func (a *WaitForFocus) String() string {
	var parts []string
	if !a.Name.Any() {
		parts = append(parts, "name="+a.Name.String())
	}
	if a.Role != "" {
		parts = append(parts, fmt.Sprintf("role=%q", a.Role))
	}
	return fmt.Sprintf("WaitForFocus(%s)", strings.Join(parts, " "))
}

func (a *WaitForFocus) Execute(c *Context) Outcome {
	return waitFor(c, a, a.Timeout, func(ev model.Event) bool {
		return ev.Kind == model.KindFocus && a.Name.Match(ev.Name) && model.RoleMatches(a.Role, ev.Role)
	})
}

// WaitForDocLoad waits for a document to finish loading.
type WaitForDocLoad struct {
	Timeout time.Duration
}

func (a *WaitForDocLoad) Kind() Kind { return KindWaitForDocLoad }

func (a *WaitForDocLoad) String() string { return "WaitForDocLoad()" }

func (a *WaitForDocLoad) Execute(c *Context) Outcome {
	return waitFor(c, a, a.Timeout, func(ev model.Event) bool {
		return ev.Kind == model.KindDocLoad
	})
}

// WaitForEvent waits for an arbitrary lifecycle event kind, optionally
// narrowed by object name and role.
type WaitForEvent struct {
	Event   string
	Name    model.Pattern
	Role    string
	Timeout time.Duration
}

func (a *WaitForEvent) Kind() Kind { return KindWaitForEvent }

func (a *WaitForEvent) String() string {
	parts := []string{a.Event}
	if !a.Name.Any() {
		parts = append(parts, "name="+a.Name.String())
	}
	if a.Role != "" {
		parts = append(parts, fmt.Sprintf("role=%q", a.Role))
	}
	return fmt.Sprintf("WaitForEvent(%s)", strings.Join(parts, " "))
}

func (a *WaitForEvent) Execute(c *Context) Outcome {
	return waitFor(c, a, a.Timeout, func(ev model.Event) bool {
		return ev.Kind == a.Event && a.Name.Match(ev.Name) && model.RoleMatches(a.Role, ev.Role)
	})
}
