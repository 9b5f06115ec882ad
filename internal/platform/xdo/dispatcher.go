package xdo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/GNOME/orca-sub019/internal/platform"
)

// DefaultTimeout bounds a single xdotool invocation.
const DefaultTimeout = 5 * time.Second

// xdotool spells modifiers by their keysym names.
var xdoModifiers = map[string]string{
	platform.ModControl: "ctrl",
	platform.ModShift:   "shift",
	platform.ModAlt:     "alt",
	platform.ModSuper:   "super",
	platform.ModMeta:    "meta",
}

// Runner executes xdotool with the given arguments.
type Runner func(ctx context.Context, path string, args ...string) error

// Dispatcher implements platform.Dispatcher by shelling out to xdotool.
type Dispatcher struct {
	path    string
	timeout time.Duration
	keymap  platform.Keymap
	logger  *slog.Logger
	run     Runner
}

// NewDispatcher returns a dispatcher using the xdotool binary at path
// (looked up on PATH when empty).
func NewDispatcher(path string, logger *slog.Logger) *Dispatcher {
	if path == "" {
		path = "xdotool"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		path:    path,
		timeout: DefaultTimeout,
		keymap:  platform.DefaultKeymap(),
		logger:  logger,
		run:     execRunner,
	}
}

// Check verifies that the xdotool binary can be found.
func (d *Dispatcher) Check() error {
	if _, err := exec.LookPath(d.path); err != nil {
		return fmt.Errorf("%w: xdotool not found: %v", platform.ErrAdapterUnavailable, err)
	}
	return nil
}

func (d *Dispatcher) KeyPress(chord platform.Chord) error {
	return d.invoke("keydown", chord)
}

func (d *Dispatcher) KeyRelease(chord platform.Chord) error {
	return d.invoke("keyup", chord)
}

func (d *Dispatcher) KeyCombo(chord platform.Chord) error {
	return d.invoke("key", chord)
}

func (d *Dispatcher) Keymap() platform.Keymap {
	return d.keymap
}

func (d *Dispatcher) invoke(verb string, chord platform.Chord) error {
	if err := platform.CheckChord(chord); err != nil {
		return err
	}
	arg, err := keyArg(chord)
	if err != nil {
		return err
	}
	args := []string{verb, "--clearmodifiers", arg}
	d.logger.Debug("xdotool", "args", strings.Join(args, " "))

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := d.run(ctx, d.path, args...); err != nil {
		return classify(ctx, chord, fmt.Errorf("xdotool %s %s: %w", verb, arg, err))
	}
	return nil
}

// classify maps an xdotool failure to the error the sequencer acts on.
// Only a missing binary, an unreachable display or a hung call mean the
// input side is gone; anything else fails the single action.
func classify(ctx context.Context, chord platform.Chord, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "No such key name"):
		return &platform.UnresolvedKeyError{Key: chord.Key}
	case errors.Is(err, exec.ErrNotFound),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(ctx.Err(), context.DeadlineExceeded),
		strings.Contains(msg, "Can't open display"),
		strings.Contains(msg, "Failed creating new xdo instance"):
		return fmt.Errorf("%w: %v", platform.ErrAdapterUnavailable, err)
	}
	return err
}

// keyArg renders a chord in xdotool's "ctrl+shift+Right" syntax.
func keyArg(chord platform.Chord) (string, error) {
	parts := make([]string, 0, len(chord.Modifiers)+1)
	for _, m := range chord.Modifiers {
		name, ok := xdoModifiers[m]
		if !ok {
			return "", fmt.Errorf("unknown modifier: %q", m)
		}
		parts = append(parts, name)
	}
	switch {
	case chord.Code != 0:
		parts = append(parts, strconv.Itoa(chord.Code))
	case chord.Key != "":
		parts = append(parts, chord.Key)
	default:
		return "", fmt.Errorf("chord %q has no key", chord.String())
	}
	return strings.Join(parts, "+"), nil
}

func execRunner(ctx context.Context, path string, args ...string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}
