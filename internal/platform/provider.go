package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// Provider bundles the input backend for the current OS.
type Provider struct {
	Dispatcher Dispatcher
}

// ProviderOptions selects and configures the dispatcher backend.
type ProviderOptions struct {
	Backend     string // "xdotool" or "none"
	XdotoolPath string
	Logger      *slog.Logger
}

// ErrUnsupported is returned when no input backend is available.
var ErrUnsupported = fmt.Errorf("no input backend for %s/%s; use --dispatcher none for a dry run", runtime.GOOS, runtime.GOARCH)

// ErrAdapterUnavailable is returned when the event feed or the input
// dispatcher cannot be reached.
var ErrAdapterUnavailable = errors.New("adapter unavailable")

// NewProviderFunc is set by platform-specific packages via init().
// See internal/platform/xdo/init.go for the X11 registration.
var NewProviderFunc func(opts ProviderOptions) (*Provider, error)

// NewProvider returns a Provider for the requested backend.
func NewProvider(opts ProviderOptions) (*Provider, error) {
	switch strings.ToLower(opts.Backend) {
	case "none":
		return &Provider{Dispatcher: NewNullDispatcher(opts.Logger)}, nil
	case "", "xdotool":
		if NewProviderFunc == nil {
			return nil, ErrUnsupported
		}
		return NewProviderFunc(opts)
	default:
		return nil, fmt.Errorf("unknown dispatcher %q (use xdotool or none)", opts.Backend)
	}
}

// NullDispatcher logs key events without delivering them.
type NullDispatcher struct {
	logger *slog.Logger
	keymap Keymap
}

// NewNullDispatcher returns a dispatcher for dry runs.
func NewNullDispatcher(logger *slog.Logger) *NullDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NullDispatcher{logger: logger, keymap: DefaultKeymap()}
}

func (d *NullDispatcher) KeyPress(chord Chord) error {
	if err := CheckChord(chord); err != nil {
		return err
	}
	d.logger.Debug("key press", "chord", chord.String())
	return nil
}

func (d *NullDispatcher) KeyRelease(chord Chord) error {
	if err := CheckChord(chord); err != nil {
		return err
	}
	d.logger.Debug("key release", "chord", chord.String())
	return nil
}

func (d *NullDispatcher) KeyCombo(chord Chord) error {
	if err := CheckChord(chord); err != nil {
		return err
	}
	d.logger.Debug("key combo", "chord", chord.String())
	return nil
}

func (d *NullDispatcher) Keymap() Keymap {
	return d.keymap
}
