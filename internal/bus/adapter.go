package bus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/GNOME/orca-sub019/internal/platform"
)

// Source produces events until ctx is cancelled. A non-nil return marks
// the bus unavailable.
type Source interface {
	Run(ctx context.Context, pub Publisher) error
}

// preparer is a Source with setup that must finish before the target is
// asked to start logging.
type preparer interface {
	Prepare() error
}

// Config selects the sources an Adapter runs.
type Config struct {
	Source     string // "tail" or "stream"
	LogPrefix  string // tail: log file prefix
	Address    string // stream: unix:PATH, tcp:HOST:PORT or -
	ControlURL string // optional target control endpoint
}

// Adapter owns a Hub and the sources feeding it.
type Adapter struct {
	hub     *Hub
	sources []Source
	control *Control
	prefix  string
	logger  *slog.Logger

	cancel context.CancelFunc
	group  *errgroup.Group
}

// NewAdapter builds an adapter from cfg.
func NewAdapter(cfg Config, logger *slog.Logger) (*Adapter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var src Source
	switch cfg.Source {
	case "", "tail":
		if cfg.LogPrefix == "" {
			return nil, fmt.Errorf("bus.log_prefix is required for the tail source")
		}
		src = NewTailSource(cfg.LogPrefix, logger)
	case "stream":
		if cfg.Address == "" {
			return nil, fmt.Errorf("bus.address is required for the stream source")
		}
		src = NewStreamSource(cfg.Address, logger)
	default:
		return nil, fmt.Errorf("unknown bus source %q (use tail or stream)", cfg.Source)
	}
	a := New(NewHub(nil), logger, src)
	if cfg.ControlURL != "" && cfg.Source != "stream" {
		a.control = NewControl(cfg.ControlURL)
		a.prefix = cfg.LogPrefix
	}
	return a, nil
}

// New returns an adapter running sources into hub.
func New(hub *Hub, logger *slog.Logger, sources ...Source) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{hub: hub, sources: sources, logger: logger}
}

// Bus returns the adapter's hub.
func (a *Adapter) Bus() *Hub {
	return a.hub
}

// Open prepares and starts every source, then asks the target to start
// logging. A source that fails later marks the hub unavailable.
func (a *Adapter) Open(ctx context.Context) error {
	if a.group != nil {
		return fmt.Errorf("bus adapter already open")
	}
	for _, src := range a.sources {
		if p, ok := src.(preparer); ok {
			if err := p.Prepare(); err != nil {
				return unavailable(err)
			}
		}
	}
	runCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)
	for _, src := range a.sources {
		src := src
		g.Go(func() error {
			err := src.Run(gctx, a.hub)
			if err != nil && gctx.Err() == nil {
				a.logger.Error("bus source failed", "error", err)
				a.hub.Fail(unavailable(err))
			}
			return err
		})
	}
	a.cancel = cancel
	a.group = g

	if a.control != nil {
		if err := a.control.StartLog(ctx, a.prefix); err != nil {
			_ = a.Close()
			return unavailable(err)
		}
	}
	return nil
}

// Close stops all sources and marks the hub closed.
func (a *Adapter) Close() error {
	if a.group == nil {
		return nil
	}
	if a.control != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := a.control.StopLog(ctx); err != nil {
			a.logger.Warn("stop target logging", "error", err)
		}
		cancel()
	}
	a.cancel()
	err := a.group.Wait()
	a.group = nil
	a.hub.Fail(nil)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func unavailable(err error) error {
	if errors.Is(err, platform.ErrAdapterUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", platform.ErrAdapterUnavailable, err)
}
