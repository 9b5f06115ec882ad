// Package session wires the dispatcher, bus adapter, recorder and
// evaluator together for one playback run.
package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/GNOME/orca-sub019/internal/action"
	"github.com/GNOME/orca-sub019/internal/bus"
	"github.com/GNOME/orca-sub019/internal/config"
	"github.com/GNOME/orca-sub019/internal/evaluate"
	"github.com/GNOME/orca-sub019/internal/history"
	"github.com/GNOME/orca-sub019/internal/model"
	"github.com/GNOME/orca-sub019/internal/platform"
	"github.com/GNOME/orca-sub019/internal/recorder"
	"github.com/GNOME/orca-sub019/internal/sequencer"
	"github.com/GNOME/orca-sub019/internal/suite"
)

// RunOptions are the per-invocation switches layered over Config.
type RunOptions struct {
	Progress io.Writer
	Filter   string
	NoAssert bool
	// History overrides cfg.History.Path when non-empty.
	History string
}

// Session holds the live collaborators of a run.
type Session struct {
	cfg      *config.Config
	logger   *slog.Logger
	provider *platform.Provider
	adapter  *bus.Adapter
	recorder *recorder.Recorder
}

// Open creates the input provider and starts the bus adapter.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	provider, err := platform.NewProvider(platform.ProviderOptions{
		Backend:     cfg.Dispatcher,
		XdotoolPath: cfg.XdotoolPath,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	adapter, err := bus.NewAdapter(cfg.BusAdapterConfig(), logger)
	if err != nil {
		return nil, err
	}
	return start(ctx, cfg, logger, provider, adapter)
}

func start(ctx context.Context, cfg *config.Config, logger *slog.Logger, provider *platform.Provider, adapter *bus.Adapter) (*Session, error) {
	// Subscribe before the sources run so no early event is lost.
	rec := recorder.New(adapter.Bus())
	if err := adapter.Open(ctx); err != nil {
		rec.Close()
		return nil, err
	}
	return &Session{
		cfg:      cfg,
		logger:   logger,
		provider: provider,
		adapter:  adapter,
		recorder: rec,
	}, nil
}

// Run executes seqs and, when a history path is configured, stores the
// result.
func (s *Session) Run(ctx context.Context, seqs []*action.Sequence, opts RunOptions) (*model.SuiteResult, error) {
	runner := suite.New(sequencer.Options{
		Dispatcher:  s.provider.Dispatcher,
		Bus:         s.adapter.Bus(),
		Recorder:    s.recorder,
		Evaluator:   &evaluate.Evaluator{},
		WaitTimeout: s.cfg.Timeouts.Wait,
		Settle:      s.cfg.Timeouts.Settle,
		NoAssert:    opts.NoAssert,
	}, suite.Options{
		Progress: opts.Progress,
		Logger:   s.logger,
		Filter:   opts.Filter,
	})
	if len(runner.Select(seqs)) == 0 {
		return nil, fmt.Errorf("no sequences match filter %q", opts.Filter)
	}
	res := runner.Run(ctx, seqs)

	path := opts.History
	if path == "" {
		path = s.cfg.History.Path
	}
	if path == "" {
		return res, nil
	}
	store, err := history.Open(path)
	if err != nil {
		return res, err
	}
	defer store.Close()
	if err := store.Save(ctx, res); err != nil {
		return res, err
	}
	s.logger.Debug("run saved", "run", res.ID, "path", path)
	return res, nil
}

// Close stops the bus adapter and the recorder.
func (s *Session) Close() error {
	s.recorder.Close()
	return s.adapter.Close()
}
