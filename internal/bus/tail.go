package bus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/GNOME/orca-sub019/internal/model"
)

// Log file suffixes written by the target for each channel.
var tailSuffixes = []struct {
	suffix  string
	channel model.Channel
}{
	{".speech", model.ChannelSpeech},
	{".braille", model.ChannelBraille},
	{".events", model.ChannelLifecycle},
}

// TailSource follows the per-channel log files the target writes under a
// common prefix. Each complete line appended to <prefix>.speech or
// <prefix>.braille is one output event; each line of <prefix>.events is a
// JSON lifecycle event. Content present before Prepare is skipped.
type TailSource struct {
	Prefix string
	Logger *slog.Logger

	watcher *fsnotify.Watcher
	files   map[string]*tailFile
}

// NewTailSource returns a source following the log files under prefix.
func NewTailSource(prefix string, logger *slog.Logger) *TailSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &TailSource{Prefix: prefix, Logger: logger}
}

type tailFile struct {
	path    string
	channel model.Channel
	offset  int64
	partial []byte
}

func (f *tailFile) reset() {
	f.offset = 0
	f.partial = nil
}

// Prepare creates the log directory and starts watching it. Lines written
// after Prepare returns are delivered by Run.
func (s *TailSource) Prepare() error {
	if s.watcher != nil {
		return nil
	}
	if s.Prefix == "" {
		return fmt.Errorf("tail source: empty log prefix")
	}
	dir := filepath.Dir(s.Prefix)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	files := make(map[string]*tailFile, len(tailSuffixes))
	for _, ts := range tailSuffixes {
		f := &tailFile{path: filepath.Clean(s.Prefix + ts.suffix), channel: ts.channel}
		if info, err := os.Stat(f.path); err == nil {
			f.offset = info.Size()
		}
		files[f.path] = f
	}
	s.watcher = watcher
	s.files = files
	return nil
}

// Run watches the log directory until ctx is cancelled, calling Prepare
// first if the adapter has not.
func (s *TailSource) Run(ctx context.Context, pub Publisher) error {
	if err := s.Prepare(); err != nil {
		return err
	}
	watcher, files := s.watcher, s.files
	defer func() {
		_ = watcher.Close()
		s.watcher, s.files = nil, nil
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			f, tracked := files[filepath.Clean(event.Name)]
			if !tracked {
				continue
			}
			switch {
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				f.reset()
			case event.Has(fsnotify.Create):
				f.reset()
				s.drain(f, pub)
			case event.Has(fsnotify.Write):
				s.drain(f, pub)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("tail %s: %w", s.Prefix, err)
		}
	}
}

// drain publishes every complete line appended to f since the last read.
func (s *TailSource) drain(f *tailFile, pub Publisher) {
	fh, err := os.Open(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.Logger.Warn("open log file", "path", f.path, "error", err)
		}
		return
	}
	defer func() { _ = fh.Close() }()

	info, err := fh.Stat()
	if err != nil {
		return
	}
	if info.Size() < f.offset {
		s.Logger.Debug("log file truncated", "path", f.path)
		f.reset()
	}
	if _, err := fh.Seek(f.offset, io.SeekStart); err != nil {
		return
	}
	data, err := io.ReadAll(fh)
	if err != nil {
		s.Logger.Warn("read log file", "path", f.path, "error", err)
	}
	f.offset += int64(len(data))

	buf := append(f.partial, data...)
	for {
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			break
		}
		line := bytes.TrimSuffix(buf[:i], []byte("\r"))
		buf = buf[i+1:]
		s.publishLine(f, line, pub)
	}
	f.partial = append([]byte(nil), buf...)
}

func (s *TailSource) publishLine(f *tailFile, line []byte, pub Publisher) {
	if f.channel != model.ChannelLifecycle {
		pub.Publish(model.Event{Channel: f.channel, Payload: string(line)})
		return
	}
	if len(bytes.TrimSpace(line)) == 0 {
		return
	}
	ev, err := DecodeLine(line, model.ChannelLifecycle)
	if err != nil {
		s.Logger.Warn("skipping lifecycle line", "path", f.path, "error", err)
		return
	}
	pub.Publish(ev)
}
