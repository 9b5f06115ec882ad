package bus

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"

	"github.com/GNOME/orca-sub019/internal/model"
	"github.com/GNOME/orca-sub019/internal/platform"
)

const maxLineSize = 1 << 20

// stdin is the file read for the "-" address.
var stdin = os.Stdin

// StreamSource reads JSON event lines from a socket or from stdin.
// Address is "unix:/path", "tcp:host:port" or "-".
type StreamSource struct {
	Address string
	Logger  *slog.Logger

	// open is replaced in tests.
	open func(ctx context.Context) (io.ReadCloser, error)
}

// NewStreamSource returns a source reading from address.
func NewStreamSource(address string, logger *slog.Logger) *StreamSource {
	if logger == nil {
		logger = slog.Default()
	}
	s := &StreamSource{Address: address, Logger: logger}
	s.open = s.dial
	return s
}

func (s *StreamSource) dial(ctx context.Context) (io.ReadCloser, error) {
	if s.Address == "-" {
		return stdin, nil
	}
	network, addr, ok := strings.Cut(s.Address, ":")
	if !ok || (network != "unix" && network != "tcp") || addr == "" {
		return nil, fmt.Errorf("invalid stream address %q (use unix:PATH, tcp:HOST:PORT or -)", s.Address)
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", platform.ErrAdapterUnavailable, s.Address, err)
	}
	return conn, nil
}

// Run reads lines until ctx is cancelled or the stream ends. A stream that
// ends while ctx is live makes the bus unavailable. Run returns as soon as
// ctx is cancelled even if a read on the stream is still blocked.
func (s *StreamSource) Run(ctx context.Context, pub Publisher) error {
	rc, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	done := make(chan error, 1)
	go func() { done <- s.scan(rc, pub) }()
	select {
	case <-ctx.Done():
		return nil
	case err := <-done:
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
}

func (s *StreamSource) scan(r io.Reader, pub Publisher) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		ev, err := DecodeLine(line, model.ChannelLifecycle)
		if err != nil {
			s.Logger.Warn("skipping stream line", "error", err)
			continue
		}
		pub.Publish(ev)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: stream %s: %v", platform.ErrAdapterUnavailable, s.Address, err)
	}
	return fmt.Errorf("%w: stream %s closed", platform.ErrAdapterUnavailable, s.Address)
}
