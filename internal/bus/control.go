package bus

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultControlURL is the target's local control endpoint.
const DefaultControlURL = "http://127.0.0.1:20433/"

// Control posts commands to the target's HTTP control endpoint. The body
// "log:PREFIX" makes the target write PREFIX.speech and PREFIX.braille;
// "log:" stops logging.
type Control struct {
	URL    string
	Client *http.Client
}

// NewControl returns a client for url.
func NewControl(url string) *Control {
	return &Control{URL: url, Client: &http.Client{Timeout: 5 * time.Second}}
}

// Post sends one command.
func (c *Control) Post(ctx context.Context, command string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, strings.NewReader(command))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain")
	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("control %s: %w", command, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("control %s: %s", command, resp.Status)
	}
	return nil
}

// StartLog asks the target to log output under prefix.
func (c *Control) StartLog(ctx context.Context, prefix string) error {
	return c.Post(ctx, "log:"+prefix)
}

// StopLog asks the target to stop logging.
func (c *Control) StopLog(ctx context.Context) error {
	return c.Post(ctx, "log:")
}
