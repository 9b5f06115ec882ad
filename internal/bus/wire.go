package bus

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/GNOME/orca-sub019/internal/model"
)

// wireEvent is the JSON line format accepted by stream sources and the
// lifecycle log. Timestamps are assigned on arrival, never read from the
// wire.
type wireEvent struct {
	Channel    string            `json:"channel,omitempty"`
	Text       string            `json:"text,omitempty"`
	Kind       string            `json:"kind,omitempty"`
	Name       string            `json:"name,omitempty"`
	Role       string            `json:"role,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// DecodeLine parses one JSON line into an event. When the line names no
// channel, def is used.
func DecodeLine(line []byte, def model.Channel) (model.Event, error) {
	var w wireEvent
	if err := json.Unmarshal(line, &w); err != nil {
		return model.Event{}, fmt.Errorf("invalid event line: %w", err)
	}
	ch := def
	if w.Channel != "" {
		var err error
		if ch, err = model.ParseChannel(w.Channel); err != nil {
			return model.Event{}, err
		}
	}
	ev := model.Event{
		Channel:    ch,
		Payload:    w.Text,
		Kind:       w.Kind,
		Name:       w.Name,
		Role:       w.Role,
		Attributes: w.Attributes,
	}
	if ch == model.ChannelLifecycle && strings.TrimSpace(ev.Kind) == "" {
		return model.Event{}, fmt.Errorf("lifecycle event without kind")
	}
	return ev, nil
}
