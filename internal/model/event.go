package model

import (
	"fmt"
	"strings"
	"time"
)

// Channel identifies one of the feeds exposed by the event bus.
type Channel string

const (
	ChannelSpeech    Channel = "speech"
	ChannelBraille   Channel = "braille"
	ChannelLifecycle Channel = "lifecycle"
)

// ParseChannel converts a string flag or fixture value to a Channel.
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "speech":
		return ChannelSpeech, nil
	case "braille":
		return ChannelBraille, nil
	case "lifecycle":
		return ChannelLifecycle, nil
	default:
		return "", fmt.Errorf("unknown channel: %q (expected speech, braille, or lifecycle)", s)
	}
}

// IsOutput reports whether c carries presentation output (speech or braille).
func (c Channel) IsOutput() bool {
	return c == ChannelSpeech || c == ChannelBraille
}

// Lifecycle event kinds reported by the target.
const (
	KindWindowActivate = "window:activate"
	KindFocus          = "focus"
	KindDocLoad        = "document:load-complete"
)

// Event is a single observation from the event bus. Events are immutable
// once published.
type Event struct {
	Channel    Channel           `yaml:"channel"              json:"channel"`
	Timestamp  time.Time         `yaml:"ts"                   json:"ts"`
	Payload    string            `yaml:"payload,omitempty"    json:"payload,omitempty"`    // Literal text for speech/braille
	Kind       string            `yaml:"kind,omitempty"       json:"kind,omitempty"`       // Lifecycle event kind
	Name       string            `yaml:"name,omitempty"       json:"name,omitempty"`       // Window title or object name
	Role       string            `yaml:"role,omitempty"       json:"role,omitempty"`       // Object role
	Attributes map[string]string `yaml:"attributes,omitempty" json:"attributes,omitempty"` // Voice, cursor offset, etc.
}

// String returns a compact single-line description used in logs.
func (e Event) String() string {
	if e.Channel == ChannelLifecycle {
		return fmt.Sprintf("%s %s name=%q role=%q", e.Channel, e.Kind, e.Name, e.Role)
	}
	return fmt.Sprintf("%s %q", e.Channel, e.Payload)
}

// Lines splits an output event's payload into transcript lines. A payload
// that contains embedded newlines contributes one line per segment.
func (e Event) Lines() []string {
	payload := strings.TrimRight(e.Payload, "\n")
	if !strings.Contains(payload, "\n") {
		return []string{payload}
	}
	return strings.Split(payload, "\n")
}

// Transcript flattens output events into the ordered line list compared by
// assertions. Lifecycle events are skipped.
func Transcript(events []Event) []string {
	lines := make([]string, 0, len(events))
	for _, e := range events {
		if !e.Channel.IsOutput() {
			continue
		}
		lines = append(lines, e.Lines()...)
	}
	return lines
}
