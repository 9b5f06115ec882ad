package fixture

import (
	"fmt"
	"strings"

	"github.com/GNOME/orca-sub019/internal/action"
	"github.com/GNOME/orca-sub019/internal/model"
	"github.com/GNOME/orca-sub019/internal/platform"
)

// shorthand names the parameter a scalar step value stands for.
var shorthand = map[action.Kind]string{
	action.KindKeyPress:              "key",
	action.KindKeyRelease:            "key",
	action.KindKeyCombo:              "key",
	action.KindType:                  "text",
	action.KindPause:                 "duration",
	action.KindWaitForWindowActivate: "title",
	action.KindWaitForFocus:          "name",
	action.KindWaitForEvent:          "event",
	action.KindAssertPresentation:    "label",
}

func stepParams(kind action.Kind, value interface{}) (params, error) {
	switch v := value.(type) {
	case nil:
		return params{}, nil
	case map[string]interface{}:
		return params(v), nil
	case string, int, int64, float64, bool:
		key, ok := shorthand[kind]
		if !ok {
			return nil, fmt.Errorf("takes no shorthand value")
		}
		return params{key: v}, nil
	case []interface{}:
		if kind == action.KindAssertPresentation {
			return params{"expected": v}, nil
		}
	}
	return nil, fmt.Errorf("unsupported step value of type %T", value)
}

func decodeStep(kind action.Kind, value interface{}) (action.Action, error) {
	p, err := stepParams(kind, value)
	if err != nil {
		return nil, err
	}
	switch kind {
	case action.KindKeyPress, action.KindKeyRelease:
		return decodeKeyHalf(kind, p)
	case action.KindKeyCombo:
		return decodeKeyCombo(p)
	case action.KindType:
		return decodeType(p)
	case action.KindPause:
		return decodePause(p)
	case action.KindWaitForWindowActivate:
		return decodeWaitForWindowActivate(p)
	case action.KindWaitForFocus:
		return decodeWaitForFocus(p)
	case action.KindWaitForDocLoad:
		return decodeWaitForDocLoad(p)
	case action.KindWaitForEvent:
		return decodeWaitForEvent(p)
	case action.KindStartRecording:
		if err := p.check(); err != nil {
			return nil, err
		}
		return &action.StartRecording{}, nil
	case action.KindAssertPresentation:
		return decodeAssertPresentation(p)
	case action.KindAssertionSummary:
		if err := p.check(); err != nil {
			return nil, err
		}
		return &action.AssertionSummary{}, nil
	default:
		return nil, fmt.Errorf("unknown action (supported: %s)", kindList())
	}
}

func kindList() string {
	names := make([]string, len(action.Kinds))
	for i, k := range action.Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// chordParam builds a chord from "key", or from "code" plus "modifiers".
func chordParam(p params, allowCode bool) (platform.Chord, error) {
	key, err := p.str("key", "")
	if err != nil {
		return platform.Chord{}, err
	}
	code := 0
	if allowCode {
		if code, err = p.num("code", 0); err != nil {
			return platform.Chord{}, err
		}
	}
	mods, err := p.list("modifiers")
	if err != nil {
		return platform.Chord{}, err
	}

	switch {
	case key != "" && code != 0:
		return platform.Chord{}, fmt.Errorf("key and code are mutually exclusive")
	case code < 0:
		return platform.Chord{}, fmt.Errorf("code must be positive")
	case code > 0:
		canonical, err := platform.ParseModifiers(mods)
		if err != nil {
			return platform.Chord{}, err
		}
		return platform.Chord{Modifiers: canonical, Code: code}, nil
	case key == "":
		return platform.Chord{}, fmt.Errorf("key is required")
	}

	chord, err := platform.ParseChord(key)
	if err != nil {
		return platform.Chord{}, err
	}
	if len(mods) > 0 {
		extra, err := platform.ParseModifiers(mods)
		if err != nil {
			return platform.Chord{}, err
		}
		chord.Modifiers = append(extra, chord.Modifiers...)
	}
	return chord, nil
}

func decodeKeyHalf(kind action.Kind, p params) (action.Action, error) {
	if err := p.check("key", "code", "modifiers", "delay"); err != nil {
		return nil, err
	}
	chord, err := chordParam(p, true)
	if err != nil {
		return nil, err
	}
	delay, err := p.duration("delay")
	if err != nil {
		return nil, err
	}
	if kind == action.KindKeyPress {
		return &action.KeyPress{Chord: chord, Delay: delay}, nil
	}
	return &action.KeyRelease{Chord: chord, Delay: delay}, nil
}

func decodeKeyCombo(p params) (action.Action, error) {
	if err := p.check("key", "modifiers", "delay"); err != nil {
		return nil, err
	}
	chord, err := chordParam(p, false)
	if err != nil {
		return nil, err
	}
	delay, err := p.duration("delay")
	if err != nil {
		return nil, err
	}
	return &action.KeyCombo{Chord: chord, Delay: delay}, nil
}

func decodeType(p params) (action.Action, error) {
	if err := p.check("text", "delay"); err != nil {
		return nil, err
	}
	if _, ok := p["text"]; !ok {
		return nil, fmt.Errorf("text is required")
	}
	text, err := p.str("text", "")
	if err != nil {
		return nil, err
	}
	delay, err := p.duration("delay")
	if err != nil {
		return nil, err
	}
	return &action.Type{Text: text, Delay: delay}, nil
}

func decodePause(p params) (action.Action, error) {
	if err := p.check("duration"); err != nil {
		return nil, err
	}
	d, err := p.duration("duration")
	if err != nil {
		return nil, err
	}
	if d <= 0 {
		return nil, fmt.Errorf("duration must be > 0")
	}
	return &action.Pause{Duration: d}, nil
}

func patternParam(p params, key string) (model.Pattern, error) {
	alts, err := p.list(key)
	if err != nil {
		return model.Pattern{}, err
	}
	modeStr, err := p.str("match", "")
	if err != nil {
		return model.Pattern{}, err
	}
	mode, err := model.ParseMatchMode(modeStr)
	if err != nil {
		return model.Pattern{}, err
	}
	return model.NewPattern(mode, alts...)
}

func decodeWaitForWindowActivate(p params) (action.Action, error) {
	if err := p.check("title", "match", "timeout"); err != nil {
		return nil, err
	}
	title, err := patternParam(p, "title")
	if err != nil {
		return nil, err
	}
	timeout, err := p.duration("timeout")
	if err != nil {
		return nil, err
	}
	return &action.WaitForWindowActivate{Title: title, Timeout: timeout}, nil
}

func decodeWaitForFocus(p params) (action.Action, error) {
	if err := p.check("name", "role", "match", "timeout"); err != nil {
		return nil, err
	}
	name, err := patternParam(p, "name")
	if err != nil {
		return nil, err
	}
	role, err := p.str("role", "")
	if err != nil {
		return nil, err
	}
	if name.Any() && role == "" {
		return nil, fmt.Errorf("name or role is required")
	}
	timeout, err := p.duration("timeout")
	if err != nil {
		return nil, err
	}
	return &action.WaitForFocus{Name: name, Role: role, Timeout: timeout}, nil
}

func decodeWaitForDocLoad(p params) (action.Action, error) {
	if err := p.check("timeout"); err != nil {
		return nil, err
	}
	timeout, err := p.duration("timeout")
	if err != nil {
		return nil, err
	}
	return &action.WaitForDocLoad{Timeout: timeout}, nil
}

func decodeWaitForEvent(p params) (action.Action, error) {
	if err := p.check("event", "name", "role", "match", "timeout"); err != nil {
		return nil, err
	}
	event, err := p.str("event", "")
	if err != nil {
		return nil, err
	}
	if event == "" {
		return nil, fmt.Errorf("event is required")
	}
	name, err := patternParam(p, "name")
	if err != nil {
		return nil, err
	}
	role, err := p.str("role", "")
	if err != nil {
		return nil, err
	}
	timeout, err := p.duration("timeout")
	if err != nil {
		return nil, err
	}
	return &action.WaitForEvent{Event: event, Name: name, Role: role, Timeout: timeout}, nil
}

func decodeAssertPresentation(p params) (action.Action, error) {
	if err := p.check("label", "expected"); err != nil {
		return nil, err
	}
	label, err := p.str("label", "")
	if err != nil {
		return nil, err
	}
	lines, err := expectedLines(p["expected"])
	if err != nil {
		return nil, err
	}
	return &action.AssertPresentation{Label: label, Expected: lines}, nil
}

// expectedLines accepts a list whose items are strings or
// {line, known-issue} maps. Strings spanning several lines are split.
func expectedLines(v interface{}) ([]model.Line, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected: must be a list, got %T", v)
	}
	var lines []model.Line
	for i, item := range items {
		switch it := item.(type) {
		case nil:
			lines = append(lines, model.NewLine(""))
		case string:
			for _, s := range splitLines(it) {
				lines = append(lines, model.NewLine(s))
			}
		case map[string]interface{}:
			p := params(it)
			if err := p.check("line", "known-issue"); err != nil {
				return nil, fmt.Errorf("expected[%d]: %w", i, err)
			}
			text, err := p.str("line", "")
			if err != nil {
				return nil, fmt.Errorf("expected[%d]: %w", i, err)
			}
			issue, err := p.str("known-issue", "")
			if err != nil {
				return nil, fmt.Errorf("expected[%d]: %w", i, err)
			}
			if issue == "" {
				return nil, fmt.Errorf("expected[%d]: known-issue must not be empty", i)
			}
			lines = append(lines, model.Line{Text: text, KnownIssue: issue})
		default:
			return nil, fmt.Errorf("expected[%d]: unsupported %T", i, item)
		}
	}
	return lines, nil
}

func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}
	return model.Event{Payload: s}.Lines()
}
