package fixture

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/GNOME/orca-sub019/internal/action"
	"github.com/GNOME/orca-sub019/internal/model"
)

// Encode writes seqs as a multi-document fixture that Parse reads back to
// the same sequences.
func Encode(w io.Writer, seqs []*action.Sequence) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, seq := range seqs {
		doc := document{Name: seq.Name}
		for _, a := range seq.Actions {
			step, err := encodeStep(a)
			if err != nil {
				return fmt.Errorf("sequence %q: %w", seq.Name, err)
			}
			doc.Actions = append(doc.Actions, step)
		}
		if err := enc.Encode(doc); err != nil {
			return err
		}
	}
	return enc.Close()
}

func encodeStep(a action.Action) (map[string]interface{}, error) {
	p := map[string]interface{}{}
	switch v := a.(type) {
	case *action.KeyPress:
		p["key"] = v.Chord.String()
		putDuration(p, "delay", v.Delay)
	case *action.KeyRelease:
		p["key"] = v.Chord.String()
		putDuration(p, "delay", v.Delay)
	case *action.KeyCombo:
		p["key"] = v.Chord.String()
		putDuration(p, "delay", v.Delay)
	case *action.Type:
		p["text"] = v.Text
		putDuration(p, "delay", v.Delay)
	case *action.Pause:
		p["duration"] = encodeDuration(v.Duration)
	case *action.WaitForWindowActivate:
		putPattern(p, "title", v.Title)
		putDuration(p, "timeout", v.Timeout)
	case *action.WaitForFocus:
		putPattern(p, "name", v.Name)
		if v.Role != "" {
			p["role"] = v.Role
		}
		putDuration(p, "timeout", v.Timeout)
	case *action.WaitForDocLoad:
		putDuration(p, "timeout", v.Timeout)
	case *action.WaitForEvent:
		p["event"] = v.Event
		putPattern(p, "name", v.Name)
		if v.Role != "" {
			p["role"] = v.Role
		}
		putDuration(p, "timeout", v.Timeout)
	case *action.StartRecording, *action.AssertionSummary:
	case *action.AssertPresentation:
		p["label"] = v.Label
		p["expected"] = encodeLines(v.Expected)
	default:
		return nil, fmt.Errorf("cannot encode %T", a)
	}
	return map[string]interface{}{string(a.Kind()): p}, nil
}

func putDuration(p map[string]interface{}, key string, d time.Duration) {
	if d != 0 {
		p[key] = encodeDuration(d)
	}
}

func putPattern(p map[string]interface{}, key string, pat model.Pattern) {
	switch len(pat.Alternatives) {
	case 0:
		return
	case 1:
		p[key] = pat.Alternatives[0]
	default:
		p[key] = pat.Alternatives
	}
	if pat.Mode != model.MatchExact && pat.Mode != "" {
		p["match"] = string(pat.Mode)
	}
}

func encodeLines(lines []model.Line) []interface{} {
	out := make([]interface{}, 0, len(lines))
	for _, l := range lines {
		if l.KnownIssue != "" {
			out = append(out, map[string]interface{}{"line": l.Text, "known-issue": l.KnownIssue})
			continue
		}
		out = append(out, l.Text)
	}
	return out
}
