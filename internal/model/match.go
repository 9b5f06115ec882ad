package model

import (
	"fmt"
	"regexp"
	"strings"
)

// MatchMode selects how a Pattern compares text.
type MatchMode string

const (
	MatchExact    MatchMode = "exact"
	MatchContains MatchMode = "contains"
	MatchRegex    MatchMode = "regex"
)

// ParseMatchMode converts a fixture value to a MatchMode. Empty means exact.
func ParseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact":
		return MatchExact, nil
	case "contains", "substring":
		return MatchContains, nil
	case "regex", "regexp":
		return MatchRegex, nil
	default:
		return "", fmt.Errorf("unknown match mode: %q (expected exact, contains, or regex)", s)
	}
}

// Pattern matches a window title or object name. A Pattern with no
// alternatives matches anything.
type Pattern struct {
	Alternatives []string
	Mode         MatchMode
	compiled     []*regexp.Regexp
}

// NewPattern builds a Pattern, compiling regular expressions up front so
// malformed fixtures fail at load time.
func NewPattern(mode MatchMode, alternatives ...string) (Pattern, error) {
	p := Pattern{Mode: mode}
	for _, a := range alternatives {
		if a == "" {
			continue
		}
		p.Alternatives = append(p.Alternatives, a)
		if mode == MatchRegex {
			re, err := regexp.Compile(a)
			if err != nil {
				return Pattern{}, fmt.Errorf("invalid pattern %q: %w", a, err)
			}
			p.compiled = append(p.compiled, re)
		}
	}
	return p, nil
}

// Any reports whether the pattern accepts every value.
func (p Pattern) Any() bool {
	return len(p.Alternatives) == 0
}

// Match reports whether text satisfies any alternative.
func (p Pattern) Match(text string) bool {
	if p.Any() {
		return true
	}
	switch p.Mode {
	case MatchContains:
		lower := strings.ToLower(text)
		for _, a := range p.Alternatives {
			if strings.Contains(lower, strings.ToLower(a)) {
				return true
			}
		}
	case MatchRegex:
		for _, re := range p.compiled {
			if re.MatchString(text) {
				return true
			}
		}
	default:
		for _, a := range p.Alternatives {
			if text == a {
				return true
			}
		}
	}
	return false
}

// String describes the pattern for logs and failure messages.
func (p Pattern) String() string {
	if p.Any() {
		return "*"
	}
	quoted := make([]string, len(p.Alternatives))
	for i, a := range p.Alternatives {
		quoted[i] = fmt.Sprintf("%q", a)
	}
	desc := strings.Join(quoted, "|")
	if p.Mode != MatchExact && p.Mode != "" {
		desc = string(p.Mode) + ":" + desc
	}
	return desc
}
