package fixture

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Parameter extraction helpers for step maps

type params map[string]interface{}

// check rejects parameter names outside allowed.
func (p params) check(allowed ...string) error {
	var unknown []string
	for k := range p {
		found := false
		for _, a := range allowed {
			if k == a {
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	if len(allowed) == 0 {
		return fmt.Errorf("takes no parameters, got %s", strings.Join(unknown, ", "))
	}
	return fmt.Errorf("unknown parameter %s (allowed: %s)", strings.Join(unknown, ", "), strings.Join(allowed, ", "))
}

func (p params) str(key, defaultVal string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return defaultVal, nil
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case int, int64, float64, bool:
		// YAML may parse bare words and numbers as non-strings
		return fmt.Sprintf("%v", s), nil
	}
	return "", fmt.Errorf("%s: expected a string, got %T", key, v)
}

func (p params) num(key string, defaultVal int) (int, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return defaultVal, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	}
	return 0, fmt.Errorf("%s: expected a number, got %T", key, v)
}

// list accepts a single string or a list of strings.
func (p params) list(key string) ([]string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch s := v.(type) {
	case string:
		return []string{s}, nil
	case []interface{}:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s: expected a list of strings, got %T item", key, item)
			}
			out = append(out, str)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%s: expected a string or list of strings, got %T", key, v)
}

// duration accepts a number of milliseconds or a Go duration string.
func (p params) duration(key string) (time.Duration, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, nil
	}
	var d time.Duration
	switch n := v.(type) {
	case int:
		d = time.Duration(n) * time.Millisecond
	case int64:
		d = time.Duration(n) * time.Millisecond
	case float64:
		d = time.Duration(n * float64(time.Millisecond))
	case string:
		parsed, err := time.ParseDuration(n)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		d = parsed
	default:
		return 0, fmt.Errorf("%s: expected milliseconds or a duration, got %T", key, v)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative", key)
	}
	return d, nil
}

// encodeDuration renders d as whole milliseconds when exact.
func encodeDuration(d time.Duration) interface{} {
	if d%time.Millisecond == 0 {
		return int(d / time.Millisecond)
	}
	return d.String()
}
