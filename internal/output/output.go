// Package output renders command results as text, YAML or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Format represents the output format.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatText:
		return FormatText, nil
	case FormatYAML:
		return FormatYAML, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported format: %s (use text, yaml, or json)", s)
}

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat = FormatText

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// Stdout is where Print writes. Replaced in tests.
var Stdout io.Writer = os.Stdout

// Texter is implemented by results with a human-readable rendering.
type Texter interface {
	WriteText(w io.Writer) error
}

// Print serializes v to Stdout in the current output format. In text
// format, values implementing Texter render themselves and anything else
// falls back to YAML.
func Print(v interface{}) error {
	return Fprint(Stdout, OutputFormat, v)
}

// Fprint serializes v to w in format f.
func Fprint(w io.Writer, f Format, v interface{}) error {
	switch f {
	case FormatJSON:
		if PrettyOutput {
			return WritePrettyJSON(w, v)
		}
		return WriteJSON(w, v)
	case FormatYAML:
		return WriteYAML(w, v)
	case FormatText:
		if t, ok := v.(Texter); ok {
			return t.WriteText(w)
		}
		return WriteYAML(w, v)
	default:
		return fmt.Errorf("unsupported output format: %s", f)
	}
}

// WriteJSON serializes v as compact single-line JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WritePrettyJSON serializes v as indented JSON.
func WritePrettyJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteYAML serializes v as YAML.
func WriteYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}
