// Package fixture loads sequences from YAML files.
//
// A fixture file holds one or more YAML documents, each describing one
// sequence:
//
//	name: gedit-open
//	actions:
//	  - key-combo: "<Control>o"
//	  - wait-for-focus: { name: "Open", role: "dialog", timeout: 5000 }
//	  - start-recording:
//	  - key-combo: { key: "Return", delay: 500 }
//	  - assert-presentation:
//	      label: "open dialog"
//	      expected:
//	        - "BRAILLE LINE:  'Open'"
//	        - line: "SPEECH OUTPUT: 'Open'"
//	          known-issue: "title spoken twice"
//	  - assertion-summary:
//
// Each step is a map with exactly one key naming the action. Its value is
// a parameter map, a scalar shorthand for the action's main parameter, or
// empty. Unknown actions or parameters are load errors.
package fixture

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/GNOME/orca-sub019/internal/action"
)

// Extensions recognised when a directory is loaded.
var Extensions = []string{".yaml", ".yml"}

type document struct {
	Name    string                   `yaml:"name"`
	Actions []map[string]interface{} `yaml:"actions"`
}

// Load reads every sequence in the file at path.
func Load(path string) ([]*action.Sequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	return Parse(data, path)
}

// LoadAll loads each path in order. Directories contribute their fixture
// files sorted by name.
func LoadAll(paths []string) ([]*action.Sequence, error) {
	var all []*action.Sequence
	for _, p := range paths {
		files, err := expand(p)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			seqs, err := Load(f)
			if err != nil {
				return nil, err
			}
			all = append(all, seqs...)
		}
	}
	return all, nil
}

func expand(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range Extensions {
			if ext == want {
				files = append(files, filepath.Join(path, e.Name()))
				break
			}
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("no fixture files in %s", path)
	}
	return files, nil
}

// Parse decodes the sequences in data. source names the origin in errors
// and in Sequence.Source, and supplies the default sequence name.
func Parse(data []byte, source string) ([]*action.Sequence, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var seqs []*action.Sequence
	for n := 1; ; n++ {
		var doc document
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: document %d: %w", source, n, err)
		}
		if doc.Name == "" && len(doc.Actions) == 0 {
			continue
		}
		seq, err := decodeSequence(doc, source, n)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		seqs = append(seqs, seq)
	}
	if len(seqs) == 0 {
		return nil, fmt.Errorf("%s: no sequences found", source)
	}
	return seqs, nil
}

func decodeSequence(doc document, source string, n int) (*action.Sequence, error) {
	name := doc.Name
	if name == "" {
		base := filepath.Base(source)
		name = strings.TrimSuffix(base, filepath.Ext(base))
		if n > 1 {
			name = fmt.Sprintf("%s#%d", name, n)
		}
	}
	if len(doc.Actions) == 0 {
		return nil, fmt.Errorf("sequence %q: no actions", name)
	}

	seq := &action.Sequence{Name: name, Source: source}
	for i, step := range doc.Actions {
		stepNum := i + 1
		if len(step) != 1 {
			return nil, fmt.Errorf("sequence %q: step %d: expected exactly one action key, got %d", name, stepNum, len(step))
		}
		for kind, value := range step {
			a, err := decodeStep(action.Kind(kind), value)
			if err != nil {
				return nil, fmt.Errorf("sequence %q: step %d (%s): %w", name, stepNum, kind, err)
			}
			seq.Actions = append(seq.Actions, a)
		}
	}
	return seq, nil
}
