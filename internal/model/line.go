package model

import "strings"

// KnownIssuePrefix marks a standalone expected line as a note about a
// tracked discrepancy rather than an expectation.
const KnownIssuePrefix = "KNOWN ISSUE"

// Line is one expected transcript line.
//
// A Line with Note set documents a known issue and occupies no position in
// the comparison. A Line with KnownIssue set occupies a position but a
// mismatch at that position does not fail the assertion.
type Line struct {
	Text       string `yaml:"line"                  json:"line"`
	KnownIssue string `yaml:"known-issue,omitempty" json:"known_issue,omitempty"`
	Note       bool   `yaml:"note,omitempty"        json:"note,omitempty"`
}

// NewLine builds a Line from a fixture string, recognizing the
// KNOWN ISSUE prefix as a note.
func NewLine(text string) Line {
	if strings.HasPrefix(strings.TrimSpace(text), KnownIssuePrefix) {
		return Line{Text: text, Note: true}
	}
	return Line{Text: text}
}

// Annotated reports whether the line carries a known-issue annotation of
// either form.
func (l Line) Annotated() bool {
	return l.Note || l.KnownIssue != ""
}

// Positional returns the lines that take part in the positional
// comparison. A list whose only positional line is empty means "no output".
func Positional(lines []Line) []Line {
	var out []Line
	for _, l := range lines {
		if l.Note {
			continue
		}
		out = append(out, l)
	}
	if len(out) == 1 && out[0].Text == "" && out[0].KnownIssue == "" {
		return nil
	}
	return out
}
