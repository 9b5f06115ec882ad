package model

// DiffOp describes how one line of an assertion compared.
type DiffOp string

const (
	DiffMatch      DiffOp = "match"
	DiffMismatch   DiffOp = "mismatch"
	DiffMissing    DiffOp = "missing"     // Expected line with no actual line at that position
	DiffUnexpected DiffOp = "unexpected"  // Actual line beyond the expected transcript
	DiffKnownIssue DiffOp = "known-issue" // Mismatch tolerated by an annotation
	DiffNote       DiffOp = "note"        // Standalone known-issue note, not compared
)

// LineDiff is a single entry of a rendered assertion diff.
type LineDiff struct {
	Op         DiffOp `yaml:"op"                    json:"op"`
	Index      int    `yaml:"index"                 json:"index"` // Position in the comparison; -1 for notes
	Expected   string `yaml:"expected,omitempty"    json:"expected,omitempty"`
	Actual     string `yaml:"actual,omitempty"      json:"actual,omitempty"`
	KnownIssue string `yaml:"known_issue,omitempty" json:"known_issue,omitempty"`
}

// DiffLines compares expected against actual position by position and
// returns the rendered diff plus whether the comparison passes.
//
// Notes are kept in the diff in their authored order but take no position.
// The comparison fails on any non-annotated mismatch or on a length
// difference between the positional expected lines and actual.
func DiffLines(expected []Line, actual []string) ([]LineDiff, bool) {
	positional := Positional(expected)
	pass := len(positional) == len(actual)

	var diffs []LineDiff
	pos := 0
	for _, l := range expected {
		if l.Note {
			diffs = append(diffs, LineDiff{Op: DiffNote, Index: -1, Expected: l.Text})
			continue
		}
		if pos >= len(positional) {
			// The "no output" marker line.
			continue
		}
		d := LineDiff{Index: pos, Expected: l.Text, KnownIssue: l.KnownIssue}
		switch {
		case pos >= len(actual):
			d.Op = DiffMissing
		case actual[pos] == l.Text:
			d.Op = DiffMatch
			d.Actual = actual[pos]
		case l.KnownIssue != "":
			d.Op = DiffKnownIssue
			d.Actual = actual[pos]
		default:
			d.Op = DiffMismatch
			d.Actual = actual[pos]
			pass = false
		}
		diffs = append(diffs, d)
		pos++
	}
	for ; pos < len(actual); pos++ {
		diffs = append(diffs, LineDiff{Op: DiffUnexpected, Index: pos, Actual: actual[pos]})
	}
	return diffs, pass
}
