package model

import "time"

// Verdict is the outcome of one presentation assertion.
type Verdict string

const (
	VerdictPass Verdict = "pass"
	VerdictFail Verdict = "fail"
)

// AssertionResult records one AssertPresentation evaluation.
type AssertionResult struct {
	Sequence string     `yaml:"sequence"          json:"sequence"`
	Index    int        `yaml:"index"             json:"index"` // 1-based position among the sequence's assertions
	Label    string     `yaml:"label"             json:"label"`
	WindowID int        `yaml:"window"            json:"window"` // Recording window the assertion read (0 = none)
	Expected []Line     `yaml:"expected"          json:"expected"`
	Actual   []string   `yaml:"actual"            json:"actual"`
	Verdict  Verdict    `yaml:"verdict"           json:"verdict"`
	Diff     []LineDiff `yaml:"diff,omitempty"    json:"diff,omitempty"`
	Error    string     `yaml:"error,omitempty"   json:"error,omitempty"`
}

// Passed reports whether the verdict is pass.
func (r AssertionResult) Passed() bool {
	return r.Verdict == VerdictPass
}

// ToleratedIssues counts positions where a known-issue annotation absorbed
// a mismatch.
func (r AssertionResult) ToleratedIssues() int {
	n := 0
	for _, d := range r.Diff {
		if d.Op == DiffKnownIssue {
			n++
		}
	}
	return n
}

// SequenceSummary is the per-sequence record kept in a suite result.
type SequenceSummary struct {
	Name          string `yaml:"name"              json:"name"`
	Source        string `yaml:"source,omitempty"  json:"source,omitempty"`
	Actions       int    `yaml:"actions"           json:"actions"`
	FailedActions int    `yaml:"failed_actions"    json:"failed_actions"`
	Assertions    int    `yaml:"assertions"        json:"assertions"`
	Aborted       string `yaml:"aborted,omitempty" json:"aborted,omitempty"`
	Elapsed       string `yaml:"elapsed"           json:"elapsed"`
}

// SuiteResult is the immutable outcome of a suite run. Counts are derived
// from Results when the value is built and are never updated afterwards.
type SuiteResult struct {
	ID          string            `yaml:"id"           json:"id"`
	Started     time.Time         `yaml:"started"      json:"started"`
	Finished    time.Time         `yaml:"finished"     json:"finished"`
	Total       int               `yaml:"total"        json:"total"`
	Passed      int               `yaml:"passed"       json:"passed"`
	Failed      int               `yaml:"failed"       json:"failed"`
	KnownIssues int               `yaml:"known_issues" json:"known_issues"`
	Aborted     int               `yaml:"aborted"      json:"aborted"`
	Sequences   []SequenceSummary `yaml:"sequences"    json:"sequences"`
	Results     []AssertionResult `yaml:"results"      json:"results"`
}

// NewSuiteResult builds a SuiteResult and derives its counts.
func NewSuiteResult(id string, started, finished time.Time, sequences []SequenceSummary, results []AssertionResult) *SuiteResult {
	r := &SuiteResult{
		ID:        id,
		Started:   started,
		Finished:  finished,
		Sequences: sequences,
		Results:   results,
		Total:     len(results),
	}
	for _, a := range results {
		if a.Passed() {
			r.Passed++
		} else {
			r.Failed++
		}
		if a.ToleratedIssues() > 0 {
			r.KnownIssues++
		}
	}
	for _, s := range sequences {
		if s.Aborted != "" {
			r.Aborted++
		}
	}
	return r
}

// OK reports whether the suite should exit with status 0.
func (r *SuiteResult) OK() bool {
	return r.Failed == 0 && r.Aborted == 0
}

// Failures returns the failed assertions in suite order.
func (r *SuiteResult) Failures() []AssertionResult {
	var out []AssertionResult
	for _, a := range r.Results {
		if !a.Passed() {
			out = append(out, a)
		}
	}
	return out
}
