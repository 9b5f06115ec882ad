package suite

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/GNOME/orca-sub019/internal/model"
)

// Report renders a suite result for humans. It implements output.Texter.
type Report struct {
	Result *model.SuiteResult
}

// WriteText writes the per-sequence table, every failure with its line
// diff, and the final summary line.
func (r Report) WriteText(w io.Writer) error {
	res := r.Result

	if len(res.Sequences) > 0 {
		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		tw.AppendHeader(table.Row{"Sequence", "Assertions", "Passed", "Failed", "Known Issues", "Status"})
		for _, s := range res.Sequences {
			passed, failed, known := countFor(res.Results, s.Name)
			status := "ok"
			if s.Aborted != "" {
				status = "aborted: " + s.Aborted
			} else if failed > 0 {
				status = "failed"
			}
			tw.AppendRow(table.Row{s.Name, s.Assertions, passed, failed, known, status})
		}
		tw.AppendFooter(table.Row{"Total", res.Total, res.Passed, res.Failed, res.KnownIssues, ""})
		tw.Render()
	}

	for _, f := range res.Failures() {
		fmt.Fprintln(w)
		writeFailure(w, f)
	}

	fmt.Fprintln(w)
	line := fmt.Sprintf("SUMMARY: %d SUCCEEDED and %d FAILED (%d KNOWN ISSUES) of %d",
		res.Passed, res.Failed, res.KnownIssues, res.Total)
	if res.Aborted > 0 {
		line += fmt.Sprintf(" (%d ABORTED SEQUENCES)", res.Aborted)
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

func countFor(results []model.AssertionResult, sequence string) (passed, failed, known int) {
	for _, a := range results {
		if a.Sequence != sequence {
			continue
		}
		if a.Passed() {
			passed++
		} else {
			failed++
		}
		if a.ToleratedIssues() > 0 {
			known++
		}
	}
	return passed, failed, known
}

func writeFailure(w io.Writer, a model.AssertionResult) {
	fmt.Fprintf(w, "FAILED: %s #%d %s\n", a.Sequence, a.Index, strconv.Quote(a.Label))
	if a.Error != "" {
		fmt.Fprintf(w, "  ERROR: %s\n", a.Error)
	}
	fmt.Fprintln(w, "  EXPECTED:")
	for _, l := range a.Expected {
		switch {
		case l.Note:
			fmt.Fprintf(w, "    %s\n", l.Text)
		case l.KnownIssue != "":
			fmt.Fprintf(w, "    %s  [KNOWN ISSUE: %s]\n", strconv.Quote(l.Text), l.KnownIssue)
		default:
			fmt.Fprintf(w, "    %s\n", strconv.Quote(l.Text))
		}
	}
	fmt.Fprintln(w, "  ACTUAL:")
	for _, l := range a.Actual {
		fmt.Fprintf(w, "    %s\n", strconv.Quote(l))
	}
	fmt.Fprintln(w, "  DIFF:")
	for _, d := range a.Diff {
		switch d.Op {
		case model.DiffMatch, model.DiffNote:
			continue
		case model.DiffMismatch:
			fmt.Fprintf(w, "    [%d] expected %s, got %s\n", d.Index+1, strconv.Quote(d.Expected), strconv.Quote(d.Actual))
		case model.DiffMissing:
			fmt.Fprintf(w, "    [%d] missing %s\n", d.Index+1, strconv.Quote(d.Expected))
		case model.DiffUnexpected:
			fmt.Fprintf(w, "    [%d] unexpected %s\n", d.Index+1, strconv.Quote(d.Actual))
		case model.DiffKnownIssue:
			fmt.Fprintf(w, "    [%d] known issue %s: got %s\n", d.Index+1, strconv.Quote(d.KnownIssue), strconv.Quote(d.Actual))
		}
	}
}
