// Package suite runs sequences one after another and reports the
// combined verdict.
package suite

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GNOME/orca-sub019/internal/action"
	"github.com/GNOME/orca-sub019/internal/model"
	"github.com/GNOME/orca-sub019/internal/sequencer"
)

// Options configures a Runner.
type Options struct {
	// Progress receives one line per assertion and the per-sequence
	// summaries. Nil discards them.
	Progress io.Writer
	Logger   *slog.Logger
	// Filter keeps only sequences whose name contains it.
	Filter string
	// NewID and Clock are replaced in tests.
	NewID func() string
	Clock func() time.Time
}

// Runner executes a suite.
type Runner struct {
	opts Options
	seq  *sequencer.Sequencer

	total int
	done  int
}

// New returns a Runner driving a sequencer built from seqOpts. The runner
// installs itself as the sequencer's observer.
func New(seqOpts sequencer.Options, opts Options) *Runner {
	if opts.Progress == nil {
		opts.Progress = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	r := &Runner{opts: opts}
	seqOpts.Logger = opts.Logger
	seqOpts.Observer = r
	r.seq = sequencer.New(seqOpts)
	return r
}

// Select applies the name filter to seqs.
func (r *Runner) Select(seqs []*action.Sequence) []*action.Sequence {
	if r.opts.Filter == "" {
		return seqs
	}
	var out []*action.Sequence
	for _, s := range seqs {
		if strings.Contains(s.Name, r.opts.Filter) {
			out = append(out, s)
		}
	}
	return out
}

// Run executes the selected sequences strictly one at a time and returns
// the suite result.
func (r *Runner) Run(ctx context.Context, seqs []*action.Sequence) *model.SuiteResult {
	seqs = r.Select(seqs)
	started := r.opts.Clock()
	id := r.opts.NewID()
	log := r.opts.Logger.With("run", id)

	r.total, r.done = 0, 0
	for _, s := range seqs {
		r.total += len(s.Assertions())
	}
	log.Info("suite started", "sequences", len(seqs), "assertions", r.total)

	var results []model.AssertionResult
	var summaries []model.SequenceSummary
	for _, s := range seqs {
		res := r.seq.Run(ctx, s)
		results = append(results, res.Assertions...)
		summaries = append(summaries, res.Summary())
		if hasSummaryMarker(s) {
			fmt.Fprintln(r.opts.Progress, SequenceSummaryLine(s.Name, res.Assertions))
		}
		if res.Aborted != nil {
			fmt.Fprintf(r.opts.Progress, "ABORTED: %s: %v\n", s.Name, res.Aborted)
		}
	}

	suite := model.NewSuiteResult(id, started, r.opts.Clock(), summaries, results)
	log.Info("suite finished", "passed", suite.Passed, "failed", suite.Failed, "aborted", suite.Aborted)
	return suite
}

// ActionDone implements sequencer.Observer.
func (r *Runner) ActionDone(seq *action.Sequence, out action.Outcome) {}

// AssertionDone implements sequencer.Observer.
func (r *Runner) AssertionDone(seq *action.Sequence, res model.AssertionResult) {
	r.done++
	verdict := "SUCCEEDED"
	if !res.Passed() {
		verdict = "FAILED"
	}
	fmt.Fprintf(r.opts.Progress, "Test %d of %d %s: %s:%s\n", r.done, r.total, verdict, seq.Name, res.Label)
}

func hasSummaryMarker(s *action.Sequence) bool {
	for _, a := range s.Actions {
		if a.Kind() == action.KindAssertionSummary {
			return true
		}
	}
	return false
}

// SequenceSummaryLine renders the per-sequence summary.
func SequenceSummaryLine(name string, results []model.AssertionResult) string {
	passed, failed, known := 0, 0, 0
	for _, a := range results {
		if a.Passed() {
			passed++
		} else {
			failed++
		}
		if a.ToleratedIssues() > 0 {
			known++
		}
	}
	return fmt.Sprintf("SUMMARY: %d SUCCEEDED and %d FAILED (%d KNOWN ISSUES) of %d for %s",
		passed, failed, known, len(results), name)
}
