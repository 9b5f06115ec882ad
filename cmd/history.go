package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/GNOME/orca-sub019/internal/history"
	"github.com/GNOME/orca-sub019/internal/model"
	"github.com/GNOME/orca-sub019/internal/output"
	"github.com/GNOME/orca-sub019/internal/suite"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs or show one run's results",
	Long: `Read the run history database written by 'playback run --history'.

Examples:
  playback history --history runs.db
  playback history --history runs.db --run 7c9e6679-7425-40de-944b-e07fc1f90ae7`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().String("history", "", "SQLite history database (default: history.path)")
	historyCmd.Flags().String("run", "", "Show the assertion results of this run")
	historyCmd.Flags().Int("limit", 20, "Max runs to list (0 = all)")
}

type runList []history.Run

func (l runList) WriteText(w io.Writer) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, "no runs recorded")
		return err
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Started", "Duration", "Total", "Passed", "Failed", "Known Issues", "Aborted"})
	for _, r := range l {
		tw.AppendRow(table.Row{
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String(),
			r.Total, r.Passed, r.Failed, r.KnownIssues, r.Aborted,
		})
	}
	tw.Render()
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	runID, _ := cmd.Flags().GetString("run")
	limit, _ := cmd.Flags().GetInt("limit")

	if appConfig.History.Path == "" {
		return fmt.Errorf("no history database configured (use --history or history.path)")
	}
	store, err := history.Open(appConfig.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	if runID == "" {
		runs, err := store.ListRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}
		return output.Print(runList(runs))
	}

	results, err := store.Assertions(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if output.OutputFormat != output.FormatText {
		return output.Print(results)
	}
	return output.Print(suite.Report{Result: storedResult(runID, results)})
}

// storedResult rebuilds a suite result from stored assertions so the
// report renderer can show it. Timing and abort details are not stored
// per sequence.
func storedResult(id string, results []model.AssertionResult) *model.SuiteResult {
	var seqs []model.SequenceSummary
	index := map[string]int{}
	for _, a := range results {
		i, ok := index[a.Sequence]
		if !ok {
			i = len(seqs)
			index[a.Sequence] = i
			seqs = append(seqs, model.SequenceSummary{Name: a.Sequence})
		}
		seqs[i].Assertions++
	}
	return model.NewSuiteResult(id, time.Time{}, time.Time{}, seqs, results)
}
