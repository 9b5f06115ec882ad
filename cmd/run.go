package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GNOME/orca-sub019/internal/fixture"
	"github.com/GNOME/orca-sub019/internal/output"
	"github.com/GNOME/orca-sub019/internal/session"
	"github.com/GNOME/orca-sub019/internal/suite"
)

var runCmd = &cobra.Command{
	Use:   "run FIXTURE...",
	Short: "Play back fixtures and assert the presented output",
	Long: `Load every sequence from the given fixture files or directories and play
them back one at a time. A line is printed as each assertion completes,
followed by a report of every failure and the suite summary.

The exit status is non-zero when any assertion fails or a sequence aborts.

Examples:
  playback run tests/gtk-demo
  playback run --filter checkbox tests/gtk-demo/*.yaml
  playback run --dispatcher none --no-assert tests/gedit.yaml
  playback run --history runs.db --format json tests/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("filter", "", "Only run sequences whose name contains this text")
	runCmd.Flags().Bool("no-assert", false, "Drive the actions but skip presentation assertions")
	runCmd.Flags().String("history", "", "SQLite database to record the run in")
}

func runRun(cmd *cobra.Command, args []string) error {
	filter, _ := cmd.Flags().GetString("filter")
	noAssert, _ := cmd.Flags().GetBool("no-assert")

	seqs, err := fixture.LoadAll(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := session.Open(ctx, appConfig, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Warn("close session", "error", err)
		}
	}()

	// Machine-readable formats keep stdout for the result.
	var progress io.Writer = cmd.OutOrStdout()
	if output.OutputFormat != output.FormatText {
		progress = cmd.ErrOrStderr()
	}

	res, err := sess.Run(ctx, seqs, session.RunOptions{
		Progress: progress,
		Filter:   filter,
		NoAssert: noAssert,
	})
	if res == nil {
		return err
	}
	if err != nil {
		logger.Error("save run", "error", err)
	}

	if output.OutputFormat == output.FormatText {
		fmt.Fprintln(progress)
		err = output.Print(suite.Report{Result: res})
	} else {
		err = output.Print(res)
	}
	if err != nil {
		return err
	}
	if ctx.Err() != nil && cmd.Context().Err() == nil {
		return context.Canceled
	}
	if !res.OK() {
		return fmt.Errorf("%d of %d assertions failed, %d sequences aborted", res.Failed, res.Total, res.Aborted)
	}
	return nil
}
