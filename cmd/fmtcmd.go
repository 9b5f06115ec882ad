package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GNOME/orca-sub019/internal/fixture"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt FIXTURE",
	Short: "Rewrite a fixture in canonical form",
	Long: `Load a fixture and print it back in canonical form: accelerator-style
keys, durations in milliseconds and one parameter map per step.

Examples:
  playback fmt tests/gedit.yaml
  playback fmt --write tests/gedit.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runFmt,
}

func init() {
	rootCmd.AddCommand(fmtCmd)
	fmtCmd.Flags().BoolP("write", "w", false, "Write the result back to the file instead of stdout")
}

func runFmt(cmd *cobra.Command, args []string) error {
	write, _ := cmd.Flags().GetBool("write")
	path := args[0]

	seqs, err := fixture.Load(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := fixture.Encode(&buf, seqs); err != nil {
		return err
	}
	if !write {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write fixture: %w", err)
	}
	logger.Info("fixture rewritten", "path", path, "sequences", len(seqs))
	return nil
}
