package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/GNOME/orca-sub019/internal/action"
	"github.com/GNOME/orca-sub019/internal/fixture"
	"github.com/GNOME/orca-sub019/internal/output"
	"github.com/GNOME/orca-sub019/internal/platform"
)

var validateCmd = &cobra.Command{
	Use:   "validate FIXTURE...",
	Short: "Load fixtures and list their sequences without running them",
	Long: `Parse every fixture and report each sequence's actions and assertions.
Unknown actions, unknown parameters, unparseable keys and unmapped
characters are reported with the file and step that caused them. Key
names no input backend can send are listed as warnings; at run time
those steps fail on their own without stopping the sequence.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolP("verbose", "v", false, "List every action")
}

// sequenceInfo describes one loaded sequence.
type sequenceInfo struct {
	Name       string   `yaml:"name"              json:"name"`
	Source     string   `yaml:"source"            json:"source"`
	Actions    int      `yaml:"actions"           json:"actions"`
	Assertions int      `yaml:"assertions"        json:"assertions"`
	Steps      []string `yaml:"steps,omitempty"   json:"steps,omitempty"`
	Warnings   []string `yaml:"warnings,omitempty" json:"warnings,omitempty"`
}

type sequenceList []sequenceInfo

func (l sequenceList) WriteText(w io.Writer) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Sequence", "Source", "Actions", "Assertions"})
	for _, s := range l {
		tw.AppendRow(table.Row{s.Name, s.Source, s.Actions, s.Assertions})
		if len(s.Steps) > 0 {
			tw.AppendRow(table.Row{"", strings.Join(s.Steps, "\n"), "", ""})
		}
		for _, w := range s.Warnings {
			tw.AppendRow(table.Row{"", "warning: " + w, "", ""})
		}
	}
	tw.Render()
	return nil
}

func describeSequences(seqs []*action.Sequence, verbose bool) sequenceList {
	out := make(sequenceList, 0, len(seqs))
	for _, s := range seqs {
		info := sequenceInfo{
			Name:       s.Name,
			Source:     s.Source,
			Actions:    len(s.Actions),
			Assertions: len(s.Assertions()),
			Warnings:   unknownKeys(s),
		}
		if verbose {
			for _, a := range s.Actions {
				info.Steps = append(info.Steps, a.String())
			}
		}
		out = append(out, info)
	}
	return out
}

// unknownKeys lists the key steps whose key name is not a known keysym.
func unknownKeys(s *action.Sequence) []string {
	var out []string
	for i, a := range s.Actions {
		var chord platform.Chord
		switch a := a.(type) {
		case *action.KeyPress:
			chord = a.Chord
		case *action.KeyRelease:
			chord = a.Chord
		case *action.KeyCombo:
			chord = a.Chord
		default:
			continue
		}
		if err := platform.CheckChord(chord); err != nil {
			out = append(out, fmt.Sprintf("step %d %s: %v", i+1, a, err))
		}
	}
	return out
}

func runValidate(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	seqs, err := fixture.LoadAll(args)
	if err != nil {
		return err
	}
	return output.Print(describeSequences(seqs, verbose))
}
