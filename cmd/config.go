package cmd

import (
	"github.com/spf13/cobra"

	"github.com/GNOME/orca-sub019/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return output.Print(appConfig)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
