package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/GNOME/orca-sub019/internal/config"
	"github.com/GNOME/orca-sub019/internal/output"
	"github.com/GNOME/orca-sub019/internal/version"
)

var (
	// appConfig is the effective configuration, loaded before any
	// subcommand runs.
	appConfig *config.Config
	logger    = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "playback",
	Short: "Replay keyboard macros and assert screen reader output",
	Long: `Replay recorded keyboard sequences against a running screen reader and
compare the speech and braille it presents with the expected transcript.

Configuration is read from playback.yaml (working directory or the user
config directory), PLAYBACK_* environment variables and flags, in
increasing order of precedence.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRunE = loadConfig
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Config file (default: ./playback.yaml)")
	pf.String("format", "", "Output format: text, yaml, json")
	pf.Bool("pretty", false, "Indent JSON output")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("dispatcher", "", "Input backend: xdotool, none")
	pf.String("xdotool", "", "Path to the xdotool binary")
	pf.String("bus", "", "Event source: tail, stream")
	pf.String("log-prefix", "", "Output log prefix followed by the tail source")
	pf.String("address", "", "Stream source address: unix:PATH, tcp:HOST:PORT or -")
	pf.String("control-url", "", "Target control endpoint that starts and stops output logging")
	pf.Duration("wait-timeout", 0, "Default timeout for wait actions")
	pf.Duration("settle", 0, "Delay before recording starts and before each assertion")
}

// flagKeys maps persistent flags to configuration keys.
var flagKeys = map[string]string{
	"format":       "format",
	"log-level":    "log_level",
	"dispatcher":   "dispatcher",
	"xdotool":      "xdotool_path",
	"bus":          "bus.source",
	"log-prefix":   "bus.log_prefix",
	"address":      "bus.address",
	"control-url":  "bus.control_url",
	"wait-timeout": "timeouts.wait",
	"settle":       "timeouts.settle",
}

func loadConfig(cmd *cobra.Command, args []string) error {
	v := viper.New()
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			return err
		}
	}
	if f := cmd.Flags().Lookup("history"); f != nil {
		if err := v.BindPFlag("history.path", f); err != nil {
			return err
		}
	}

	file, _ := rootCmd.PersistentFlags().GetString("config")
	cfg, err := config.Load(v, file)
	if err != nil {
		return err
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	format, err := output.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	output.OutputFormat = format
	output.PrettyOutput, _ = rootCmd.PersistentFlags().GetBool("pretty")

	appConfig = cfg
	logger.Debug("config loaded", "file", v.ConfigFileUsed(), "bus", cfg.Bus.Source, "dispatcher", cfg.Dispatcher)
	return nil
}
