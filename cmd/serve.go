package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/GNOME/orca-sub019/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing playback tools",
	Long: `Start a Model Context Protocol (MCP) server that exposes fixture
validation, playback and run history as tools. Playback requests are run
one at a time.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  playback serve
  playback serve --transport streamable-http --port 8080
  playback serve --cache-ttl 0`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
	serveCmd.Flags().Int("cache-ttl", 5000, "Parsed fixture cache TTL in milliseconds (0 to disable)")
	serveCmd.Flags().String("history", "", "Default SQLite history database for runs and list_runs")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")
	cacheTTLMs, _ := cmd.Flags().GetInt("cache-ttl")

	cfg := server.Config{
		Transport: transport,
		Port:      port,
		CacheTTL:  time.Duration(cacheTTLMs) * time.Millisecond,
	}
	return server.New(appConfig, cfg, logger).Serve(cfg)
}
