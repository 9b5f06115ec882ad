// Package server exposes fixture validation, playback and run history as
// Model Context Protocol tools.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/GNOME/orca-sub019/internal/action"
	"github.com/GNOME/orca-sub019/internal/config"
	"github.com/GNOME/orca-sub019/internal/model"
	"github.com/GNOME/orca-sub019/internal/session"
	"github.com/GNOME/orca-sub019/internal/version"
)

// Config holds MCP server configuration.
type Config struct {
	Transport string
	Port      int
	CacheTTL  time.Duration
}

// Server wraps the MCP server with the playback configuration and the
// fixture cache.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	cache  *FixtureCache
	// runMu serializes playback: the target has a single keyboard.
	runMu sync.Mutex
	open  func(ctx context.Context) (runner, error)
	mcp   *mcpserver.MCPServer
}

// runner is the part of a session the handlers use.
type runner interface {
	Run(ctx context.Context, seqs []*action.Sequence, opts session.RunOptions) (*model.SuiteResult, error)
	Close() error
}

// New creates and configures an MCP server with all playback tools.
func New(cfg *config.Config, srvCfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:    cfg,
		logger: logger,
		cache:  NewFixtureCache(srvCfg.CacheTTL),
	}
	s.open = func(ctx context.Context) (runner, error) {
		sess, err := session.Open(ctx, s.cfg, s.logger)
		if err != nil {
			return nil, err
		}
		return sess, nil
	}
	s.mcp = mcpserver.NewMCPServer("playback", version.Version)
	s.registerTools()
	return s
}

// Serve starts the MCP server with the configured transport.
func (s *Server) Serve(srvCfg Config) error {
	switch srvCfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		s.logger.Info("mcp server listening", "port", srvCfg.Port)
		return httpServer.Start(fmt.Sprintf(":%d", srvCfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", srvCfg.Transport)
	}
}
