package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"gopkg.in/yaml.v3"

	"github.com/GNOME/orca-sub019/internal/action"
	"github.com/GNOME/orca-sub019/internal/history"
	"github.com/GNOME/orca-sub019/internal/session"
)

// SequenceInfo describes one loaded sequence.
type SequenceInfo struct {
	Name       string `yaml:"name"`
	Source     string `yaml:"source"`
	Actions    int    `yaml:"actions"`
	Assertions int    `yaml:"assertions"`
}

func describe(seqs []*action.Sequence) []SequenceInfo {
	out := make([]SequenceInfo, 0, len(seqs))
	for _, s := range seqs {
		out = append(out, SequenceInfo{
			Name:       s.Name,
			Source:     s.Source,
			Actions:    len(s.Actions),
			Assertions: len(s.Assertions()),
		})
	}
	return out
}

// toText serializes v to YAML for an MCP response.
func toText(v interface{}) string {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(b)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("validate_fixture",
			mcp.WithDescription("Load a fixture file or directory and report its sequences without running them"),
			mcp.WithString("path", mcp.Description("Fixture file or directory"), mcp.Required()),
		),
		s.handleValidate,
	)

	s.mcp.AddTool(
		mcp.NewTool("run_fixture",
			mcp.WithDescription("Play back a fixture against the target and return the suite result. Runs are serialized."),
			mcp.WithString("path", mcp.Description("Fixture file or directory"), mcp.Required()),
			mcp.WithString("filter", mcp.Description("Only run sequences whose name contains this text")),
			mcp.WithBoolean("no-assert", mcp.Description("Drive the actions but skip presentation assertions")),
			mcp.WithString("history", mcp.Description("SQLite history database to record the run in")),
		),
		s.handleRun,
	)

	s.mcp.AddTool(
		mcp.NewTool("list_runs",
			mcp.WithDescription("List recorded suite runs, newest first"),
			mcp.WithNumber("limit", mcp.Description("Max runs to return (default: 20)")),
			mcp.WithString("history", mcp.Description("SQLite history database (default: configured history.path)")),
		),
		s.handleListRuns,
	)

	s.mcp.AddTool(
		mcp.NewTool("show_run",
			mcp.WithDescription("Show the assertion results of one recorded run"),
			mcp.WithString("id", mcp.Description("Run ID"), mcp.Required()),
			mcp.WithString("history", mcp.Description("SQLite history database (default: configured history.path)")),
		),
		s.handleShowRun,
	)
}

func (s *Server) handleValidate(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	path := stringParam(params, "path", "")
	if path == "" {
		return mcp.NewToolResultError("path parameter is required"), nil
	}
	seqs, err := s.cache.Load(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(toText(describe(seqs))), nil
}

func (s *Server) handleRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	path := stringParam(params, "path", "")
	if path == "" {
		return mcp.NewToolResultError("path parameter is required"), nil
	}
	seqs, err := s.cache.Load(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	sess, err := s.open(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer func() {
		if err := sess.Close(); err != nil {
			s.logger.Warn("close session", "error", err)
		}
	}()

	res, err := sess.Run(ctx, seqs, session.RunOptions{
		Filter:   stringParam(params, "filter", ""),
		NoAssert: boolParam(params, "no-assert", false),
		History:  stringParam(params, "history", ""),
	})
	if err != nil && res == nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		s.logger.Warn("save run", "error", err)
	}
	if !res.OK() {
		return mcp.NewToolResultError(toText(res)), nil
	}
	return mcp.NewToolResultText(toText(res)), nil
}

func (s *Server) historyStore(params map[string]interface{}) (*history.Store, error) {
	path := stringParam(params, "history", s.cfg.History.Path)
	if path == "" {
		return nil, fmt.Errorf("no history database configured (set history.path or pass history)")
	}
	return history.Open(path)
}

func (s *Server) handleListRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	store, err := s.historyStore(params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer store.Close()

	runs, err := store.ListRuns(ctx, intParam(params, "limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(runs) == 0 {
		return mcp.NewToolResultText("no runs recorded\n"), nil
	}
	return mcp.NewToolResultText(toText(runs)), nil
}

func (s *Server) handleShowRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	id := stringParam(params, "id", "")
	if id == "" {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	store, err := s.historyStore(params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer store.Close()

	results, err := store.Assertions(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(toText(results)), nil
}

func stringParam(params map[string]interface{}, key, defaultVal string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return defaultVal
}

func intParam(params map[string]interface{}, key string, defaultVal int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case int64:
			return int(n)
		}
	}
	return defaultVal
}

func boolParam(params map[string]interface{}, key string, defaultVal bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}
