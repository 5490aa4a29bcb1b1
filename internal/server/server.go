// Package server exposes a scenario workspace as MCP tools so agents can
// inspect, edit, compile and run recorded scenarios.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mj1618/uiarec/internal/version"
	"github.com/mj1618/uiarec/internal/workspace"
)

// Server wraps the MCP server with the scenario workspace.
type Server struct {
	ws  *workspace.Workspace
	mcp *mcpserver.MCPServer
}

// Config holds MCP server configuration.
type Config struct {
	Transport string
	Port      int
}

// New creates an MCP server with all uiarec tools registered.
func New(ws *workspace.Workspace) *Server {
	s := &Server{ws: ws}
	s.mcp = mcpserver.NewMCPServer(
		"uiarec",
		version.Version,
		mcpserver.WithToolCapabilities(false),
	)
	s.registerTools()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

// Serve starts the MCP server with the configured transport.
func (s *Server) Serve(cfg Config) error {
	switch cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf("127.0.0.1:%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

// Run serves until ctx is cancelled or the transport ends. Unlike Serve it
// installs no signal handling of its own.
func (s *Server) Run(ctx context.Context, cfg Config) error {
	switch cfg.Transport {
	case "stdio":
		err := mcpserver.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		errCh := make(chan error, 1)
		go func() {
			errCh <- httpServer.Start(fmt.Sprintf("127.0.0.1:%d", cfg.Port))
		}()
		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		}
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("list_scenario",
			mcp.WithDescription("List the scenario's steps and actions in file order with their ids"),
		),
		s.handleListScenario,
	)

	s.mcp.AddTool(
		mcp.NewTool("add_step",
			mcp.WithDescription("Append a new empty step to the scenario"),
			mcp.WithString("name", mcp.Description("Step name"), mcp.Required()),
		),
		s.handleAddStep,
	)

	s.mcp.AddTool(
		mcp.NewTool("remove_step",
			mcp.WithDescription("Remove a step and all of its actions"),
			mcp.WithString("step_id", mcp.Description("Step id"), mcp.Required()),
		),
		s.handleRemoveStep,
	)

	s.mcp.AddTool(
		mcp.NewTool("add_action",
			mcp.WithDescription("Add a sleep, send_signal or wait_for_signal action to a step. Element actions are recorded, not authored."),
			mcp.WithString("step_id", mcp.Description("Step id"), mcp.Required()),
			mcp.WithString("type", mcp.Description("Action type: sleep, send_signal, wait_for_signal"), mcp.Required()),
			mcp.WithNumber("seconds", mcp.Description("Sleep duration in seconds")),
			mcp.WithString("host", mcp.Description("Signal receiver host (send_signal)")),
			mcp.WithNumber("port", mcp.Description("Signal port")),
			mcp.WithNumber("position", mcp.Description("Insert position within the step (default: append)")),
		),
		s.handleAddAction,
	)

	s.mcp.AddTool(
		mcp.NewTool("remove_action",
			mcp.WithDescription("Remove an action by id"),
			mcp.WithString("action_id", mcp.Description("Action id"), mcp.Required()),
		),
		s.handleRemoveAction,
	)

	s.mcp.AddTool(
		mcp.NewTool("show_path",
			mcp.WithDescription("Show the element path of a click or keyboard action, with each record's editable property text"),
			mcp.WithString("action_id", mcp.Description("Action id"), mcp.Required()),
		),
		s.handleShowPath,
	)

	s.mcp.AddTool(
		mcp.NewTool("edit_path",
			mcp.WithDescription("Replace one path record's properties. Text is one key=value per line; prefix a line with '-' to disable matching on it."),
			mcp.WithString("action_id", mcp.Description("Action id"), mcp.Required()),
			mcp.WithNumber("index", mcp.Description("Record index within the path (0 is the desktop)"), mcp.Required()),
			mcp.WithString("text", mcp.Description("Enumeration text"), mcp.Required()),
		),
		s.handleEditPath,
	)

	s.mcp.AddTool(
		mcp.NewTool("compile",
			mcp.WithDescription("Compile the scenario (or selected steps) into a pywinauto Python script"),
			mcp.WithBoolean("debug", mcp.Description("Instrument the script for fault correlation")),
			mcp.WithArray("steps", mcp.Description("Step ids to include (default: all)"), mcp.WithStringItems()),
		),
		s.handleCompile,
	)

	s.mcp.AddTool(
		mcp.NewTool("run",
			mcp.WithDescription("Compile and run the scenario, returning the outcome and the element a fault was traced to"),
			mcp.WithBoolean("debug", mcp.Description("Instrument for fault correlation (default from config)")),
			mcp.WithArray("steps", mcp.Description("Step ids to run (default: all)"), mcp.WithStringItems()),
		),
		s.handleRun,
	)

	s.mcp.AddTool(
		mcp.NewTool("correlate",
			mcp.WithDescription("Trace the fault in a script's stderr back to the step, action and element that failed"),
			mcp.WithString("stderr", mcp.Description("Standard error of the failed script"), mcp.Required()),
		),
		s.handleCorrelate,
	)

	s.mcp.AddTool(
		mcp.NewTool("history",
			mcp.WithDescription("List recent runs of the scenario"),
			mcp.WithNumber("limit", mcp.Description("Max runs (default: 20)")),
		),
		s.handleHistory,
	)

	s.mcp.AddTool(
		mcp.NewTool("record",
			mcp.WithDescription("Control the recorder: start, drain, stop or status"),
			mcp.WithString("command", mcp.Description("start, drain, stop, status"), mcp.Required()),
			mcp.WithString("step_id", mcp.Description("Step to record into (start only; default: last step)")),
		),
		s.handleRecord,
	)
}
