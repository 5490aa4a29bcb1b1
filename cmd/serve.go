package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mj1618/uiarec/internal/api"
	"github.com/mj1618/uiarec/internal/server"
	"github.com/mj1618/uiarec/internal/store"
	"github.com/mj1618/uiarec/internal/workspace"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scenario over HTTP and MCP",
	Long: `Serve the --scenario file to editors and agents.

The HTTP API listens on the configured api.port (127.0.0.1 only). An MCP
server exposes the same operations as tools. The scenario file is watched
and reloaded when it changes on disk.

Supported MCP transports:
  stdio             Standard I/O (default, for MCP clients that spawn uiarec)
  streamable-http   Streamable HTTP transport on --mcp-port
  none              HTTP API only

Examples:
  uiarec serve
  uiarec serve --transport none --api-port 9000
  uiarec serve --transport streamable-http --mcp-port 8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "MCP transport: stdio, streamable-http, none")
	serveCmd.Flags().Int("mcp-port", 8080, "HTTP port for the streamable-http transport")
	serveCmd.Flags().Int("api-port", 0, "HTTP API port (default from config)")
	serveCmd.Flags().Bool("no-api", false, "Do not start the HTTP API")
	serveCmd.Flags().Int("cache-ttl", 500, "Scenario cache TTL in milliseconds (0 to disable)")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	mcpPort, _ := cmd.Flags().GetInt("mcp-port")
	noAPI, _ := cmd.Flags().GetBool("no-api")
	cacheTTLMs, _ := cmd.Flags().GetInt("cache-ttl")
	if p, _ := cmd.Flags().GetInt("api-port"); p != 0 {
		appConfig.API.Port = p
	}
	switch transport {
	case "stdio", "streamable-http", "none":
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio, streamable-http or none)", transport)
	}
	if noAPI && transport == "none" {
		return errors.New("nothing to serve: --no-api with --transport none")
	}

	ws, closeFn, err := openWorkspace(cmd, workspaceOptions{
		record:   true,
		run:      true,
		history:  true,
		cacheTTL: time.Duration(cacheTTLMs) * time.Millisecond,
	})
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx, ws, transport, mcpPort, !noAPI)
}

func serve(ctx context.Context, ws *workspace.Workspace, transport string, mcpPort int, withAPI bool) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return store.Watch(gCtx, ws.Path(), appLog, ws.Invalidate)
	})

	if withAPI {
		httpServer := &http.Server{
			Addr:              appConfig.API.Address(),
			Handler:           api.NewRouter(ws, appConfig.API.Token, appLog),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			appLog.Info("starting HTTP API", slog.String("address", httpServer.Addr))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gCtx.Done()
			appLog.Info("shutting down HTTP API")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				appLog.Error("HTTP API shutdown error", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	if transport != "none" {
		srv := server.New(ws)
		g.Go(func() error {
			appLog.Info("starting MCP server", slog.String("transport", transport))
			err := srv.Run(gCtx, server.Config{Transport: transport, Port: mcpPort})
			if err != nil {
				return fmt.Errorf("MCP server error: %w", err)
			}
			// A closed stdio stream ends the whole process.
			if transport == "stdio" && gCtx.Err() == nil {
				return errStdioClosed
			}
			return nil
		})
	}

	err := g.Wait()
	if errors.Is(err, errStdioClosed) {
		err = nil
	}
	if ws.Status().Recording {
		if _, stopErr := ws.StopRecording(); stopErr != nil {
			appLog.Warn("stop recording", slog.String("error", stopErr.Error()))
		}
	}
	if err != nil {
		return err
	}
	appLog.Info("server stopped")
	return nil
}

var errStdioClosed = errors.New("stdio closed")
