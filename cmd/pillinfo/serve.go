package main

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

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/Joszi2006/pillinfo/internal/api"
	"github.com/Joszi2006/pillinfo/internal/config"
	"github.com/Joszi2006/pillinfo/internal/conversation"
	"github.com/Joszi2006/pillinfo/internal/logging"
	"github.com/Joszi2006/pillinfo/internal/lookup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local chat web server",
	Long: `Run the local chat web server.

Serves the session API on the configured port. With --mcp-stdio the
process also exposes the lookup tools to a local assistant over stdio;
with PILLINFO_MCP_PORT set, over SSE on that port.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mcpStdio, _ := cmd.Flags().GetBool("mcp-stdio")
		return runServe(mcpStdio)
	},
}

func init() {
	serveCmd.Flags().Bool("mcp-stdio", false, "expose MCP tools over stdio")
}

func runServe(mcpStdio bool) error {
	fmt.Fprintf(os.Stderr, "pillinfo version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Log.Level, cfg.Log.JSON)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := lookup.New(cfg.API.BaseURL)
	sessions := conversation.NewManager(client)
	defer sessions.Close()

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: api.NewHandler(api.Deps{Sessions: sessions}),
	}

	// MCP surface shares the history across sessions started by
	// assistants, separate from per-session chat histories.
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Resolver: client,
		History:  conversation.NewMatchHistory(),
	})
	if mcpStdio {
		stdioSrv := server.NewStdioServer(mcpSrv)
		go func() {
			if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("MCP stdio server error", "error", err)
			}
		}()
		slog.Info("MCP server started (stdio transport)")
	}
	if cfg.Server.MCPPort > 0 {
		sseSrv := server.NewSSEServer(mcpSrv)
		go func() {
			mcpAddr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.MCPPort)
			slog.Info("MCP server listening", "addr", mcpAddr)
			if err := sseSrv.Start(mcpAddr); err != nil && err != http.ErrServerClosed {
				slog.Error("MCP SSE server error", "error", err)
			}
		}()
		defer sseSrv.Shutdown(context.Background())
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "pillinfo listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
