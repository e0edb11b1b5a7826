package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Joszi2006/pillinfo/internal/config"
	"github.com/Joszi2006/pillinfo/internal/logging"
	"github.com/Joszi2006/pillinfo/internal/mockapi"
)

var mockapiCmd = &cobra.Command{
	Use:   "mockapi",
	Short: "Run a local stand-in for the lookup service",
	Long: `Run a local stand-in for the lookup service.

Serves the lookup endpoints from a small seeded SQLite catalog so the
client works without the real backend:

  pillinfo mockapi --port 8000
  PILLINFO_API_URL=http://127.0.0.1:8000/api pillinfo chat`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		return runMockAPI(port, dataDir)
	},
}

func init() {
	mockapiCmd.Flags().Int("port", 8000, "port to listen on")
	mockapiCmd.Flags().String("data-dir", ":memory:", "catalog directory, or :memory:")
}

func runMockAPI(port int, dataDir string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Log.Level, cfg.Log.JSON)

	store, err := mockapi.Open(dataDir)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer store.Close()

	if err := store.SeedDefaults(); err != nil {
		return fmt.Errorf("seeding catalog: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	srv := &http.Server{
		Addr:    addr,
		Handler: mockapi.NewHandler(store),
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "mock lookup service listening on %s\n", addr)
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
