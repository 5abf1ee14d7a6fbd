package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-screener/internal/api"
	"github.com/wonny/aegis-screener/internal/api/handlers"
	"github.com/wonny/aegis-screener/internal/contracts"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the REST / websocket API.

Endpoints:
  GET  /health                 - Health check (and database ping when configured)
  GET  /api/screen             - Run a screen (?mode=opportunity|momentum&top=N)
  GET  /api/chart/{ticker}     - Indicator series of one ticker (?mode=)
  GET  /ws/screen              - Websocket: per-ticker progress, then the result

Example:
  go run ./cmd/screener serve
  go run ./cmd/screener serve --port 8080`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (default: PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.close()

	if servePort != "" {
		a.cfg.Port = servePort
	}

	// 1. Create orchestrators: strategy mode first (default), then the other mode
	primary, err := a.orchestrator(a.strategy.Mode, true)
	if err != nil {
		return fmt.Errorf("init orchestrator: %w", err)
	}
	otherMode := contracts.ModeMomentum
	if a.strategy.Mode == contracts.ModeMomentum {
		otherMode = contracts.ModeOpportunity
	}
	secondary, err := a.orchestrator(otherMode, true)
	if err != nil {
		return fmt.Errorf("init %s orchestrator: %w", otherMode, err)
	}

	// 2. Create handler
	screenHandler, err := handlers.NewScreenHandler(a.runConfig(0), a.log, primary, secondary)
	if err != nil {
		return err
	}

	// 3. Create router and server
	router := api.NewRouter(screenHandler, a.db, a.log)
	server := api.New(a.cfg, a.log, router)

	// 4. Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	out := cmd.OutOrStdout()
	PrintSuccess(out, fmt.Sprintf("Server running on http://localhost:%s", a.cfg.Port))
	fmt.Fprintln(out, "Press Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return err
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
