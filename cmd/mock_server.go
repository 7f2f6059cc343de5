package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/signup/internal/log"
	"github.com/zjrosen/signup/internal/mockapi"
)

var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Serve an in-memory registration resource",
	Long: `Serve the registration resource from memory so the TUI can run offline.

Routes mirror mockapi.io: GET and POST /{tenant}/register and
DELETE /{tenant}/register/{id}. Data is lost when the server stops.

Example:
  signup mock-server --addr 127.0.0.1:8080
  signup --base-url 'http://127.0.0.1:8080/{tenant}'`,
	Args: cobra.NoArgs,
	RunE: runMockServer,
}

var (
	mockAddr        string
	mockFailDeletes bool
)

func init() {
	rootCmd.AddCommand(mockServerCmd)

	mockServerCmd.Flags().StringVar(&mockAddr, "addr", "", "address to listen on (overrides mock.addr)")
	mockServerCmd.Flags().BoolVar(&mockFailDeletes, "fail-deletes", false, "answer every delete with 500")
}

func runMockServer(cmd *cobra.Command, _ []string) error {
	addr := cfg.Mock.Addr
	if mockAddr != "" {
		addr = mockAddr
	}
	opts := mockapi.Options{FailDeletes: cfg.Mock.FailDeletes || mockFailDeletes}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	server := &http.Server{
		Handler:           mockapi.Handler(mockapi.NewStore(), opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Mock resource listening on http://%s/{tenant}/register\n", ln.Addr())
	_, _ = fmt.Fprintln(out, "Press Ctrl+C to stop")
	log.Info(log.CatMock, "mock server started", "addr", ln.Addr().String(), "failDeletes", opts.FailDeletes)

	select {
	case <-ctx.Done():
		_, _ = fmt.Fprintln(out, "\nShutting down...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.ErrorErr(log.CatMock, "shutting down mock server", err)
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
