package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ytget/batchgrab/internal/httpapi"
	"github.com/ytget/batchgrab/internal/logging"
	"github.com/ytget/batchgrab/internal/media"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Example: `  # Serve the API on the default address
  batchgrab serve

  # Bind to another port
  batchgrab serve --addr :8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		media.Install(ctx)

		server := httpapi.NewServer(app.svc, app.store, app.ledger, app.hub, app.engine,
			logging.WithComponent(app.logger, "http"))
		httpServer := &http.Server{
			Addr:              flagAddr,
			Handler:           server.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			app.logger.Info("http server listening", "addr", flagAddr)
			errCh <- httpServer.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		app.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", ":5000", "Listen address")
	rootCmd.AddCommand(serveCmd)
}
