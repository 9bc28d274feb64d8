package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	httpadapter "github.com/couchcryptid/zyra-incident-service/internal/adapter/http"
)

func newServeCmd(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			ctx := cmd.Context()

			// Leave headroom over the ledger deadline for the local fallback write.
			srv := httpadapter.NewServer(a.cfg.HTTPAddr, a.svc, a.cfg.LedgerTimeout+a.cfg.ShutdownTimeout, a.logger)

			errCh := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case <-ctx.Done():
			case err := <-errCh:
				if err != nil {
					return err
				}
			}
			a.logger.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("http server shutdown error", "error", err)
			}
			a.logger.Info("shutdown complete")
			return nil
		},
	}
}
