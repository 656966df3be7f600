package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/datallboy/gofetch/internal/api"
	"github.com/datallboy/gofetch/internal/engine"
	"github.com/labstack/echo/v5"
	"github.com/spf13/cobra"
)

func newServeCommand(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept URLs over HTTP and append them to the queue",
		Long: `serve exposes a small JSON API for adding URLs to the queue file from other
machines or scripts. Nothing is downloaded by the server itself; run
"gofetch --processor" to work through the queue.

  POST /api/queue     {"urls": ["https://..."]}
  GET  /api/queue     pending count
  GET  /api/history   recent outcomes (?limit=N)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			ctx := cmd.Context()

			appCtx, cleanup, err := bootstrap(ctx, bootstrapOptions{configPath: *configPath})
			if err != nil {
				return err
			}
			defer cleanup()

			if addr == "" {
				addr = appCtx.Config.Server.Addr
			}

			e := echo.New()
			api.RegisterRoutes(e, appCtx, engine.NewFetcher(appCtx))

			srv := &http.Server{
				Addr:              addr,
				Handler:           e,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				appCtx.Logger.Info("Listening on %s", addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			appCtx.Logger.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr)")
	return cmd
}
