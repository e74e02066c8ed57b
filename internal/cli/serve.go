package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kurobon/gitgraph/internal/fixture"
	"github.com/kurobon/gitgraph/internal/server"
	"github.com/kurobon/gitgraph/internal/state"
)

const shutdownTimeout = 10 * time.Second

func (a *Application) newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd.Context())
		},
	}
	cmd.Flags().String(addrFlag, "", "Listen address (default :8080)")
	cmd.Flags().String(fixturesFlag, "", "Directory of YAML fixtures (default ./fixtures)")
	return cmd
}

func (a *Application) runServe(ctx context.Context) error {
	sm := state.NewSessionManager(a.logger.Named("state"), a.settings())
	defer sm.Close()

	srv := server.NewServer(sm, fixture.NewLoader(a.config.Fixtures.Dir), a.logger.Named("http"))
	httpServer := &http.Server{
		Addr:              a.config.Server.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("server starting", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		a.logger.Info("server shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
