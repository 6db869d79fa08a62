package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"campusmarket/internal/domain/listings"
	ginserver "campusmarket/internal/infra/http/gin"
	"campusmarket/internal/infra/obs"
)

func newSandboxCmd(opts Options) *cobra.Command {
	var addr string
	var seed bool
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Run an in-memory marketplace API for local testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.SandboxAddr = addr
			}
			logger := obs.NewLogger(cfg.Env, cfg.LogLevel, opts.Stderr)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sandbox := ginserver.NewSandbox(cfg.Env, logger)
			if seed {
				if err := sandbox.Seed(ctx, listings.SampleListings(time.Now())); err != nil {
					return err
				}
			}
			server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, sandbox.Health(), sandbox.Handlers)

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					logger.Error("http shutdown failed", "error", err)
				}
			}()

			logger.Info("sandbox starting", "addr", cfg.SandboxAddr, "seeded", seed)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("sandbox stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default $SANDBOX_ADDR)")
	cmd.Flags().BoolVar(&seed, "seed", false, "start with the demo listings")
	return cmd
}
