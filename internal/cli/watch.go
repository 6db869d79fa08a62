package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"campusmarket/internal/app/messaging"
	"campusmarket/internal/infra/obs"
	"campusmarket/internal/tui"
)

func newWatchCmd(open opener) *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Interactive inbox that refreshes while you are logged in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(open, func(a *app) error {
				if _, ok := a.session.Current(); !ok {
					return userMessage(messaging.ErrNoSession)
				}
				metrics := obs.NewMetrics()
				addr := metricsAddr
				if addr == "" {
					addr = a.cfg.MetricsAddr
				}
				if addr != "" {
					stop := serveMetrics(a, addr, metrics)
					defer stop()
				}

				notifier := tui.NewNotifier()
				m := a.messenger(messaging.Options{Metrics: metrics, OnChange: notifier.Notify})
				ctx, cancel := context.WithCancel(cmd.Context())
				defer cancel()
				m.Start(ctx)
				defer m.Close()

				return tui.Run(tui.Config{Messenger: m, Session: a.session, Notifier: notifier})
			})
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (default $METRICS_ADDR)")
	return cmd
}

func serveMetrics(a *app, addr string, metrics *obs.Metrics) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		a.logger.Info("metrics server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "error", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			a.logger.Error("metrics shutdown failed", "error", err)
		}
	}
}
