// cmd/concierge/commands.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"dining-concierge/internal/common/config"
	dialoghook "dining-concierge/internal/workers/dialog/dialog-hook"
	validateslots "dining-concierge/internal/workers/dialog/validate-slots"
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newDialogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dialog",
		Short: "Serve the dialog engine code hook over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(dialoghook.TaskType)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signalContext()
			defer stop()

			history, err := a.historyStore(ctx)
			if err != nil {
				return err
			}
			publisher, err := a.requestQueue(ctx)
			if err != nil {
				return err
			}

			handler := dialoghook.NewHandler(
				&dialoghook.Config{Timeout: config.GetDuration(a.cfg.Dialog.Timeout)},
				validateslots.New(),
				history, publisher, a.log,
			)

			var ready atomic.Bool
			mux := http.NewServeMux()
			handler.RegisterRoutes(mux)
			registerOps(mux, &ready)
			ready.Store(true)

			srv := &http.Server{Addr: a.cfg.Server.Address, Handler: mux}
			return serve(ctx, srv, config.GetDuration(a.cfg.Server.ShutdownTimeout), a.zap)
		},
	}
}

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Poll the request queue and send recommendations until stopped",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp("recommendation-worker")
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signalContext()
			defer stop()

			var ready atomic.Bool
			mux := http.NewServeMux()
			registerOps(mux, &ready)
			srv := &http.Server{Addr: a.cfg.Server.MetricsAddress, Handler: mux}

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return serve(ctx, srv, config.GetDuration(a.cfg.Server.ShutdownTimeout), a.zap)
			})
			g.Go(func() error {
				handler, err := a.recommendationHandler(ctx)
				if err != nil {
					return err
				}
				ready.Store(true)
				return handler.Run(ctx)
			})

			err = g.Wait()
			a.zap.Info("Recommendation worker stopped", zap.Error(err))
			return err
		},
	}
}

func newDrainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drain",
		Short: "Process one batch from the request queue and exit",
		Long: "drain receives at most worker.batch_size messages, processes them and exits. " +
			"It exits non-zero when any message was left on the queue for redelivery.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp("recommendation-drain")
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signalContext()
			defer stop()

			handler, err := a.recommendationHandler(ctx)
			if err != nil {
				return err
			}

			result, err := handler.Drain(ctx)
			if err != nil {
				return err
			}
			a.zap.Info("Drain complete",
				zap.String("batchId", result.BatchID),
				zap.Int("received", result.Received),
				zap.Strings("failed", result.FailedIDs()),
			)
			return result.Err()
		},
	}
}
