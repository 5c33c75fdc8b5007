package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"urlextract/internal/api"
	"urlextract/internal/api/handler/v1handler"
	"urlextract/internal/config"
	"urlextract/internal/extractor"
	"urlextract/pkg/controller"
	"urlextract/pkg/logger"
	"urlextract/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

func setupServer(ctx context.Context, cfg *config.Config, deps api.Deps) func(ctx context.Context) {
	server, err := api.NewServer(deps, api.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

// setupLimiter returns the per client limiter of the API, or nil when rate
// limiting is disabled. Idle clients are pruned until ctx is done.
func setupLimiter(ctx context.Context, cfg *config.Config) *controller.ClientLimiter {
	if cfg.RateLimit.RequestsPerSecond <= 0 {
		logger.Info(ctx, "rate limiting is disabled")

		return nil
	}

	limiter := controller.NewClientLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	go limiter.RunPruner(ctx, cfg.RateLimit.IdleTTL)

	return limiter
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts the API server",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			mp, err := metrics.NewMeterProvider(prometheus.DefaultRegisterer)
			if err != nil {
				logger.Fatal(ctx, "could not create meter provider", zap.Error(err))
			}

			ext, err := extractor.New(extractor.NewOptions(cfg), extractor.Deps{
				MeterProvider:  mp,
				TracerProvider: otel.GetTracerProvider(),
			})
			if err != nil {
				logger.Fatal(ctx, "could not create extractor", zap.Error(err))
			}

			if cfg.JWT.PublicKey == "" {
				logger.Warn(ctx, "jwt public key is not set, the API is not authenticated")
			}

			stopWebserver := setupServer(ctx, cfg, api.Deps{
				Deps:    v1handler.Deps{Extractor: ext},
				Limiter: setupLimiter(ctx, cfg),
			})

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)

			if err := mp.Shutdown(shutdownCtx); err != nil {
				logger.Warn(shutdownCtx, "could not stop meter provider", zap.Error(err))
			}
		},
	}

	return cmd
}
