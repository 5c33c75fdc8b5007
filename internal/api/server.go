// Package api configures and exposes the HTTP server, routes,
// metrics, docs and related middleware for the URL extraction service.
package api

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"
	"time"
	"urlextract/internal/api/handler/v1handler"
	"urlextract/internal/config"
	"urlextract/pkg/controller"
	"urlextract/pkg/logger"
	"urlextract/pkg/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"
)

// v1Spec contains the embedded OpenAPI specification for version 1 of the API.
//
//go:embed specs/v1.yaml
var v1Spec []byte

const timeoutBody = `{"code":"TIMEOUT","message":"request timed out"}`

// Options holds configuration for the HTTP server and its dependencies.
// It is typically created from a config.Config via NewOptions.
// All durations are used to configure server timeouts, and zero values
// should be considered as using the defaults provided by net/http where applicable.
type Options struct {
	// SecHandlerOptions configures bearer authentication of v1 endpoints.
	// An empty public key disables authentication.
	SecHandlerOptions *v1handler.SecHandlerOptions
	HandlerOptions    v1handler.Options

	// Addr is the TCP address the server listens on, e.g. ":8080".
	Addr string
	// ReadTimeout is the maximum duration for reading the entire request, including the body.
	ReadTimeout time.Duration
	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	ReadHeaderTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
	// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration
	// RequestTimeout is the global timeout applied via http.TimeoutHandler for handling requests.
	RequestTimeout time.Duration
	// MaxHeaderBytes controls the maximum number of bytes the server
	// will read parsing the request header's keys and values, including the request line.
	MaxHeaderBytes int
	// MetricsPath is the HTTP path at which Prometheus metrics are served.
	MetricsPath string
	// EnablePprof mounts the profiling endpoints under /debug/pprof/.
	EnablePprof bool
	// CORSOrigins lists the allowed CORS origins.
	CORSOrigins []string
}

// NewOptions constructs an Options value from the provided application configuration.
// It maps HTTP server-related settings from config.Config to the Options used by the API server.
func NewOptions(cfg *config.Config) Options {
	return Options{
		SecHandlerOptions: v1handler.NewSecHandlerOptions(cfg),
		HandlerOptions:    v1handler.NewOptions(cfg),

		Addr:              cfg.HTTP.Addr,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		RequestTimeout:    cfg.HTTP.RequestTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MetricsPath:       cfg.HTTP.MetricsPath,
		EnablePprof:       cfg.HTTP.EnablePprof,
		CORSOrigins:       cfg.HTTP.CORSOrigins,
	}
}

type Deps struct {
	v1handler.Deps

	// Limiter throttles v1 requests per client IP; nil disables rate limiting.
	Limiter *controller.ClientLimiter
	// Registerer and Gatherer back the metrics endpoint. Nil values mean the
	// prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewServer wires up and returns a configured *http.Server using the provided Options.
// It sets up:
// - Prometheus metrics endpoint (MetricsPath)
// - Embedded OpenAPI v1 spec and Swagger UI
// - v1 API routes, behind bearer authentication and rate limiting when configured
// - pprof endpoints for profiling, when enabled
// It also wraps the router with CORS and logging middlewares and applies a request timeout.
func NewServer(deps Deps, opts Options) (*http.Server, error) {
	handler, err := NewHandler(deps, opts)
	if err != nil {
		return nil, err
	}

	return &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		MaxHeaderBytes:    opts.MaxHeaderBytes,
		ErrorLog:          logger.StdLogger(context.Background(), slog.LevelWarn),
	}, nil
}

// NewHandler builds the root handler served by NewServer.
func NewHandler(deps Deps, opts Options) (http.Handler, error) {
	reg, gatherer := deps.Registerer, deps.Gatherer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	hist, err := metrics.NewHTTPDuration(reg)
	if err != nil {
		return nil, err
	}

	h := v1handler.New(deps.Deps, opts.HandlerOptions)

	router := mux.NewRouter()
	router.NotFoundHandler = h.NotFound()
	router.MethodNotAllowedHandler = h.MethodNotAllowed()

	// prometheus metrics server
	if opts.MetricsPath != "" {
		router.Handle(opts.MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).
			Methods(http.MethodGet)
	}

	// v1 specs file
	router.HandleFunc("/specs/v1.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(v1Spec)
	}).Methods(http.MethodGet)
	// v1 api swagger playground
	router.PathPrefix("/v1/docs/").Handler(v5emb.New(
		"URL Extraction Service",
		"/specs/v1.yaml",
		"/v1/docs/",
	))

	// pprof
	if opts.EnablePprof {
		router.PathPrefix("/debug/pprof/").Handler(controller.PprofMux("/debug/pprof"))
	}

	// v1 api
	v1 := router.PathPrefix("/v1").Subrouter()
	v1.NotFoundHandler = h.NotFound()
	v1.MethodNotAllowedHandler = h.MethodNotAllowed()
	v1.Use(controller.WithMetrics(hist))
	if deps.Limiter != nil {
		v1.Use(controller.WithRateLimit(deps.Limiter, h.RateLimited()))
	}
	if opts.SecHandlerOptions != nil && opts.SecHandlerOptions.PublicKey != "" {
		secHandler, err := v1handler.NewSecHandler(opts.SecHandlerOptions)
		if err != nil {
			return nil, fmt.Errorf("could not create sec handler: %w", err)
		}
		v1.Use(secHandler.Middleware(h))
	}
	h.Register(v1)

	// cors
	handler := controller.WithCORS(opts.CORSOrigins)(router)

	// logger
	handler = controller.WithLogger(handler)

	if opts.RequestTimeout > 0 {
		handler = http.TimeoutHandler(handler, opts.RequestTimeout, timeoutBody)
	}

	return handler, nil
}
