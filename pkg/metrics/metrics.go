// Package metrics holds the metric plumbing shared by the server and the
// extractor: Prometheus collectors and the OpenTelemetry meter provider that
// exports into the same registry.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Namespace prefixes every Prometheus metric of the service.
const Namespace = "urlextract"

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

// URLCountBuckets are the buckets of the URLs-per-text histogram.
var URLCountBuckets = []float64{0, 1, 2, 3, 5, 8, 13, 21} //nolint: gochecknoglobals

// NewHTTPDuration creates and registers the request latency histogram,
// labelled by route, method and status code. Registering twice on the same
// registerer returns the collector registered first.
func NewHTTPDuration(reg prometheus.Registerer) (*prometheus.HistogramVec, error) {
	hist := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   DefaultBuckets,
	}, []string{"route", "method", "code"})

	if err := reg.Register(hist); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
		}

		return nil, fmt.Errorf("could not register http duration histogram: %w", err)
	}

	return hist, nil
}

// NewMeterProvider returns an OpenTelemetry meter provider whose instruments
// are exported through reg.
func NewMeterProvider(reg prometheus.Registerer) (*sdkmetric.MeterProvider, error) {
	exp, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp)), nil
}
