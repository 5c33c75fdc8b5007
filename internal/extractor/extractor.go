package extractor

import (
	"context"
	"fmt"
	"unicode/utf8"
	"urlextract/internal/config"
	"urlextract/pkg/domain"
	"urlextract/pkg/logger"
	"urlextract/pkg/metrics"
	"urlextract/pkg/serrors"
	"urlextract/pkg/tweettext"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// instrumentationName names the meter and tracer of this package.
const instrumentationName = "urlextract/internal/extractor"

// Options configure the limits and post-processing of extractions.
// These settings are typically derived from application configuration.
type Options struct {
	// MaxTextLength is the longest text, in code points, that is accepted.
	// Zero means no limit.
	MaxTextLength int
	// MaxBatchSize is the largest number of texts ExtractBatch accepts.
	// Zero means no limit.
	MaxBatchSize int
	// Dedupe keeps only the first occurrence of every URL of a text.
	Dedupe bool
	// Normalize fills in domain.URL.Normalized.
	Normalize bool
	// DefaultScheme is given to protocol-less URLs during normalization.
	DefaultScheme string
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		MaxTextLength: cfg.Extractor.MaxTextLength,
		MaxBatchSize:  cfg.Extractor.MaxBatchSize,
		Dedupe:        cfg.Extractor.Dedupe,
		Normalize:     cfg.Extractor.Normalize,
		DefaultScheme: cfg.Extractor.DefaultScheme,
	}
}

// Deps holds the telemetry providers of the extractor. Nil providers fall
// back to no-op implementations.
type Deps struct {
	MeterProvider  metric.MeterProvider
	TracerProvider trace.TracerProvider
}

// extractor is the concrete implementation of the Extractor interface.
type extractor struct {
	// options holds runtime configuration that affects limits and post-processing.
	options Options
	tracer  trace.Tracer

	// candidates counts every candidate by outcome and rejection reason.
	candidates metric.Int64Counter
	// urlsPerText records how many URLs each text yielded.
	urlsPerText metric.Int64Histogram
}

// New creates an Extractor.
func New(opts Options, deps Deps) (Extractor, error) {
	mp := deps.MeterProvider
	if mp == nil {
		mp = metricnoop.NewMeterProvider()
	}
	tp := deps.TracerProvider
	if tp == nil {
		tp = tracenoop.NewTracerProvider()
	}

	meter := mp.Meter(instrumentationName)
	candidates, err := meter.Int64Counter("urlextract.candidates",
		metric.WithDescription("URL candidates found in texts, by outcome and reason."))
	if err != nil {
		return nil, fmt.Errorf("could not create candidates counter: %w", err)
	}
	urlsPerText, err := meter.Int64Histogram("urlextract.urls_per_text",
		metric.WithDescription("Number of URLs extracted from one text."),
		metric.WithExplicitBucketBoundaries(metrics.URLCountBuckets...))
	if err != nil {
		return nil, fmt.Errorf("could not create urls per text histogram: %w", err)
	}

	return &extractor{
		options:     opts,
		tracer:      tp.Tracer(instrumentationName),
		candidates:  candidates,
		urlsPerText: urlsPerText,
	}, nil
}

// Extract returns the URLs of text. Texts above MaxTextLength are rejected
// with serrors.ErrPayloadTooLarge.
func (e *extractor) Extract(ctx context.Context, text string) (*domain.Extraction, error) {
	length := utf8.RuneCountInString(text)

	ctx, span := e.tracer.Start(ctx, "Extract", trace.WithAttributes(attribute.Int("text.length", length)))
	defer span.End()

	if e.options.MaxTextLength > 0 && length > e.options.MaxTextLength {
		err := serrors.With(serrors.ErrPayloadTooLarge,
			"text has %d characters, the limit is %d", length, e.options.MaxTextLength)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	res := &domain.Extraction{URLs: []domain.URL{}}
	seen := make(map[string]struct{})

	for d := range tweettext.Evaluate(text) {
		res.Candidates++
		e.candidates.Add(ctx, 1, metric.WithAttributes(
			attribute.String("outcome", outcomeName(d.Outcome)),
			attribute.String("reason", d.Outcome.Reason.String()),
		))

		if !d.Outcome.Accepted {
			res.Rejected++
			if logger.IsDebug(ctx) {
				logger.Debug(ctx, "candidate rejected",
					zap.String("candidate", d.Candidate.URL), zap.Stringer("reason", d.Outcome.Reason))
			}

			continue
		}

		u := domain.URL{
			Text:        d.Entity.URL,
			Start:       d.Entity.Start,
			End:         d.Entity.End,
			HasProtocol: d.Entity.HasProtocol,
		}
		if e.options.Normalize {
			normalized, err := NormalizeURL(u.Text, e.options.DefaultScheme)
			if err != nil {
				logger.Debug(ctx, "could not normalize URL", zap.String("url", u.Text), zap.Error(err))
			}
			u.Normalized = normalized
		}

		if e.options.Dedupe {
			key := u.Normalized
			if key == "" {
				key = u.Text
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}

		res.URLs = append(res.URLs, u)
	}

	e.urlsPerText.Record(ctx, int64(len(res.URLs)))
	span.SetAttributes(
		attribute.Int("candidates", res.Candidates),
		attribute.Int("urls", len(res.URLs)),
	)

	return res, nil
}

// ExtractBatch extracts every text in order. It fails as a whole when one
// text fails or when there are more than MaxBatchSize texts.
func (e *extractor) ExtractBatch(ctx context.Context, texts []string) ([]domain.Extraction, error) {
	if len(texts) == 0 {
		return nil, serrors.With(serrors.ErrBadRequest, "no texts to extract from")
	}
	if e.options.MaxBatchSize > 0 && len(texts) > e.options.MaxBatchSize {
		return nil, serrors.With(serrors.ErrPayloadTooLarge,
			"batch has %d texts, the limit is %d", len(texts), e.options.MaxBatchSize)
	}

	ctx, span := e.tracer.Start(ctx, "ExtractBatch", trace.WithAttributes(attribute.Int("batch.size", len(texts))))
	defer span.End()

	results := make([]domain.Extraction, 0, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("could not extract batch: %w", err)
		}

		res, err := e.Extract(ctx, text)
		if err != nil {
			return nil, serrors.Wrap(serrors.KindOf(err), err, "text %d", i)
		}
		results = append(results, *res)
	}

	return results, nil
}

func outcomeName(o tweettext.Outcome) string {
	if o.Accepted {
		return "accepted"
	}

	return "rejected"
}
