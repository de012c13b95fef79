// Package observe provides application-wide observability primitives for the
// pronunciation trainer: OpenTelemetry metrics, tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all trainer metrics.
const meterName = "github.com/vplearn/tonetutor"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms ---

	// CheckDuration tracks the end-to-end latency of a pronunciation check,
	// from decoded request to judgement. Use with attribute:
	//   attribute.String("outcome", ...)
	CheckDuration metric.Float64Histogram

	// RecognitionDuration tracks one recognizer call. Use with attributes:
	//   attribute.String("recognizer", ...), attribute.String("status", ...)
	RecognitionDuration metric.Float64Histogram

	// --- Counters ---

	// Judgements counts completed checks. Use with attribute:
	//   attribute.String("outcome", ...) with "correct", "incorrect", or the
	//   failure kind ("invalid_input", "invalid_audio", "not_understood",
	//   "service_error", "internal").
	Judgements metric.Int64Counter

	// RecognitionFallbacks counts fallthroughs from one recognizer to the
	// next. Use with attribute: attribute.String("from", ...)
	RecognitionFallbacks metric.Int64Counter

	// DecodeFailures counts audio payloads rejected by the WAV decoder.
	DecodeFailures metric.Int64Counter

	// --- Gauges ---

	// ActiveChecks tracks the number of pronunciation checks in flight.
	ActiveChecks metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// short recognition round-trips.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.CheckDuration, err = m.Float64Histogram("tonetutor.check.duration",
		metric.WithDescription("End-to-end latency of a pronunciation check."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.RecognitionDuration, err = m.Float64Histogram("tonetutor.recognition.duration",
		metric.WithDescription("Latency of one speech recognizer call."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.Judgements, err = m.Int64Counter("tonetutor.judgements",
		metric.WithDescription("Total completed pronunciation checks by outcome."),
	); err != nil {
		return nil, err
	}
	if met.RecognitionFallbacks, err = m.Int64Counter("tonetutor.recognition.fallbacks",
		metric.WithDescription("Total fallthroughs from one recognizer to the next."),
	); err != nil {
		return nil, err
	}
	if met.DecodeFailures, err = m.Int64Counter("tonetutor.audio.decode_failures",
		metric.WithDescription("Total audio payloads rejected by the WAV decoder."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveChecks, err = m.Int64UpDownCounter("tonetutor.checks.active",
		metric.WithDescription("Number of pronunciation checks in flight."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("tonetutor.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordJudgement records a completed check with the standard outcome
// attribute.
func (m *Metrics) RecordJudgement(ctx context.Context, outcome string) {
	m.Judgements.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", outcome)),
	)
}

// RecordCheck records one completed check end to end: its duration in
// seconds and its outcome.
func (m *Metrics) RecordCheck(ctx context.Context, outcome string, seconds float64) {
	m.CheckDuration.Record(ctx, seconds,
		metric.WithAttributes(attribute.String("outcome", outcome)),
	)
	m.RecordJudgement(ctx, outcome)
}

// RecordRecognition records one recognizer call's duration in seconds with
// the standard attribute set.
func (m *Metrics) RecordRecognition(ctx context.Context, recognizer, status string, seconds float64) {
	m.RecognitionDuration.Record(ctx, seconds,
		metric.WithAttributes(
			attribute.String("recognizer", recognizer),
			attribute.String("status", status),
		),
	)
}

// RecordFallback records a fallthrough from the named recognizer.
func (m *Metrics) RecordFallback(ctx context.Context, from string) {
	m.RecognitionFallbacks.Add(ctx, 1,
		metric.WithAttributes(attribute.String("from", from)),
	)
}

// RecordDecodeFailure records a rejected audio payload.
func (m *Metrics) RecordDecodeFailure(ctx context.Context) {
	m.DecodeFailures.Add(ctx, 1)
}
