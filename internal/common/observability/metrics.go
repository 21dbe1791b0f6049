package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records batch-level measurements through OpenTelemetry,
// exported on the same prometheus registry as the promauto metrics.
type Observability struct {
	meterProvider *metric.MeterProvider
	batchCounter  otelmetric.Int64Counter
	batchSize     otelmetric.Int64Histogram
	batchDuration otelmetric.Float64Histogram
}

// New never fails: without an exporter every Record call is a no-op.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return &Observability{}, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	batchCounter, _ := meter.Int64Counter(
		"batches.processed",
		otelmetric.WithDescription("Number of queue batches drained"),
	)

	batchSize, _ := meter.Int64Histogram(
		"batches.size",
		otelmetric.WithDescription("Number of messages per drained batch"),
	)

	batchDuration, _ := meter.Float64Histogram(
		"batches.duration",
		otelmetric.WithDescription("Batch processing duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider: provider,
		batchCounter:  batchCounter,
		batchSize:     batchSize,
		batchDuration: batchDuration,
	}, nil
}

// RecordBatch records one drained batch. status is "ok", "partial" or "empty".
func (o *Observability) RecordBatch(ctx context.Context, size int, duration time.Duration, status string) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("status", status))
	if o.batchCounter != nil {
		o.batchCounter.Add(ctx, 1, attrs)
	}
	if o.batchSize != nil {
		o.batchSize.Record(ctx, int64(size), attrs)
	}
	if o.batchDuration != nil {
		o.batchDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
