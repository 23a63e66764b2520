package observe

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Valid metrics exporters.
var validMetricsExporters = map[string]bool{
	"stdout": true,
	"none":   true,
	"":       true, // Empty is valid (disabled)
}

// Metrics holds the agent's OpenTelemetry instruments.
//
// The agent is a short-lived process, so instruments are recorded during the
// run and flushed once by Shutdown rather than scraped or pushed on an
// interval.
type Metrics struct {
	provider *sdkmetric.MeterProvider
	meter    metric.Meter

	runDuration   metric.Float64Histogram
	probeDuration metric.Float64Histogram
	issues        metric.Int64Counter
	taskFailures  metric.Int64Counter
}

// NewMetrics creates the agent's metrics with the given exporter
// ("stdout" or "none").
func NewMetrics(ctx context.Context, exporter string) (*Metrics, error) {
	if !validMetricsExporters[exporter] {
		return nil, fmt.Errorf("unknown metrics exporter: %q", exporter)
	}

	reader, err := newMetricsReader(exporter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics reader: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName("nixmedic"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	meter := provider.Meter("nixmedic")

	m := &Metrics{provider: provider, meter: meter}

	if m.runDuration, err = meter.Float64Histogram(
		"nixmedic.run.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Total duration of one agent run"),
	); err != nil {
		return nil, err
	}
	if m.probeDuration, err = meter.Float64Histogram(
		"nixmedic.probe.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of one probe collection"),
	); err != nil {
		return nil, err
	}
	if m.issues, err = meter.Int64Counter(
		"nixmedic.issues",
		metric.WithDescription("Issues detected, by severity"),
	); err != nil {
		return nil, err
	}
	if m.taskFailures, err = meter.Int64Counter(
		"nixmedic.maintenance.failures",
		metric.WithDescription("Failed maintenance tasks"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// newMetricsReader creates a metrics reader for the named exporter.
func newMetricsReader(name string) (sdkmetric.Reader, error) {
	switch name {
	case "stdout":
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(os.Stdout))
		if err != nil {
			return nil, err
		}
		return sdkmetric.NewPeriodicReader(exp), nil

	case "none", "":
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(io.Discard))
		if err != nil {
			return nil, err
		}
		return sdkmetric.NewPeriodicReader(exp), nil

	default:
		return nil, fmt.Errorf("unknown exporter: %q", name)
	}
}

// RecordRun records the overall duration and issue count of one run.
func (m *Metrics) RecordRun(ctx context.Context, mode string, d time.Duration, issues int) {
	attrs := metric.WithAttributes(attribute.String("mode", mode))
	m.runDuration.Record(ctx, d.Seconds(), attrs)
	m.issues.Add(ctx, int64(issues), attrs)
}

// RecordProbe records the duration of one probe collection.
func (m *Metrics) RecordProbe(ctx context.Context, probe string, d time.Duration, unavailable bool) {
	m.probeDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("probe", probe),
		attribute.Bool("unavailable", unavailable),
	))
}

// RecordTaskFailure counts one failed maintenance task.
func (m *Metrics) RecordTaskFailure(ctx context.Context, task string) {
	m.taskFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("task", task)))
}

// Shutdown flushes all recorded instruments and releases the provider.
// Safe to call once at the end of a run.
func (m *Metrics) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}
