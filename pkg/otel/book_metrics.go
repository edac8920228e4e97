package otel

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	instrumentationName = "github.com/erain9/depthbook/pkg/otel"

	// AttributeBook tags every measurement with the book it belongs to
	AttributeBook = "book.name"
	// AttributeAction tags a measurement with the applied command action
	AttributeAction = "book.action"
)

var (
	bookMetrics     *BookMetrics
	bookMetricsOnce sync.Once
)

// BookMetrics holds the metrics instruments for book command monitoring
type BookMetrics struct {
	// Latency metrics
	applyLatency metric.Float64Histogram

	// Traffic metrics
	commandsTotal metric.Int64Counter

	// Error metrics
	rejectedTotal metric.Int64Counter

	// Book state metrics
	restingOrders metric.Int64UpDownCounter
}

// NewBookMetrics creates a new BookMetrics instance
func NewBookMetrics(meter metric.Meter) (*BookMetrics, error) {
	applyLatency, err := meter.Float64Histogram(
		"book.apply.duration",
		metric.WithDescription("Latency (seconds) of applying one command to a book"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	commandsTotal, err := meter.Int64Counter(
		"book.commands.total",
		metric.WithDescription("Total number of commands applied"),
		metric.WithUnit("{command}"),
	)
	if err != nil {
		return nil, err
	}

	rejectedTotal, err := meter.Int64Counter(
		"book.commands.rejected.total",
		metric.WithDescription("Total number of rejected commands"),
		metric.WithUnit("{command}"),
	)
	if err != nil {
		return nil, err
	}

	restingOrders, err := meter.Int64UpDownCounter(
		"book.orders.resting",
		metric.WithDescription("Number of orders currently resting"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, err
	}

	return &BookMetrics{
		applyLatency:  applyLatency,
		commandsTotal: commandsTotal,
		rejectedTotal: rejectedTotal,
		restingOrders: restingOrders,
	}, nil
}

// GetBookMetrics returns a singleton instance of BookMetrics
func GetBookMetrics() (*BookMetrics, error) {
	var err error
	bookMetricsOnce.Do(func() {
		meter := GetMeterProvider().Meter(instrumentationName)
		bookMetrics, err = NewBookMetrics(meter)
	})
	if err != nil {
		return nil, err
	}
	return bookMetrics, nil
}

// RecordApply records one applied command and its latency
func (m *BookMetrics) RecordApply(ctx context.Context, bookName, action string, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String(AttributeBook, bookName),
		attribute.String(AttributeAction, action),
	}
	m.commandsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.applyLatency.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordRejected records one rejected command
func (m *BookMetrics) RecordRejected(ctx context.Context, bookName, action string) {
	m.rejectedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttributeBook, bookName),
		attribute.String(AttributeAction, action),
	))
}

// AddRestingOrders adjusts the resting order gauge
func (m *BookMetrics) AddRestingOrders(ctx context.Context, bookName string, delta int64) {
	m.restingOrders.Add(ctx, delta, metric.WithAttributes(
		attribute.String(AttributeBook, bookName),
	))
}
