package repository

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// scopeName is the instrumentation scope of backend calls.
const scopeName = "hrm-admin/console/repository"

// instruments records one span, one duration sample and one counter increment
// per backend request. With no providers configured these are no-ops.
type instruments struct {
	tracer   trace.Tracer
	duration metric.Float64Histogram
	requests metric.Int64Counter
}

func newInstruments() *instruments {
	i := &instruments{tracer: otel.Tracer(scopeName)}
	i.setMeter(otel.Meter(scopeName))
	return i
}

func (i *instruments) setMeter(meter metric.Meter) {
	// The API hands back no-op instruments on error.
	i.duration, _ = meter.Float64Histogram(
		"hrm.backend.request.duration",
		metric.WithDescription("Duration of HR backend requests in seconds"),
		metric.WithUnit("s"),
	)
	i.requests, _ = meter.Int64Counter(
		"hrm.backend.requests",
		metric.WithDescription("Total number of HR backend requests"),
		metric.WithUnit("{request}"),
	)
}

// start opens the span for op and returns the function that closes it.
func (i *instruments) start(ctx context.Context, op, method string) (context.Context, func(error)) {
	begin := time.Now()
	ctx, span := i.tracer.Start(ctx, "hrm.backend."+op,
		trace.WithAttributes(
			attribute.String("hrm.operation", op),
			attribute.String("http.request.method", method),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)

	return ctx, func(err error) {
		status := "ok"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()

		attrs := metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("status", status),
		)
		i.duration.Record(ctx, time.Since(begin).Seconds(), attrs)
		i.requests.Add(ctx, 1, attrs)
	}
}
