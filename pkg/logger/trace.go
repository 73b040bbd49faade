package logger

import (
	"context"
	"log/slog"

	// Packages
	codes "go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// SpanExporter writes finished spans to a logger at debug level, or at
// error level when the span failed
type SpanExporter struct {
	log *slog.Logger
}

var _ sdktrace.SpanExporter = (*SpanExporter)(nil)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewSpanExporter returns an exporter which writes spans to log
func NewSpanExporter(log *slog.Logger) *SpanExporter {
	return &SpanExporter{log: log}
}

// NewTracerProvider returns a tracer provider which exports every span to
// log as soon as it ends. Call Shutdown on the provider when done.
func NewTracerProvider(log *slog.Logger) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(NewSpanExporter(log)),
	)
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (e *SpanExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		attrs := make([]any, 0, 8+2*len(span.Attributes()))
		attrs = append(attrs,
			"trace", span.SpanContext().TraceID().String(),
			"span", span.SpanContext().SpanID().String(),
			"duration", span.EndTime().Sub(span.StartTime()),
		)
		if parent := span.Parent(); parent.IsValid() {
			attrs = append(attrs, "parent", parent.SpanID().String())
		}
		for _, kv := range span.Attributes() {
			attrs = append(attrs, string(kv.Key), kv.Value.Emit())
		}
		if status := span.Status(); status.Code == codes.Error {
			attrs = append(attrs, "error", status.Description)
			e.log.ErrorContext(ctx, span.Name(), attrs...)
		} else {
			e.log.DebugContext(ctx, span.Name(), attrs...)
		}
	}
	return nil
}

func (e *SpanExporter) Shutdown(context.Context) error {
	return nil
}
