package telemetry

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/percolate/internal/core/ports"
)

// NewProvider returns a tracer provider whose only processor is a Bridge to logger.
// Spans are always sampled so that every compilation is reported.
func NewProvider(logger ports.Logger) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithSpanProcessor(NewBridge(logger)),
	)
}
