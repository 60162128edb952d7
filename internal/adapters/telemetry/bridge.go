// Package telemetry connects OpenTelemetry spans emitted by the cache to the logger.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/percolate/internal/core/domain"
	"go.trai.ch/percolate/internal/core/ports"
)

// CompileSpanName is the span the bridge reports on.
const CompileSpanName = domain.SpanCompile

const sourceKey = attribute.Key(domain.SpanAttrSource)

// Bridge implements sdktrace.SpanProcessor and reports finished compilations
// through a ports.Logger.
type Bridge struct {
	logger ports.Logger
}

// NewBridge returns a new Bridge.
func NewBridge(logger ports.Logger) *Bridge {
	return &Bridge{logger: logger}
}

// OnStart does nothing.
func (b *Bridge) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd logs the duration of compile spans. Failed compilations are logged as
// warnings; the error itself is returned to the caller.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.logger == nil || s.Name() != CompileSpanName || !s.SpanContext().IsValid() {
		return
	}

	subject := "inline source"
	for _, kv := range s.Attributes() {
		if kv.Key == sourceKey {
			subject = kv.Value.AsString()
			break
		}
	}

	elapsed := s.EndTime().Sub(s.StartTime()).Round(time.Millisecond)

	if s.Status().Code == codes.Error {
		b.logger.Warn(fmt.Sprintf("compiling %s failed after %s", subject, elapsed))
		return
	}
	b.logger.Info(fmt.Sprintf("compiled %s in %s", subject, elapsed))
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}
