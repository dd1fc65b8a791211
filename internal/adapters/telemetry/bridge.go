package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// Bridge implements sdktrace.SpanProcessor and forwards span lifecycle
// events to a Renderer.
type Bridge struct {
	renderer ports.Renderer
}

// NewBridge returns a new Bridge.
func NewBridge(renderer ports.Renderer) *Bridge {
	return &Bridge{renderer: renderer}
}

// OnStart is called when a span starts.
func (b *Bridge) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	if b.renderer == nil {
		return
	}

	sc := s.SpanContext()
	if !sc.IsValid() {
		return
	}

	var parentID string
	if parentSpan := trace.SpanFromContext(parent); parentSpan.SpanContext().IsValid() {
		parentID = parentSpan.SpanContext().SpanID().String()
	}

	b.renderer.OnTargetStart(sc.SpanID().String(), parentID, s.Name(), s.StartTime())
}

// OnEnd is called when a span ends.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.renderer == nil {
		return
	}

	sc := s.SpanContext()
	if !sc.IsValid() {
		return
	}

	status := statusOf(s)
	var err error
	switch {
	case status == domain.StatusAborted:
		err = zerr.Wrap(domain.ErrAborted, description(s, "not started"))
	case s.Status().Code == codes.Error:
		err = errors.New(description(s, "target failed"))
	}

	b.renderer.OnTargetDone(sc.SpanID().String(), s.EndTime(), err, status == domain.StatusSkipped)
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}

func statusOf(s sdktrace.ReadOnlySpan) domain.TargetStatus {
	for _, kv := range s.Attributes() {
		if string(kv.Key) == ports.AttrStatus {
			return domain.TargetStatus(kv.Value.AsString())
		}
	}
	return ""
}

func description(s sdktrace.ReadOnlySpan, fallback string) string {
	if desc := s.Status().Description; desc != "" {
		return desc
	}
	return fallback
}
