package logging

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// NewGoogleCloudTracingLogHandler links log records to the active span in Cloud Trace.
// Without a project the trace id can not be qualified, so records pass through unchanged.
//
// NOTE: Only the *Context slog methods carry the span
func NewGoogleCloudTracingLogHandler(baseHandler slog.Handler, project string) slog.Handler {
	if project == "" {
		return baseHandler
	}
	return &cloudTraceHandler{base: baseHandler, tracePrefix: fmt.Sprintf("projects/%s/traces/", project)}
}

type cloudTraceHandler struct {
	base        slog.Handler
	tracePrefix string
}

func (h *cloudTraceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *cloudTraceHandler) Handle(ctx context.Context, r slog.Record) error {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return h.base.Handle(ctx, r)
	}

	// https://docs.cloud.google.com/logging/docs/agent/logging/configuration#special-fields
	r.AddAttrs(
		slog.String("logging.googleapis.com/trace", h.tracePrefix+sc.TraceID().String()),
		slog.String("logging.googleapis.com/spanId", sc.SpanID().String()),
		slog.Bool("logging.googleapis.com/trace_sampled", sc.TraceFlags().IsSampled()),
	)
	return h.base.Handle(ctx, r)
}

func (h *cloudTraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &cloudTraceHandler{base: h.base.WithAttrs(attrs), tracePrefix: h.tracePrefix}
}

func (h *cloudTraceHandler) WithGroup(name string) slog.Handler {
	return &cloudTraceHandler{base: h.base.WithGroup(name), tracePrefix: h.tracePrefix}
}

var _ slog.Handler = (*cloudTraceHandler)(nil)
