package command

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var commandTracer = otel.Tracer("rlvs-discord-bot/internal/interfaces/command")
var noopSpan = trace.SpanFromContext(context.Background())

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		// No parent span in context (e.g. tracing disabled or an
		// untraced sweep): avoid creating standalone root spans.
		return ctx, noopSpan
	}
	if !shouldCreateCommandSpan(name) {
		return ctx, noopSpan
	}
	return commandTracer.Start(ctx, name)
}

func shouldCreateCommandSpan(name string) bool {
	return strings.HasPrefix(name, "command.Handler.")
}
