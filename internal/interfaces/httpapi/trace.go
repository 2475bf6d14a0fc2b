package httpapi

import (
	"context"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// sessionSpanPrefix marks the exported spans. Other names get a no-op span.
const sessionSpanPrefix = "matchbet.session."

const sessionIDAttr = attribute.Key("matchbet.session_id")

var sessionTracer = otel.Tracer("github.com/riskibarqy/matchbet/httpapi")
var noopSpan = trace.SpanFromContext(context.Background())

// startSessionSpan opens the span for one session operation and tags it with the session id
// from the route when there is one.
func startSessionSpan(r *http.Request, operation string) (context.Context, trace.Span) {
	var attrs []attribute.KeyValue
	if sessionID := strings.TrimSpace(r.PathValue("sessionID")); sessionID != "" {
		attrs = append(attrs, sessionIDAttr.String(sessionID))
	}
	return startSpan(r.Context(), sessionSpanPrefix+operation, attrs...)
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	// Only child spans: /healthz and other filtered routes carry no parent.
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() || !isSessionSpan(name) {
		return ctx, noopSpan
	}
	return sessionTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func isSessionSpan(name string) bool {
	return strings.HasPrefix(name, sessionSpanPrefix)
}
