package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/deskhub/observability"
)

// Telemetry traces each request as an observability.OperationContext named
// "<METHOD> <path>" and records request metrics when metrics is non-nil.
// Incoming W3C trace context is continued. Responses with status 500 and
// above mark the span failed.
func Telemetry(service string, metrics *observability.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			oc := observability.NewOperationContext(service, r.Method+" "+r.URL.Path, r.Header.Get(HeaderRequestID), metrics)
			ctx = observability.WithOperationContext(ctx, oc)
			ctx, span := oc.StartSpanForOperation(ctx, observability.SpanHTTPRequest,
				trace.WithSpanKind(trace.SpanKindServer))

			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r.WithContext(ctx))

			var err error
			if sw.status >= http.StatusInternalServerError {
				err = fmt.Errorf("%s %s: status %d", r.Method, r.URL.Path, sw.status)
			}
			oc.EndOperation(ctx, span, strconv.Itoa(sw.status), err)
		})
	}
}
