// Package observability wires OpenTelemetry tracing and metrics.
//
//	tel, err := observability.Init(ctx, cfg, log)
//	defer tel.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "mockapi.login")
//	defer span.End()
//
// When the configuration is disabled Init installs nothing and the otel
// globals stay no-ops, so instrumented packages need no special casing.
package observability
