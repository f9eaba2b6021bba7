// Package resilience provides the fault-tolerance primitives used by the
// transport and the reference backend.
//
//   - Retry: re-runs an operation with exponential backoff while RetryIf
//     allows it.
//   - CircuitBreaker: fails fast after consecutive failures. IsFailure decides
//     which errors count, so authentication rejections never trip it.
//   - RateLimiter / KeyedRateLimiter: token buckets, the keyed form holding
//     one bucket per key (login throttling per account).
//
// Combined in the HTTP adapter:
//
//	err := cb.Execute(func() error {
//	    return resilience.RetryFunc(ctx, retryCfg, send)
//	})
package resilience
