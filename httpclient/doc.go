// Package httpclient is the transport under the role-bound API clients: a
// configurable HTTP adapter with base URL resolution, a cookie jar, TLS,
// and resilience (retry, circuit breaker, client-side rate limiting).
//
// Non-2xx responses come back together with a classified *Error whose
// Message carries the server's "message" field when it sent one.
//
// # Basic Usage
//
//	jar, _ := httpclient.NewCookieJar()
//	a, err := httpclient.New(httpclient.Config{
//	    Name:    "vendor",
//	    BaseURL: "https://api.example.com/vendor",
//	    Jar:     jar,
//	})
//
//	resp, err := a.Do(ctx, httpclient.Request{
//	    Method: http.MethodGet,
//	    Path:   "/bookings",
//	    Query:  url.Values{"status": {"active", "pending"}},
//	})
//
// # With Resilience
//
//	a, err := httpclient.New(httpclient.Config{
//	    BaseURL:        "https://api.example.com",
//	    Retry:          httpclient.DefaultRetryConfig(),
//	    CircuitBreaker: httpclient.DefaultCircuitBreakerConfig("api"),
//	})
//
// Retries and the circuit breaker only consider retryable failures
// (timeouts, connection errors, 429 and 5xx). 401 and 403 are returned at
// once and never count against the circuit.
package httpclient
