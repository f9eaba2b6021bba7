// Package authclient is the role-bound API client of the marketplace
// backend. A Client sends requests under {backend}/{role segment} with the
// session cookies, and handles authentication failures on the caller's
// behalf:
//
//   - an expired access token (401) triggers one shared call to
//     POST {base}/refresh-token, after which the request is replayed once;
//   - an invalid, revoked or blocked credential ends the session through the
//     injected SessionGateway (logout, redirect to the role's login page,
//     user notification) and returns a *SessionTerminatedError;
//   - anything else is returned unchanged.
//
// Concurrent 401s on one Client share a single refresh and all replay after
// it settles. Classify exposes the decision table as a pure function.
//
//	set, err := authclient.NewSet(cfg, session.NewGateway(store, nav, notifier))
//	resp, err := set.For(role.Client).Get(ctx, "/bookings",
//	    authclient.WithQuery("status", "active", "pending"))
//	if authclient.IsSessionTerminated(err) {
//	    // the user has been logged out
//	}
package authclient
