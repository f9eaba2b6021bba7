// Package session keeps the per-role login state shared by the API clients
// and implements the gateway they call when a session must end.
//
// A Store holds at most one Session per role. Gateway combines a Store with
// a Navigator and a Notifier: on a terminal authentication failure it logs
// the role out and sends the user to the role's login page.
package session
