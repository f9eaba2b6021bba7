// Package component defines the lifecycle contract for the long-running
// pieces of a deskhub process (the HTTP server, the Redis connection) and a
// registry that starts them in order and stops them in reverse.
package component
