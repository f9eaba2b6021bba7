// Package errors defines the structured error type shared by the deskhub
// backend contract and its clients.
//
// Every failure the backend sends carries a human message and, in the
// structured form of the contract, a machine-readable code. The session
// termination messages are part of the wire contract and are matched verbatim
// by clients, so they live here as constants next to their codes.
package errors
