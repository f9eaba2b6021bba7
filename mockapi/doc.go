// Package mockapi is an in-process marketplace backend that speaks the
// authentication failure contract the API clients react to. It backs the
// integration tests and the `deskhub mock-api` command.
//
// Every role is served under {prefix}/{segment}:
//
//	POST /login            set <role>_access and <role>_refresh cookies
//	POST /refresh-token    rotate both cookies
//	POST /logout           blacklist both tokens and clear the cookies
//	GET  /profile          the logged-in account
//	GET  /bookings         bookings, filtered by repeated ?status= keys
//
// The admin role additionally serves POST /accounts/block and
// POST /accounts/unblock with {"role","email"}.
//
// Protected routes fail with 401 "Unauthorized" (no cookie), 401 "Token
// Expired", 401 "Invalid token", 403 "Token is blacklisted" or 403 "Access
// denied: Your account has been blocked". With EmitCodes the bodies also
// carry the structured code.
package mockapi
