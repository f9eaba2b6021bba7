// Package version reports build version information.
//
// Version, commit and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/deskhub/version.Version=1.2.0" ./cmd/deskhub
//
// Unset values fall back to the module's VCS build settings.
package version
