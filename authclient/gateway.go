package authclient

import (
	"context"

	"github.com/kbukum/deskhub/role"
)

// SessionGateway performs the session side effects of a terminal failure.
// session.Gateway is the standard implementation.
type SessionGateway interface {
	// OnTerminalFailure logs the role out and navigates to its login page.
	// It may be called for a role that is already logged out.
	OnTerminalFailure(ctx context.Context, r role.Role, reason string) error
	// Notify shows msg to the user. Best effort.
	Notify(ctx context.Context, msg string)
}
