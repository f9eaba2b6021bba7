package session

import (
	"context"
	"fmt"

	"github.com/kbukum/deskhub/logger"
	"github.com/kbukum/deskhub/role"
)

// Gateway ends sessions on behalf of the API clients.
type Gateway struct {
	Store     Store
	Navigator Navigator
	Notifier  Notifier
	Log       *logger.Logger
}

// NewGateway creates a Gateway. A nil navigator or notifier is skipped.
func NewGateway(store Store, nav Navigator, notifier Notifier) *Gateway {
	return &Gateway{
		Store:     store,
		Navigator: nav,
		Notifier:  notifier,
		Log:       logger.WithComponent("session.gateway"),
	}
}

// OnTerminalFailure logs r out and navigates to r's login page. The logout
// is attempted even when navigation is unavailable; the first error is
// returned.
func (g *Gateway) OnTerminalFailure(ctx context.Context, r role.Role, reason string) error {
	log := g.logger().WithFields(map[string]interface{}{
		logger.FieldRole:   r.String(),
		logger.FieldReason: reason,
	})

	var firstErr error
	if err := g.Store.Logout(ctx, r); err != nil {
		firstErr = fmt.Errorf("session: logout %s: %w", r, err)
		log.Error("Forced logout failed", map[string]interface{}{logger.FieldError: err.Error()})
	}

	if g.Navigator != nil {
		if err := g.Navigator.Navigate(ctx, r.LoginPath()); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("session: navigate %s: %w", r.LoginPath(), err)
			}
			log.Error("Login redirect failed", map[string]interface{}{logger.FieldError: err.Error()})
		}
	}

	log.Info("Session terminated")
	return firstErr
}

// Notify forwards msg to the notifier.
func (g *Gateway) Notify(ctx context.Context, msg string) {
	if g.Notifier != nil {
		g.Notifier.Notify(ctx, msg)
	}
}

func (g *Gateway) logger() *logger.Logger {
	if g.Log != nil {
		return g.Log
	}
	return logger.WithComponent("session.gateway")
}
