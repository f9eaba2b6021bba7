package session

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/deskhub/role"
)

// Session is the logged-in state of one role.
type Session struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	Role       role.Role `json:"role"`
	LoggedInAt time.Time `json:"logged_in_at"`
}

// Store holds the current session for each role.
type Store interface {
	// Login records s as the current session for s.Role.
	Login(ctx context.Context, s Session) error
	// Logout clears the session for r. Logging out an absent session is a no-op.
	Logout(ctx context.Context, r role.Role) error
	// Current returns the session for r, or nil when there is none.
	Current(ctx context.Context, r role.Role) (*Session, error)
}

func validate(s Session) error {
	if !s.Role.Valid() {
		return fmt.Errorf("session: unknown role %q", s.Role)
	}
	if s.Email == "" {
		return fmt.Errorf("session: email is required")
	}
	return nil
}
