package authclient

import (
	"errors"
	"fmt"

	"github.com/kbukum/deskhub/role"
)

// SessionTerminatedError is returned when a failure ended the role's
// session. Err is the request's own error for a terminal response, or the
// refresh call's error when renewing the credential failed.
type SessionTerminatedError struct {
	Role   role.Role
	Reason Reason
	Err    error
}

func (e *SessionTerminatedError) Error() string {
	return fmt.Sprintf("authclient: %s session terminated (%s): %v", e.Role, e.Reason, e.Err)
}

func (e *SessionTerminatedError) Unwrap() error {
	return e.Err
}

// IsSessionTerminated reports whether err ended a session.
func IsSessionTerminated(err error) bool {
	var e *SessionTerminatedError
	return errors.As(err, &e)
}

// TerminationReason returns the reason carried by err, or "".
func TerminationReason(err error) Reason {
	var e *SessionTerminatedError
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}
