package authclient

import (
	"errors"
	"net/http"

	apperrors "github.com/kbukum/deskhub/errors"
	"github.com/kbukum/deskhub/httpclient"
)

// Action is what the client does with a failed request.
type Action int

const (
	// ActionPassThrough returns the failure to the caller unchanged.
	ActionPassThrough Action = iota
	// ActionRefresh renews the credential and replays the request once.
	ActionRefresh
	// ActionTerminate ends the session and returns a *SessionTerminatedError.
	ActionTerminate
)

func (a Action) String() string {
	switch a {
	case ActionRefresh:
		return "refresh"
	case ActionTerminate:
		return "terminate"
	default:
		return "pass_through"
	}
}

// Reason names why a session was terminated.
type Reason string

const (
	ReasonInvalidToken   Reason = "invalid_token"
	ReasonBlacklisted    Reason = "token_blacklisted"
	ReasonAccountBlocked Reason = "account_blocked"
	ReasonRefreshFailed  Reason = "refresh_failed"
)

// Message is the notification shown to the user for the reason.
func (r Reason) Message() string {
	switch r {
	case ReasonAccountBlocked:
		return "Your account has been blocked. Please contact support."
	case ReasonRefreshFailed:
		return "Your session has expired. Please log in again."
	default:
		return "Your session is no longer valid. Please log in again."
	}
}

// Failure is the part of a failed response the policy looks at.
type Failure struct {
	// Status is the HTTP status, 0 when no response was received.
	Status int
	// Message is the server's "message" field, matched exactly.
	Message string
	// Code is the server's structured error code. A code the client
	// recognises takes precedence over Message; an unknown one defers to it.
	Code string
}

// FailureFromError extracts a Failure from a transport error. It reports
// false for errors that carry no HTTP response, such as connection errors.
func FailureFromError(err error) (Failure, bool) {
	var httpErr *httpclient.Error
	if !errors.As(err, &httpErr) || httpErr.StatusCode == 0 {
		return Failure{}, false
	}
	return Failure{
		Status:  httpErr.StatusCode,
		Message: httpErr.APIMessage(),
		Code:    httpErr.APICode(),
	}, true
}

// Classify maps a failure to an action. retried reports whether the
// request has already been replayed once after a refresh.
//
//	401 invalid token                 -> terminate
//	401 other, not retried            -> refresh
//	401 other, retried                -> pass through
//	403 token blacklisted             -> terminate
//	403 account blocked, not retried  -> terminate
//	anything else                     -> pass through
func Classify(f Failure, retried bool) (Action, Reason) {
	reason := terminalReason(f)

	switch f.Status {
	case http.StatusUnauthorized:
		if reason == ReasonInvalidToken {
			return ActionTerminate, reason
		}
		if !retried {
			return ActionRefresh, ""
		}
	case http.StatusForbidden:
		switch reason {
		case ReasonBlacklisted:
			return ActionTerminate, reason
		case ReasonAccountBlocked:
			if !retried {
				return ActionTerminate, reason
			}
		}
	}
	return ActionPassThrough, ""
}

// terminalReason matches a recognised code first. A response whose code
// is absent or unknown to the client is matched on its message.
func terminalReason(f Failure) Reason {
	switch apperrors.ErrorCode(f.Code) {
	case apperrors.ErrCodeInvalidToken:
		return ReasonInvalidToken
	case apperrors.ErrCodeTokenBlacklisted:
		return ReasonBlacklisted
	case apperrors.ErrCodeAccountBlocked:
		return ReasonAccountBlocked
	case apperrors.ErrCodeTokenExpired, apperrors.ErrCodeUnauthorized:
		return ""
	}

	switch f.Message {
	case apperrors.MsgInvalidToken:
		return ReasonInvalidToken
	case apperrors.MsgTokenBlacklisted:
		return ReasonBlacklisted
	case apperrors.MsgAccountBlocked:
		return ReasonAccountBlocked
	}
	return ""
}
