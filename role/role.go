// Package role defines the closed set of marketplace roles a session can be
// bound to, together with the per-role routing metadata the API client needs.
package role

import (
	"fmt"
	"strings"
)

// Role identifies who a session belongs to.
type Role string

const (
	// Client books desks.
	Client Role = "client"
	// Vendor lists buildings and spaces.
	Vendor Role = "vendor"
	// Admin moderates the marketplace.
	Admin Role = "admin"
)

// All returns every role in a stable order.
func All() []Role {
	return []Role{Client, Vendor, Admin}
}

// Parse converts a string into a Role. Matching is case-insensitive.
func Parse(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("role: unknown role %q (want one of client, vendor, admin)", s)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case Client, Vendor, Admin:
		return true
	default:
		return false
	}
}

// String returns the role name.
func (r Role) String() string {
	return string(r)
}

// PathSegment returns the default API path segment for the role.
func (r Role) PathSegment() string {
	return string(r)
}

// LoginPath returns the location a terminated session is redirected to.
func (r Role) LoginPath() string {
	switch r {
	case Vendor:
		return "/vendor/login"
	case Admin:
		return "/admin/login"
	default:
		return "/login"
	}
}

// CanonicalKeys returns a copy of m whose role-named keys are rewritten to
// the canonical role name, so "Vendor" and "vendor" address the same role.
// Keys that name no role are kept unchanged for validation to report.
func CanonicalKeys[V any](m map[string]V) map[string]V {
	if m == nil {
		return nil
	}
	out := make(map[string]V, len(m))
	for k, v := range m {
		if r, err := Parse(k); err == nil {
			k = r.String()
		}
		out[k] = v
	}
	return out
}
