package mockapi

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/deskhub/auth/password"
	apperrors "github.com/kbukum/deskhub/errors"
	"github.com/kbukum/deskhub/role"
)

// Account is a registered user of one role.
type Account struct {
	ID      string    `json:"id"`
	Role    role.Role `json:"role"`
	Email   string    `json:"email"`
	Name    string    `json:"name,omitempty"`
	Blocked bool      `json:"blocked"`

	passwordHash string
}

// Accounts is the account registry. Emails are unique per role and
// case-insensitive.
type Accounts struct {
	hasher password.Hasher

	mu       sync.RWMutex
	accounts map[string]*Account
}

// NewAccounts creates an empty registry.
func NewAccounts(hasher password.Hasher) *Accounts {
	return &Accounts{hasher: hasher, accounts: make(map[string]*Account)}
}

func accountKey(r role.Role, email string) string {
	return r.String() + ":" + strings.ToLower(strings.TrimSpace(email))
}

// Add registers an account and returns a copy of it.
func (a *Accounts) Add(r role.Role, email, pw, name string) (Account, error) {
	if !r.Valid() {
		return Account{}, apperrors.InvalidInput("role", "unknown role")
	}
	hash, err := a.hasher.Hash(pw)
	if err != nil {
		return Account{}, apperrors.InvalidInput("password", err.Error())
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	key := accountKey(r, email)
	if _, exists := a.accounts[key]; exists {
		return Account{}, apperrors.Conflict("account already exists")
	}
	acct := &Account{
		ID:           uuid.NewString(),
		Role:         r,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         name,
		passwordHash: hash,
	}
	a.accounts[key] = acct
	return *acct, nil
}

// Authenticate checks credentials. A blocked account with the right
// password fails with AccountBlocked.
func (a *Accounts) Authenticate(r role.Role, email, pw string) (Account, error) {
	a.mu.RLock()
	acct, ok := a.accounts[accountKey(r, email)]
	var snapshot Account
	if ok {
		snapshot = *acct
	}
	a.mu.RUnlock()

	if !ok {
		return Account{}, apperrors.InvalidCredentials()
	}
	if err := a.hasher.Verify(pw, snapshot.passwordHash); err != nil {
		return Account{}, apperrors.InvalidCredentials()
	}
	if snapshot.Blocked {
		return Account{}, apperrors.AccountBlocked()
	}
	return snapshot, nil
}

// Lookup returns the account of r with email.
func (a *Accounts) Lookup(r role.Role, email string) (Account, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	acct, ok := a.accounts[accountKey(r, email)]
	if !ok {
		return Account{}, false
	}
	return *acct, true
}

// SetBlocked blocks or unblocks an account.
func (a *Accounts) SetBlocked(r role.Role, email string, blocked bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	acct, ok := a.accounts[accountKey(r, email)]
	if !ok {
		return apperrors.NotFound("account", email)
	}
	acct.Blocked = blocked
	return nil
}
