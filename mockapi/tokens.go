package mockapi

import (
	"errors"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kbukum/deskhub/auth/jwt"
	apperrors "github.com/kbukum/deskhub/errors"
	"github.com/kbukum/deskhub/role"
)

// Token kinds.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// Claims is the payload of both token kinds.
type Claims struct {
	gojwt.RegisteredClaims
	Role  role.Role `json:"role"`
	Email string    `json:"email"`
	Kind  string    `json:"kind"`
}

// TokenPair is one login or refresh result.
type TokenPair struct {
	Access        string
	AccessClaims  *Claims
	Refresh       string
	RefreshClaims *Claims
}

type issuer struct {
	svc *jwt.Service[*Claims]
}

func newIssuer(cfg jwt.Config, now func() time.Time) (*issuer, error) {
	svc, err := jwt.NewService(cfg, func() *Claims { return &Claims{} }, jwt.WithClock(now))
	if err != nil {
		return nil, err
	}
	return &issuer{svc: svc}, nil
}

func (i *issuer) issue(acct Account) (TokenPair, error) {
	cfg := i.svc.Config()
	access := &Claims{
		RegisteredClaims: i.svc.Registered(uuid.NewString(), acct.ID, cfg.AccessTokenTTL),
		Role:             acct.Role,
		Email:            acct.Email,
		Kind:             KindAccess,
	}
	refresh := &Claims{
		RegisteredClaims: i.svc.Registered(uuid.NewString(), acct.ID, cfg.RefreshTokenTTL),
		Role:             acct.Role,
		Email:            acct.Email,
		Kind:             KindRefresh,
	}
	accessToken, err := i.svc.Generate(access)
	if err != nil {
		return TokenPair{}, err
	}
	refreshToken, err := i.svc.Generate(refresh)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		Access:        accessToken,
		AccessClaims:  access,
		Refresh:       refreshToken,
		RefreshClaims: refresh,
	}, nil
}

// parse verifies a token of the given kind for r.
func (i *issuer) parse(token string, r role.Role, kind string) (*Claims, *apperrors.AppError) {
	claims, err := i.svc.Parse(token)
	switch {
	case errors.Is(err, jwt.ErrExpired):
		return nil, apperrors.TokenExpired()
	case err != nil:
		return nil, apperrors.InvalidToken().WithCause(err)
	case claims.Kind != kind || claims.Role != r || claims.ID == "":
		return nil, apperrors.InvalidToken()
	}
	return claims, nil
}

func (i *issuer) now() time.Time {
	return i.svc.Now()
}

func expiry(c *Claims) time.Time {
	if c == nil || c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
