// Package jwt signs and verifies tokens with golang-jwt.
//
// The service is parameterized by a claims type T, which must implement
// jwt.Claims (typically by embedding jwt.RegisteredClaims):
//
//	type Claims struct {
//	    jwt.RegisteredClaims
//	    Role string `json:"role"`
//	}
//
//	svc, err := jwt.NewService(cfg, func() *Claims { return &Claims{} })
//	token, err := svc.Generate(&Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u-1"}})
//	claims, err := svc.Parse(token)
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Parse failures. Every parse error wraps exactly one of these.
var (
	// ErrExpired means the token was well-formed and correctly signed but
	// is past its expiry.
	ErrExpired = errors.New("jwt: token expired")
	// ErrInvalid means the token is malformed, wrongly signed or otherwise
	// unacceptable.
	ErrInvalid = errors.New("jwt: invalid token")
)

// Service generates and parses tokens for claims type T.
type Service[T gojwt.Claims] struct {
	cfg      Config
	newEmpty func() T
	now      func() time.Time
}

// Option customises a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	now func() time.Time
}

// WithClock replaces time.Now for issuing and verifying tokens.
func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) { o.now = now }
}

// NewService creates a token service. newEmpty returns a zero claims value
// for parsing.
func NewService[T gojwt.Claims](cfg Config, newEmpty func() T, opts ...Option) (*Service[T], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := serviceOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Service[T]{cfg: cfg, newEmpty: newEmpty, now: o.now}, nil
}

// Config returns the effective configuration.
func (s *Service[T]) Config() Config {
	return s.cfg
}

// Now returns the service clock's current time.
func (s *Service[T]) Now() time.Time {
	return s.now()
}

// Generate signs claims as they are.
func (s *Service[T]) Generate(claims T) (string, error) {
	token := gojwt.NewWithClaims(s.cfg.signingMethod(), claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// Registered returns RegisteredClaims for a token of the given lifetime,
// stamped with the service clock and issuer.
func (s *Service[T]) Registered(id, subject string, ttl time.Duration) gojwt.RegisteredClaims {
	now := s.now()
	return gojwt.RegisteredClaims{
		ID:        id,
		Subject:   subject,
		Issuer:    s.cfg.Issuer,
		IssuedAt:  gojwt.NewNumericDate(now),
		NotBefore: gojwt.NewNumericDate(now),
		ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
	}
}

// Parse verifies tokenString and returns its claims. Errors wrap ErrExpired
// or ErrInvalid.
func (s *Service[T]) Parse(tokenString string) (T, error) {
	var zero T
	claims := s.newEmpty()
	token, err := gojwt.ParseWithClaims(tokenString, claims, s.keyFunc, s.parserOptions()...)
	if err != nil {
		if errors.Is(err, gojwt.ErrTokenExpired) {
			return zero, fmt.Errorf("%w: %v", ErrExpired, err)
		}
		return zero, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !token.Valid {
		return zero, ErrInvalid
	}
	parsed, ok := token.Claims.(T)
	if !ok {
		return zero, fmt.Errorf("%w: unexpected claims type", ErrInvalid)
	}
	return parsed, nil
}

func (s *Service[T]) keyFunc(token *gojwt.Token) (interface{}, error) {
	expected := s.cfg.signingMethod()
	if token.Method.Alg() != expected.Alg() {
		return nil, fmt.Errorf("jwt: unexpected signing method: %s", token.Method.Alg())
	}
	return []byte(s.cfg.Secret), nil
}

func (s *Service[T]) parserOptions() []gojwt.ParserOption {
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{s.cfg.signingMethod().Alg()}),
		gojwt.WithTimeFunc(s.now),
		gojwt.WithExpirationRequired(),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.cfg.Issuer))
	}
	return opts
}
