package authclient

import (
	"fmt"
	"net/http"

	"github.com/kbukum/deskhub/httpclient"
	"github.com/kbukum/deskhub/role"
)

// Set holds one Client per role. The clients share a cookie jar, as a
// browser shares cookies across the pages of one origin.
type Set struct {
	jar     http.CookieJar
	clients map[role.Role]*Client
}

// NewSet creates the clients of every role.
func NewSet(cfg Config, gw SessionGateway, opts ...Option) (*Set, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	jar := o.jar
	if jar == nil {
		var err error
		if jar, err = httpclient.NewCookieJar(); err != nil {
			return nil, err
		}
	}

	s := &Set{jar: jar, clients: make(map[role.Role]*Client, len(role.All()))}
	for _, r := range role.All() {
		c, err := New(r, cfg, gw, append(opts, WithJar(jar))...)
		if err != nil {
			return nil, fmt.Errorf("authclient: %s client: %w", r, err)
		}
		s.clients[r] = c
	}
	return s, nil
}

// For returns the client of r, or nil for an unknown role.
func (s *Set) For(r role.Role) *Client {
	return s.clients[r]
}

// Jar returns the shared cookie jar.
func (s *Set) Jar() http.CookieJar {
	return s.jar
}
