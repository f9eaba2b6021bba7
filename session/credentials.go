package session

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kbukum/deskhub/role"
)

// Credential is a cookie kept beside a session so another process can
// resume it. Cookie jars do not expose path or expiry, so a restored
// credential is scoped to the whole host and lives until the jar is gone.
type Credential struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CredentialStore persists the credential cookies of each role.
type CredentialStore interface {
	SaveCredentials(ctx context.Context, r role.Role, creds []Credential) error
	Credentials(ctx context.Context, r role.Role) ([]Credential, error)
}

// SaveJar stores the cookies jar would send to u as r's credentials.
func SaveJar(ctx context.Context, store CredentialStore, r role.Role, jar http.CookieJar, u *url.URL) error {
	cookies := jar.Cookies(u)
	creds := make([]Credential, 0, len(cookies))
	for _, c := range cookies {
		creds = append(creds, Credential{Name: c.Name, Value: c.Value})
	}
	return store.SaveCredentials(ctx, r, creds)
}

// RestoreJar loads r's credentials into jar for u's host. It reports
// whether any were found.
func RestoreJar(ctx context.Context, store CredentialStore, r role.Role, jar http.CookieJar, u *url.URL) (bool, error) {
	creds, err := store.Credentials(ctx, r)
	if err != nil || len(creds) == 0 {
		return false, err
	}
	cookies := make([]*http.Cookie, 0, len(creds))
	for _, c := range creds {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	jar.SetCookies(u, cookies)
	return true, nil
}
