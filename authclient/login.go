package authclient

import (
	"context"
	"net/http"

	"github.com/kbukum/deskhub/httpclient"
)

// Login posts credentials to {base}/login. The backend answers with the
// session cookies, which land in the client's jar. Login bypasses failure
// handling: a rejected login is returned as is and never refreshes or
// terminates the session.
func (c *Client) Login(ctx context.Context, email, password string) (*httpclient.Response, error) {
	return c.http.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/login",
		Body:   map[string]string{"email": email, "password": password},
	})
}

// Logout posts to {base}/logout, which revokes the session server-side and
// clears the cookies. Like Login it bypasses failure handling.
func (c *Client) Logout(ctx context.Context) (*httpclient.Response, error) {
	return c.http.Do(ctx, httpclient.Request{Method: http.MethodPost, Path: "/logout"})
}
