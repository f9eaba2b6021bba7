package authclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kbukum/deskhub/httpclient"
)

// RequestOption customises a request built by the method helpers.
type RequestOption func(*httpclient.Request)

// WithQuery adds query values. Several values for one key are sent as
// repeated keys.
func WithQuery(key string, values ...string) RequestOption {
	return func(r *httpclient.Request) {
		if r.Query == nil {
			r.Query = url.Values{}
		}
		for _, v := range values {
			r.Query.Add(key, v)
		}
	}
}

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(r *httpclient.Request) {
		if r.Headers == nil {
			r.Headers = make(map[string]string, 1)
		}
		r.Headers[key] = value
	}
}

// WithBody sets the request body.
func WithBody(body any) RequestOption {
	return func(r *httpclient.Request) { r.Body = body }
}

// Get sends GET {base}{path}.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*httpclient.Response, error) {
	return c.Do(ctx, buildRequest(http.MethodGet, path, nil, opts))
}

// Post sends POST {base}{path} with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*httpclient.Response, error) {
	return c.Do(ctx, buildRequest(http.MethodPost, path, body, opts))
}

// Put sends PUT {base}{path} with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*httpclient.Response, error) {
	return c.Do(ctx, buildRequest(http.MethodPut, path, body, opts))
}

// Patch sends PATCH {base}{path} with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any, opts ...RequestOption) (*httpclient.Response, error) {
	return c.Do(ctx, buildRequest(http.MethodPatch, path, body, opts))
}

// Delete sends DELETE {base}{path}.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (*httpclient.Response, error) {
	return c.Do(ctx, buildRequest(http.MethodDelete, path, nil, opts))
}

func buildRequest(method, path string, body any, opts []RequestOption) httpclient.Request {
	req := httpclient.Request{Method: method, Path: path, Body: body}
	for _, opt := range opts {
		opt(&req)
	}
	return req
}

// Envelope is the backend's response wrapper.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// DecodeJSON decodes an enveloped response body.
func DecodeJSON[T any](resp *httpclient.Response) (*Envelope[T], error) {
	if resp == nil {
		return nil, fmt.Errorf("authclient: nil response")
	}
	var env Envelope[T]
	if err := resp.JSON(&env); err != nil {
		return nil, fmt.Errorf("authclient: decode %d response: %w", resp.StatusCode, err)
	}
	return &env, nil
}

// GetJSON sends GET {base}{path} and decodes the enveloped response.
func GetJSON[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) (*Envelope[T], error) {
	resp, err := c.Get(ctx, path, opts...)
	if err != nil {
		return nil, err
	}
	return DecodeJSON[T](resp)
}

// PostJSON sends POST {base}{path} and decodes the enveloped response.
func PostJSON[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (*Envelope[T], error) {
	resp, err := c.Post(ctx, path, body, opts...)
	if err != nil {
		return nil, err
	}
	return DecodeJSON[T](resp)
}
