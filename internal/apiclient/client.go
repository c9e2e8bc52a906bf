// Package apiclient talks to the finance API: it resolves URLs, attaches the
// session's bearer token and encodes JSON bodies.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rogerio-castellano/finance-dashboard/internal/session"
)

type Client struct {
	baseURL  string
	http     *http.Client
	sessions session.Store
	log      logrus.FieldLogger
}

type Option func(*Client)

// WithHTTPClient replaces the default client. Requests carry no client-side
// timeout unless the given client sets one.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) {
		c.log = log.WithField("component", "apiclient")
	}
}

func New(baseURL string, sessions session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{},
		sessions: sessions,
		log:      logrus.StandardLogger().WithField("component", "apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request sends one call and hands back the raw response. It does not retry
// and does not look at the status code; use CheckStatus for that. The caller
// must close the response body.
func (c *Client) Request(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &RequestError{Endpoint: path, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	s, ok, err := c.sessions.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if ok && s.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithError(err).WithField("method", method).WithField("path", path).Warn("ApiClient.Request.Failed")
		return nil, &RequestError{Endpoint: path, Err: err}
	}

	c.log.WithField("method", method).WithField("path", path).WithField("status", resp.StatusCode).Debug("ApiClient.Request.Complete")
	return resp, nil
}

// do runs a request, enforces the status rule and decodes the body into out
// when out is non-nil. The body is always drained and closed.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.Request(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	endpoint := path
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}
	if err := CheckStatus(resp, endpoint); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}
