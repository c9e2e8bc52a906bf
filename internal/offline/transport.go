// Package offline keeps the dashboard readable when the API is unreachable.
// Requests always go to the network first; a cached copy is served only when
// the network call itself fails.
package offline

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// FallbackHeader marks responses served from the cache.
const FallbackHeader = "X-Offline-Fallback"

type Transport struct {
	Base  http.RoundTripper
	Cache Cache
	// Remember stores successful GET responses so later failures have
	// something to fall back on.
	Remember bool
	Log      logrus.FieldLogger
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) logger() logrus.FieldLogger {
	if t.Log != nil {
		return t.Log
	}
	return logrus.StandardLogger()
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base().RoundTrip(req)
	if err == nil {
		if t.Remember && t.cacheable(req) && resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			return t.remember(req, resp)
		}
		return resp, nil
	}

	// a cancelled caller is not an offline network
	if !t.cacheable(req) || req.Context().Err() != nil {
		return nil, err
	}

	cached, ok, cerr := t.Cache.Get(req.Context(), Key(req))
	if cerr != nil {
		t.logger().WithError(cerr).Warn("Offline.Fallback.CacheError")
		return nil, err
	}
	if !ok {
		return nil, err
	}

	t.logger().WithField("url", req.URL.Path).WithError(err).Info("Offline.Fallback.Served")
	return cached.response(req), nil
}

func (t *Transport) cacheable(req *http.Request) bool {
	return t.Cache != nil && req.Method == http.MethodGet
}

func (t *Transport) remember(req *http.Request, resp *http.Response) (*http.Response, error) {
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	entry := CachedResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
		StoredAt:   time.Now(),
	}
	if err := t.Cache.Put(req.Context(), Key(req), entry); err != nil {
		t.logger().WithError(err).Warn("Offline.Remember.Failed")
	}
	return resp, nil
}

type Option func(*Transport)

func WithRemember(remember bool) Option {
	return func(t *Transport) { t.Remember = remember }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(t *Transport) { t.Log = log.WithField("component", "offline") }
}

// Install wraps the client's transport. Every user of c goes through the
// fallback from then on. Installing twice returns the existing Transport.
func Install(c *http.Client, cache Cache, opts ...Option) *Transport {
	if existing, ok := c.Transport.(*Transport); ok {
		return existing
	}

	t := &Transport{Base: c.Transport, Cache: cache}
	for _, opt := range opts {
		opt(t)
	}
	c.Transport = t
	return t
}
