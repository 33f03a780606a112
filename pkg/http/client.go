// Package http is the outbound HTTP client shared by service
// connectors. It wraps net/http with functional options, bearer auth
// and request logging as composable round-tripper wrappers, plus JSON
// and multipart call helpers.
package http

import (
	"net"
	"net/http"
	"time"
)

// Option tunes the underlying net/http client.
type Option func(*settings)

type settings struct {
	dialTimeout           time.Duration
	requestTimeout        time.Duration
	keepAlive             time.Duration
	responseHeaderTimeout time.Duration
	idleConnTimeout       time.Duration
	maxIdleConnsPerHost   int
	wrappers              []func(http.RoundTripper) http.RoundTripper
}

func defaultSettings() *settings {
	return &settings{
		dialTimeout:           10 * time.Second,
		requestTimeout:        60 * time.Second,
		keepAlive:             90 * time.Second,
		responseHeaderTimeout: 30 * time.Second,
		idleConnTimeout:       90 * time.Second,
		maxIdleConnsPerHost:   8,
	}
}

func WithDialTimeout(d time.Duration) Option {
	return func(s *settings) { s.dialTimeout = d }
}

// WithRequestTimeout bounds the whole call including body transfer.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *settings) { s.requestTimeout = d }
}

func WithKeepAlive(d time.Duration) Option {
	return func(s *settings) { s.keepAlive = d }
}

func WithResponseHeaderTimeout(d time.Duration) Option {
	return func(s *settings) { s.responseHeaderTimeout = d }
}

func WithIdleConnTimeout(d time.Duration) Option {
	return func(s *settings) { s.idleConnTimeout = d }
}

func WithMaxIdleConnsPerHost(n int) Option {
	return func(s *settings) { s.maxIdleConnsPerHost = n }
}

// WithRoundTripper stacks a transport wrapper; wrappers are applied in
// the order given, the last one sees the request first.
func WithRoundTripper(wrap func(http.RoundTripper) http.RoundTripper) Option {
	return func(s *settings) { s.wrappers = append(s.wrappers, wrap) }
}

func buildClient(opts ...Option) *http.Client {
	s := defaultSettings()
	for _, opt := range opts {
		opt(s)
	}

	dialer := &net.Dialer{
		Timeout:   s.dialTimeout,
		KeepAlive: s.keepAlive,
	}

	var rt http.RoundTripper = &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConnsPerHost:   s.maxIdleConnsPerHost,
		ResponseHeaderTimeout: s.responseHeaderTimeout,
		IdleConnTimeout:       s.idleConnTimeout,
	}
	for _, wrap := range s.wrappers {
		rt = wrap(rt)
	}

	return &http.Client{
		Timeout:   s.requestTimeout,
		Transport: rt,
	}
}
