// SPDX-License-Identifier: MIT

// Package httpx builds the outbound HTTP client used to fetch channel pages.
package httpx

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultTimeout      = 15 * time.Second
	DefaultMaxRedirects = 5

	maxDialTimeout        = 5 * time.Second
	maxHeaderTimeout      = 10 * time.Second
	idleConnTimeout       = 30 * time.Second
	maxIdleConns          = 16
	maxIdleConnsPerHost   = 4
	expectContinueTimeout = time.Second
)

// ErrTooManyRedirects is returned when a page redirects more than
// ClientOptions.MaxRedirects times.
var ErrTooManyRedirects = errors.New("too many redirects")

// ClientOptions configures NewClient. Zero values take the defaults.
type ClientOptions struct {
	Timeout      time.Duration
	MaxRedirects int

	// AllowRedirect vets every redirect target. Watch pages commonly
	// bounce through consent and regional hosts, so each hop is checked
	// against the same policy as the original URL.
	AllowRedirect func(*url.URL) error
}

// NewTransport returns the transport underlying NewClient. Dial and
// response-header timeouts are capped so one stalled host cannot hold a
// sequential refresh for the whole timeout. Compression is left to the
// caller, which negotiates brotli as well as gzip.
func NewTransport(timeout time.Duration) *http.Transport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	dial := min(timeout, maxDialTimeout)

	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: dial, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		DisableCompression:    true,
		MaxIdleConns:          maxIdleConns,
		MaxIdleConnsPerHost:   maxIdleConnsPerHost,
		IdleConnTimeout:       idleConnTimeout,
		TLSHandshakeTimeout:   dial,
		ResponseHeaderTimeout: min(timeout, maxHeaderTimeout),
		ExpectContinueTimeout: expectContinueTimeout,
	}
}

// NewClient returns the page client. Requests are traced with otelhttp as
// "GET <host>" client spans, which are no-ops unless a provider is installed.
func NewClient(opts ClientOptions) *http.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = DefaultMaxRedirects
	}
	return &http.Client{
		Timeout: opts.Timeout,
		Transport: otelhttp.NewTransport(NewTransport(opts.Timeout),
			otelhttp.WithSpanNameFormatter(spanName),
		),
		CheckRedirect: redirectPolicy(opts.MaxRedirects, opts.AllowRedirect),
	}
}

func spanName(_ string, r *http.Request) string {
	return r.Method + " " + r.URL.Host
}

func redirectPolicy(limit int, allow func(*url.URL) error) func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if len(via) > limit {
			return fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, limit)
		}
		if allow != nil {
			if err := allow(req.URL); err != nil {
				return fmt.Errorf("redirect to %s: %w", req.URL.Redacted(), err)
			}
		}
		return nil
	}
}
