// SPDX-License-Identifier: MIT

// Package fetch retrieves channel source pages.
package fetch

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/time/rate"

	"github.com/ManuGH/livegrab/internal/platform/httpx"
	netx "github.com/ManuGH/livegrab/internal/platform/net"
)

const (
	DefaultTimeout        = 15 * time.Second
	DefaultMaxBodyBytes   = 8 << 20
	DefaultUserAgent      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	DefaultAcceptLanguage = "en-GB,en;q=0.9"
)

// Page is the outcome of a single GET. A non-200 StatusCode is not an error.
type Page struct {
	URL        string
	StatusCode int
	Body       string
	Truncated  bool
}

// OK reports whether the page was served with 200.
func (p Page) OK() bool { return p.StatusCode == http.StatusOK }

// Options configures a Fetcher. Zero values take the defaults.
type Options struct {
	Timeout           time.Duration
	UserAgent         string
	AcceptLanguage    string
	MaxBodyBytes      int64
	RequestsPerSecond float64          // 0 disables spacing
	Hosts             *netx.HostPolicy // nil allows every host
	Client            *http.Client     // optional, overrides Timeout and redirect checks
}

// Fetcher issues one blocking GET per call. There are no retries.
type Fetcher struct {
	client       *http.Client
	userAgent    string
	acceptLang   string
	maxBodyBytes int64
	hosts        *netx.HostPolicy
	limiter      *rate.Limiter
}

// New builds a Fetcher from opts.
func New(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.AcceptLanguage == "" {
		opts.AcceptLanguage = DefaultAcceptLanguage
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	client := opts.Client
	if client == nil {
		client = httpx.NewClient(httpx.ClientOptions{
			Timeout: opts.Timeout,
			AllowRedirect: func(u *url.URL) error {
				return opts.Hosts.Check(u.String())
			},
		})
	}

	f := &Fetcher{
		client:       client,
		userAgent:    opts.UserAgent,
		acceptLang:   opts.AcceptLanguage,
		maxBodyBytes: opts.MaxBodyBytes,
		hosts:        opts.Hosts,
	}
	if opts.RequestsPerSecond > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return f
}

// TrimURL drops everything from the first '&', removing playlist and
// timestamp parameters from watch URLs.
func TrimURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if i := strings.IndexByte(rawURL, '&'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

// Fetch retrieves rawURL. Transport failures are returned as errors; HTTP
// error statuses are reported through Page.StatusCode.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	target := TrimURL(rawURL)
	page := Page{URL: target}

	if err := f.hosts.Check(target); err != nil {
		return page, err
	}
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return page, fmt.Errorf("wait for rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return page, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", f.acceptLang)
	req.Header.Set("Accept-Encoding", "br, gzip")

	resp, err := f.client.Do(req)
	if err != nil {
		return page, fmt.Errorf("get %s: %w", target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	page.StatusCode = resp.StatusCode
	decoded, err := decodeBody(resp)
	if err != nil {
		return page, fmt.Errorf("decode body of %s: %w", target, err)
	}
	body, err := io.ReadAll(io.LimitReader(decoded, f.maxBodyBytes+1))
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return page, fmt.Errorf("read body of %s: %w", target, err)
	}
	if int64(len(body)) > f.maxBodyBytes {
		body = body[:f.maxBodyBytes]
		page.Truncated = true
	}
	page.Body = string(body)
	return page, nil
}

// decodeBody undoes the Content-Encoding negotiated by Fetch. Setting
// Accept-Encoding explicitly turns off the transport's own gzip handling.
func decodeBody(resp *http.Response) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "br":
		return brotli.NewReader(resp.Body), nil
	case "gzip":
		return gzip.NewReader(resp.Body)
	default:
		return resp.Body, nil
	}
}
