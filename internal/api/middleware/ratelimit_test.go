// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

func hit(h http.Handler, path, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_EnforcesLimit(t *testing.T) {
	limited := RateLimit(RateLimitConfig{PerWindow: 3, Window: time.Minute})(okHandler())
	before := testutil.ToFloat64(rateLimitedTotal.WithLabelValues("/playlist.m3u"))

	for i := range 3 {
		rec := hit(limited, "/playlist.m3u", "192.168.1.1:12345")
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec := hit(limited, "/playlist.m3u", "192.168.1.1:12345")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate_limit_exceeded","retry_after_seconds":60}`, rec.Body.String())
	assert.Equal(t, before+1, testutil.ToFloat64(rateLimitedTotal.WithLabelValues("/playlist.m3u")))
}

func TestRateLimit_PerClient(t *testing.T) {
	limited := RateLimit(RateLimitConfig{PerWindow: 1})(okHandler())

	for _, addr := range []string{"10.0.0.1:1000", "10.0.0.2:1000"} {
		assert.Equal(t, http.StatusOK, hit(limited, "/epg.xml", addr).Code, addr)
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(limited, "/epg.xml", "10.0.0.1:2000").Code)
}

func TestRateLimit_Exempt(t *testing.T) {
	limited := RateLimit(RateLimitConfig{
		PerWindow: 1,
		Exempt:    []netip.Prefix{netip.MustParsePrefix("192.168.0.0/16"), netip.MustParsePrefix("::1/128")},
	})(okHandler())

	for range 5 {
		assert.Equal(t, http.StatusOK, hit(limited, "/epg.xml", "192.168.1.20:5000").Code)
		assert.Equal(t, http.StatusOK, hit(limited, "/epg.xml", "[::1]:5000").Code)
	}
	assert.Equal(t, http.StatusOK, hit(limited, "/epg.xml", "10.1.1.1:5000").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(limited, "/epg.xml", "10.1.1.1:5000").Code)
}

func TestRateLimit_ZeroDisables(t *testing.T) {
	limited := RateLimit(RateLimitConfig{})(okHandler())
	for i := range 50 {
		require.Equal(t, http.StatusOK, hit(limited, "/epg.xml", "10.0.0.1:1000").Code, "request %d", i)
	}
}

func TestExempt(t *testing.T) {
	lan := []netip.Prefix{netip.MustParsePrefix("192.168.0.0/16")}
	tests := []struct {
		remote string
		want   bool
	}{
		{"192.168.4.4:80", true},
		{"[::ffff:192.168.4.4]:80", true},
		{"192.168.4.4", true},
		{"10.0.0.1:80", false},
		{"not-an-ip:80", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, exempt(lan, tt.remote), tt.remote)
	}
	assert.False(t, exempt(nil, "192.168.4.4:80"))
}
