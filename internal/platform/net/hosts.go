// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package net restricts which hosts the fetcher may contact.
package net

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// ErrHostNotAllowed indicates the URL's host is outside the allowlist.
var ErrHostNotAllowed = errors.New("host not allowed")

// NormalizeHost validates and normalizes a host for comparison. IDN labels
// are converted to their ASCII form.
func NormalizeHost(raw string) (string, error) {
	host := strings.TrimSpace(raw)
	if host == "" {
		return "", fmt.Errorf("host is empty")
	}
	if strings.Contains(host, "://") {
		return "", fmt.Errorf("host must not include scheme: %s", raw)
	}
	if strings.Contains(host, "/") {
		return "", fmt.Errorf("host must not include path: %s", raw)
	}
	if strings.Contains(host, "@") {
		return "", fmt.Errorf("host must not include userinfo: %s", raw)
	}
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	}
	if strings.Contains(host, ":") && net.ParseIP(host) == nil {
		return "", fmt.Errorf("host must not include port: %s", raw)
	}
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return "", fmt.Errorf("host is empty")
	}
	if ip := net.ParseIP(host); ip != nil {
		return strings.ToLower(ip.String()), nil
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("invalid host %q: %w", raw, err)
	}
	return strings.ToLower(ascii), nil
}

// HostPolicy is an allowlist of hosts. An entry "*.example.com" matches
// every subdomain of example.com but not example.com itself. A nil or empty
// policy allows every host.
type HostPolicy struct {
	exact    map[string]struct{}
	suffixes []string
}

// NewHostPolicy normalizes entries into a policy.
func NewHostPolicy(entries []string) (*HostPolicy, error) {
	p := &HostPolicy{exact: make(map[string]struct{}, len(entries))}
	for _, entry := range entries {
		wildcard := strings.HasPrefix(entry, "*.")
		host, err := NormalizeHost(strings.TrimPrefix(entry, "*."))
		if err != nil {
			return nil, err
		}
		if wildcard {
			p.suffixes = append(p.suffixes, "."+host)
			continue
		}
		p.exact[host] = struct{}{}
	}
	return p, nil
}

// Empty reports whether the policy allows every host.
func (p *HostPolicy) Empty() bool {
	return p == nil || (len(p.exact) == 0 && len(p.suffixes) == 0)
}

// Check returns ErrHostNotAllowed when rawURL's host is outside the policy.
func (p *HostPolicy) Check(rawURL string) error {
	if p.Empty() {
		return nil
	}
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	host, err := NormalizeHost(u.Hostname())
	if err != nil {
		return err
	}
	if _, ok := p.exact[host]; ok {
		return nil
	}
	for _, suffix := range p.suffixes {
		if strings.HasSuffix(host, suffix) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrHostNotAllowed, host)
}
