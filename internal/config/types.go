// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"net/netip"
	"strings"
	"time"
)

// FileConfig is the on-disk YAML shape. Pointer fields distinguish an
// explicit zero from an absent key.
type FileConfig struct {
	LogLevel     string `yaml:"logLevel,omitempty"`
	LogFormat    string `yaml:"logFormat,omitempty"`
	ChannelsFile string `yaml:"channelsFile,omitempty"`
	Timezone     string `yaml:"timezone,omitempty"`

	Playlist  PlaylistFileConfig  `yaml:"playlist,omitempty"`
	XMLTV     XMLTVFileConfig     `yaml:"xmltv,omitempty"`
	Fetch     FetchFileConfig     `yaml:"fetch,omitempty"`
	Locator   LocatorFileConfig   `yaml:"locator,omitempty"`
	Metrics   MetricsFileConfig   `yaml:"metrics,omitempty"`
	Serve     ServeFileConfig     `yaml:"serve,omitempty"`
	Telemetry TelemetryFileConfig `yaml:"telemetry,omitempty"`
}

// PlaylistFileConfig configures the M3U output.
type PlaylistFileConfig struct {
	Path          string        `yaml:"path,omitempty"` // "-" writes to stdout
	StaticEntries []StaticEntry `yaml:"staticEntries,omitempty"`
}

// StaticEntry is a fixed playlist item appended after the resolved channels.
type StaticEntry struct {
	Name      string `yaml:"name"`
	TvgID     string `yaml:"tvgId,omitempty"`
	ChannelID string `yaml:"channelId,omitempty"`
	Logo      string `yaml:"logo,omitempty"`
	Chno      int    `yaml:"chno,omitempty"`
	Group     string `yaml:"group,omitempty"`
	URL       string `yaml:"url"`
}

// XMLTVFileConfig configures the guide output.
type XMLTVFileConfig struct {
	Path          string `yaml:"path,omitempty"`
	GeneratorName string `yaml:"generatorName,omitempty"`
	GeneratorURL  string `yaml:"generatorUrl,omitempty"`
	Lang          string `yaml:"lang,omitempty"`
	TitlePrefix   string `yaml:"titlePrefix,omitempty"`
	Placeholder   string `yaml:"placeholder,omitempty"`
}

// FetchFileConfig configures page retrieval.
type FetchFileConfig struct {
	Timeout           string   `yaml:"timeout,omitempty"` // e.g. "15s"
	UserAgent         string   `yaml:"userAgent,omitempty"`
	AcceptLanguage    string   `yaml:"acceptLanguage,omitempty"`
	MaxBodyBytes      *int64   `yaml:"maxBodyBytes,omitempty"`
	RequestsPerSecond *float64 `yaml:"requestsPerSecond,omitempty"`
	AllowedHosts      []string `yaml:"allowedHosts,omitempty"` // "*.example.com" matches subdomains
}

// LocatorFileConfig tunes the manifest scan.
type LocatorFileConfig struct {
	Marker        string `yaml:"marker,omitempty"`
	Scheme        string `yaml:"scheme,omitempty"`
	InitialWindow *int   `yaml:"initialWindow,omitempty"`
	Step          *int   `yaml:"step,omitempty"`
	MaxWindow     *int   `yaml:"maxWindow,omitempty"`
}

// MetricsFileConfig configures the textfile dump.
type MetricsFileConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// ServeFileConfig configures the long-running mode.
type ServeFileConfig struct {
	Listen    string `yaml:"listen,omitempty"`
	Interval  string `yaml:"interval,omitempty"`
	RateLimit *int   `yaml:"rateLimit,omitempty"` // requests per minute per client
	Watch     *bool  `yaml:"watch,omitempty"`

	// RateLimitExempt lists client CIDRs, e.g. "192.168.0.0/16".
	RateLimitExempt []string `yaml:"rateLimitExempt,omitempty"`
}

// TelemetryFileConfig configures OTLP trace export.
type TelemetryFileConfig struct {
	Enabled      *bool    `yaml:"enabled,omitempty"`
	Exporter     string   `yaml:"exporter,omitempty"` // grpc|http
	Endpoint     string   `yaml:"endpoint,omitempty"`
	SamplingRate *float64 `yaml:"samplingRate,omitempty"`
	Environment  string   `yaml:"environment,omitempty"`
}

// AppConfig is the merged, validated runtime configuration.
type AppConfig struct {
	Version      string
	LogLevel     string
	LogFormat    string
	ChannelsFile string
	Timezone     string

	// Location is Timezone loaded by Load; never the host zone.
	Location *time.Location

	Playlist  PlaylistConfig
	XMLTV     XMLTVConfig
	Fetch     FetchConfig
	Locator   LocatorConfig
	Metrics   MetricsConfig
	Serve     ServeConfig
	Telemetry TelemetryConfig
}

type PlaylistConfig struct {
	Path          string
	StaticEntries []StaticEntry
}

type XMLTVConfig struct {
	Path          string
	GeneratorName string
	GeneratorURL  string
	Lang          string
	TitlePrefix   string
	Placeholder   string
}

type FetchConfig struct {
	Timeout           time.Duration
	UserAgent         string
	AcceptLanguage    string
	MaxBodyBytes      int64
	RequestsPerSecond float64
	AllowedHosts      []string
}

type LocatorConfig struct {
	Marker        string
	Scheme        string
	InitialWindow int
	Step          int
	MaxWindow     int
}

type MetricsConfig struct {
	Textfile string
}

type ServeConfig struct {
	Listen          string
	Interval        time.Duration
	RateLimit       int
	RateLimitExempt []string
	Watch           bool
}

// ExemptPrefixes parses RateLimitExempt. A bare address is taken as a
// single-host prefix; entries that do not parse are skipped, Validate
// reports them.
func (c ServeConfig) ExemptPrefixes() []netip.Prefix {
	out := make([]netip.Prefix, 0, len(c.RateLimitExempt))
	for _, entry := range c.RateLimitExempt {
		if p, err := parsePrefix(entry); err == nil {
			out = append(out, p)
		}
	}
	return out
}

func parsePrefix(entry string) (netip.Prefix, error) {
	entry = strings.TrimSpace(entry)
	if addr, err := netip.ParseAddr(entry); err == nil {
		return netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()), nil
	}
	p, err := netip.ParsePrefix(entry)
	if err != nil {
		return netip.Prefix{}, err
	}
	return p.Masked(), nil
}

type TelemetryConfig struct {
	Enabled      bool
	Exporter     string
	Endpoint     string
	SamplingRate float64
	Environment  string
}

// PlaylistToStdout reports whether the playlist goes to standard output.
func (c AppConfig) PlaylistToStdout() bool {
	return c.Playlist.Path == "-"
}
