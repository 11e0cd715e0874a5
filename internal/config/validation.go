// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"

	netx "github.com/ManuGH/livegrab/internal/platform/net"
	"github.com/ManuGH/livegrab/internal/validate"
)

// Validate checks a merged configuration. Failures wrap ErrInvalid and
// carry every offending field.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.Choice("logLevel", cfg.LogLevel, validate.LogLevels)
	v.Choice("logFormat", cfg.LogFormat, validate.LogFormats)
	v.NotEmpty("channelsFile", cfg.ChannelsFile)
	v.Timezone("timezone", cfg.Timezone)

	v.NotEmpty("playlist.path", cfg.Playlist.Path)
	for i, e := range cfg.Playlist.StaticEntries {
		field := fmt.Sprintf("playlist.staticEntries[%d]", i)
		v.NotEmpty(field+".name", e.Name)
		v.StreamURL(field+".url", e.URL)
		v.NonNegative(field+".chno", e.Chno)
	}

	v.NotEmpty("xmltv.path", cfg.XMLTV.Path)
	if cfg.XMLTV.Path == "-" {
		v.AddError("xmltv.path", "the guide must be written to a file", cfg.XMLTV.Path)
	}
	v.NotEmpty("xmltv.generatorName", cfg.XMLTV.GeneratorName)
	if cfg.XMLTV.GeneratorURL != "" {
		v.URL("xmltv.generatorUrl", cfg.XMLTV.GeneratorURL, []string{"http", "https"})
	}
	v.NotEmpty("xmltv.lang", cfg.XMLTV.Lang)

	v.PositiveDuration("fetch.timeout", cfg.Fetch.Timeout)
	if cfg.Fetch.MaxBodyBytes <= 0 {
		v.AddError("fetch.maxBodyBytes", fmt.Sprintf("value must be positive, got %d", cfg.Fetch.MaxBodyBytes), cfg.Fetch.MaxBodyBytes)
	}
	if cfg.Fetch.RequestsPerSecond < 0 {
		v.AddError("fetch.requestsPerSecond", "value cannot be negative", cfg.Fetch.RequestsPerSecond)
	}
	if _, err := netx.NewHostPolicy(cfg.Fetch.AllowedHosts); err != nil {
		v.AddError("fetch.allowedHosts", err.Error(), cfg.Fetch.AllowedHosts)
	}

	v.NotEmpty("locator.marker", cfg.Locator.Marker)
	v.NotEmpty("locator.scheme", cfg.Locator.Scheme)
	v.Positive("locator.initialWindow", cfg.Locator.InitialWindow)
	v.Positive("locator.step", cfg.Locator.Step)
	if cfg.Locator.MaxWindow < cfg.Locator.InitialWindow {
		v.AddError("locator.maxWindow",
			fmt.Sprintf("must be >= initialWindow (%d), got %d", cfg.Locator.InitialWindow, cfg.Locator.MaxWindow),
			cfg.Locator.MaxWindow)
	}

	v.ListenAddr("serve.listen", cfg.Serve.Listen)
	v.PositiveDuration("serve.interval", cfg.Serve.Interval)
	v.NonNegative("serve.rateLimit", cfg.Serve.RateLimit)
	for i, entry := range cfg.Serve.RateLimitExempt {
		if _, err := parsePrefix(entry); err != nil {
			v.AddError(fmt.Sprintf("serve.rateLimitExempt[%d]", i), "must be an IP address or CIDR", entry)
		}
	}

	if cfg.Telemetry.Enabled {
		v.Choice("telemetry.exporter", cfg.Telemetry.Exporter, validate.Exporters)
		v.NotEmpty("telemetry.endpoint", cfg.Telemetry.Endpoint)
		if cfg.Telemetry.SamplingRate < 0 || cfg.Telemetry.SamplingRate > 1 {
			v.AddError("telemetry.samplingRate", "value must be between 0 and 1", cfg.Telemetry.SamplingRate)
		}
	}

	if err := v.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Preflight checks the filesystem the configuration points at: the channel
// list must be readable and the output directories must exist. It is kept
// apart from Validate so configuration can be checked on another host.
func Preflight(cfg AppConfig) error {
	v := validate.New()
	v.File("channelsFile", cfg.ChannelsFile)
	v.OutputPath("playlist.path", cfg.Playlist.Path, true)
	v.OutputPath("xmltv.path", cfg.XMLTV.Path, false)
	if cfg.Metrics.Textfile != "" {
		v.OutputPath("metrics.textfile", cfg.Metrics.Textfile, false)
	}
	if err := v.Err(); err != nil {
		return fmt.Errorf("preflight: %w", err)
	}
	return nil
}
