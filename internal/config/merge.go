// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"time"
)

// mergeFileConfig applies every key present in the file over dst.
func (l *Loader) mergeFileConfig(dst *AppConfig, src *FileConfig) error {
	l.mergeFileCore(dst, src)
	l.mergeFilePlaylist(dst, src)
	l.mergeFileXMLTV(dst, src)
	if err := l.mergeFileFetch(dst, src); err != nil {
		return err
	}
	l.mergeFileLocator(dst, src)
	if src.Metrics.Textfile != "" {
		dst.Metrics.Textfile = expandEnv(src.Metrics.Textfile)
	}
	if err := l.mergeFileServe(dst, src); err != nil {
		return err
	}
	l.mergeFileTelemetry(dst, src)
	return nil
}

func (l *Loader) mergeFileCore(dst *AppConfig, src *FileConfig) {
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.LogFormat != "" {
		dst.LogFormat = src.LogFormat
	}
	if src.ChannelsFile != "" {
		dst.ChannelsFile = expandEnv(src.ChannelsFile)
	}
	if src.Timezone != "" {
		dst.Timezone = src.Timezone
	}
}

func (l *Loader) mergeFilePlaylist(dst *AppConfig, src *FileConfig) {
	if src.Playlist.Path != "" {
		dst.Playlist.Path = expandEnv(src.Playlist.Path)
	}
	if len(src.Playlist.StaticEntries) > 0 {
		dst.Playlist.StaticEntries = append([]StaticEntry(nil), src.Playlist.StaticEntries...)
	}
}

func (l *Loader) mergeFileXMLTV(dst *AppConfig, src *FileConfig) {
	x := src.XMLTV
	if x.Path != "" {
		dst.XMLTV.Path = expandEnv(x.Path)
	}
	if x.GeneratorName != "" {
		dst.XMLTV.GeneratorName = x.GeneratorName
	}
	if x.GeneratorURL != "" {
		dst.XMLTV.GeneratorURL = x.GeneratorURL
	}
	if x.Lang != "" {
		dst.XMLTV.Lang = x.Lang
	}
	if x.TitlePrefix != "" {
		dst.XMLTV.TitlePrefix = x.TitlePrefix
	}
	if x.Placeholder != "" {
		dst.XMLTV.Placeholder = x.Placeholder
	}
}

func (l *Loader) mergeFileFetch(dst *AppConfig, src *FileConfig) error {
	f := src.Fetch
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return fmt.Errorf("fetch.timeout: %w", err)
		}
		dst.Fetch.Timeout = d
	}
	if f.UserAgent != "" {
		dst.Fetch.UserAgent = f.UserAgent
	}
	if f.AcceptLanguage != "" {
		dst.Fetch.AcceptLanguage = f.AcceptLanguage
	}
	if f.MaxBodyBytes != nil {
		dst.Fetch.MaxBodyBytes = *f.MaxBodyBytes
	}
	if f.RequestsPerSecond != nil {
		dst.Fetch.RequestsPerSecond = *f.RequestsPerSecond
	}
	if len(f.AllowedHosts) > 0 {
		dst.Fetch.AllowedHosts = append([]string(nil), f.AllowedHosts...)
	}
	return nil
}

func (l *Loader) mergeFileLocator(dst *AppConfig, src *FileConfig) {
	lc := src.Locator
	if lc.Marker != "" {
		dst.Locator.Marker = lc.Marker
	}
	if lc.Scheme != "" {
		dst.Locator.Scheme = lc.Scheme
	}
	if lc.InitialWindow != nil {
		dst.Locator.InitialWindow = *lc.InitialWindow
	}
	if lc.Step != nil {
		dst.Locator.Step = *lc.Step
	}
	if lc.MaxWindow != nil {
		dst.Locator.MaxWindow = *lc.MaxWindow
	}
}

func (l *Loader) mergeFileServe(dst *AppConfig, src *FileConfig) error {
	s := src.Serve
	if s.Listen != "" {
		dst.Serve.Listen = s.Listen
	}
	if s.Interval != "" {
		d, err := time.ParseDuration(s.Interval)
		if err != nil {
			return fmt.Errorf("serve.interval: %w", err)
		}
		dst.Serve.Interval = d
	}
	if s.RateLimit != nil {
		dst.Serve.RateLimit = *s.RateLimit
	}
	if s.Watch != nil {
		dst.Serve.Watch = *s.Watch
	}
	if len(s.RateLimitExempt) > 0 {
		dst.Serve.RateLimitExempt = append([]string(nil), s.RateLimitExempt...)
	}
	return nil
}

func (l *Loader) mergeFileTelemetry(dst *AppConfig, src *FileConfig) {
	t := src.Telemetry
	if t.Enabled != nil {
		dst.Telemetry.Enabled = *t.Enabled
	}
	if t.Exporter != "" {
		dst.Telemetry.Exporter = t.Exporter
	}
	if t.Endpoint != "" {
		dst.Telemetry.Endpoint = t.Endpoint
	}
	if t.SamplingRate != nil {
		dst.Telemetry.SamplingRate = *t.SamplingRate
	}
	if t.Environment != "" {
		dst.Telemetry.Environment = t.Environment
	}
}

// mergeEnvConfig merges LIVEGRAB_* environment variables into cfg.
// ENV variables have the highest precedence.
func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.LogLevel = l.envString(EnvPrefix+"LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = l.envString(EnvPrefix+"LOG_FORMAT", cfg.LogFormat)
	cfg.ChannelsFile = l.envString(EnvPrefix+"CHANNELS_FILE", cfg.ChannelsFile)
	cfg.Timezone = l.envString(EnvPrefix+"TIMEZONE", cfg.Timezone)

	cfg.Playlist.Path = l.envString(EnvPrefix+"PLAYLIST_PATH", cfg.Playlist.Path)

	cfg.XMLTV.Path = l.envString(EnvPrefix+"XMLTV_PATH", cfg.XMLTV.Path)
	cfg.XMLTV.GeneratorName = l.envString(EnvPrefix+"XMLTV_GENERATOR_NAME", cfg.XMLTV.GeneratorName)
	cfg.XMLTV.GeneratorURL = l.envString(EnvPrefix+"XMLTV_GENERATOR_URL", cfg.XMLTV.GeneratorURL)
	cfg.XMLTV.Lang = l.envString(EnvPrefix+"XMLTV_LANG", cfg.XMLTV.Lang)

	cfg.Fetch.Timeout = l.envDuration(EnvPrefix+"FETCH_TIMEOUT", cfg.Fetch.Timeout)
	cfg.Fetch.UserAgent = l.envString(EnvPrefix+"FETCH_USER_AGENT", cfg.Fetch.UserAgent)
	cfg.Fetch.AcceptLanguage = l.envString(EnvPrefix+"FETCH_ACCEPT_LANGUAGE", cfg.Fetch.AcceptLanguage)
	cfg.Fetch.MaxBodyBytes = l.envInt64(EnvPrefix+"FETCH_MAX_BODY_BYTES", cfg.Fetch.MaxBodyBytes)
	cfg.Fetch.RequestsPerSecond = l.envFloat(EnvPrefix+"FETCH_RPS", cfg.Fetch.RequestsPerSecond)
	cfg.Fetch.AllowedHosts = l.envList(EnvPrefix+"FETCH_ALLOWED_HOSTS", cfg.Fetch.AllowedHosts)

	cfg.Locator.MaxWindow = l.envInt(EnvPrefix+"LOCATOR_MAX_WINDOW", cfg.Locator.MaxWindow)

	cfg.Metrics.Textfile = l.envString(EnvPrefix+"METRICS_TEXTFILE", cfg.Metrics.Textfile)

	cfg.Serve.Listen = l.envString(EnvPrefix+"LISTEN", cfg.Serve.Listen)
	cfg.Serve.Interval = l.envDuration(EnvPrefix+"REFRESH_INTERVAL", cfg.Serve.Interval)
	cfg.Serve.RateLimit = l.envInt(EnvPrefix+"RATELIMIT", cfg.Serve.RateLimit)
	cfg.Serve.RateLimitExempt = l.envList(EnvPrefix+"RATELIMIT_EXEMPT", cfg.Serve.RateLimitExempt)
	cfg.Serve.Watch = l.envBool(EnvPrefix+"WATCH", cfg.Serve.Watch)

	cfg.Telemetry.Enabled = l.envBool(EnvPrefix+"TELEMETRY_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Endpoint = l.envString(EnvPrefix+"TELEMETRY_ENDPOINT", cfg.Telemetry.Endpoint)
}
