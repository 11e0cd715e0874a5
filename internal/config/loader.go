// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ManuGH/livegrab/internal/epg"
	"github.com/ManuGH/livegrab/internal/fetch"
	"github.com/ManuGH/livegrab/internal/locator"
	"gopkg.in/yaml.v3"
)

// Defaults that do not belong to a lower-level package.
const (
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "json"
	DefaultChannelsFile  = "channels.txt"
	DefaultTimezone      = "Europe/London"
	DefaultPlaylistPath  = "-"
	DefaultXMLTVPath     = "epg.xml"
	DefaultListen        = ":8080"
	DefaultInterval      = time.Hour
	DefaultRateLimit     = 60
	DefaultWatchChannels = true
	DefaultExporter      = "grpc"
	DefaultEndpoint      = "localhost:4317"
	DefaultEnvironment   = "production"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader. An empty configPath skips
// the file layer.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envInt64(key string, defaultVal int64) int64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt64(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

func (l *Loader) envList(key string, defaultVal []string) []string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseList(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults.
// Order: Defaults -> Parse File (Strict) -> Apply Env -> Resolve zone -> Validate.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		if err := l.mergeFileConfig(&cfg, fileCfg); err != nil {
			return cfg, fmt.Errorf("merge file config: %w", err)
		}
	}

	l.mergeEnvConfig(&cfg)
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return cfg, fmt.Errorf("%w: timezone %q: %v", ErrInvalid, cfg.Timezone, err)
	}
	cfg.Location = loc

	return cfg, nil
}

// Defaults returns the configuration used when neither file nor
// environment set a value.
func Defaults() AppConfig {
	return AppConfig{
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
		ChannelsFile: DefaultChannelsFile,
		Timezone:     DefaultTimezone,
		Playlist: PlaylistConfig{
			Path: DefaultPlaylistPath,
		},
		XMLTV: XMLTVConfig{
			Path:          DefaultXMLTVPath,
			GeneratorName: epg.DefaultGenerator,
			GeneratorURL:  epg.DefaultGeneratorURL,
			Lang:          epg.DefaultLang,
			TitlePrefix:   epg.DefaultTitlePrefix,
			Placeholder:   epg.DefaultPlaceholder,
		},
		Fetch: FetchConfig{
			Timeout:        fetch.DefaultTimeout,
			UserAgent:      fetch.DefaultUserAgent,
			AcceptLanguage: fetch.DefaultAcceptLanguage,
			MaxBodyBytes:   fetch.DefaultMaxBodyBytes,
		},
		Locator: LocatorConfig{
			Marker:        locator.DefaultMarker,
			Scheme:        locator.DefaultScheme,
			InitialWindow: locator.DefaultInitialWindow,
			Step:          locator.DefaultStep,
			MaxWindow:     locator.DefaultMaxWindow,
		},
		Serve: ServeConfig{
			Listen:    DefaultListen,
			Interval:  DefaultInterval,
			RateLimit: DefaultRateLimit,
			Watch:     DefaultWatchChannels,
		},
		Telemetry: TelemetryConfig{
			Exporter:     DefaultExporter,
			Endpoint:     DefaultEndpoint,
			SamplingRate: 1.0,
			Environment:  DefaultEnvironment,
		},
	}
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields will cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseFile(data)
}

// ParseFile decodes a single strict YAML document.
func ParseFile(data []byte) (*FileConfig, error) {
	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("%w: %v", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}

	return &fileCfg, nil
}
