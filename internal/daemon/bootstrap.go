// SPDX-License-Identifier: MIT

// Package daemon runs livegrab in serve mode: periodic refreshes feeding an
// HTTP server that publishes the latest playlist and guide.
package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/livegrab/internal/api"
	"github.com/ManuGH/livegrab/internal/config"
	"github.com/ManuGH/livegrab/internal/jobs"
	"github.com/ManuGH/livegrab/internal/log"
	"github.com/ManuGH/livegrab/internal/telemetry"
)

const (
	defaultInterval        = time.Hour
	defaultShutdownTimeout = 15 * time.Second
	watchDebounce          = 250 * time.Millisecond
)

// Config holds daemon configuration.
type Config struct {
	// Version is the build version
	Version string

	// ListenAddr is the HTTP server listen address
	ListenAddr string

	// Server timeouts
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// ShutdownTimeout is the graceful shutdown timeout
	ShutdownTimeout time.Duration

	// Interval between scheduled refreshes.
	Interval time.Duration

	// WatchFile triggers a refresh when it changes. Empty disables watching.
	WatchFile string

	Telemetry telemetry.Config
}

// ConfigFrom derives the daemon settings from the application config.
func ConfigFrom(app config.AppConfig) Config {
	cfg := Config{
		Version:         app.Version,
		ListenAddr:      app.Serve.Listen,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     120 * time.Second,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: defaultShutdownTimeout,
		Interval:        app.Serve.Interval,
		Telemetry: telemetry.Config{
			Enabled:        app.Telemetry.Enabled,
			ServiceName:    "livegrab",
			ServiceVersion: app.Version,
			Environment:    app.Telemetry.Environment,
			ExporterType:   app.Telemetry.Exporter,
			Endpoint:       app.Telemetry.Endpoint,
			SamplingRate:   app.Telemetry.SamplingRate,
		},
	}
	if app.Serve.Watch {
		cfg.WatchFile = app.ChannelsFile
	}
	return cfg
}

// RefreshFunc performs one refresh run.
type RefreshFunc func(ctx context.Context) (*jobs.Artifacts, error)

// Daemon represents the livegrab serve-mode instance.
type Daemon struct {
	config    Config
	server    *api.Server
	refresh   RefreshFunc
	logger    zerolog.Logger
	telemetry *telemetry.Provider
	clock     func() time.Time

	triggers     chan string
	reloadSignal os.Signal
}

// New creates a new daemon instance.
func New(cfg Config, server *api.Server, refresh RefreshFunc) (*Daemon, error) {
	if server == nil {
		return nil, ErrMissingAPIServer
	}
	if refresh == nil {
		return nil, ErrMissingRefresher
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	return &Daemon{
		config:       cfg,
		server:       server,
		refresh:      refresh,
		logger:       log.WithComponent("daemon"),
		clock:        time.Now,
		triggers:     make(chan string, 1),
		reloadSignal: syscall.SIGHUP,
	}, nil
}

// Trigger requests a refresh outside the schedule. Requests arriving while
// one is already pending are coalesced.
func (d *Daemon) Trigger(reason string) {
	select {
	case d.triggers <- reason:
	default:
	}
}

// initTelemetry initializes OpenTelemetry tracing. Failure is not fatal.
func (d *Daemon) initTelemetry(ctx context.Context) {
	if !d.config.Telemetry.Enabled {
		return
	}
	provider, err := telemetry.NewProvider(ctx, d.config.Telemetry)
	if err != nil {
		d.logger.Warn().Err(err).Str(log.FieldEvent, "telemetry.init_failed").Msg("telemetry initialization failed, continuing without tracing")
		return
	}
	d.telemetry = provider
	d.logger.Info().
		Str(log.FieldEvent, "telemetry.initialized").
		Str("endpoint", d.config.Telemetry.Endpoint).
		Float64("sampling_rate", d.config.Telemetry.SamplingRate).
		Msg("telemetry initialized")
}

func (d *Daemon) shutdownTelemetry() {
	if d.telemetry == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), d.config.ShutdownTimeout)
	defer cancel()
	if err := d.telemetry.Shutdown(ctx); err != nil {
		d.logger.Error().Err(err).Msg("telemetry shutdown error")
	}
}

// WaitForShutdown returns a context cancelled on interrupt or termination.
func WaitForShutdown() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
