// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/livegrab/internal/log"
)

// Run listens on the configured address and serves until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", d.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", d.config.ListenAddr, err)
	}
	return d.Serve(ctx, ln)
}

// Serve owns the runtime: the HTTP server on ln, the refresh loop, and the
// optional channel list watcher. It blocks until ctx is cancelled or the
// server fails.
func (d *Daemon) Serve(ctx context.Context, ln net.Listener) error {
	d.logger.Info().
		Str("listen", ln.Addr().String()).
		Dur("interval", d.config.Interval).
		Msg("starting livegrab daemon")

	d.initTelemetry(ctx)
	defer d.shutdownTelemetry()

	srv := &http.Server{
		Handler:        d.server.Handler(),
		ReadTimeout:    d.config.ReadTimeout,
		WriteTimeout:   d.config.WriteTimeout,
		IdleTimeout:    d.config.IdleTimeout,
		MaxHeaderBytes: d.config.MaxHeaderBytes,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), d.config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http: %w", err)
		}
		d.logger.Info().Msg("daemon stopped")
		return nil
	})

	// Watching is best-effort: a missing directory only disables change triggers.
	if d.config.WatchFile != "" {
		g.Go(func() error {
			if err := watchFile(ctx, d.logger, d.config.WatchFile, watchDebounce, d.Trigger); err != nil {
				d.logger.Warn().Err(err).Str(log.FieldEvent, "watcher.start_failed").Str(log.FieldPath, d.config.WatchFile).Msg("channel list watcher disabled")
			}
			return nil
		})
	}

	if d.reloadSignal != nil {
		g.Go(func() error {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, d.reloadSignal)
			defer signal.Stop(sigCh)
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-sigCh:
					d.Trigger("signal")
				}
			}
		})
	}

	g.Go(func() error {
		return d.refreshLoop(ctx)
	})

	return g.Wait()
}

func (d *Daemon) refreshLoop(ctx context.Context) error {
	d.refreshOnce(ctx, "startup")

	ticker := time.NewTicker(d.config.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.refreshOnce(ctx, "interval")
		case reason := <-d.triggers:
			d.refreshOnce(ctx, reason)
		}
	}
}

// refreshOnce runs one refresh. A failure keeps the previous documents served.
func (d *Daemon) refreshOnce(ctx context.Context, trigger string) {
	started := d.clock()
	artifacts, err := d.refresh(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		d.server.RecordFailure(started, err)
		d.logger.Error().
			Err(err).
			Str(log.FieldEvent, "refresh.failed").
			Str("trigger", trigger).
			Msg("refresh failed, keeping previous documents")
		return
	}
	d.server.Publish(artifacts)
	d.logger.Info().
		Str(log.FieldEvent, "refresh.published").
		Str("trigger", trigger).
		Str(log.FieldRunID, artifacts.Status.RunID).
		Int(log.FieldChannels, artifacts.Status.Channels).
		Msg("refresh published")
}
