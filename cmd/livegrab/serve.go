// SPDX-License-Identifier: MIT

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ManuGH/livegrab/internal/api"
	"github.com/ManuGH/livegrab/internal/config"
	"github.com/ManuGH/livegrab/internal/daemon"
	"github.com/ManuGH/livegrab/internal/jobs"
	xglog "github.com/ManuGH/livegrab/internal/log"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Refresh periodically and serve the playlist and guide over HTTP",
		Long: "Refresh on serve.interval and whenever the channel list changes. " +
			"The latest documents are served at /playlist.m3u and /epg.xml. " +
			"When playlist.path is \"-\" nothing is written to disk.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := root.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.Serve.Listen = listen
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			configureLogging(cfg, cmd.ErrOrStderr())
			logConfigSource(path)

			opts := jobs.Options{DryRun: cfg.PlaylistToStdout()}
			if opts.DryRun {
				logger := xglog.WithComponent("cli")
				logger.Info().
					Str(xglog.FieldEvent, "serve.memory_only").
					Msg("playlist.path is stdout, documents are served but not written")
			} else if err := config.Preflight(cfg); err != nil {
				return err
			}

			jobsCfg := jobs.ConfigFrom(cfg)
			deps, err := jobs.DepsFrom(cfg)
			if err != nil {
				return err
			}
			refresh := func(ctx context.Context) (*jobs.Artifacts, error) {
				return jobs.Run(ctx, jobsCfg, deps, opts)
			}

			srv := api.New(api.Options{
				RateLimit:       cfg.Serve.RateLimit,
				RateLimitExempt: cfg.Serve.ExemptPrefixes(),
			})
			d, err := daemon.New(daemon.ConfigFrom(cfg), srv, refresh)
			if err != nil {
				return err
			}
			return d.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides serve.listen)")
	return cmd
}
