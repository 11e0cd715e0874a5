// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ManuGH/livegrab/internal/config"
	"github.com/ManuGH/livegrab/internal/jobs"
	xglog "github.com/ManuGH/livegrab/internal/log"
	"github.com/ManuGH/livegrab/internal/metrics"
)

type runOptions struct {
	channels string
	playlist string
	xmltv    string
	dryRun   bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	o := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Refresh once and write the playlist and guide",
		Long: "Resolve every channel source once, then write the M3U playlist " +
			"and the XMLTV guide. With --playlist - the playlist goes to stdout.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := root.load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("channels") {
				cfg.ChannelsFile = o.channels
			}
			if flags.Changed("playlist") {
				cfg.Playlist.Path = o.playlist
			}
			if flags.Changed("xmltv") {
				cfg.XMLTV.Path = o.xmltv
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			configureLogging(cfg, cmd.ErrOrStderr())
			logConfigSource(path)

			if !o.dryRun {
				if err := config.Preflight(cfg); err != nil {
					return err
				}
			}

			deps, err := jobs.DepsFrom(cfg)
			if err != nil {
				return err
			}
			deps.Stdout = cmd.OutOrStdout()
			opts := jobs.Options{DryRun: o.dryRun}
			if o.dryRun {
				opts.PlaylistOut = cmd.OutOrStdout()
			}

			_, runErr := jobs.Run(cmd.Context(), jobs.ConfigFrom(cfg), deps, opts)

			// The textfile reflects failed runs too.
			if cfg.Metrics.Textfile != "" {
				if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
					logger := xglog.WithComponent("cli")
					logger.Warn().
						Err(err).
						Str(xglog.FieldEvent, "metrics.textfile_failed").
						Str(xglog.FieldPath, cfg.Metrics.Textfile).
						Msg("metrics textfile not written")
				}
			}
			if runErr != nil {
				return fmt.Errorf("refresh: %w", runErr)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&o.channels, "channels", "", "channel list to read (overrides channelsFile)")
	flags.StringVar(&o.playlist, "playlist", "", `playlist output path, "-" for stdout (overrides playlist.path)`)
	flags.StringVar(&o.xmltv, "xmltv", "", "guide output path (overrides xmltv.path)")
	flags.BoolVar(&o.dryRun, "dry-run", false, "render the playlist to stdout and write nothing")
	return cmd
}
