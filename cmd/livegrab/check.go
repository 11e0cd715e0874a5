// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ManuGH/livegrab/internal/channels"
	"github.com/ManuGH/livegrab/internal/config"
	"github.com/ManuGH/livegrab/internal/epg"
)

func newCheckCmd(root *rootOptions) *cobra.Command {
	var guide bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and the channel list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			cfg, _, err := root.load()
			if err != nil {
				return err
			}
			if err := config.Preflight(cfg); err != nil {
				return err
			}

			list, err := channels.Load(cfg.ChannelsFile)
			if err != nil {
				return fmt.Errorf("%s: %w", cfg.ChannelsFile, err)
			}
			sources := 0
			for _, ch := range list {
				sources += len(ch.Sources)
				if len(ch.Sources) == 0 {
					_, _ = fmt.Fprintf(out, "warning: channel %q (%s) has no sources\n", ch.Name, ch.ID)
				}
			}
			_, _ = fmt.Fprintf(out, "config ok: %d channels, %d sources, timezone %s\n", len(list), sources, cfg.Location)

			if guide {
				tv, err := epg.ReadFile(cfg.XMLTV.Path)
				if err != nil {
					return fmt.Errorf("%s: %w", cfg.XMLTV.Path, err)
				}
				_, _ = fmt.Fprintf(out, "guide ok: %d channels, %d programmes\n", len(tv.Channels), len(tv.Programs))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&guide, "guide", false, "also parse the guide at xmltv.path")
	return cmd
}
