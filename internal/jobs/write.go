// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"fmt"

	"github.com/ManuGH/livegrab/internal/epg"
	xglog "github.com/ManuGH/livegrab/internal/log"
	"github.com/ManuGH/livegrab/internal/playlist"
)

// writeOutputs emits the playlist first, then the guide. Files are replaced
// atomically so readers never observe a partial document.
func writeOutputs(ctx context.Context, cfg Config, deps Deps, opts Options, items []playlist.Item, guide *epg.TV) error {
	logger := xglog.FromContext(ctx)

	if opts.DryRun {
		if err := playlist.WriteM3U(orDiscard(opts.PlaylistOut), items); err != nil {
			return fmt.Errorf("render playlist: %w", err)
		}
		if err := epg.Encode(orDiscard(opts.GuideOut), guide); err != nil {
			return fmt.Errorf("render guide: %w", err)
		}
		logger.Info().
			Str(xglog.FieldEvent, "refresh.dry_run").
			Int(xglog.FieldChannels, len(guide.Channels)).
			Msg("dry run, outputs not written")
		return nil
	}

	if err := writePlaylist(cfg, deps, items); err != nil {
		deps.Metrics.IncRefreshFailure(StageWriteM3U)
		logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "playlist.failed").
			Str(xglog.FieldPlaylistPath, cfg.PlaylistPath).
			Msg("playlist write failed")
		return err
	}
	logger.Info().
		Str(xglog.FieldEvent, "playlist.written").
		Str(xglog.FieldPlaylistPath, cfg.PlaylistPath).
		Int(xglog.FieldChannels, len(items)).
		Msg("playlist written")

	if err := epg.WriteFile(cfg.XMLTVPath, guide); err != nil {
		deps.Metrics.IncRefreshFailure(StageWriteXMLTV)
		logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "xmltv.failed").
			Str(xglog.FieldXMLTVPath, cfg.XMLTVPath).
			Msg("XMLTV write failed")
		return fmt.Errorf("write guide: %w", err)
	}
	logger.Info().
		Str(xglog.FieldEvent, "xmltv.written").
		Str(xglog.FieldXMLTVPath, cfg.XMLTVPath).
		Int(xglog.FieldChannels, len(guide.Channels)).
		Int(xglog.FieldProgrammes, len(guide.Programs)).
		Msg("XMLTV written")
	return nil
}

func writePlaylist(cfg Config, deps Deps, items []playlist.Item) error {
	if cfg.PlaylistPath == "-" {
		if err := playlist.WriteM3U(deps.Stdout, items); err != nil {
			return fmt.Errorf("write playlist to stdout: %w", err)
		}
		return nil
	}
	if err := playlist.WriteFile(cfg.PlaylistPath, items); err != nil {
		return fmt.Errorf("write playlist: %w", err)
	}
	return nil
}
