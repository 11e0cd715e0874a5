// SPDX-License-Identifier: MIT

// Package jobs runs a refresh: resolve every configured source page, then
// write the playlist and the synthesized guide.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ManuGH/livegrab/internal/channels"
	"github.com/ManuGH/livegrab/internal/epg"
	"github.com/ManuGH/livegrab/internal/fetch"
	"github.com/ManuGH/livegrab/internal/locator"
	xglog "github.com/ManuGH/livegrab/internal/log"
	"github.com/ManuGH/livegrab/internal/metadata"
	"github.com/ManuGH/livegrab/internal/metrics"
	"github.com/ManuGH/livegrab/internal/playlist"
	"github.com/ManuGH/livegrab/internal/schedule"
	"github.com/ManuGH/livegrab/internal/telemetry"
)

// Failure stages reported through MetricsRecorder.IncRefreshFailure.
const (
	StageChannels   = "channels"
	StageWriteM3U   = "write_m3u"
	StageWriteXMLTV = "write_xmltv"
)

// skipError explains why a source page produced no record.
type skipError struct {
	reason string
	status int
	err    error
}

func (e *skipError) Error() string {
	if e.status != 0 {
		return fmt.Sprintf("%s (status %d): %v", e.reason, e.status, e.err)
	}
	return fmt.Sprintf("%s: %v", e.reason, e.err)
}

func (e *skipError) Unwrap() error { return e.err }

func (d Deps) withDefaults() Deps {
	if d.Fetcher == nil {
		d.Fetcher = fetch.New(fetch.Options{})
	}
	if d.Locator == nil {
		d.Locator = locator.New(locator.Options{})
	}
	if d.Metrics == nil {
		d.Metrics = promRecorder{}
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.NewRunID == nil {
		d.NewRunID = func() string { return uuid.NewString() }
	}
	if d.Stdout == nil {
		d.Stdout = os.Stdout
	}
	return d
}

// Refresh performs one complete refresh cycle and returns its summary.
func Refresh(ctx context.Context, cfg Config, deps Deps) (*Status, error) {
	a, err := Run(ctx, cfg, deps, Options{})
	if err != nil {
		return nil, err
	}
	return &a.Status, nil
}

// Run performs one refresh. Sources are processed strictly in channel-list
// order, one request at a time. A source that cannot be resolved is logged
// and skipped; a malformed channel list or a failed write aborts the run.
func Run(ctx context.Context, cfg Config, deps Deps, opts Options) (*Artifacts, error) {
	deps = deps.withDefaults()
	started := deps.Clock()
	runID := deps.NewRunID()

	ctx = xglog.ContextWithRunID(ctx, runID)
	ctx, span := telemetry.StartRefresh(ctx, runID, opts.DryRun)
	defer span.End()

	logger := xglog.WithComponentFromContext(ctx, "jobs")
	ctx = logger.WithContext(ctx)
	logger.Info().
		Str(xglog.FieldEvent, "refresh.start").
		Str(xglog.FieldPath, cfg.ChannelsFile).
		Bool("dry_run", opts.DryRun).
		Msg("starting refresh")

	list, err := channels.Load(cfg.ChannelsFile)
	if err != nil {
		deps.Metrics.IncRefreshFailure(StageChannels)
		telemetry.Fail(span, StageChannels, err)
		logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "refresh.failed").
			Str(xglog.FieldPath, cfg.ChannelsFile).
			Msg("channel list rejected")
		return nil, fmt.Errorf("load channel list: %w", err)
	}
	deps.Metrics.RecordChannelsConfigured(len(list))

	var acc Accumulator
	skipped := 0
	for _, ch := range list {
		if len(ch.Sources) == 0 {
			skipped++
			deps.Metrics.IncSourceSkipped(metrics.ReasonEmptySource)
			logger.Warn().
				Str(xglog.FieldEvent, "channel.no_sources").
				Str(xglog.FieldChannelID, ch.ID).
				Str(xglog.FieldChannelName, ch.Name).
				Msg("channel has no source lines")
			continue
		}
		for _, src := range ch.Sources {
			if err := ctx.Err(); err != nil {
				telemetry.Fail(span, "cancelled", err)
				return nil, fmt.Errorf("refresh cancelled: %w", err)
			}

			rec, err := resolveSource(ctx, deps, ch.Header, src)
			if err != nil {
				skipped++
				logSkip(&logger, ch.Header, src, err)
				var se *skipError
				if errors.As(err, &se) {
					deps.Metrics.IncSourceSkipped(se.reason)
				}
				continue
			}
			acc.Add(rec)
			deps.Metrics.IncSourceResolved()
			recordMissingMetadata(deps.Metrics, rec)
			logger.Info().
				Str(xglog.FieldEvent, "channel.resolved").
				Str(xglog.FieldChannelID, rec.ID).
				Str(xglog.FieldSourceURL, src).
				Str(xglog.FieldManifestURL, rec.ManifestURL).
				Msg("manifest located")
		}
	}

	records := acc.Records()
	deps.Metrics.RecordChannelsResolved(len(records))

	sched := schedule.Synthesize(started, cfg.Location)
	guide := epg.Build(guideEntries(records), sched, cfg.EPG)
	items := append(playlistItems(records), cfg.StaticEntries...)

	if err := writeOutputs(ctx, cfg, deps, opts, items, guide); err != nil {
		telemetry.Fail(span, "write", err)
		return nil, err
	}

	finished := deps.Clock()
	status := Status{
		RunID:      runID,
		StartedAt:  started,
		Duration:   finished.Sub(started),
		Channels:   len(records),
		Skipped:    skipped,
		Programmes: len(guide.Programs),
	}
	deps.Metrics.RecordProgrammes(status.Programmes)
	deps.Metrics.RecordRefresh(finished, status.Duration)
	span.SetAttributes(telemetry.RefreshAttributes(runID, status.Channels, status.Skipped, status.Programmes)...)

	logger.Info().
		Str(xglog.FieldEvent, "refresh.success").
		Int(xglog.FieldChannels, status.Channels).
		Int("skipped", status.Skipped).
		Int(xglog.FieldProgrammes, status.Programmes).
		Dur("duration", status.Duration).
		Msg("refresh completed")

	return &Artifacts{
		Status:   status,
		Records:  records,
		Playlist: items,
		Guide:    guide,
	}, nil
}

// resolveSource runs fetch, locate and extract for one source line.
func resolveSource(ctx context.Context, deps Deps, h channels.Header, src string) (Record, error) {
	ctx, span := telemetry.StartSource(ctx, h.ID, h.Name, src)
	defer span.End()

	page, err := deps.Fetcher.Fetch(ctx, src)
	if err != nil {
		telemetry.MarkSkipped(span, metrics.ReasonFetchError, err, true)
		return Record{}, &skipError{reason: metrics.ReasonFetchError, err: err}
	}
	span.SetAttributes(attribute.Int(telemetry.HTTPStatusCodeKey, page.StatusCode))

	manifest, err := deps.Locator.LocateResponse(page.StatusCode, page.Body)
	if err != nil {
		reason := metrics.ReasonNoManifest
		status := 0
		if !page.OK() {
			reason = metrics.ReasonHTTPStatus
			status = page.StatusCode
		}
		telemetry.MarkSkipped(span, reason, err, false)
		return Record{}, &skipError{reason: reason, status: status, err: err}
	}

	md := metadata.Extract(page.Body)
	return Record{
		Name:        h.Name,
		ID:          h.ID,
		Category:    h.Category,
		Title:       md.Title,
		Description: md.Description,
		IconURL:     md.ImageURL,
		ManifestURL: manifest,
	}, nil
}

func logSkip(logger *zerolog.Logger, h channels.Header, src string, err error) {
	ev := logger.Warn().
		Err(err).
		Str(xglog.FieldEvent, "channel.skipped").
		Str(xglog.FieldChannelID, h.ID).
		Str(xglog.FieldChannelName, h.Name).
		Str(xglog.FieldSourceURL, src)
	var se *skipError
	if errors.As(err, &se) {
		ev = ev.Str(xglog.FieldReason, se.reason)
		if se.status != 0 {
			ev = ev.Int(xglog.FieldStatusCode, se.status)
		}
	}
	ev.Msg("source skipped")
}

func recordMissingMetadata(m MetricsRecorder, r Record) {
	if r.Title == "" {
		m.IncMetadataMissing("title")
	}
	if r.Description == "" {
		m.IncMetadataMissing("description")
	}
	if r.IconURL == "" {
		m.IncMetadataMissing("image")
	}
}

func guideEntries(records []Record) []epg.Entry {
	entries := make([]epg.Entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, epg.Entry{
			ID:          r.ID,
			Name:        r.Name,
			Title:       r.Title,
			Description: r.Description,
			IconURL:     r.IconURL,
		})
	}
	return entries
}

func playlistItems(records []Record) []playlist.Item {
	items := make([]playlist.Item, 0, len(records))
	for _, r := range records {
		items = append(items, playlist.Item{
			Name:    r.Name,
			TvgID:   r.ID,
			TvgName: r.Name,
			Group:   r.Category,
			URL:     r.ManifestURL,
		})
	}
	return items
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
