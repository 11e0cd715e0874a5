// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"io"
	"time"

	"github.com/ManuGH/livegrab/internal/epg"
	"github.com/ManuGH/livegrab/internal/fetch"
	"github.com/ManuGH/livegrab/internal/locator"
	"github.com/ManuGH/livegrab/internal/playlist"
)

// PageFetcher retrieves one source page.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (fetch.Page, error)
}

// MetricsRecorder defines the interface for recording refresh metrics
type MetricsRecorder interface {
	RecordChannelsConfigured(n int)
	RecordChannelsResolved(n int)
	IncSourceResolved()
	IncSourceSkipped(reason string)
	IncMetadataMissing(field string)
	RecordProgrammes(n int)
	IncRefreshFailure(stage string)
	RecordRefresh(finished time.Time, took time.Duration)
}

// Config holds the inputs of one refresh.
type Config struct {
	ChannelsFile string
	Location     *time.Location

	// PlaylistPath "-" writes the playlist to Deps.Stdout.
	PlaylistPath  string
	XMLTVPath     string
	StaticEntries []playlist.Item
	EPG           epg.Options
}

// Options controls the behavior of the refresh operation
type Options struct {
	// DryRun renders both documents to PlaylistOut and GuideOut instead
	// of the configured paths. Nil writers discard.
	DryRun      bool
	PlaylistOut io.Writer
	GuideOut    io.Writer
}

// Deps holds all dependencies for the refresh operation. Nil fields are
// replaced with production implementations.
type Deps struct {
	Fetcher  PageFetcher
	Locator  *locator.Locator
	Metrics  MetricsRecorder
	Clock    func() time.Time
	NewRunID func() string
	Stdout   io.Writer
}

// Status summarizes a finished refresh.
type Status struct {
	RunID      string        `json:"run_id"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Channels   int           `json:"channels"`
	Skipped    int           `json:"skipped"`
	Programmes int           `json:"programmes"`
}

// Artifacts is everything a refresh produced.
type Artifacts struct {
	Status   Status
	Records  []Record
	Playlist []playlist.Item
	Guide    *epg.TV
}
