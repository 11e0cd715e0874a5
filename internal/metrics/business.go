// SPDX-License-Identifier: MIT

// Package metrics exposes refresh metrics through the default Prometheus registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Skip reasons used as label values.
const (
	ReasonFetchError  = "fetch_error"
	ReasonHTTPStatus  = "http_status"
	ReasonNoManifest  = "no_manifest"
	ReasonEmptySource = "no_source"
)

var (
	channelsConfigured = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "livegrab_channels_configured",
		Help: "Channels declared in the channel list (last refresh)",
	})

	channelsResolved = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "livegrab_channels_resolved",
		Help: "Channels with a resolved manifest URL (last refresh)",
	})

	sourcesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "livegrab_sources_total",
		Help: "Source pages processed by outcome",
	}, []string{"outcome"}) // outcome=resolved|skipped

	sourcesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "livegrab_sources_skipped_total",
		Help: "Source pages skipped by reason",
	}, []string{"reason"})

	metadataMissing = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "livegrab_metadata_missing_total",
		Help: "Resolved sources lacking an optional metadata field",
	}, []string{"field"}) // field=title|description|image

	xmltvProgrammes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "livegrab_xmltv_programmes_written",
		Help: "Programmes written to the guide in the last refresh",
	})

	refreshFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "livegrab_refresh_failures_total",
		Help: "Refresh failures by stage",
	}, []string{"stage"}) // stage=config|channels|write_m3u|write_xmltv

	lastRefreshTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "livegrab_last_refresh_timestamp_seconds",
		Help: "Unix time of the last completed refresh",
	})

	refreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "livegrab_refresh_duration_seconds",
		Help:    "Wall time of a complete refresh",
		Buckets: []float64{1, 2.5, 5, 10, 30, 60, 120, 300},
	})
)

func RecordChannelsConfigured(n int) { channelsConfigured.Set(float64(n)) }
func RecordChannelsResolved(n int)   { channelsResolved.Set(float64(n)) }

func IncSourceResolved() { sourcesTotal.WithLabelValues("resolved").Inc() }

func IncSourceSkipped(reason string) {
	sourcesTotal.WithLabelValues("skipped").Inc()
	sourcesSkipped.WithLabelValues(reason).Inc()
}

func IncMetadataMissing(field string) { metadataMissing.WithLabelValues(field).Inc() }

func RecordProgrammes(n int) { xmltvProgrammes.Set(float64(n)) }

func IncRefreshFailure(stage string) { refreshFailuresTotal.WithLabelValues(stage).Inc() }

// RecordRefresh marks a completed refresh.
func RecordRefresh(finished time.Time, took time.Duration) {
	lastRefreshTimestamp.Set(float64(finished.Unix()))
	refreshDuration.Observe(took.Seconds())
}

// WriteTextfile dumps the default registry in the node-exporter textfile format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
