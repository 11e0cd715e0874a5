// SPDX-License-Identifier: MIT

package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	RefreshSpan = "livegrab.refresh"
	SourceSpan  = "livegrab.source"
)

// Attribute keys shared by refresh spans.
const (
	RunIDKey          = "livegrab.run_id"
	ChannelIDKey      = "livegrab.channel.id"
	ChannelNameKey    = "livegrab.channel.name"
	SourceURLKey      = "livegrab.source.url"
	ChannelsKey       = "livegrab.channels"
	SkippedKey        = "livegrab.skipped"
	ProgrammesKey     = "livegrab.programmes"
	HTTPStatusCodeKey = "http.status_code"
	SkipReasonKey     = "livegrab.skip_reason"
	DryRunKey         = "livegrab.dry_run"
)

// StartRefresh opens the root span of one refresh.
func StartRefresh(ctx context.Context, runID string, dryRun bool) (context.Context, trace.Span) {
	return Tracer().Start(ctx, RefreshSpan,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String(RunIDKey, runID),
			attribute.Bool(DryRunKey, dryRun),
		),
	)
}

// StartSource opens the span covering one source page of a channel.
func StartSource(ctx context.Context, channelID, channelName, sourceURL string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, SourceSpan,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(SourceAttributes(channelID, channelName, sourceURL)...),
	)
}

// MarkSkipped records why a source produced no record. A skip is an
// expected outcome, so the span status stays unset unless err is a
// transport failure.
func MarkSkipped(span trace.Span, reason string, err error, transport bool) {
	span.SetAttributes(attribute.String(SkipReasonKey, reason))
	if err == nil {
		return
	}
	span.RecordError(err)
	if transport {
		span.SetStatus(codes.Error, reason)
	}
}

// Fail marks the refresh span as failed at stage.
func Fail(span trace.Span, stage string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, stage)
}

// SourceAttributes describes one source page of a channel.
func SourceAttributes(channelID, channelName, sourceURL string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if channelID != "" {
		attrs = append(attrs, attribute.String(ChannelIDKey, channelID))
	}
	if channelName != "" {
		attrs = append(attrs, attribute.String(ChannelNameKey, channelName))
	}
	if sourceURL != "" {
		attrs = append(attrs, attribute.String(SourceURLKey, sourceURL))
	}
	return attrs
}

// RefreshAttributes summarizes a finished refresh.
func RefreshAttributes(runID string, channels, skipped, programmes int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(RunIDKey, runID),
		attribute.Int(ChannelsKey, channels),
		attribute.Int(SkippedKey, skipped),
		attribute.Int(ProgrammesKey, programmes),
	}
}
