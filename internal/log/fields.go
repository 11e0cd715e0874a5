// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldService   = "service"
	FieldVersion   = "version"
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldEvent     = "event"

	// Channel fields
	FieldChannelID   = "channel_id"
	FieldChannelName = "channel_name"
	FieldCategory    = "category"
	FieldSourceURL   = "source_url"
	FieldManifestURL = "manifest_url"
	FieldStatusCode  = "status_code"
	FieldReason      = "reason"

	// Output fields
	FieldPath         = "path"
	FieldPlaylistPath = "playlist_path"
	FieldXMLTVPath    = "xmltv_path"
	FieldChannels     = "channels"
	FieldProgrammes   = "programmes"
)
