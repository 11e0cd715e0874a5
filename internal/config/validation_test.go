// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/livegrab/internal/validate"
)

func TestPreflight(t *testing.T) {
	dir := t.TempDir()
	channels := filepath.Join(dir, "channels.txt")
	require.NoError(t, os.WriteFile(channels, []byte("Lofi Girl || lofi.girl || music\n"), 0o600))

	cfg := Defaults()
	cfg.ChannelsFile = channels
	cfg.XMLTV.Path = filepath.Join(dir, "epg.xml")
	require.NoError(t, Preflight(cfg))

	cfg.Playlist.Path = filepath.Join(dir, "out.m3u")
	require.NoError(t, Preflight(cfg))

	cfg.ChannelsFile = filepath.Join(dir, "missing.txt")
	cfg.XMLTV.Path = filepath.Join(dir, "nope", "epg.xml")
	cfg.Metrics.Textfile = filepath.Join(dir, "nope", "livegrab.prom")
	err := Preflight(cfg)
	require.Error(t, err)

	var verr validate.ValidationError
	require.True(t, errors.As(err, &verr))
	fields := make([]string, 0, len(verr.Errors()))
	for _, e := range verr.Errors() {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{"channelsFile", "xmltv.path", "metrics.textfile"}, fields)
}

func TestPreflight_DirectoryAsChannelList(t *testing.T) {
	cfg := Defaults()
	cfg.ChannelsFile = t.TempDir()
	cfg.XMLTV.Path = filepath.Join(t.TempDir(), "epg.xml")
	err := Preflight(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected file")
}
