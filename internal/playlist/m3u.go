// SPDX-License-Identifier: MIT

// Package playlist renders M3U playlists.
package playlist

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/renameio/v2"
)

// Item is one playlist entry. Empty attributes are omitted from the
// descriptor line.
type Item struct {
	Name      string
	ChannelID string
	TvgID     string
	TvgName   string
	TvgLogo   string
	TvgChNo   int
	Group     string
	URL       string
}

// quoteReplacer keeps attribute values from terminating early.
var quoteReplacer = strings.NewReplacer(`"`, `'`, "\n", " ", "\r", " ")

func writeAttr(buf *bytes.Buffer, key, value string) {
	if value == "" {
		return
	}
	buf.WriteByte(' ')
	buf.WriteString(key)
	buf.WriteString(`="`)
	buf.WriteString(quoteReplacer.Replace(value))
	buf.WriteByte('"')
}

// WriteM3U writes the #EXTM3U header followed by a descriptor and URL line
// per item.
func WriteM3U(w io.Writer, items []Item) error {
	buf := &bytes.Buffer{}
	buf.WriteString("#EXTM3U\n")
	for _, it := range items {
		if it.URL == "" {
			return fmt.Errorf("playlist item %q has no URL", it.Name)
		}
		buf.WriteString("#EXTINF:-1")
		writeAttr(buf, "channel-id", it.ChannelID)
		writeAttr(buf, "tvg-id", it.TvgID)
		writeAttr(buf, "tvg-name", it.TvgName)
		writeAttr(buf, "tvg-logo", it.TvgLogo)
		if it.TvgChNo > 0 {
			writeAttr(buf, "tvg-chno", strconv.Itoa(it.TvgChNo))
		}
		writeAttr(buf, "group-title", it.Group)
		buf.WriteString(", ")
		buf.WriteString(quoteReplacer.Replace(it.Name))
		buf.WriteByte('\n')
		buf.WriteString(strings.TrimSpace(it.URL))
		buf.WriteByte('\n')
	}
	_, err := io.Copy(w, buf)
	return err
}

// WriteFile writes the playlist to path atomically.
func WriteFile(path string, items []Item) error {
	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending M3U file: %w", err)
	}
	defer func() { _ = pendingFile.Cleanup() }()

	if err := WriteM3U(pendingFile, items); err != nil {
		return fmt.Errorf("write M3U data: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace M3U file: %w", err)
	}
	return nil
}
