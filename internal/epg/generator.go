// SPDX-License-Identifier: MIT

package epg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/google/renameio/v2"

	"github.com/ManuGH/livegrab/internal/schedule"
)

const (
	DefaultGenerator    = "youtube-live-epg"
	DefaultGeneratorURL = "https://github.com/ManuGH/livegrab"
	DefaultLang         = "en"
	DefaultTitlePrefix  = "LIVE: "
	DefaultPlaceholder  = "No description provided"

	xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"
)

// Entry is the guide-facing view of a resolved channel.
// Title, Description and IconURL are optional.
type Entry struct {
	ID          string
	Name        string
	Title       string
	Description string
	IconURL     string
}

// Options controls the fixed parts of a generated guide. Zero values take the
// package defaults.
type Options struct {
	Generator    string
	GeneratorURL string
	Lang         string
	TitlePrefix  string
	Placeholder  string
}

func (o Options) withDefaults() Options {
	if o.Generator == "" {
		o.Generator = DefaultGenerator
	}
	if o.GeneratorURL == "" {
		o.GeneratorURL = DefaultGeneratorURL
	}
	if o.Lang == "" {
		o.Lang = DefaultLang
	}
	if o.TitlePrefix == "" {
		o.TitlePrefix = DefaultTitlePrefix
	}
	if o.Placeholder == "" {
		o.Placeholder = DefaultPlaceholder
	}
	return o
}

// Build returns a guide with one channel per entry, in order, and one
// programme per entry and slot. Missing titles and descriptions fall back to
// "LIVE: {name}" and the placeholder.
func Build(entries []Entry, sched schedule.Schedule, opts Options) *TV {
	opts = opts.withDefaults()
	slots := sched.Slots()

	tv := &TV{
		Generator:    opts.Generator,
		GeneratorURL: opts.GeneratorURL,
		Channels:     make([]Channel, 0, len(entries)),
		Programs:     make([]Programme, 0, len(entries)*len(slots)),
	}

	for _, e := range entries {
		ch := Channel{
			ID:          e.ID,
			DisplayName: []Text{{Lang: opts.Lang, Value: e.Name}},
		}
		if e.IconURL != "" {
			ch.Icon = &Icon{Src: e.IconURL}
		}
		tv.Channels = append(tv.Channels, ch)

		title := e.Title
		if title == "" {
			title = opts.TitlePrefix + e.Name
		}
		desc := e.Description
		if desc == "" {
			desc = opts.Placeholder
		}

		for _, slot := range slots {
			tv.Programs = append(tv.Programs, Programme{
				Channel: e.ID,
				Start:   FormatTime(slot.Start),
				Stop:    FormatTime(slot.End),
				Title:   Text{Lang: opts.Lang, Value: title},
				Desc:    &Text{Lang: opts.Lang, Value: desc},
				Icon:    &Icon{Src: e.IconURL},
			})
		}
	}
	return tv
}

// FormatTime formats time in XMLTV format: YYYYMMDDHHMMSS +ZZZZ
func FormatTime(t time.Time) string {
	return t.Format("20060102150405 -0700")
}

// Encode writes tv as an indented document with an XML declaration.
func Encode(w io.Writer, tv *TV) error {
	out, err := xml.MarshalIndent(tv, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal xmltv: %w", err)
	}
	var buf bytes.Buffer
	buf.Grow(len(xmlHeader) + len(out) + 1)
	buf.WriteString(xmlHeader)
	buf.Write(out)
	buf.WriteByte('\n')
	_, err = io.Copy(w, &buf)
	return err
}

// WriteFile writes tv to path atomically: the document is fsynced to a
// temporary file and renamed over path.
func WriteFile(path string, tv *TV) error {
	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending XMLTV file: %w", err)
	}
	defer func() { _ = pendingFile.Cleanup() }()

	if err := Encode(pendingFile, tv); err != nil {
		return fmt.Errorf("write XMLTV data: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace XMLTV file: %w", err)
	}
	return nil
}
