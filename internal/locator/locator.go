// SPDX-License-Identifier: MIT

// Package locator finds live-stream manifest addresses embedded in raw page text.
package locator

import (
	"errors"
	"net/http"
	"strings"
)

// ErrNotFound is returned when no manifest address can be located.
var ErrNotFound = errors.New("manifest not found")

const (
	DefaultMarker        = ".m3u8"
	DefaultScheme        = "https://"
	DefaultInitialWindow = 100
	DefaultStep          = 5
	DefaultMaxWindow     = 2000
)

// Options tunes the expanding-window scan. Zero values take the defaults.
type Options struct {
	Marker        string // manifest file extension
	Scheme        string // URL scheme prefix searched backwards from the marker
	InitialWindow int
	Step          int
	MaxWindow     int
}

// Locator scans page text for a manifest URL. It holds no state besides its
// options and is safe for concurrent use.
type Locator struct {
	opts Options
}

// New returns a Locator with opts normalised against the defaults.
func New(opts Options) *Locator {
	if opts.Marker == "" {
		opts.Marker = DefaultMarker
	}
	if opts.Scheme == "" {
		opts.Scheme = DefaultScheme
	}
	if opts.InitialWindow <= 0 {
		opts.InitialWindow = DefaultInitialWindow
	}
	if opts.Step <= 0 {
		opts.Step = DefaultStep
	}
	if opts.MaxWindow <= 0 {
		opts.MaxWindow = DefaultMaxWindow
	}
	if opts.MaxWindow < opts.InitialWindow {
		opts.MaxWindow = opts.InitialWindow
	}
	return &Locator{opts: opts}
}

// Options returns the effective options.
func (l *Locator) Options() Options { return l.opts }

// LocateResponse is Locate gated on the fetch outcome: anything but a 200
// status is ErrNotFound without scanning.
func (l *Locator) LocateResponse(status int, text string) (string, error) {
	if status != http.StatusOK {
		return "", ErrNotFound
	}
	return l.Locate(text)
}

// Locate returns the manifest URL ending at the first occurrence of the marker.
//
// The window preceding the marker grows by Step from InitialWindow until the
// scheme prefix appears in it. The growth is capped at MaxWindow and at the
// start of the text; reaching the cap without a match yields ErrNotFound.
// When the window holds several scheme prefixes the one nearest the marker
// wins, not the first in the window.
func (l *Locator) Locate(text string) (string, error) {
	idx := strings.Index(text, l.opts.Marker)
	if idx < 0 {
		return "", ErrNotFound
	}
	end := idx + len(l.opts.Marker)

	limit := l.opts.MaxWindow
	if end < limit {
		limit = end
	}

	for window := l.opts.InitialWindow; ; window += l.opts.Step {
		if window > limit {
			window = limit
		}
		lo := end - window
		if pos := strings.LastIndex(text[lo:end], l.opts.Scheme); pos >= 0 {
			return text[lo+pos : end], nil
		}
		if window == limit {
			return "", ErrNotFound
		}
	}
}
