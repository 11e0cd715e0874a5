// SPDX-License-Identifier: MIT

// Package channels parses the channel list consumed by a refresh run.
//
// The list is line oriented:
//
//	## comment
//	Lofi Girl || lofi.girl || music
//	https://www.youtube.com/watch?v=jfKfPfyJRdk
//
// A header declares name, id and category separated by "||"; every following
// URL line is a source page for that channel.
package channels

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	commentPrefix   = "##"
	sourcePrefix    = "https:"
	fieldSeparator  = "||"
	headerFieldsLen = 3
)

var (
	// ErrMalformedHeader is returned for a header without exactly three fields.
	ErrMalformedHeader = errors.New("malformed channel header")
	// ErrOrphanSource is returned for a source line preceding any header.
	ErrOrphanSource = errors.New("source line before any channel header")
)

// HeaderError reports the offending line of the channel list.
type HeaderError struct {
	Line int
	Text string
	Err  error
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *HeaderError) Unwrap() error { return e.Err }

// Header identifies a channel.
type Header struct {
	Name     string
	ID       string
	Category string
}

// Channel is a header together with its source pages, in file order.
type Channel struct {
	Header
	Sources []string
}

// ParseHeader splits a "name||id||category" line. Fields are trimmed and the
// category is title-cased.
func ParseHeader(line string) (Header, error) {
	fields := strings.Split(line, fieldSeparator)
	if len(fields) != headerFieldsLen {
		return Header{}, fmt.Errorf("%w: want %d fields, got %d", ErrMalformedHeader, headerFieldsLen, len(fields))
	}
	h := Header{
		Name:     strings.TrimSpace(fields[0]),
		ID:       strings.TrimSpace(fields[1]),
		Category: TitleCase(strings.TrimSpace(fields[2])),
	}
	if h.Name == "" || h.ID == "" {
		return Header{}, fmt.Errorf("%w: empty name or id", ErrMalformedHeader)
	}
	return h, nil
}

// TitleCase upper-cases the first letter of every word and lower-cases the rest.
func TitleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

// Parse reads a channel list. Channels are returned in file order; a header
// without sources is kept with an empty Sources slice.
func Parse(r io.Reader) ([]Channel, error) {
	var (
		out     []Channel
		current = -1
		lineNo  int
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}

		if strings.HasPrefix(line, sourcePrefix) {
			if current < 0 {
				return nil, &HeaderError{Line: lineNo, Text: line, Err: ErrOrphanSource}
			}
			out[current].Sources = append(out[current].Sources, line)
			continue
		}

		h, err := ParseHeader(line)
		if err != nil {
			return nil, &HeaderError{Line: lineNo, Text: line, Err: err}
		}
		out = append(out, Channel{Header: h})
		current = len(out) - 1
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read channel list: %w", err)
	}
	return out, nil
}

// Load parses the channel list at path.
func Load(path string) ([]Channel, error) {
	path = filepath.Clean(path)
	// path originates from operator configuration
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("open channel list: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}
