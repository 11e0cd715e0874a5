// SPDX-License-Identifier: MIT

package channels

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `## Music
Lofi Girl || lofi.girl || music
https://www.youtube.com/watch?v=jfKfPfyJRdk

##   News
Sky News||sky.news||NEWS channels
https://www.youtube.com/watch?v=9Auq9mYxFEE&t=1
https://www.youtube.com/@SkyNews/live

Empty Channel || empty.one || misc
`

func TestParse(t *testing.T) {
	got, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	want := []Channel{
		{
			Header:  Header{Name: "Lofi Girl", ID: "lofi.girl", Category: "Music"},
			Sources: []string{"https://www.youtube.com/watch?v=jfKfPfyJRdk"},
		},
		{
			Header: Header{Name: "Sky News", ID: "sky.news", Category: "News Channels"},
			Sources: []string{
				"https://www.youtube.com/watch?v=9Auq9mYxFEE&t=1",
				"https://www.youtube.com/@SkyNews/live",
			},
		},
		{
			Header: Header{Name: "Empty Channel", ID: "empty.one", Category: "Misc"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_MalformedHeader(t *testing.T) {
	tests := []struct {
		name string
		in   string
		line int
	}{
		{name: "two fields", in: "Lofi||lofi\n", line: 1},
		{name: "four fields", in: "## c\nA||b||c||d\n", line: 2},
		{name: "single pipe", in: "A|b|c\n", line: 1},
		{name: "empty id", in: "A|| ||c\n", line: 1},
		{name: "http is not a source", in: "A||a||c\nhttp://insecure.example/x\n", line: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedHeader)

			var he *HeaderError
			require.True(t, errors.As(err, &he))
			assert.Equal(t, tt.line, he.Line)
		})
	}
}

func TestParse_OrphanSource(t *testing.T) {
	_, err := Parse(strings.NewReader("https://www.youtube.com/watch?v=x\nA||a||c\n"))
	assert.ErrorIs(t, err, ErrOrphanSource)
}

func TestParse_Empty(t *testing.T) {
	got, err := Parse(strings.NewReader("\n## nothing here\n\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTitleCase(t *testing.T) {
	for in, want := range map[string]string{
		"music":       "Music",
		"NEWS":        "News",
		"late night tv": "Late Night Tv",
		"":            "",
	} {
		assert.Equal(t, want, TitleCase(in), "TitleCase(%q)", in)
	}
}

func TestLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "channels.txt")
	require.NoError(t, os.WriteFile(p, []byte(sample), 0o600))

	got, err := Load(p)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
