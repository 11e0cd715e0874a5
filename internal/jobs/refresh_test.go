// SPDX-License-Identifier: MIT

package jobs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/livegrab/internal/channels"
	"github.com/ManuGH/livegrab/internal/epg"
	"github.com/ManuGH/livegrab/internal/fetch"
	xglog "github.com/ManuGH/livegrab/internal/log"
	"github.com/ManuGH/livegrab/internal/metrics"
	"github.com/ManuGH/livegrab/internal/playlist"
)

const (
	lofiManifest = "https://manifest.googlevideo.com/api/manifest/hls_variant/id/abc/file/index.m3u8"
	newsManifest = "https://cdn.example.com/live/news/master.m3u8"
)

var lofiPage = `<html><head>
<meta property="og:title" content="lofi hip hop radio">
<meta property="og:description" content="beats to relax/study to">
<meta property="og:image" content="https://i.ytimg.com/vi/jfKfPfyJRdk/maxresdefault_live.jpg">
</head><body><script>var ytInitialPlayerResponse = {"streamingData":{"hlsManifestUrl":"` + lofiManifest + `"}};</script></body></html>`

var newsPage = `<html><body><script>{"hlsManifestUrl":"` + newsManifest + `"}</script></body></html>`

type fakeMetrics struct {
	configured, resolved, programmes int
	sourcesResolved                  int
	skipped                          map[string]int
	missing                          map[string]int
	failures                         map[string]int
	refreshes                        int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{
		skipped:  map[string]int{},
		missing:  map[string]int{},
		failures: map[string]int{},
	}
}

func (m *fakeMetrics) RecordChannelsConfigured(n int)  { m.configured = n }
func (m *fakeMetrics) RecordChannelsResolved(n int)    { m.resolved = n }
func (m *fakeMetrics) IncSourceResolved()              { m.sourcesResolved++ }
func (m *fakeMetrics) IncSourceSkipped(reason string)  { m.skipped[reason]++ }
func (m *fakeMetrics) IncMetadataMissing(field string) { m.missing[field]++ }
func (m *fakeMetrics) RecordProgrammes(n int)          { m.programmes = n }
func (m *fakeMetrics) IncRefreshFailure(stage string)  { m.failures[stage]++ }
func (m *fakeMetrics) RecordRefresh(time.Time, time.Duration) {
	m.refreshes++
}

func newSourceServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/lofi", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "feature=share" {
			http.Error(w, "unexpected query "+r.URL.RawQuery, http.StatusBadRequest)
			return
		}
		_, _ = fmt.Fprint(w, lofiPage)
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprint(w, newsPage)
	})
	mux.HandleFunc("/news", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, newsPage)
	})
	mux.HandleFunc("/plain", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, "<html><body>offline</body></html>")
	})
	srv := httptest.NewTLSServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeChannelList(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "channels.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func testSetup(t *testing.T) (Config, Deps, *fakeMetrics) {
	t.Helper()
	srv := newSourceServer(t)
	dir := t.TempDir()

	list := fmt.Sprintf(`## livegrab test list
Lofi Girl || lofi.girl || music
%[1]s/lofi?feature=share&t=10
%[1]s/gone

News One||news.one||news and weather
%[1]s/news
%[1]s/plain

Empty Channel||empty.one||misc
`, srv.URL)

	london, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	cfg := Config{
		ChannelsFile: writeChannelList(t, dir, list),
		Location:     london,
		PlaylistPath: filepath.Join(dir, "playlist.m3u"),
		XMLTVPath:    filepath.Join(dir, "epg.xml"),
		StaticEntries: []playlist.Item{{
			Name:      "TVNZ 1 720p",
			ChannelID: "mjh-tvnz-1",
			TvgID:     "mjh-tvnz-1",
			TvgChNo:   1,
			Group:     "NZ FTA",
			URL:       "https://i.mjh.nz/tvnz-1.m3u8",
		}},
	}

	m := newFakeMetrics()
	now := time.Date(2024, 1, 1, 13, 47, 0, 0, time.UTC)
	deps := Deps{
		Fetcher:  fetch.New(fetch.Options{Client: srv.Client()}),
		Metrics:  m,
		Clock:    func() time.Time { return now },
		NewRunID: func() string { return "run-1" },
	}
	return cfg, deps, m
}

func TestRun_ResolvesAndWrites(t *testing.T) {
	cfg, deps, m := testSetup(t)

	a, err := Run(context.Background(), cfg, deps, Options{})
	require.NoError(t, err)

	assert.Equal(t, "run-1", a.Status.RunID)
	assert.Equal(t, 2, a.Status.Channels)
	assert.Equal(t, 3, a.Status.Skipped)
	assert.Equal(t, 16, a.Status.Programmes)

	require.Len(t, a.Records, 2)
	assert.Equal(t, Record{
		Name:        "Lofi Girl",
		ID:          "lofi.girl",
		Category:    "Music",
		Title:       "lofi hip hop radio",
		Description: "beats to relax/study to",
		IconURL:     "https://i.ytimg.com/vi/jfKfPfyJRdk/maxresdefault_live.jpg",
		ManifestURL: lofiManifest,
	}, a.Records[0])
	assert.Equal(t, "News And Weather", a.Records[1].Category)
	assert.Empty(t, a.Records[1].Title)

	raw, err := os.ReadFile(cfg.PlaylistPath)
	require.NoError(t, err)
	want := strings.Join([]string{
		"#EXTM3U",
		`#EXTINF:-1 tvg-id="lofi.girl" tvg-name="Lofi Girl" group-title="Music", Lofi Girl`,
		lofiManifest,
		`#EXTINF:-1 tvg-id="news.one" tvg-name="News One" group-title="News And Weather", News One`,
		newsManifest,
		`#EXTINF:-1 channel-id="mjh-tvnz-1" tvg-id="mjh-tvnz-1" tvg-chno="1" group-title="NZ FTA", TVNZ 1 720p`,
		"https://i.mjh.nz/tvnz-1.m3u8",
		"",
	}, "\n")
	assert.Equal(t, want, string(raw))

	guide, err := epg.ReadFile(cfg.XMLTVPath)
	require.NoError(t, err)
	require.Len(t, guide.Channels, 2)
	require.Len(t, guide.Programs, 16)
	assert.Equal(t, "lofi.girl", guide.Channels[0].ID)
	assert.Equal(t, "20240101130000 +0000", guide.Programs[0].Start)
	assert.Equal(t, "20240101160000 +0000", guide.Programs[0].Stop)
	assert.Equal(t, "lofi hip hop radio", guide.Programs[0].Title.Value)
	assert.Equal(t, "LIVE: News One", guide.Programs[8].Title.Value)
	require.NotNil(t, guide.Programs[8].Desc)
	assert.Equal(t, "No description provided", guide.Programs[8].Desc.Value)

	assert.Equal(t, 3, m.configured)
	assert.Equal(t, 2, m.resolved)
	assert.Equal(t, 2, m.sourcesResolved)
	assert.Equal(t, map[string]int{
		metrics.ReasonHTTPStatus:  1,
		metrics.ReasonNoManifest:  1,
		metrics.ReasonEmptySource: 1,
	}, m.skipped)
	assert.Equal(t, map[string]int{"title": 1, "description": 1, "image": 1}, m.missing)
	assert.Equal(t, 16, m.programmes)
	assert.Equal(t, 1, m.refreshes)
	assert.Empty(t, m.failures)
}

func TestRun_SkipsAreLoggedWithSourceURL(t *testing.T) {
	var buf bytes.Buffer
	xglog.Configure(xglog.Config{Level: "info", Output: &buf})
	t.Cleanup(func() { xglog.Configure(xglog.Config{Level: "info"}) })

	cfg, deps, _ := testSetup(t)
	_, err := Run(context.Background(), cfg, deps, Options{DryRun: true})
	require.NoError(t, err)

	logs := buf.String()
	assert.Contains(t, logs, `"event":"channel.skipped"`)
	assert.Contains(t, logs, `/gone"`)
	assert.Contains(t, logs, `"reason":"http_status"`)
	assert.Contains(t, logs, `"status_code":404`)
	assert.Contains(t, logs, `"reason":"no_manifest"`)
	assert.Contains(t, logs, `"run_id":"run-1"`)
}

func TestRun_DryRunLeavesDiskUntouched(t *testing.T) {
	cfg, deps, _ := testSetup(t)

	var m3u, guide bytes.Buffer
	a, err := Run(context.Background(), cfg, deps, Options{DryRun: true, PlaylistOut: &m3u, GuideOut: &guide})
	require.NoError(t, err)
	assert.Equal(t, 2, a.Status.Channels)

	assert.True(t, strings.HasPrefix(m3u.String(), "#EXTM3U\n"))
	assert.Contains(t, guide.String(), `generator-info-name="youtube-live-epg"`)

	_, err = os.Stat(cfg.PlaylistPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(cfg.XMLTVPath)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_PlaylistToStdout(t *testing.T) {
	cfg, deps, _ := testSetup(t)
	cfg.PlaylistPath = "-"
	var stdout bytes.Buffer
	deps.Stdout = &stdout

	_, err := Run(context.Background(), cfg, deps, Options{})
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), lofiManifest+"\n")

	_, err = os.Stat(cfg.XMLTVPath)
	assert.NoError(t, err)
}

func TestRun_MalformedHeaderAborts(t *testing.T) {
	cfg, deps, m := testSetup(t)
	cfg.ChannelsFile = writeChannelList(t, t.TempDir(), "Broken Header||only-two\nhttps://example.com/live\n")

	_, err := Run(context.Background(), cfg, deps, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, channels.ErrMalformedHeader))

	var herr *channels.HeaderError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, 1, herr.Line)
	assert.Equal(t, 1, m.failures[StageChannels])

	_, statErr := os.Stat(cfg.XMLTVPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_OrphanSourceAborts(t *testing.T) {
	cfg, deps, _ := testSetup(t)
	cfg.ChannelsFile = writeChannelList(t, t.TempDir(), "https://example.com/live\n")

	_, err := Run(context.Background(), cfg, deps, Options{})
	assert.ErrorIs(t, err, channels.ErrOrphanSource)
}

func TestRun_WriteFailureIsReported(t *testing.T) {
	cfg, deps, m := testSetup(t)
	cfg.XMLTVPath = filepath.Join(t.TempDir(), "missing", "epg.xml")

	_, err := Run(context.Background(), cfg, deps, Options{})
	require.Error(t, err)
	assert.Equal(t, 1, m.failures[StageWriteXMLTV])
}

// recordingFetcher serves canned pages and remembers the request order.
type recordingFetcher struct {
	pages map[string]fetch.Page
	errs  map[string]error
	seen  []string
}

func (f *recordingFetcher) Fetch(_ context.Context, rawURL string) (fetch.Page, error) {
	f.seen = append(f.seen, rawURL)
	if err := f.errs[rawURL]; err != nil {
		return fetch.Page{URL: rawURL}, err
	}
	return f.pages[rawURL], nil
}

func TestRun_SequentialInFileOrder(t *testing.T) {
	dir := t.TempDir()
	list := "A||a||x\nhttps://s/1\nhttps://s/2\nB||b||y\nhttps://s/3\n"
	f := &recordingFetcher{
		pages: map[string]fetch.Page{
			"https://s/1": {StatusCode: 200, Body: newsPage},
			"https://s/3": {StatusCode: 200, Body: lofiPage},
		},
		errs: map[string]error{"https://s/2": errors.New("connection reset")},
	}
	m := newFakeMetrics()
	cfg := Config{
		ChannelsFile: writeChannelList(t, dir, list),
		Location:     time.UTC,
		PlaylistPath: filepath.Join(dir, "p.m3u"),
		XMLTVPath:    filepath.Join(dir, "e.xml"),
	}

	a, err := Run(context.Background(), cfg, Deps{Fetcher: f, Metrics: m}, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://s/1", "https://s/2", "https://s/3"}, f.seen)
	require.Len(t, a.Records, 2)
	assert.Equal(t, "a", a.Records[0].ID)
	assert.Equal(t, "b", a.Records[1].ID)
	assert.Equal(t, 1, m.skipped[metrics.ReasonFetchError])
}

func TestRun_CancelledContext(t *testing.T) {
	cfg, deps, _ := testSetup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, cfg, deps, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRefresh_ReturnsStatus(t *testing.T) {
	cfg, deps, _ := testSetup(t)
	st, err := Refresh(context.Background(), cfg, deps)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Channels)
	assert.Equal(t, time.Duration(0), st.Duration)
}
