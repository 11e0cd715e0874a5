// SPDX-License-Identifier: MIT

package jobs

import (
	"fmt"

	"github.com/ManuGH/livegrab/internal/config"
	"github.com/ManuGH/livegrab/internal/epg"
	"github.com/ManuGH/livegrab/internal/fetch"
	"github.com/ManuGH/livegrab/internal/locator"
	netx "github.com/ManuGH/livegrab/internal/platform/net"
	"github.com/ManuGH/livegrab/internal/playlist"
)

// ConfigFrom maps the application configuration onto a refresh Config.
func ConfigFrom(app config.AppConfig) Config {
	static := make([]playlist.Item, 0, len(app.Playlist.StaticEntries))
	for _, e := range app.Playlist.StaticEntries {
		static = append(static, playlist.Item{
			Name:      e.Name,
			ChannelID: e.ChannelID,
			TvgID:     e.TvgID,
			TvgLogo:   e.Logo,
			TvgChNo:   e.Chno,
			Group:     e.Group,
			URL:       e.URL,
		})
	}
	return Config{
		ChannelsFile:  app.ChannelsFile,
		Location:      app.Location,
		PlaylistPath:  app.Playlist.Path,
		XMLTVPath:     app.XMLTV.Path,
		StaticEntries: static,
		EPG: epg.Options{
			Generator:    app.XMLTV.GeneratorName,
			GeneratorURL: app.XMLTV.GeneratorURL,
			Lang:         app.XMLTV.Lang,
			TitlePrefix:  app.XMLTV.TitlePrefix,
			Placeholder:  app.XMLTV.Placeholder,
		},
	}
}

// DepsFrom builds the production fetcher and locator for app. A malformed
// host allowlist is an error rather than an open policy.
func DepsFrom(app config.AppConfig) (Deps, error) {
	hosts, err := netx.NewHostPolicy(app.Fetch.AllowedHosts)
	if err != nil {
		return Deps{}, fmt.Errorf("fetch.allowedHosts: %w", err)
	}
	return Deps{
		Fetcher: fetch.New(fetch.Options{
			Timeout:           app.Fetch.Timeout,
			UserAgent:         app.Fetch.UserAgent,
			AcceptLanguage:    app.Fetch.AcceptLanguage,
			MaxBodyBytes:      app.Fetch.MaxBodyBytes,
			RequestsPerSecond: app.Fetch.RequestsPerSecond,
			Hosts:             hosts,
		}),
		Locator: locator.New(locator.Options{
			Marker:        app.Locator.Marker,
			Scheme:        app.Locator.Scheme,
			InitialWindow: app.Locator.InitialWindow,
			Step:          app.Locator.Step,
			MaxWindow:     app.Locator.MaxWindow,
		}),
	}, nil
}
