// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ManuGH/livegrab/internal/config"
	xglog "github.com/ManuGH/livegrab/internal/log"
	"github.com/ManuGH/livegrab/internal/version"
)

// envConfigPath names the config file when --config is not given.
const envConfigPath = config.EnvPrefix + "CONFIG"

type rootOptions struct {
	configPath string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "livegrab",
		Short:         "Build an IPTV playlist and XMLTV guide from live stream pages",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to YAML config file (default $"+envConfigPath+")")

	root.AddCommand(
		newRunCmd(opts),
		newServeCmd(opts),
		newCheckCmd(opts),
		newVersionCmd(),
	)
	return root
}

// load resolves the config path and loads ENV > file > defaults.
func (o *rootOptions) load() (config.AppConfig, string, error) {
	path := strings.TrimSpace(o.configPath)
	if path == "" {
		path = strings.TrimSpace(os.Getenv(envConfigPath))
	}
	cfg, err := config.NewLoader(path, version.Version).Load()
	return cfg, path, err
}

func configureLogging(cfg config.AppConfig, w io.Writer) {
	xglog.Configure(xglog.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Output:  w,
		Service: "livegrab",
		Version: cfg.Version,
	})
}

func logConfigSource(path string) {
	logger := xglog.WithComponent("cli")
	if path == "" {
		logger.Info().
			Str(xglog.FieldEvent, "config.loaded").
			Str("source", "env+defaults").
			Msg("loaded configuration from environment and defaults")
		return
	}
	logger.Info().
		Str(xglog.FieldEvent, "config.loaded").
		Str("source", "file").
		Str(xglog.FieldPath, path).
		Msg("loaded configuration from file")
}
