// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/livegrab/internal/log"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "LIVEGRAB_"

// envLookup resolves key with parse. An unset or empty variable yields def;
// an unparsable one yields def and a warning, so a typo in a deployment
// never stops a refresh. The chosen source is logged at debug level.
func envLookup[T any](key string, def T, parse func(string) (T, error)) T {
	logger := log.WithComponent("config")
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		logger.Debug().
			Str("key", key).
			Interface("default", def).
			Str("source", "default").
			Msg("environment variable not set")
		return def
	}
	v, err := parse(raw)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("key", key).
			Str("value", raw).
			Interface("default", def).
			Msg("ignoring malformed environment variable")
		return def
	}
	logger.Debug().
		Str("key", key).
		Interface("value", v).
		Str("source", "environment").
		Msg("using environment variable")
	return v
}

func parseEnvBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}

// ParseString returns $key, or def when it is unset or empty.
func ParseString(key, def string) string {
	return envLookup(key, def, func(s string) (string, error) { return s, nil })
}

// ParseInt returns $key as a base-10 int.
func ParseInt(key string, def int) int {
	return envLookup(key, def, strconv.Atoi)
}

// ParseInt64 returns $key as a byte count.
func ParseInt64(key string, def int64) int64 {
	return envLookup(key, def, func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) })
}

// ParseDuration returns $key in time.ParseDuration form, e.g. "90s".
func ParseDuration(key string, def time.Duration) time.Duration {
	return envLookup(key, def, time.ParseDuration)
}

// ParseBool returns $key; true/false, 1/0, yes/no and on/off are accepted
// in any case.
func ParseBool(key string, def bool) bool {
	return envLookup(key, def, parseEnvBool)
}

// ParseFloat returns $key as a float64.
func ParseFloat(key string, def float64) float64 {
	return envLookup(key, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

// ParseList returns $key split on commas with blanks dropped, or def.
func ParseList(key string, def []string) []string {
	return envLookup(key, def, func(s string) ([]string, error) {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("no entries in %q", s)
		}
		return out, nil
	})
}

// expandEnv expands $VAR and ${VAR} in file paths taken from YAML.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}
