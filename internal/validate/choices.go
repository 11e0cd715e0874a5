// SPDX-License-Identifier: MIT

package validate

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

// ErrInvalidLogLevel is wrapped by ParseLogLevel.
var ErrInvalidLogLevel = errors.New("invalid log level")

// Choice is the closed set of values a config key accepts. Matching is
// exact; config values are lower case.
type Choice struct {
	what   string
	values []string
}

// NewChoice names a set of accepted values. what appears in messages.
func NewChoice(what string, values ...string) Choice {
	return Choice{what: what, values: values}
}

// Accepted values for livegrab's enumerated settings.
var (
	LogLevels  = NewChoice("log level", "trace", "debug", "info", "warn", "error")
	LogFormats = NewChoice("log format", "json", "console")
	Exporters  = NewChoice("trace exporter", "grpc", "http")
)

// Values returns a copy of the accepted values.
func (c Choice) Values() []string { return slices.Clone(c.values) }

// Contains reports whether value is accepted.
func (c Choice) Contains(value string) bool { return slices.Contains(c.values, value) }

func (c Choice) describe() string {
	return fmt.Sprintf("%s must be one of: %s", c.what, strings.Join(c.values, ", "))
}

// Choice validates value against c.
func (v *Validator) Choice(field, value string, c Choice) {
	if c.Contains(value) {
		return
	}
	v.AddError(field, fmt.Sprintf("%s, got %q", c.describe(), value), value)
}

// ParseLogLevel maps an accepted level name to its zerolog level.
func ParseLogLevel(s string) (zerolog.Level, error) {
	if !LogLevels.Contains(s) {
		return zerolog.NoLevel, fmt.Errorf("%w %q: %s", ErrInvalidLogLevel, s, LogLevels.describe())
	}
	return zerolog.ParseLevel(s)
}
