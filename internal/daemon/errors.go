// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import "errors"

var (
	// ErrMissingAPIServer is returned when a daemon is created without a server.
	ErrMissingAPIServer = errors.New("API server is required")

	// ErrMissingRefresher is returned when a daemon is created without a refresh function.
	ErrMissingRefresher = errors.New("refresh function is required")
)
