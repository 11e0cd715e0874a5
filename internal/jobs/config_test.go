// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/livegrab/internal/config"
	netx "github.com/ManuGH/livegrab/internal/platform/net"
)

func TestDepsFrom_RejectsMalformedAllowlist(t *testing.T) {
	app := config.Defaults()
	app.Fetch.AllowedHosts = []string{"https://www.youtube.com/"}

	_, err := DepsFrom(app)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch.allowedHosts")
}

func TestDepsFrom_EnforcesAllowlist(t *testing.T) {
	app := config.Defaults()
	app.Fetch.AllowedHosts = []string{"*.youtube.com"}

	deps, err := DepsFrom(app)
	require.NoError(t, err)
	require.NotNil(t, deps.Locator)

	// Denied before any request is made.
	_, err = deps.Fetcher.Fetch(context.Background(), "https://evil.example/watch?v=1")
	require.ErrorIs(t, err, netx.ErrHostNotAllowed)
}
