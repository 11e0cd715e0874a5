// SPDX-License-Identifier: MIT

package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	oldVersion, oldCommit, oldDate := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = oldVersion, oldCommit, oldDate })

	Version, Commit, Date = "v1.4.0", "abc1234", "2024-01-01"
	if got, want := String(), "v1.4.0 (commit: abc1234, built: 2024-01-01)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	Commit = "unknown"
	if got := String(); !strings.HasPrefix(got, "v1.4.0 (commit: ") {
		t.Errorf("String() = %q", got)
	}
}
