// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command livegrab builds an M3U playlist and XMLTV guide from a list of
// live stream pages.
package main

import (
	"fmt"
	"os"

	"github.com/ManuGH/livegrab/internal/daemon"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := daemon.WaitForShutdown()
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "livegrab: %v\n", err)
		return 1
	}
	return 0
}
