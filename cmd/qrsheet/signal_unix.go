//go:build !windows

package main

import (
	"os"
	"syscall"
)

// shutdownSignals stop a print run or the editor server.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
