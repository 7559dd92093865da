//go:build windows

package main

import "os"

// shutdownSignals stop a print run or the editor server.
// syscall.SIGTERM is not delivered on Windows.
var shutdownSignals = []os.Signal{os.Interrupt}
