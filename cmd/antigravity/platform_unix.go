//go:build unix

package main

import (
	"os"
	"syscall"
)

// shutdownSignals stop long-running commands (watch, serve) gracefully.
func shutdownSignals() []os.Signal {
	return []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP}
}
