// Package version carries build metadata injected at link time.
package version

import (
	"fmt"
	"runtime"
)

// Set via -ldflags at build time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// Short returns only the version number.
func Short() string {
	return Version
}

// Info returns the full version report.
func Info() string {
	return fmt.Sprintf("june %s\ncommit: %s\nbuilt: %s\ngo: %s", Version, Commit, BuildTime, runtime.Version())
}
