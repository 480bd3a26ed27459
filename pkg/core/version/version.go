// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     version
// Description: Central version information for the diktat binary
// Created:     2026-09-21
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Version is the release version of diktat
const Version = "1.0.0"

// Build metadata, set via -ldflags "-X github.com/msto63/diktat/pkg/core/version.Commit=..."
var (
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info returns a human-readable version line
func Info() string {
	return fmt.Sprintf("diktat %s (commit %s, built %s, %s/%s)",
		Version, Commit, BuildDate, runtime.GOOS, runtime.GOARCH)
}

// UserAgent returns the User-Agent used for outbound HTTP requests
func UserAgent() string {
	return "diktat/" + Version
}
