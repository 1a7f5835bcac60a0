// Package version holds the build version.
package version

// Version is set at build time via -ldflags.
var Version = "1.0.0"
