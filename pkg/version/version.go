// Package version holds the build version string.
package version

// Version is overridden at release time via
// -ldflags "-X roadtripgo/pkg/version.Version=v1.2.3".
var Version = "0.1.0-dev"
