// Package version exposes the build-stamped release version.
package version

// version is overridden at build time via -ldflags.
var version = "v0.0.0"

// Value returns the current version string.
func Value() string {
	return version
}
