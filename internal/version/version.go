// Package version provides build-time version information.
package version

import "fmt"

// These variables are set at build time using
// -ldflags "-X labelview/internal/version.Version=..."
var (
	// Version is the semantic version
	Version = "0.1.0"

	// BuildTime is the UTC time when the binary was built
	BuildTime = "unknown"

	// GitCommit is the git commit hash
	GitCommit = "unknown"
)

// String returns the version with commit and build time.
func String() string {
	return fmt.Sprintf("v%s (%s, %s)", Version, GitCommit, BuildTime)
}
