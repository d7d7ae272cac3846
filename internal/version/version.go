// Package version holds build metadata stamped into every hostkit binary.
package version

import "fmt"

// These variables are set at build time using -ldflags, e.g.
//
//	-X github.com/pandeptwidyaop/hostkit/internal/version.Version=v0.3.0
var (
	// Version is the semantic version (e.g., v1.0.0)
	Version = "dev"

	// BuildTime is the time the binary was built
	BuildTime = "unknown"

	// GitCommit is the git commit hash
	GitCommit = "unknown"
)

// Details returns the lines printed under the version banner.
func Details() string {
	return fmt.Sprintf("Build Time: %s\nGit Commit: %s\n", BuildTime, GitCommit)
}
