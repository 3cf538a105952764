// Package version carries build metadata stamped in with -ldflags -X.
package version

var (
	// Version is the release tag of the districting binaries.
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)
