// Package buildinfo exposes build-time version metadata. The values are
// overridden at link time via -ldflags.
package buildinfo

var (
	// Version is the semantic version of the build.
	Version = "dev"

	// Commit is the git commit the binary was built from.
	Commit = "unknown"

	// Date is the build timestamp.
	Date = "unknown"
)
