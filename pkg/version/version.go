// Package version exposes build version information.
package version

// Version is the semantic version, overridable at build time via
// -ldflags "-X github.com/uigen/patternmatch/pkg/version.Version=...".
var Version = "0.1.0"

// Commit is the git commit the binary was built from.
var Commit = "unknown"
