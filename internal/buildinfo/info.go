// Package buildinfo carries version metadata stamped in with -ldflags -X.
package buildinfo

import "fmt"

// Set with -ldflags "-X github.com/cleared-dev/ledgerengine/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String renders the version line shown by `ledgerengine --version`.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
