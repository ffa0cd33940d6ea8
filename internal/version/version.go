// Package version holds build metadata injected at link time.
package version

import "fmt"

// Version is the application version, overridden at build time via
// -ldflags "-X github.com/soundmap/soundmap/internal/version.Version=...".
var Version = "dev"

// Commit is the git commit the binary was built from.
var Commit = "unknown"

// UserAgent returns the User-Agent string sent with every upstream request.
// The open knowledge bases we query (MusicBrainz, Wikimedia, Nominatim) all
// require an identifying agent with a contact URL.
func UserAgent() string {
	return fmt.Sprintf("Soundmap/%s (+https://github.com/soundmap/soundmap)", Version)
}
