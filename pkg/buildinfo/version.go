// Package buildinfo holds the version stamped into polytree at link time:
//
//	go build -ldflags "-X github.com/matzehuels/polytree/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/polytree/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/polytree/pkg/buildinfo.Date=$(date -u +%Y-%m-%d)" ./cmd/polytree
package buildinfo

import "fmt"

// Set with -ldflags -X; unstamped builds report "dev".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is served by the server's health endpoint.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the stamped build information.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// Template is the cobra version template used by `polytree --version`.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (%s, built %s)\n", Version, Commit, Date)
}
