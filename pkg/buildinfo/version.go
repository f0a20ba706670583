// Package buildinfo reports which diagrammer build is running. The CLI prints
// it for --version and the server includes it in /health.
//
// Release builds stamp the values with the linker:
//
//	go build -ldflags "-X github.com/matzehuels/diagrammer/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/diagrammer/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/diagrammer/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/diagrammer
package buildinfo

import "fmt"

// Stamped by -ldflags; local builds keep the placeholders.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build stamp in a form that encodes to JSON.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the current build stamp.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// Template is the cobra version template: "diagrammer version v0.3.0 (abc1234, 2025-01-02T...)".
func Template() string {
	i := Get()
	return fmt.Sprintf("{{.Name}} version %s (%s, %s)\n", i.Version, i.Commit, i.Date)
}
