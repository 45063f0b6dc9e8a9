// Package buildinfo reports which brickguide build is running.
//
// Release builds stamp the variables with ldflags:
//
//	go build -ldflags "-X github.com/assys/brickguide/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/assys/brickguide/pkg/buildinfo.Commit=$(git rev-parse --short HEAD)" \
//	    ./cmd/brickguide
//
// Builds without ldflags fall back to the VCS data the Go toolchain records.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// Template returns the cobra version template.
func Template() string {
	commit, date := Commit, Date
	if commit == "" || date == "" {
		c, d := vcs()
		if commit == "" {
			commit = c
		}
		if date == "" {
			date = d
		}
	}
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, orUnknown(commit), orUnknown(date))
}

func vcs() (revision, time string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
			if len(revision) > 12 {
				revision = revision[:12]
			}
		case "vcs.time":
			time = s.Value
		}
	}
	return revision, time
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
