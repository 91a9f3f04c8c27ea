// Package version reports the build stamped into the binary
package version

import "runtime/debug"

// BuildInfo holds version information about the binary
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go,omitempty"`
}

// set with -ldflags "-X curator/internal/core/version.version=v0.3.0 -X ...commit=abcd -X ...date=2025-01-02"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Info returns the stamped build information
func Info() BuildInfo {
	bi := BuildInfo{Service: "curator", Version: version, Commit: commit, Date: date}
	if info, ok := debug.ReadBuildInfo(); ok && info != nil {
		bi.Go = info.GoVersion
	}
	return bi
}

// String is the one line form printed by the cli
func (b BuildInfo) String() string {
	return b.Service + " " + b.Version + " (" + b.Commit + ", " + b.Date + ")"
}
