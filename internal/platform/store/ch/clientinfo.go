package ch

import (
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// BuildClientInfo tags our queries in system.query_log with role, version and host
func BuildClientInfo(role, version string) clickhouse.ClientInfo {
	host, _ := os.Hostname()
	if version == "" {
		version = "dev"
	}
	type product = struct{ Name, Version string }
	return clickhouse.ClientInfo{Products: []product{
		{Name: "curator", Version: strings.TrimSpace(version)},
		{Name: "role", Version: strings.TrimSpace(role)},
		{Name: "go", Version: runtime.Version()},
		{Name: "commit", Version: commit()},
		{Name: "host", Version: strings.TrimSpace(host)},
	}}
}

func commit() string {
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				return s.Value[:7]
			}
		}
	}
	return "unknown"
}
