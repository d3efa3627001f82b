package ch

import (
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// BuildClientInfo describes this process to ClickHouse
// role is the process name (api, worker), tag is the build tag
func BuildClientInfo(role, tag string) clickhouse.ClientInfo {
	host, _ := os.Hostname()
	if role == "" {
		role = "api"
	}

	type product = struct{ Name, Version string }
	return clickhouse.ClientInfo{
		Products: []product{
			{Name: "brushline", Version: strings.TrimSpace(tag)},
			{Name: "role", Version: strings.TrimSpace(role)},
			{Name: "go", Version: runtime.Version()},
			{Name: "commit", Version: revision()},
			{Name: "host", Version: strings.TrimSpace(host)},
		},
	}
}

// revision is the short vcs hash baked in by the go toolchain, or "unknown"
func revision() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return s.Value[:7]
		}
	}
	return "unknown"
}
