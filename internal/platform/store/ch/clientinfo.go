package ch

import (
	"os"
	"runtime"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"

	"gaexport/internal/core/version"
)

// BuildClientInfo describes this process to the server (system.query_log
// shows it). app defaults to gaexport
func BuildClientInfo(app, role string) clickhouse.ClientInfo {
	if strings.TrimSpace(app) == "" {
		app = "gaexport"
	}
	host, _ := os.Hostname()

	type kv = struct{ Name, Version string }
	return clickhouse.ClientInfo{Products: []kv{
		{Name: strings.TrimSpace(app), Version: version.Info().Short()},
		{Name: "role", Version: strings.TrimSpace(role)},
		{Name: "go", Version: runtime.Version()},
		{Name: "host", Version: strings.TrimSpace(host)},
	}}
}
