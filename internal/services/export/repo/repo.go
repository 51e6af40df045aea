// Package repo provides the database mirrors for exported visits and hits
package repo

import (
	"bytes"
	"encoding/json"
)

// Table names shared by both mirrors
const (
	VisitsTable = "ga_visits"
	HitsTable   = "ga_hits"
)

// jsonText renders a verbatim field for storage, compacted. An absent value
// becomes JSON null
func jsonText(raw json.RawMessage) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "null"
	}
	var b bytes.Buffer
	if err := json.Compact(&b, raw); err != nil {
		return string(raw)
	}
	return b.String()
}
