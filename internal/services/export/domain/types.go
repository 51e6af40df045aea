// Package domain defines the types and interfaces for the export service
package domain

import "gaexport/internal/core/visit"

// Config is everything one export run needs. The entry point builds it once
type Config struct {
	Input   Source
	Visits  Sink
	Hits    Sink
	Mirrors []Mirror
	Options visit.Options
}

// Stats counts what a run produced, including a failed run's partial output
type Stats struct {
	Records int
	Visits  int
	Hits    int
	// Bytes is input bytes consumed when the source reports it
	Bytes int64
}
