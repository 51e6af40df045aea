package domain

import (
	"context"

	"gaexport/internal/core/visit"
)

// Source yields one decoded session record per call and io.EOF at the end
type Source interface {
	Next() (visit.Input, error)
}

// LineSource is a Source that knows the line number of its last record
type LineSource interface {
	Source
	Line() int
}

// Sink receives output rows, one JSON line each
type Sink interface {
	Write(v any) error
	Flush() error
}

// Mirror gets every flattened record after both JSON lines are flushed
type Mirror interface {
	Name() string
	Load(ctx context.Context, v visit.Visit, hits []visit.Hit) error
}

// SchemaMirror is a Mirror that can create its own tables
type SchemaMirror interface {
	Mirror
	EnsureSchema(ctx context.Context) error
}
