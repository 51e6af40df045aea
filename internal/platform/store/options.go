package store

import (
	"time"

	perr "gaexport/internal/platform/errors"
	"gaexport/internal/platform/logger"
)

// Option mutates Store during Open
type Option func(*Store) error

// WithLogger sets the logger used by subclients
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}

// WithPingBackoff overrides the delay between pg connect attempts
func WithPingBackoff(start, ceiling time.Duration) Option {
	return func(s *Store) error {
		if start <= 0 || ceiling < start {
			return perr.InvalidArgf("store: bad ping backoff %s..%s", start, ceiling)
		}
		s.backoff = backoff{start: start, ceiling: ceiling}
		return nil
	}
}
