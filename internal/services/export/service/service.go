// Package service runs the export loop: read, flatten, write, mirror
package service

import (
	"context"
	"errors"
	"io"

	"gaexport/internal/core/visit"
	perr "gaexport/internal/platform/errors"
	"gaexport/internal/platform/logger"
	dom "gaexport/internal/services/export/domain"
)

// Service flattens a record stream into visit and hit sinks
type Service struct {
	cfg dom.Config
}

// New validates the wiring and returns a Service
func New(cfg dom.Config) (*Service, error) {
	switch {
	case cfg.Input == nil:
		return nil, perr.InvalidArgf("export: nil input source")
	case cfg.Visits == nil:
		return nil, perr.InvalidArgf("export: nil visits sink")
	case cfg.Hits == nil:
		return nil, perr.InvalidArgf("export: nil hits sink")
	}
	for i, m := range cfg.Mirrors {
		if m == nil {
			return nil, perr.InvalidArgf("export: nil mirror at %d", i)
		}
	}
	return &Service{cfg: cfg}, nil
}

// Run is New followed by Service.Run
func Run(ctx context.Context, cfg dom.Config) (dom.Stats, error) {
	s, err := New(cfg)
	if err != nil {
		return dom.Stats{}, err
	}
	return s.Run(ctx)
}

// Run processes records until the source is exhausted or a step fails.
// Each record is written and flushed in full before the next one is read;
// on failure everything already written stays in the sinks
func (s *Service) Run(ctx context.Context) (dom.Stats, error) {
	log := logger.C(ctx).With().Str("component", "export").Logger()
	var st dom.Stats
	done := func(err error) (dom.Stats, error) {
		st.Bytes = s.inputBytes()
		return st, err
	}

	stopped := func(err error) (dom.Stats, error) {
		return done(perr.Wrapf(err, perr.ErrorCodeUnknown, "export: stopped after %d records", st.Records))
	}

	for {
		if err := ctx.Err(); err != nil {
			return stopped(err)
		}

		in, err := s.next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if cerr := ctx.Err(); cerr != nil && errors.Is(err, cerr) {
				return stopped(err)
			}
			return done(err)
		}
		line := s.line(st.Records + 1)

		v, hits, err := visit.Transform(in, s.cfg.Options)
		if err != nil {
			return done(atLine(err, line, "visit.transform"))
		}

		if err := s.cfg.Visits.Write(v); err != nil {
			return done(atLine(err, line, "visits.write"))
		}
		st.Visits++
		for i := range hits {
			if err := s.cfg.Hits.Write(hits[i]); err != nil {
				return done(atLine(err, line, "hits.write"))
			}
			st.Hits++
		}
		if err := s.cfg.Visits.Flush(); err != nil {
			return done(atLine(err, line, "visits.flush"))
		}
		if err := s.cfg.Hits.Flush(); err != nil {
			return done(atLine(err, line, "hits.flush"))
		}
		st.Records++

		for _, m := range s.cfg.Mirrors {
			if err := m.Load(ctx, v, hits); err != nil {
				if perr.CodeOf(err) == perr.ErrorCodeUnknown {
					err = perr.Wrapf(err, perr.ErrorCodeDB, "%s mirror", m.Name())
				}
				return done(atLine(err, line, m.Name()+".load"))
			}
		}

		log.Debug().
			Int("line", line).
			Str("unique_visit_id", v.UniqueVisitID).
			Int("hits", len(hits)).
			Msg("record exported")
	}
	return done(nil)
}

type nextResult struct {
	in  visit.Input
	err error
}

// next reads one record but gives up when ctx ends first. The abandoned
// read keeps its goroutine until the source returns; Next is never called again
func (s *Service) next(ctx context.Context) (visit.Input, error) {
	if ctx.Done() == nil {
		return s.cfg.Input.Next()
	}
	ch := make(chan nextResult, 1)
	go func() {
		in, err := s.cfg.Input.Next()
		ch <- nextResult{in: in, err: err}
	}()
	select {
	case r := <-ch:
		return r.in, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Service) line(fallback int) int {
	if ls, ok := s.cfg.Input.(dom.LineSource); ok {
		return ls.Line()
	}
	return fallback
}

func (s *Service) inputBytes() int64 {
	if c, ok := s.cfg.Input.(interface{ Stats() (int, int64) }); ok {
		_, n := c.Stats()
		return n
	}
	return 0
}

// atLine prefixes err with the input line, keeping its code and field
func atLine(err error, line int, op string) error {
	e, ok := perr.As(err)
	if !ok {
		return perr.WithOp(perr.Wrapf(err, perr.ErrorCodeUnknown, "line %d", line), op)
	}
	out := perr.Wrapf(err, e.Code(), "line %d", line)
	out = perr.WithField(out, e.Field())
	return perr.WithOp(out, op)
}
