// Package module wires the export service: options, mirrors, run config
package module

import (
	"context"

	"gaexport/internal/core/visit"
	"gaexport/internal/modkit"
	"gaexport/internal/modkit/repokit"
	perr "gaexport/internal/platform/errors"
	dom "gaexport/internal/services/export/domain"
	"gaexport/internal/services/export/repo"
	"gaexport/internal/services/export/service"
)

// Ports exposed by the export module
type Ports struct {
	Mirrors []dom.Mirror
}

// Module implements the export service module
type Module struct {
	deps  modkit.Deps
	opts  Options
	clock visit.Options
	ports Ports
}

var _ modkit.Module = (*Module)(nil)

// New validates opts and builds the enabled mirrors from deps
func New(deps modkit.Deps, opts Options) (*Module, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	clock, err := opts.Clock()
	if err != nil {
		return nil, err
	}

	m := &Module{deps: deps, opts: opts, clock: visit.Options{Clock: clock}}

	if opts.MirrorPG {
		if deps.PG == nil {
			return nil, perr.InvalidArgf("export: pg mirror enabled without a pg connection")
		}
		var hooks []repokit.BeginHook
		if opts.PGAsyncCommit {
			hooks = append(hooks, repokit.SetLocal("synchronous_commit", "off"))
		}
		m.ports.Mirrors = append(m.ports.Mirrors, repo.NewPGMirror(deps.PG, hooks...))
	}
	if opts.MirrorCH {
		if deps.CH == nil {
			return nil, perr.InvalidArgf("export: ch mirror enabled without a ch connection")
		}
		m.ports.Mirrors = append(m.ports.Mirrors, repo.NewCHMirror(deps.CH))
	}
	return m, nil
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "export" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Options returns the validated options
func (m *Module) Options() Options { return m.opts }

// Prepare creates mirror tables
func (m *Module) Prepare(ctx context.Context) error {
	for _, mr := range m.ports.Mirrors {
		sm, ok := mr.(dom.SchemaMirror)
		if !ok {
			continue
		}
		if err := sm.EnsureSchema(ctx); err != nil {
			return err
		}
		m.deps.Log.Debug().Str("mirror", mr.Name()).Msg("mirror schema ready")
	}
	return nil
}

// Run exports in to the two sinks and every enabled mirror
func (m *Module) Run(ctx context.Context, in dom.Source, visits, hits dom.Sink) (dom.Stats, error) {
	return service.Run(ctx, dom.Config{
		Input:   in,
		Visits:  visits,
		Hits:    hits,
		Mirrors: m.ports.Mirrors,
		Options: m.clock,
	})
}
