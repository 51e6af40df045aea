package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"gaexport/internal/adapters/ingest/jsonl"
	"gaexport/internal/core/version"
	"gaexport/internal/modkit"
	"gaexport/internal/platform/config"
	perr "gaexport/internal/platform/errors"
	"gaexport/internal/platform/logger"
	"gaexport/internal/platform/store"
	dom "gaexport/internal/services/export/domain"
	"gaexport/internal/services/export/module"
)

// run executes one export and returns the process exit status
func run(ctx context.Context, args []string, stdin *os.File, tty func(*os.File) bool) int {
	ctx = logger.WithRun(ctx, uuid.NewString())
	log := logger.C(ctx)

	opts := module.FromConfig(config.New())
	started := time.Now()

	a, err := parseArgs(args, os.Stderr)
	switch {
	case errors.Is(err, flag.ErrHelp):
		return perr.ExitOK
	case err != nil:
		log.Error().Err(err).Msg("bad arguments")
		return exitStatus(err, opts)
	case a.Version:
		bi := version.Info()
		fmt.Printf("%s %s (commit %s, built %s)\n", bi.Name, bi.Version, bi.Commit, bi.Date)
		return perr.ExitOK
	}

	st, err := execute(ctx, a, stdin, tty, opts)
	if err != nil {
		evt := log.Error().Stack().Err(err).
			Str("code", perr.CodeOf(err).String()).
			Int("records", st.Records).
			Int("visits", st.Visits).
			Int("hits", st.Hits)
		if e, ok := perr.As(err); ok {
			if e.Field() != "" {
				evt = evt.Str("field", e.Field())
			}
			if e.Op() != "" {
				evt = evt.Str("op", e.Op())
			}
		}
		if state, ok := perr.SQLState(err); ok {
			evt = evt.Str("sqlstate", state)
		}
		evt.Msg("export failed")
		return exitStatus(err, opts)
	}

	log.Info().
		Int("records", st.Records).
		Int("visits", st.Visits).
		Int("hits", st.Hits).
		Int64("bytes", st.Bytes).
		Dur("elapsed", time.Since(started)).
		Msg("export finished")
	return perr.ExitOK
}

// exitStatus maps err to a process status unless legacy mode keeps every run at 0
func exitStatus(err error, opts module.Options) int {
	if opts.LegacyExitZero {
		return perr.ExitOK
	}
	return perr.ExitCode(err)
}

// execute wires config, storage, input and outputs, then runs the export.
// Everything opened here is closed before it returns
func execute(
	ctx context.Context,
	a cliArgs,
	stdin *os.File,
	tty func(*os.File) bool,
	opts module.Options,
) (st dom.Stats, err error) {
	log := logger.C(ctx)

	defer func() {
		if r := recover(); r != nil {
			err = perr.PanicErrf("panic: %v", r)
		}
	}()

	if err := opts.Validate(); err != nil {
		return st, err
	}

	var closers closeStack
	defer func() { closers.closeAll(log) }()

	var db *store.Store
	if opts.MirrorPG || opts.MirrorCH {
		db, err = store.Open(ctx, store.Config{
			AppName: "gaexport",
			PG: store.PGConfig{
				Enabled:     opts.MirrorPG,
				URL:         opts.PGURL,
				MaxConns:    int32(opts.PGMaxConns),
				SlowQueryMs: opts.PGSlowMs,
				LogSQL:      opts.PGLogSQL,
			},
			CH: store.CHConfig{
				Enabled: opts.MirrorCH,
				URL:     opts.CHURL,
				LogSQL:  opts.CHLogSQL,
			},
		}, store.WithLogger(*log))
		if err != nil {
			return st, err
		}
		closers.push("store", func() error { return db.Close(context.Background()) })
		if err := db.Guard(ctx); err != nil {
			return st, err
		}
	}

	mod, err := module.New(modkit.FromStore(*log, config.New(), db), opts)
	if err != nil {
		return st, err
	}
	if err := mod.Prepare(ctx); err != nil {
		return st, err
	}

	src, name, err := openInput(a, stdin, tty)
	if err != nil {
		return st, err
	}
	rd, err := jsonl.NewReader(src)
	if err != nil {
		_ = src.Close()
		return st, err
	}
	closers.push("input", rd.Close)

	visits, err := openSink(a.Visits, &closers)
	if err != nil {
		return st, err
	}
	hits, err := openSink(a.Hits, &closers)
	if err != nil {
		return st, err
	}

	log.Debug().
		Str("input", name).
		Str("visits", a.Visits).
		Str("hits", a.Hits).
		Str("version", version.Info().Short()).
		Int("mirrors", len(mod.Ports().(module.Ports).Mirrors)).
		Msg("export starting")

	return mod.Run(ctx, rd, visits, hits)
}

func openSink(path string, closers *closeStack) (*jsonl.Writer, error) {
	f, err := createOutput(path)
	if err != nil {
		return nil, err
	}
	w := jsonl.NewWriter(f)
	closers.push(path, w.Close)
	return w, nil
}

// closeStack closes resources in reverse order of opening
type closeStack []namedCloser

type namedCloser struct {
	name  string
	close func() error
}

func (c *closeStack) push(name string, fn func() error) {
	*c = append(*c, namedCloser{name: name, close: fn})
}

// closeAll never fails; close errors are only logged
func (c closeStack) closeAll(log *logger.Logger) {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].close(); err != nil {
			log.Debug().Err(err).Str("resource", c[i].name).Msg("close failed")
		}
	}
}
