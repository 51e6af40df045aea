package main

import (
	"errors"
	"flag"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	perr "gaexport/internal/platform/errors"
)

const (
	defaultVisitsPath = "visits.json"
	defaultHitsPath   = "hits.json"
	stdinName         = "-"
)

// cliArgs are the parsed command line
type cliArgs struct {
	File    string
	Visits  string
	Hits    string
	Version bool
}

// parseArgs accepts the positional input file anywhere among the flags.
// flag.ErrHelp is returned as is after usage was printed
func parseArgs(args []string, out io.Writer) (cliArgs, error) {
	var a cliArgs
	fs := flag.NewFlagSet("gaexport", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&a.Visits, "ov", defaultVisitsPath, "visits JSON output file path")
	fs.StringVar(&a.Hits, "oh", defaultHitsPath, "hits JSON output file path")
	fs.BoolVar(&a.Version, "version", false, "print the build version and exit")
	fs.Usage = func() {
		_, _ = io.WriteString(out, "usage: gaexport [-ov visits.json] [-oh hits.json] [file|-]\n\n"+
			"Reads line-delimited GA sessions from file, or from stdin when piped,\n"+
			"and writes one visit line and one line per hit.\n\n")
		fs.PrintDefaults()
	}

	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return a, flag.ErrHelp
			}
			return a, perr.InvalidArgf("%v", err)
		}
		rest = fs.Args()
		if len(rest) == 0 {
			break
		}
		if a.File != "" {
			fs.Usage()
			return a, perr.InvalidArgf("unexpected argument %q", rest[0])
		}
		a.File, rest = rest[0], rest[1:]
	}
	if a.Visits == "" || a.Hits == "" {
		return a, perr.InvalidArgf("-ov and -oh must not be empty")
	}
	return a, nil
}

// isTerminal reports whether f is an interactive terminal
func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// openInput picks the input: an explicit file (or - for stdin) wins,
// otherwise stdin when it is piped. A terminal stdin with no file is a
// usage error
func openInput(a cliArgs, stdin *os.File, tty func(*os.File) bool) (io.ReadCloser, string, error) {
	switch {
	case a.File == stdinName:
		return io.NopCloser(stdin), "stdin", nil
	case a.File != "":
		f, err := os.Open(a.File)
		if err != nil {
			return nil, a.File, perr.WithOp(perr.Wrapf(err, perr.ErrorCodeNoInput, "open input %s", a.File), "input.open")
		}
		return f, a.File, nil
	case stdin != nil && !tty(stdin):
		return io.NopCloser(stdin), "stdin", nil
	}
	return nil, "", perr.InvalidArgf("no input: pass a file or pipe data on stdin")
}

// createOutput truncates or creates path
func createOutput(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, perr.WithOp(perr.Wrapf(err, perr.ErrorCodeIO, "create output %s", path), "output.create")
	}
	return f, nil
}
