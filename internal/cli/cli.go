// Package cli implements the nbreview command line: compare notebooks, align plain files, and record review verdicts.
package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	qcli "github.com/nbreview/nbreview/internal/q/cli"
	"github.com/nbreview/nbreview/internal/simplelogger"
)

// Version is the nbreview version. It is a var so builds can override it with -ldflags "-X .../internal/cli.Version=...".
var Version = "0.3.0"

// RunOptions overrides standard I/O. Nil fields use the process's streams.
type RunOptions struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Run runs the CLI with args (typically os.Args, program name included).
//
// It returns an exit code and, when the code is non-zero, an error carrying what was printed to stderr:
//   - 0: success
//   - 1: the command failed (unreadable notebook, database error, ...)
//   - 2: usage error (unknown flag, wrong number of args, invalid flag value)
func Run(args []string, opts *RunOptions) (int, error) {
	argv := args
	if len(argv) > 0 {
		argv = argv[1:]
	}
	defer simplelogger.Since(time.Now(), "nbreview %s", strings.Join(argv, " "))

	var in io.Reader = os.Stdin
	var out io.Writer = os.Stdout
	var errW io.Writer = os.Stderr
	if opts != nil {
		if opts.In != nil {
			in = opts.In
		}
		if opts.Out != nil {
			out = opts.Out
		}
		if opts.Err != nil {
			errW = opts.Err
		}
	}

	// q/cli returns only an exit code, so stderr is teed to build the error.
	var stderrBuf bytes.Buffer
	exitCode := qcli.Run(context.Background(), newRootCommand(), qcli.Options{
		Args: argv,
		In:   in,
		Out:  out,
		Err:  io.MultiWriter(errW, &stderrBuf),
	})
	if exitCode == 0 {
		return 0, nil
	}

	msg := strings.TrimSpace(stderrBuf.String())
	if msg == "" {
		msg = "command failed"
	}
	simplelogger.Log("exit %d: %s", exitCode, firstLine(msg))
	return exitCode, errors.New(msg)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
