package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Options configures Run.
type Options struct {
	Args []string // argv without the program name

	// Nil streams default to the process's standard streams.
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Context is passed to a command handler. Flag values are read through the pointers returned when the flags were defined.
type Context struct {
	context.Context

	Command *Command
	Args    []string

	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Run parses opts.Args against the tree rooted at root, runs the selected command, and returns the process exit code:
//   - 0 on success or after printing help
//   - 2 on usage errors, which are printed with the command's help
//   - the error's ExitCode for ExitCoder errors, otherwise 1
func Run(ctx context.Context, root *Command, opts Options) int {
	if root == nil || root.Name == "" {
		panic("cli: Run needs a named root command")
	}
	in, out, errOut := opts.In, opts.Out, opts.Err
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}

	p := parser{cmd: root}
	if err := p.parse(opts.Args); err != nil {
		if errors.Is(err, errHelp) {
			writeHelp(out, p.cmd)
			return 0
		}
		return report(p.cmd, err, errOut)
	}

	cmd := p.cmd
	if cmd.Run == nil {
		if len(p.args) == 0 {
			return report(cmd, Usagef("missing command"), errOut)
		}
		return report(cmd, Usagef("unknown command: %s", p.args[0]), errOut)
	}
	if cmd.Args != nil {
		if err := cmd.Args(p.args); err != nil {
			var ue UsageError
			if !errors.As(err, &ue) {
				err = UsageError{Message: err.Error()}
			}
			return report(cmd, err, errOut)
		}
	}

	err := cmd.Run(&Context{Context: ctx, Command: cmd, Args: p.args, In: in, Out: out, Err: errOut})
	if err == nil {
		return 0
	}
	return report(cmd, err, errOut)
}

// report prints err to w and returns its exit code.
func report(cmd *Command, err error, w io.Writer) int {
	code := 1
	var ec ExitCoder
	if errors.As(err, &ec) {
		code = ec.ExitCode()
	}
	if msg := err.Error(); msg != "" && code != 0 {
		fmt.Fprintf(w, "%s: %s\n", cmd.FullName(), msg)
	}
	if code == 2 {
		fmt.Fprintln(w)
		writeHelp(w, cmd)
	}
	return code
}

var errHelp = errors.New("help requested")

type parser struct {
	cmd  *Command
	args []string
}

// parse selects the deepest command named by the leading non-flag tokens and sets flags as they appear.
func (p *parser) parse(argv []string) error {
	selecting := true
	for i := 0; i < len(argv); i++ {
		tok := argv[i]
		switch {
		case tok == "--":
			p.args = append(p.args, argv[i+1:]...)
			return nil
		case tok == "-h" || tok == "--help":
			return errHelp
		case strings.HasPrefix(tok, "-") && tok != "-":
			var next *string
			if i+1 < len(argv) {
				next = &argv[i+1]
			}
			consumed, err := p.flag(tok, next)
			if err != nil {
				return err
			}
			if consumed {
				i++
			}
		default:
			if selecting {
				if child := p.cmd.child(tok); child != nil {
					p.cmd = child
					continue
				}
				selecting = false
			}
			p.args = append(p.args, tok)
		}
	}
	return nil
}

// flag sets the flag named by tok and reports whether it consumed next as its value.
func (p *parser) flag(tok string, next *string) (bool, error) {
	var name string
	var short rune
	body := strings.TrimPrefix(tok, "-")
	if strings.HasPrefix(body, "-") {
		name = body[1:]
	}

	var value string
	hasValue := false
	if name != "" {
		name, value, hasValue = strings.Cut(name, "=")
	} else {
		if len(body) != 1 && body[1] != '=' {
			return false, Usagef("unknown flag: %s", tok)
		}
		short = rune(body[0])
		if len(body) > 1 {
			value, hasValue = body[2:], true
		}
	}

	d := findFlag(p.cmd.activeFlags(), name, short)
	if d == nil {
		return false, Usagef("unknown flag: %s", tok)
	}

	consumed := false
	if !hasValue {
		switch {
		case d.kind == flagBool:
			value = "true"
		case next == nil || *next == "--":
			return false, Usagef("flag needs a value: %s", tok)
		default:
			value, consumed = *next, true
		}
	}
	if err := d.set(value); err != nil {
		return false, Usagef("invalid value for %s: %v", d.display(), err)
	}
	return consumed, nil
}
