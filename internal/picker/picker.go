// Package picker drives the fzf fuzzy finder.
//
// fzf reports its outcome through exit codes: 0 for a selection, 1 when
// nothing matched, 130 when the user pressed Esc or Ctrl-C. Pick turns
// those into a Result so callers switch on a type instead of remembering
// magic numbers.
package picker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shinji-kodama/wt/internal/process"
)

// Binary is the fzf executable looked up in PATH.
const Binary = "fzf"

// Result is one of Selected, Cancelled or Failed.
type Result interface {
	isResult()
}

// Selected is a chosen candidate. Key is the --expect key that accepted
// it, or "" for Enter.
type Selected struct {
	Key  string
	Line string
}

// Cancelled means the user aborted or nothing matched.
type Cancelled struct{}

// Failed means fzf could not run or exited with an unexpected status.
type Failed struct {
	Err error
}

func (Selected) isResult()  {}
func (Cancelled) isResult() {}
func (Failed) isResult()    {}

// Options controls fzf's appearance and behavior.
type Options struct {
	Height        string
	Layout        string
	PreviewWindow string

	// Preview is a shell command template, e.g. "wt preview --path {2}".
	Preview string

	Prompt string
	Header string

	// Expect lists keys that accept a candidate in addition to Enter.
	Expect []string

	// Delimiter splits candidate lines into fields; WithNth selects the
	// fields shown. Fields keep their original numbering in Preview.
	Delimiter string
	WithNth   string
}

// Args returns the fzf command line for opts.
func (o Options) Args() []string {
	var args []string
	add := func(flag, value string) {
		if value != "" {
			args = append(args, flag, value)
		}
	}

	add("--height", o.Height)
	add("--layout", o.Layout)
	add("--preview-window", o.PreviewWindow)
	add("--preview", o.Preview)
	add("--prompt", o.Prompt)
	add("--header", o.Header)
	add("--delimiter", o.Delimiter)
	add("--with-nth", o.WithNth)
	if len(o.Expect) > 0 {
		args = append(args, "--expect", strings.Join(o.Expect, ","))
	}
	return args
}

// Picker runs fzf through a process.Runner.
type Picker struct {
	runner process.Runner
}

// New creates a Picker.
func New(runner process.Runner) *Picker {
	return &Picker{runner: runner}
}

// Pick shows candidates in fzf and waits for the user. Candidates are
// written to fzf's stdin in full, one per line, before waiting.
func (p *Picker) Pick(ctx context.Context, candidates []string, opts Options) Result {
	var input strings.Builder
	for _, c := range candidates {
		input.WriteString(c)
		input.WriteByte('\n')
	}

	res, err := p.runner.RunWithInput(ctx, "", input.String(), Binary, opts.Args()...)
	if err != nil {
		return Failed{Err: err}
	}
	return interpret(res, len(opts.Expect) > 0)
}

// interpret maps fzf's exit status and output to a Result. With --expect,
// fzf prints the accepting key on the first line (empty for Enter) and the
// selection on the second.
func interpret(res *process.Result, expect bool) Result {
	switch res.ExitCode {
	case 0:
	case 1, 130:
		return Cancelled{}
	default:
		msg := fmt.Sprintf("fzf exited with status %d", res.ExitCode)
		if s := strings.TrimSpace(res.Stderr); s != "" {
			msg += ": " + s
		}
		return Failed{Err: errors.New(msg)}
	}

	lines := strings.Split(strings.TrimRight(res.Stdout, "\r\n"), "\n")
	var key, line string
	if expect {
		key = strings.TrimSpace(lines[0])
		if len(lines) > 1 {
			line = lines[1]
		}
	} else {
		line = lines[0]
	}

	line = strings.TrimRight(line, "\r")
	if strings.TrimSpace(line) == "" {
		return Cancelled{}
	}
	return Selected{Key: key, Line: line}
}
