// Package process runs external programs (git, fzf) and captures their
// exit status, stdout and stderr.
//
// Production code uses ExecRunner. Tests inject a MockRunner that returns
// pre-recorded responses and records every invocation, so command logic
// can be verified without a git binary or a terminal.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/shinji-kodama/wt/internal/logger"
	"github.com/shinji-kodama/wt/internal/model"
)

// Result is the outcome of a program that was started and waited for.
// A non-zero ExitCode is not an error at this level; callers decide what
// the code means (fzf uses 1 and 130 for "nothing chosen").
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the program exited with status 0.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// Runner abstracts program execution for testability.
type Runner interface {
	// Run executes name with args in dir and waits for it to exit.
	// The returned error is non-nil only when the program could not be
	// started (missing binary, bad directory, cancelled context).
	Run(ctx context.Context, dir, name string, args ...string) (*Result, error)

	// RunWithInput is Run with input fed to the program's stdin. The
	// input is fully buffered and closed before the wait begins. Stderr
	// is also forwarded to the terminal, where interactive programs such
	// as fzf draw their interface.
	RunWithInput(ctx context.Context, dir, input, name string, args ...string) (*Result, error)
}

// CommandError reports a program that exited with a non-zero status.
type CommandError struct {
	Name     string
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command failed: %s %s\nexit: %d", e.Name, strings.Join(e.Args, " "), e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += "\nstderr: " + s
	}
	return msg
}

// Output runs the program and returns its stdout, or a *CommandError when
// it exits non-zero.
func Output(ctx context.Context, r Runner, dir, name string, args ...string) (string, error) {
	res, err := r.Run(ctx, dir, name, args...)
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return "", &CommandError{Name: name, Args: args, ExitCode: res.ExitCode, Stderr: res.Stderr}
	}
	return res.Stdout, nil
}

// ExecRunner executes programs using os/exec.
type ExecRunner struct{}

// NewExecRunner returns a new ExecRunner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes a program and captures its output.
func (e *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (*Result, error) {
	return e.run(ctx, dir, nil, name, args...)
}

// RunWithInput executes a program with input on stdin.
func (e *ExecRunner) RunWithInput(ctx context.Context, dir, input, name string, args ...string) (*Result, error) {
	return e.run(ctx, dir, strings.NewReader(input), name, args...)
}

func (e *ExecRunner) run(ctx context.Context, dir string, stdin *strings.Reader, name string, args ...string) (*Result, error) {
	log := logger.WithComponent("process")
	log.Debug("exec", "dir", dir, "cmd", name, "args", args)

	// #nosec G204 -- program names are fixed by callers, args are passed without a shell
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if stdin != nil {
		cmd.Stdin = stdin
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != nil {
		cmd.Stderr = io.MultiWriter(&stderr, os.Stderr)
	}

	err := cmd.Run()
	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return res, nil
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		log.Debug("exit", "cmd", name, "code", res.ExitCode)
		return res, nil
	case errors.Is(err, exec.ErrNotFound):
		return nil, model.WrapCLIError(model.ExitNotFound, fmt.Sprintf("%s not found in PATH", name), err)
	default:
		return nil, model.WrapCLIError(model.ExitIOError, fmt.Sprintf("failed to run %s", name), err)
	}
}
