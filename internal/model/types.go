package model

import (
	"fmt"
	"strings"
)

// Ref prefixes used by git for local and remote-tracking branches.
const (
	LocalBranchPrefix  = "refs/heads/"
	RemoteBranchPrefix = "refs/remotes/"
)

// Worktree is one entry of `git worktree list --porcelain`.
//
// Example porcelain block:
//
//	worktree /path/to/feature
//	HEAD abc123def456
//	branch refs/heads/feature
//	locked moving disks
//
// A Worktree is immutable once the parser returns it. The Prunable flag is
// taken verbatim from git and never re-derived from the filesystem.
type Worktree struct {
	// Path is the absolute filesystem path to the worktree directory.
	// It is unique within one listing.
	Path string `json:"path"`

	// Head is the commit the worktree points to. Empty when git
	// reported no usable commit id.
	Head string `json:"head,omitempty"`

	// Branch is the full ref, e.g. "refs/heads/main" or
	// "refs/remotes/origin/main". Empty for a detached worktree.
	Branch string `json:"branch,omitempty"`

	// Locked is set when the block carried a "locked" line.
	Locked bool `json:"locked"`

	// LockReason is the optional text after "locked".
	LockReason string `json:"lock_reason,omitempty"`

	// Prunable is set when the block carried a "prunable" line,
	// with or without a reason.
	Prunable bool `json:"prunable"`

	// PrunableReason is the optional text after "prunable".
	PrunableReason string `json:"prunable_reason,omitempty"`

	// Bare marks the bare repository location.
	Bare bool `json:"bare"`
}

// IsDetached reports whether the worktree has no branch checked out.
func (w Worktree) IsDetached() bool {
	return w.Branch == ""
}

// ShortBranch strips the refs/heads/ or refs/remotes/ prefix from Branch.
// Remote branches keep their remote name ("origin/feature").
func (w Worktree) ShortBranch() string {
	return ShortRef(w.Branch)
}

// BranchNames returns every name this worktree answers to when a user
// refers to it by branch. A local branch answers to its short name. A
// remote-tracking branch answers both to "<remote>/<name>" and "<name>".
func (w Worktree) BranchNames() []string {
	switch {
	case strings.HasPrefix(w.Branch, LocalBranchPrefix):
		return []string{strings.TrimPrefix(w.Branch, LocalBranchPrefix)}
	case strings.HasPrefix(w.Branch, RemoteBranchPrefix):
		qualified := strings.TrimPrefix(w.Branch, RemoteBranchPrefix)
		names := []string{qualified}
		if _, name, ok := strings.Cut(qualified, "/"); ok && name != "" {
			names = append(names, name)
		}
		return names
	case w.Branch != "":
		return []string{w.Branch}
	default:
		return nil
	}
}

// HasBranchName reports whether name is one of BranchNames.
func (w Worktree) HasBranchName(name string) bool {
	if name == "" {
		return false
	}
	for _, n := range w.BranchNames() {
		if n == name {
			return true
		}
	}
	return false
}

// ShortRef strips a refs/heads/ or refs/remotes/ prefix from ref.
func ShortRef(ref string) string {
	if s, ok := strings.CutPrefix(ref, LocalBranchPrefix); ok {
		return s
	}
	if s, ok := strings.CutPrefix(ref, RemoteBranchPrefix); ok {
		return s
	}
	return ref
}

// ExitCode is the process exit status for an error category.
// Scripts rely on these values, so they must never change.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitUserError covers bad input, refused operations and policy
	// rejections (removing the main worktree, a locked worktree, ...).
	ExitUserError ExitCode = 1

	// ExitNotFound indicates the target worktree, repository or
	// program could not be located.
	ExitNotFound ExitCode = 2

	// ExitGitError indicates git failed or produced output that could
	// not be parsed.
	ExitGitError ExitCode = 3

	// ExitConfigError indicates the settings document could not be read,
	// parsed or written.
	ExitConfigError ExitCode = 4

	// ExitIOError indicates a filesystem or terminal I/O failure.
	ExitIOError ExitCode = 5
)

// Tag returns the snake_case category name used in error output,
// e.g. "not_found".
func (c ExitCode) Tag() string {
	switch c {
	case ExitSuccess:
		return "ok"
	case ExitUserError:
		return "user_error"
	case ExitNotFound:
		return "not_found"
	case ExitGitError:
		return "git_error"
	case ExitConfigError:
		return "config_error"
	case ExitIOError:
		return "io_error"
	default:
		return "user_error"
	}
}

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes and JSON error documents.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}

// Errorf is a shorthand for NewCLIError with a formatted message.
func Errorf(code ExitCode, format string, args ...any) *CLIError {
	return &CLIError{Code: code, Message: fmt.Sprintf(format, args...)}
}
