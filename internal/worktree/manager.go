package worktree

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/shinji-kodama/wt/internal/logger"
	"github.com/shinji-kodama/wt/internal/model"
	"github.com/shinji-kodama/wt/internal/process"
)

// UnknownBranch is returned by MainBranch when no main branch could be
// detected. No worktree is protected in that case.
const UnknownBranch = "unknown"

// Manager provides git worktree operations by invoking the git CLI.
//
// Every method takes the directory git should operate in; git is run as
// `git -C <dir> ...` so the process working directory is never changed.
type Manager struct {
	runner process.Runner
}

// NewManager creates a Manager that runs git through runner.
func NewManager(runner process.Runner) *Manager {
	return &Manager{runner: runner}
}

// AddOptions describes a worktree to create.
type AddOptions struct {
	// Branch is the branch to check out or create.
	Branch string

	// Path is where the worktree directory is created.
	Path string

	// Base is the start point for a new branch. Empty means HEAD.
	Base string

	// Track, when set, names a remote: a new local branch is created
	// tracking <Track>/<Branch>.
	Track string
}

// RepoRoot returns the top-level directory of the working tree containing
// dir. An empty dir means the current working directory.
//
// For a linked worktree this is the worktree root, which is enough for
// every command since `git worktree list` reports all worktrees from any of
// them.
func (m *Manager) RepoRoot(ctx context.Context, dir string) (string, error) {
	out, err := m.runGit(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		var cliErr *model.CLIError
		if errors.As(err, &cliErr) && cliErr.Code != model.ExitGitError {
			return "", err
		}
		return "", model.WrapCLIError(model.ExitNotFound, "not inside a git repository", err)
	}
	return strings.TrimSpace(out), nil
}

// List returns all worktrees of the repository at root, in git's order.
func (m *Manager) List(ctx context.Context, root string) ([]model.Worktree, error) {
	out, err := m.runGit(ctx, root, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}

	worktrees, err := ParsePorcelain(out)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGitError, "cannot parse git worktree list output", err)
	}
	return worktrees, nil
}

// MainBranch detects the repository's main branch. It tries, in order:
//  1. the branch origin/HEAD points to
//  2. a local "main" branch
//  3. a local "master" branch
//
// and returns UnknownBranch if none applies. It never fails.
func (m *Manager) MainBranch(ctx context.Context, root string) string {
	if out, err := m.runGit(ctx, root, "symbolic-ref", "--quiet", "refs/remotes/origin/HEAD"); err == nil {
		ref := strings.TrimSpace(out)
		if name, ok := strings.CutPrefix(ref, "refs/remotes/origin/"); ok && name != "" {
			return name
		}
	}

	for _, name := range []string{"main", "master"} {
		if m.BranchExists(ctx, root, name) {
			return name
		}
	}

	return UnknownBranch
}

// BranchExists reports whether a local branch with the given name exists.
func (m *Manager) BranchExists(ctx context.Context, root, branch string) bool {
	_, err := m.runGit(ctx, root, "show-ref", "--verify", "--quiet", model.LocalBranchPrefix+branch)
	return err == nil
}

// RemoteBranchExists reports whether any remote carries a branch with the
// given short name.
func (m *Manager) RemoteBranchExists(ctx context.Context, root, branch string) bool {
	out, err := m.runGit(ctx, root, "branch", "-r", "--list", "*/"+branch)
	return err == nil && strings.TrimSpace(out) != ""
}

// LocalBranches returns the short names of all local branches.
func (m *Manager) LocalBranches(ctx context.Context, root string) ([]string, error) {
	return m.refNames(ctx, root, "refs/heads")
}

// RemoteBranches returns "<remote>/<name>" for every remote-tracking
// branch, skipping symbolic HEAD entries.
func (m *Manager) RemoteBranches(ctx context.Context, root string) ([]string, error) {
	names, err := m.refNames(ctx, root, "refs/remotes")
	if err != nil {
		return nil, err
	}

	out := names[:0]
	for _, n := range names {
		// "origin" alone is what refname:short prints for origin/HEAD.
		if strings.HasSuffix(n, "/HEAD") || !strings.Contains(n, "/") {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (m *Manager) refNames(ctx context.Context, root, prefix string) ([]string, error) {
	out, err := m.runGit(ctx, root, "for-each-ref", "--format=%(refname:short)", prefix)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

// Add creates a worktree. The git invocation depends on the branch:
//   - Track set: `worktree add --track -b <branch> <path> <remote>/<branch>`
//   - existing local or remote branch: `worktree add <path> <branch>`
//     (git creates a tracking branch for a unique remote match)
//   - otherwise: `worktree add -b <branch> <path> [base]`
func (m *Manager) Add(ctx context.Context, root string, opts AddOptions) error {
	var args []string
	switch {
	case opts.Track != "":
		args = []string{"worktree", "add", "--track", "-b", opts.Branch, opts.Path, opts.Track + "/" + opts.Branch}
	case m.BranchExists(ctx, root, opts.Branch), m.RemoteBranchExists(ctx, root, opts.Branch):
		args = []string{"worktree", "add", opts.Path, opts.Branch}
	default:
		args = []string{"worktree", "add", "-b", opts.Branch, opts.Path}
		if opts.Base != "" {
			args = append(args, opts.Base)
		}
	}

	_, err := m.runGit(ctx, root, args...)
	return err
}

// uncommittedMarkers are fragments of git's refusal to remove a dirty
// worktree.
var uncommittedMarkers = []string{"uncommitted changes", "modified files", "changes would be lost", "contains modified or untracked files"}

// Remove runs `git worktree remove`. With force, --force is passed once
// for a dirty worktree and twice when the worktree is also locked, which is
// what git requires.
func (m *Manager) Remove(ctx context.Context, root string, wt model.Worktree, force bool) error {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
		if wt.Locked {
			args = append(args, "--force")
		}
	}
	args = append(args, wt.Path)

	_, err := m.runGit(ctx, root, args...)
	if err == nil {
		return nil
	}

	var cmdErr *process.CommandError
	if errors.As(err, &cmdErr) {
		stderr := strings.ToLower(cmdErr.Stderr)
		for _, marker := range uncommittedMarkers {
			if strings.Contains(stderr, marker) {
				return model.WrapCLIError(model.ExitUserError,
					fmt.Sprintf("worktree %s has uncommitted changes; use --force to remove anyway", wt.Path), err)
			}
		}
	}
	return err
}

// Prune runs `git worktree prune`, deleting administrative data for every
// prunable worktree.
func (m *Manager) Prune(ctx context.Context, root string) error {
	_, err := m.runGit(ctx, root, "worktree", "prune")
	return err
}

// Git runs an arbitrary read-only git command in dir and returns stdout.
// Used by preview to show status and log.
func (m *Manager) Git(ctx context.Context, dir string, args ...string) (string, error) {
	return m.runGit(ctx, dir, args...)
}

// IsDirty reports whether the worktree at path has uncommitted changes.
// Best effort: a missing directory or unreadable repository is clean.
//
// `git status --porcelain` is used first; if git fails, go-git computes
// the status instead.
func (m *Manager) IsDirty(ctx context.Context, path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}

	out, err := m.runGit(ctx, path, "status", "--porcelain")
	if err == nil {
		return strings.TrimSpace(out) != ""
	}

	dirty, gerr := isDirtyGoGit(path)
	if gerr != nil {
		logger.WithComponent("worktree").Debug("status check failed", "path", path, "err", gerr)
		return false
	}
	return dirty
}

func isDirtyGoGit(path string) (bool, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{EnableDotGitCommonDir: true})
	if err != nil {
		return false, err
	}

	tree, err := repo.Worktree()
	if err != nil {
		return false, err
	}

	status, err := tree.Status()
	if err != nil {
		return false, err
	}
	return !status.IsClean(), nil
}

// runGit executes a git command in dir and returns stdout.
//
// On a non-zero exit it returns a model.CLIError with ExitGitError whose
// message includes git's stderr; the wrapped error is the
// *process.CommandError. Failures to start git (not installed) keep their
// own category.
func (m *Manager) runGit(ctx context.Context, dir string, args ...string) (string, error) {
	fullArgs := args
	if dir != "" {
		fullArgs = append([]string{"-C", dir}, args...)
	}

	out, err := process.Output(ctx, m.runner, "", "git", fullArgs...)
	if err == nil {
		return out, nil
	}

	var cmdErr *process.CommandError
	if !errors.As(err, &cmdErr) {
		return "", err
	}

	message := fmt.Sprintf("git %s failed", strings.Join(args, " "))
	if stderr := strings.TrimSpace(cmdErr.Stderr); stderr != "" {
		message = fmt.Sprintf("%s: %s", message, stderr)
	}
	return "", model.WrapCLIError(model.ExitGitError, message, err)
}
