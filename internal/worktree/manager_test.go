package worktree

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/wt/internal/model"
	"github.com/shinji-kodama/wt/internal/process"
)

// setupTestRepo creates a temporary directory with an initialized Git
// repository on branch "main" containing a single commit. Most git worktree
// commands require at least one commit to exist.
//
// The returned path has symlinks resolved, because git reports resolved
// paths (on macOS /var is a symlink to /private/var).
func setupTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	runTestGit(t, dir, "init", "--initial-branch=main")

	// Configure user identity at the repo level so `git commit` works
	// even in environments without a global Git configuration (e.g., CI).
	runTestGit(t, dir, "config", "user.email", "test@example.com")
	runTestGit(t, dir, "config", "user.name", "Test User")

	err = os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Test Repo\n"), 0644)
	require.NoError(t, err, "failed to create initial file")

	runTestGit(t, dir, "add", ".")
	runTestGit(t, dir, "commit", "-m", "initial commit")

	return dir
}

// runTestGit runs a git command in dir and fails the test immediately if
// it exits non-zero.
func runTestGit(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(output))
	return string(output)
}

// tempPath returns a symlink-resolved path that does not exist yet.
func tempPath(t *testing.T, name string) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return filepath.Join(dir, name)
}

func currentBranch(t *testing.T, dir string) string {
	t.Helper()
	return strings.TrimSpace(runTestGit(t, dir, "rev-parse", "--abbrev-ref", "HEAD"))
}

func newTestManager() *Manager {
	return NewManager(process.NewExecRunner())
}

// TestAdd verifies that Manager.Add creates a new worktree with a new branch.
func TestAdd(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := newTestManager()
	worktreePath := tempPath(t, "feature-branch")

	err := m.Add(context.Background(), repoPath, AddOptions{Branch: "feature/branch", Path: worktreePath})
	require.NoError(t, err, "Add should succeed for a new branch")

	_, statErr := os.Stat(worktreePath)
	assert.NoError(t, statErr, "worktree directory should exist after Add")
	assert.Equal(t, "feature/branch", currentBranch(t, worktreePath))
}

// TestAddExistingBranch checks that an existing branch is checked out
// without -b, which would fail with "already exists".
func TestAddExistingBranch(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := newTestManager()
	runTestGit(t, repoPath, "branch", "existing-branch")

	worktreePath := tempPath(t, "existing-branch-wt")
	err := m.Add(context.Background(), repoPath, AddOptions{Branch: "existing-branch", Path: worktreePath})
	require.NoError(t, err)
	assert.Equal(t, "existing-branch", currentBranch(t, worktreePath))
}

// TestAddWithBase verifies a new branch starts at the given base.
func TestAddWithBase(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := newTestManager()

	base := strings.TrimSpace(runTestGit(t, repoPath, "rev-parse", "HEAD"))
	require.NoError(t, os.WriteFile(filepath.Join(repoPath, "second.txt"), []byte("2\n"), 0644))
	runTestGit(t, repoPath, "add", ".")
	runTestGit(t, repoPath, "commit", "-m", "second")

	worktreePath := tempPath(t, "from-base")
	err := m.Add(context.Background(), repoPath, AddOptions{Branch: "from-base", Path: worktreePath, Base: base})
	require.NoError(t, err)

	head := strings.TrimSpace(runTestGit(t, worktreePath, "rev-parse", "HEAD"))
	assert.Equal(t, base, head)
}

// TestAddFailsForCheckedOutBranch ensures git's refusal surfaces as a git_error.
func TestAddFailsForCheckedOutBranch(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := newTestManager()

	err := m.Add(context.Background(), repoPath, AddOptions{Branch: "main", Path: tempPath(t, "dup")})
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitGitError, cliErr.Code)
	assert.Contains(t, cliErr.Message, "git worktree add")
}

// TestList verifies the listing includes the main worktree and added ones.
func TestList(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := newTestManager()
	ctx := context.Background()

	wt1 := tempPath(t, "wt1")
	wt2 := tempPath(t, "wt2")
	require.NoError(t, m.Add(ctx, repoPath, AddOptions{Branch: "wt1", Path: wt1}))
	require.NoError(t, m.Add(ctx, repoPath, AddOptions{Branch: "wt2", Path: wt2}))

	worktrees, err := m.List(ctx, repoPath)
	require.NoError(t, err)
	require.Len(t, worktrees, 3)
	assertSnapshotInvariants(t, worktrees)

	assert.Equal(t, repoPath, worktrees[0].Path)
	assert.Equal(t, "refs/heads/main", worktrees[0].Branch)
	assert.NotEmpty(t, worktrees[0].Head)

	got, err := Find(worktrees, "wt2")
	require.NoError(t, err)
	assert.Equal(t, wt2, got.Path)
}

// TestRemove verifies a clean worktree is removed from disk and from git.
func TestRemove(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := newTestManager()
	ctx := context.Background()

	worktreePath := tempPath(t, "to-remove")
	require.NoError(t, m.Add(ctx, repoPath, AddOptions{Branch: "to-remove", Path: worktreePath}))

	err := m.Remove(ctx, repoPath, model.Worktree{Path: worktreePath}, false)
	require.NoError(t, err)

	_, statErr := os.Stat(worktreePath)
	assert.True(t, os.IsNotExist(statErr))

	worktrees, err := m.List(ctx, repoPath)
	require.NoError(t, err)
	assert.Len(t, worktrees, 1)
}

// TestRemoveDirty checks that uncommitted changes produce a user_error
// suggesting --force, and that --force removes the worktree.
func TestRemoveDirty(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := newTestManager()
	ctx := context.Background()

	worktreePath := tempPath(t, "dirty")
	require.NoError(t, m.Add(ctx, repoPath, AddOptions{Branch: "dirty", Path: worktreePath}))
	require.NoError(t, os.WriteFile(filepath.Join(worktreePath, "untracked.txt"), []byte("x"), 0644))
	assert.True(t, m.IsDirty(ctx, worktreePath))

	err := m.Remove(ctx, repoPath, model.Worktree{Path: worktreePath}, false)
	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitUserError, cliErr.Code)
	assert.Contains(t, cliErr.Message, "--force")

	require.NoError(t, m.Remove(ctx, repoPath, model.Worktree{Path: worktreePath}, true))
}

// TestRemoveLockedForce verifies a locked worktree needs a double --force.
func TestRemoveLockedForce(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := newTestManager()
	ctx := context.Background()

	worktreePath := tempPath(t, "locked")
	require.NoError(t, m.Add(ctx, repoPath, AddOptions{Branch: "locked", Path: worktreePath}))
	runTestGit(t, repoPath, "worktree", "lock", "--reason", "testing", worktreePath)

	worktrees, err := m.List(ctx, repoPath)
	require.NoError(t, err)
	wt, err := Find(worktrees, "locked")
	require.NoError(t, err)
	assert.True(t, wt.Locked)
	assert.Equal(t, "testing", wt.LockReason)

	require.NoError(t, m.Remove(ctx, repoPath, wt, true))
	_, statErr := os.Stat(worktreePath)
	assert.True(t, os.IsNotExist(statErr))
}

// TestPrune verifies a deleted worktree directory is reported prunable and
// cleaned up by Prune.
func TestPrune(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := newTestManager()
	ctx := context.Background()

	worktreePath := tempPath(t, "stale")
	require.NoError(t, m.Add(ctx, repoPath, AddOptions{Branch: "stale", Path: worktreePath}))
	require.NoError(t, os.RemoveAll(worktreePath))

	worktrees, err := m.List(ctx, repoPath)
	require.NoError(t, err)
	candidates := PruneCandidates(worktrees)
	require.Len(t, candidates, 1)
	assert.Equal(t, worktreePath, candidates[0].Path)

	require.NoError(t, m.Prune(ctx, repoPath))
	worktrees, err = m.List(ctx, repoPath)
	require.NoError(t, err)
	assert.Len(t, worktrees, 1)
}

// TestRepoRoot verifies the top-level directory is found from a subdirectory.
func TestRepoRoot(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := newTestManager()

	sub := filepath.Join(repoPath, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0755))

	root, err := m.RepoRoot(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, repoPath, root)
}

func TestRepoRootOutsideRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	m := newTestManager()

	_, err := m.RepoRoot(context.Background(), t.TempDir())
	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitNotFound, cliErr.Code)
}

// TestMainBranch_RealRepo falls through to the local "main" branch.
func TestMainBranch_RealRepo(t *testing.T) {
	repoPath := setupTestRepo(t)
	assert.Equal(t, "main", newTestManager().MainBranch(context.Background(), repoPath))
}

// TestMainBranch covers the detection order with a mocked git.
func TestMainBranch(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *process.MockRunner)
		want  string
	}{
		{
			name: "origin HEAD wins",
			setup: func(r *process.MockRunner) {
				r.AddExactMatch("git", []string{"-C", "/r", "symbolic-ref", "--quiet", "refs/remotes/origin/HEAD"},
					process.MockResponse{Stdout: "refs/remotes/origin/trunk\n"})
				r.AddPrefixMatch("git", []string{"-C", "/r", "show-ref"}, process.MockResponse{})
			},
			want: "trunk",
		},
		{
			name: "local main",
			setup: func(r *process.MockRunner) {
				r.AddExactMatch("git", []string{"-C", "/r", "show-ref", "--verify", "--quiet", "refs/heads/main"},
					process.MockResponse{})
			},
			want: "main",
		},
		{
			name: "local master",
			setup: func(r *process.MockRunner) {
				r.AddExactMatch("git", []string{"-C", "/r", "show-ref", "--verify", "--quiet", "refs/heads/master"},
					process.MockResponse{})
			},
			want: "master",
		},
		{
			name:  "nothing detected",
			setup: func(r *process.MockRunner) {},
			want:  UnknownBranch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := process.NewMockRunner()
			tt.setup(r)
			assert.Equal(t, tt.want, NewManager(r).MainBranch(context.Background(), "/r"))
		})
	}
}

// TestAdd_Arguments checks which git invocation each branch state selects.
func TestAdd_Arguments(t *testing.T) {
	tests := []struct {
		name  string
		opts  AddOptions
		setup func(r *process.MockRunner)
		want  []string
	}{
		{
			name: "track remote",
			opts: AddOptions{Branch: "x", Path: "/p", Track: "origin"},
			want: []string{"-C", "/r", "worktree", "add", "--track", "-b", "x", "/p", "origin/x"},
		},
		{
			name: "existing local branch",
			opts: AddOptions{Branch: "x", Path: "/p"},
			setup: func(r *process.MockRunner) {
				r.AddPrefixMatch("git", []string{"-C", "/r", "show-ref"}, process.MockResponse{})
			},
			want: []string{"-C", "/r", "worktree", "add", "/p", "x"},
		},
		{
			name: "existing remote branch",
			opts: AddOptions{Branch: "x", Path: "/p"},
			setup: func(r *process.MockRunner) {
				r.AddPrefixMatch("git", []string{"-C", "/r", "branch", "-r"}, process.MockResponse{Stdout: "  origin/x\n"})
			},
			want: []string{"-C", "/r", "worktree", "add", "/p", "x"},
		},
		{
			name: "new branch from base",
			opts: AddOptions{Branch: "x", Path: "/p", Base: "develop"},
			want: []string{"-C", "/r", "worktree", "add", "-b", "x", "/p", "develop"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := process.NewMockRunner()
			if tt.setup != nil {
				tt.setup(r)
			}
			r.AddPrefixMatch("git", []string{"-C", "/r", "worktree", "add"}, process.MockResponse{})

			require.NoError(t, NewManager(r).Add(context.Background(), "/r", tt.opts))

			calls := r.GetCalls()
			assert.Equal(t, tt.want, calls[len(calls)-1].Args)
		})
	}
}

// TestList_ParseFailure verifies malformed output is a git_error.
func TestList_ParseFailure(t *testing.T) {
	r := process.NewMockRunner()
	r.AddPrefixMatch("git", []string{"-C", "/r", "worktree", "list"}, process.MockResponse{Stdout: "HEAD abc\n"})

	_, err := NewManager(r).List(context.Background(), "/r")
	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitGitError, cliErr.Code)

	var perr *ParseError
	assert.True(t, errors.As(err, &perr))
}

func TestRemoteBranches(t *testing.T) {
	r := process.NewMockRunner()
	r.AddPrefixMatch("git", []string{"-C", "/r", "for-each-ref"},
		process.MockResponse{Stdout: "origin\norigin/HEAD\norigin/main\nupstream/dev\n"})

	got, err := NewManager(r).RemoteBranches(context.Background(), "/r")
	require.NoError(t, err)
	assert.Equal(t, []string{"origin/main", "upstream/dev"}, got)
}

// TestIsDirty_GoGitFallback uses go-git when git status fails.
func TestIsDirty_GoGitFallback(t *testing.T) {
	repoPath := setupTestRepo(t)
	m := NewManager(process.NewMockRunner())

	assert.False(t, m.IsDirty(context.Background(), repoPath))

	require.NoError(t, os.WriteFile(filepath.Join(repoPath, "README.md"), []byte("changed\n"), 0644))
	assert.True(t, m.IsDirty(context.Background(), repoPath))

	assert.False(t, m.IsDirty(context.Background(), filepath.Join(repoPath, "missing")))
}
