package worktree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/wt/internal/model"
)

// TestCheckRemovable walks through every removal gate.
func TestCheckRemovable(t *testing.T) {
	tests := []struct {
		name    string
		wt      model.Worktree
		main    string
		force   bool
		wantErr string
	}{
		{
			name:    "bare is never removable",
			wt:      model.Worktree{Path: "/r.git", Bare: true},
			main:    "main",
			force:   true,
			wantErr: "bare repository location",
		},
		{
			name:    "main branch is never removable",
			wt:      model.Worktree{Path: "/r", Branch: "refs/heads/main"},
			main:    "main",
			force:   true,
			wantErr: "main branch 'main'",
		},
		{
			name:    "remote checkout of main is protected",
			wt:      model.Worktree{Path: "/r-main", Branch: "refs/remotes/origin/main"},
			main:    "main",
			wantErr: "main branch",
		},
		{
			name:    "locked without force",
			wt:      model.Worktree{Path: "/r-x", Branch: "refs/heads/x", Locked: true, LockReason: "usb"},
			main:    "main",
			wantErr: "git worktree unlock",
		},
		{
			name:  "locked with force",
			wt:    model.Worktree{Path: "/r-x", Branch: "refs/heads/x", Locked: true},
			main:  "main",
			force: true,
		},
		{
			name: "unknown main protects nothing",
			wt:   model.Worktree{Path: "/r", Branch: "refs/heads/main"},
			main: UnknownBranch,
		},
		{
			name: "detached is removable",
			wt:   model.Worktree{Path: "/r-d", Head: "abc"},
			main: "main",
		},
		{
			name: "prunable is removable",
			wt:   model.Worktree{Path: "/r-p", Branch: "refs/heads/p", Prunable: true},
			main: "master",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRemovable(tt.wt, tt.main, tt.force)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			var cliErr *model.CLIError
			require.True(t, errors.As(err, &cliErr))
			assert.Equal(t, model.ExitUserError, cliErr.Code)
			assert.Contains(t, cliErr.Message, tt.wantErr)
		})
	}
}

func TestRemovable(t *testing.T) {
	worktrees := []model.Worktree{
		{Path: "/r", Branch: "refs/heads/main"},
		{Path: "/r-a", Branch: "refs/heads/a"},
		{Path: "/r-b", Branch: "refs/heads/b", Locked: true},
		{Path: "/r.git", Bare: true},
	}

	got := Removable(worktrees, "main")
	require.Len(t, got, 1)
	assert.Equal(t, "/r-a", got[0].Path)
}

func TestPruneCandidates(t *testing.T) {
	worktrees := []model.Worktree{
		{Path: "/r", Branch: "refs/heads/main"},
		{Path: "/gone", Prunable: true, PrunableReason: "gitdir file points to non-existent location"},
		{Path: "/also-gone", Prunable: true},
	}

	assert.Equal(t, []PruneCandidate{
		{Path: "/gone", Reason: "gitdir file points to non-existent location"},
		{Path: "/also-gone"},
	}, PruneCandidates(worktrees))

	assert.Empty(t, PruneCandidates(worktrees[:1]))
	assert.NotNil(t, PruneCandidates(nil), "JSON output needs [] not null")
}

func TestDefaultPath(t *testing.T) {
	tests := []struct {
		root, branch, want string
	}{
		{"/home/user/proj", "feature/x", "/home/user/proj-feature-x"},
		{"/home/user/proj/", "fix", "/home/user/proj-fix"},
		{"/src/app", "team/a/b", "/src/app-team-a-b"},
	}

	for _, tt := range tests {
		t.Run(tt.branch, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultPath(tt.root, tt.branch))
		})
	}
}

func TestContaining(t *testing.T) {
	worktrees := []model.Worktree{
		{Path: "/src/proj", Branch: "refs/heads/main"},
		{Path: "/src/proj/.worktrees/x", Branch: "refs/heads/x"},
		{Path: "/src/proj-y", Branch: "refs/heads/y"},
	}

	got, ok := Containing(worktrees, "/src/proj/.worktrees/x/pkg")
	require.True(t, ok)
	assert.Equal(t, "/src/proj/.worktrees/x", got.Path)

	got, ok = Containing(worktrees, "/src/proj")
	require.True(t, ok)
	assert.Equal(t, "/src/proj", got.Path)

	_, ok = Containing(worktrees, "/src/proj-yz")
	assert.False(t, ok, "a shared name prefix is not containment")
}
