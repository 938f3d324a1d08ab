package worktree

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shinji-kodama/wt/internal/model"
)

// PruneCandidate is a worktree git considers stale.
type PruneCandidate struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// IsMain reports whether wt has the repository's main branch checked out.
// An empty or unknown main branch protects nothing.
func IsMain(wt model.Worktree, mainBranch string) bool {
	if mainBranch == "" || mainBranch == UnknownBranch {
		return false
	}
	return wt.HasBranchName(mainBranch)
}

// CheckRemovable returns a user_error if wt must not be removed.
//
// The bare repository location and the main-branch worktree are never
// removable, even with force. A locked worktree is removable only with
// force.
func CheckRemovable(wt model.Worktree, mainBranch string, force bool) error {
	if wt.Bare {
		return model.NewCLIError(model.ExitUserError, "cannot remove the main worktree (bare repository location)")
	}
	if IsMain(wt, mainBranch) {
		return model.NewCLIError(model.ExitUserError,
			fmt.Sprintf("cannot remove the worktree for main branch '%s'", mainBranch))
	}
	if wt.Locked && !force {
		msg := fmt.Sprintf("worktree %s is locked", wt.Path)
		if wt.LockReason != "" {
			msg += fmt.Sprintf(" (%s)", wt.LockReason)
		}
		msg += "; use `git worktree unlock` first or pass --force"
		return model.NewCLIError(model.ExitUserError, msg)
	}
	return nil
}

// Removable returns the records CheckRemovable accepts without force,
// in listing order. It feeds the interactive remove picker.
func Removable(worktrees []model.Worktree, mainBranch string) []model.Worktree {
	var out []model.Worktree
	for _, wt := range worktrees {
		if CheckRemovable(wt, mainBranch, false) == nil {
			out = append(out, wt)
		}
	}
	return out
}

// PruneCandidates lists every record git flagged as prunable, with its
// reason. Nothing is deleted here; that is left to `git worktree prune`.
func PruneCandidates(worktrees []model.Worktree) []PruneCandidate {
	candidates := []PruneCandidate{}
	for _, wt := range worktrees {
		if wt.Prunable {
			candidates = append(candidates, PruneCandidate{Path: wt.Path, Reason: wt.PrunableReason})
		}
	}
	return candidates
}

// DefaultPath returns where `wt add` places a worktree when no path is
// given: a sibling of the repository root named
// "<repo>-<branch with '/' replaced by '-'>".
//
//	DefaultPath("/home/user/proj", "feature/x") == "/home/user/proj-feature-x"
func DefaultPath(repoRoot, branch string) string {
	root := filepath.Clean(repoRoot)
	name := filepath.Base(root) + "-" + strings.ReplaceAll(branch, "/", "-")
	return filepath.Join(filepath.Dir(root), name)
}

// Containing returns the record whose path contains dir, preferring the
// deepest one when worktrees are nested.
func Containing(worktrees []model.Worktree, dir string) (model.Worktree, bool) {
	dir = filepath.Clean(dir)
	var best model.Worktree
	found := false
	for _, wt := range worktrees {
		p := filepath.Clean(wt.Path)
		if dir != p && !strings.HasPrefix(dir, p+string(filepath.Separator)) {
			continue
		}
		if !found || len(p) > len(best.Path) {
			best, found = wt, true
		}
	}
	return best, found
}
