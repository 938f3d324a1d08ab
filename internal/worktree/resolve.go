package worktree

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shinji-kodama/wt/internal/model"
)

// Find returns the single record matching target.
//
// A record matches when target names its path (compared after
// filepath.Clean) or one of its branch names. A fully qualified ref such
// as "refs/heads/x" is reduced to its short form first. A remote-tracking
// branch answers both to "origin/x" and to "x", so two remotes carrying the
// same short name are ambiguous; the qualified form picks one.
//
// No match is a not_found error. More than one match is a user_error that
// lists every matching path.
func Find(worktrees []model.Worktree, target string) (model.Worktree, error) {
	matches := Match(worktrees, target)

	switch len(matches) {
	case 0:
		return model.Worktree{}, model.Errorf(model.ExitNotFound, "no worktree found matching '%s'", target)
	case 1:
		return matches[0], nil
	default:
		paths := make([]string, len(matches))
		for i, m := range matches {
			paths[i] = "  " + m.Path
		}
		return model.Worktree{}, model.NewCLIError(model.ExitUserError,
			fmt.Sprintf("'%s' matches %d worktrees; use a path or a qualified branch name:\n%s",
				target, len(matches), strings.Join(paths, "\n")))
	}
}

// Match returns every record matching target, in listing order. Each
// record appears at most once even if it matches by both path and branch.
func Match(worktrees []model.Worktree, target string) []model.Worktree {
	if target == "" {
		return nil
	}
	name := model.ShortRef(target)
	cleaned := filepath.Clean(target)

	var matches []model.Worktree
	for _, wt := range worktrees {
		if filepath.Clean(wt.Path) == cleaned || wt.HasBranchName(name) {
			matches = append(matches, wt)
		}
	}
	return matches
}

// FindByPath returns the record whose path equals path.
func FindByPath(worktrees []model.Worktree, path string) (model.Worktree, bool) {
	cleaned := filepath.Clean(path)
	for _, wt := range worktrees {
		if filepath.Clean(wt.Path) == cleaned {
			return wt, true
		}
	}
	return model.Worktree{}, false
}
