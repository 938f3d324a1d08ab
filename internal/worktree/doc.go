// Package worktree is the git worktree state model for the wt CLI.
//
// It turns `git worktree list --porcelain` into model.Worktree records,
// resolves a user-supplied target (a path or a branch name) to exactly one
// record, and decides whether a record may be removed or pruned.
//
// All git operations are performed by shelling out to the git binary
// through process.Runner rather than using a Go git library:
//   - Worktree support in go-git is limited, while the porcelain format is
//     stable and documented
//   - It uses the exact same git behavior the user sees in their terminal
//
// go-git is only used as a fallback for read-only status checks.
package worktree
