// Package discovery finds git repositories under the configured search
// roots for `wt --all`.
package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/shinji-kodama/wt/internal/logger"
)

// MaxDepth bounds how far below a search root a .git entry is looked for.
// A root's own .git is at depth 1.
const MaxDepth = 3

// Discover walks every root up to MaxDepth levels and returns the sorted,
// de-duplicated list of repository roots found. A linked worktree (a .git
// file) is reported as the repository it belongs to. Roots that do not
// exist or are not directories are skipped with a warning. A leading "~"
// in a root expands to home.
func Discover(roots []string, home string) []string {
	log := logger.WithComponent("discovery")
	seen := map[string]bool{}

	for _, root := range roots {
		root = ExpandHome(root, home)
		info, err := os.Stat(root)
		if err != nil {
			log.Warn("search path does not exist", "path", root)
			continue
		}
		if !info.IsDir() {
			log.Warn("search path is not a directory", "path", root)
			continue
		}

		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable directories are skipped, not fatal.
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}

			depth := depthBelow(root, path)
			if d.Name() != ".git" {
				if d.IsDir() && depth >= MaxDepth {
					return fs.SkipDir
				}
				return nil
			}

			if repo, ok := resolve(path, d); ok {
				seen[repo] = true
			} else {
				log.Debug("not a repository", "path", filepath.Dir(path))
			}
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		})
	}

	repos := make([]string, 0, len(seen))
	for r := range seen {
		repos = append(repos, r)
	}
	slices.Sort(repos)
	return repos
}

// resolve maps a .git entry to the root of the repository that owns it.
func resolve(gitPath string, d fs.DirEntry) (string, bool) {
	parent := filepath.Dir(gitPath)

	if !d.IsDir() {
		if main, ok := mainRepoFromGitFile(gitPath); ok {
			parent = main
		}
	}

	if _, err := git.PlainOpenWithOptions(parent, &git.PlainOpenOptions{EnableDotGitCommonDir: true}); err != nil {
		return "", false
	}
	return filepath.Clean(parent), true
}

// mainRepoFromGitFile reads a linked worktree's .git file
// ("gitdir: /main/.git/worktrees/<name>") and returns /main.
func mainRepoFromGitFile(gitPath string) (string, bool) {
	data, err := os.ReadFile(gitPath)
	if err != nil {
		return "", false
	}

	gitDir, ok := strings.CutPrefix(strings.TrimSpace(string(data)), "gitdir: ")
	if !ok {
		return "", false
	}
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(filepath.Dir(gitPath), gitDir)
	}

	sep := string(filepath.Separator) + filepath.Join(".git", "worktrees") + string(filepath.Separator)
	idx := strings.LastIndex(gitDir, sep)
	if idx < 0 {
		return "", false
	}
	return gitDir[:idx], true
}

// depthBelow returns how many path elements path has below root.
func depthBelow(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

// ExpandHome replaces a leading "~" with home.
func ExpandHome(path, home string) string {
	if home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		return filepath.Join(home, rest)
	}
	return path
}
