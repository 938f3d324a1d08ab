// Package cli - list.go implements the "wt list" command.
//
// The list command shows every worktree of the current repository (or,
// with --all, of every repository under the configured discovery paths)
// as aligned text columns or a JSON array.
package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/wt/internal/config"
	"github.com/shinji-kodama/wt/internal/discovery"
	"github.com/shinji-kodama/wt/internal/logger"
	"github.com/shinji-kodama/wt/internal/model"
	"github.com/shinji-kodama/wt/internal/worktree"
)

// listFlags holds the flag values for the list command.
type listFlags struct {
	// all lists worktrees of every discovered repository.
	all bool
}

// listEntry is one row of list output.
type listEntry struct {
	model.Worktree

	// BranchName is the branch without its refs/ prefix.
	BranchName string `json:"branch_name,omitempty"`

	// IsMain marks the worktree of the repository's main branch.
	IsMain bool `json:"is_main"`

	// Repo is the repository directory name, set only with --all.
	Repo string `json:"repo,omitempty"`
}

func newListCommand(env *Env) *cobra.Command {
	flags := &listFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List worktrees",
		Long: `List the worktrees of the current repository.

Each worktree is shown with its branch, path and state flags (locked,
prunable, bare). With --all, worktrees of every repository found under the
configured discovery paths are listed with a leading repository column.

Examples:
  wt list
  wt list --json
  wt list --all`,

		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, env, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.all, "all", "a", false, "List worktrees from all discovered repositories")

	return cmd
}

func runList(cmd *cobra.Command, env *Env, flags *listFlags) error {
	var entries []listEntry
	if flags.all {
		cfg, err := loadConfig(env)
		if err != nil {
			return err
		}
		if entries, err = collectAllEntries(cmd, env, cfg); err != nil {
			return err
		}
	} else {
		repo, err := openRepo(cmd, env)
		if err != nil {
			return err
		}
		entries = toEntries(repo.worktrees, repo.mainBranch, "")
	}

	if IsJSONOutput() {
		return printJSON(cmd.OutOrStdout(), entries)
	}
	printListText(cmd.OutOrStdout(), entries, flags.all)
	return nil
}

func toEntries(worktrees []model.Worktree, mainBranch, repo string) []listEntry {
	entries := make([]listEntry, 0, len(worktrees))
	for _, wt := range worktrees {
		entries = append(entries, listEntry{
			Worktree:   wt,
			BranchName: wt.ShortBranch(),
			IsMain:     worktree.IsMain(wt, mainBranch),
			Repo:       repo,
		})
	}
	return entries
}

// discoverRepos returns the repositories under the configured discovery
// paths, or a user-facing error explaining what to configure.
func discoverRepos(env *Env, cfg *config.Config) ([]string, error) {
	if !cfg.AutoDiscovery.Enabled {
		return nil, model.NewCLIError(model.ExitUserError,
			"auto-discovery is disabled; set auto_discovery.enabled to true in the config file")
	}
	if len(cfg.AutoDiscovery.Paths) == 0 {
		return nil, model.NewCLIError(model.ExitUserError,
			"no auto-discovery paths configured. Run: wt config set-discovery-paths <paths...>")
	}

	home, err := env.HomeDir()
	if err != nil {
		logger.Get().Warn("cannot determine home directory; '~' in discovery paths is not expanded", "err", err)
		home = ""
	}
	repos := discovery.Discover(cfg.AutoDiscovery.Paths, home)
	if len(repos) == 0 {
		return nil, model.NewCLIError(model.ExitNotFound, "no git repositories found in configured discovery paths")
	}
	VerboseLog("discovered %d repositories", len(repos))
	return repos, nil
}

// collectAllEntries lists worktrees across every discovered repository.
// A repository that fails to list is skipped with a warning.
func collectAllEntries(cmd *cobra.Command, env *Env, cfg *config.Config) ([]listEntry, error) {
	repos, err := discoverRepos(env, cfg)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	git := worktree.NewManager(env.Runner)

	entries := []listEntry{}
	for _, root := range repos {
		worktrees, err := git.List(ctx, root)
		if err != nil {
			logger.Get().Warn("failed to list worktrees", "repo", root, "err", err)
			continue
		}
		entries = append(entries, toEntries(worktrees, git.MainBranch(ctx, root), filepath.Base(root))...)
	}

	if len(entries) == 0 {
		return nil, model.NewCLIError(model.ExitNotFound, "no worktrees found in any discovered repository")
	}
	return entries, nil
}

// printListText writes aligned columns:
//
//	main        /home/user/proj
//	feature/x   /home/user/proj-feature-x  [locked]
func printListText(w io.Writer, entries []listEntry, withRepo bool) {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, "No worktrees found.")
		return
	}

	var repos, branches, paths []string
	for _, e := range entries {
		repos = append(repos, e.Repo)
		branches = append(branches, branchLabel(e.Worktree))
		paths = append(paths, e.Path)
	}
	repoWidth := columnWidth(repos)
	branchWidth := columnWidth(branches)
	pathWidth := columnWidth(paths)

	for i, e := range entries {
		var line strings.Builder
		if withRepo {
			line.WriteString(cyan.Sprint(padRight(e.Repo, repoWidth)) + "  ")
		}

		branch := padRight(branches[i], branchWidth)
		switch {
		case e.IsMain:
			branch = mainColor.Sprint(branch)
		case e.IsDetached():
			branch = dim.Sprint(branch)
		default:
			branch = green.Sprint(branch)
		}
		line.WriteString(branch + "  ")

		flags := flagList(e.Worktree)
		if len(flags) == 0 {
			line.WriteString(e.Path)
		} else {
			line.WriteString(padRight(e.Path, pathWidth) + "  ")
			c := yellow
			if e.Prunable {
				c = red
			}
			line.WriteString(c.Sprintf("[%s]", strings.Join(flags, ", ")))
		}

		_, _ = fmt.Fprintln(w, line.String())
	}
}
