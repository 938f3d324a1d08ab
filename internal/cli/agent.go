// Package cli - agent.go implements the "wt agent" command group: compact
// worktree state for scripts and coding agents.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/wt/internal/model"
	"github.com/shinji-kodama/wt/internal/worktree"
)

// agentWorktree is one worktree in agent output.
type agentWorktree struct {
	Path   string `json:"path"`
	Branch string `json:"branch,omitempty"`
	Head   string `json:"head,omitempty"`
	Dirty  bool   `json:"dirty"`
}

// agentContext is the JSON document printed by "agent context".
type agentContext struct {
	CurrentWorktree *agentWorktree  `json:"current_worktree"`
	OtherWorktrees  []agentWorktree `json:"other_worktrees"`
	Repository      agentRepository `json:"repository"`
}

type agentRepository struct {
	Root           string `json:"root"`
	TotalWorktrees int    `json:"total_worktrees"`
}

// agentStatus is the JSON document printed by "agent status".
type agentStatus struct {
	Current *agentWorktree `json:"current"`
	Count   int            `json:"count"`
}

func newAgentCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Worktree state for scripts and coding agents",
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "context",
			Short: "Show the current worktree, the others, and quick commands",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runAgentContext(cmd, env)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the current worktree and the worktree count",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runAgentStatus(cmd, env)
			},
		},
		&cobra.Command{
			Use:   "onboard",
			Short: "Print a command reference for agents",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := fmt.Fprint(cmd.OutOrStdout(), onboardText)
				return err
			},
		},
	)

	return cmd
}

// currentDir returns the directory commands run from, with symlinks
// resolved so it compares equal to the paths git reports.
func currentDir(env *Env) (string, error) {
	dir := env.WorkDir
	if dir == "" {
		var err error
		if dir, err = os.Getwd(); err != nil {
			return "", model.WrapCLIError(model.ExitIOError, "cannot determine current directory", err)
		}
	}
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	return dir, nil
}

func toAgentWorktree(cmd *cobra.Command, git *worktree.Manager, wt model.Worktree) agentWorktree {
	return agentWorktree{
		Path:   wt.Path,
		Branch: wt.ShortBranch(),
		Head:   wt.Head,
		Dirty:  git.IsDirty(cmd.Context(), wt.Path),
	}
}

func runAgentContext(cmd *cobra.Command, env *Env) error {
	repo, err := openRepo(cmd, env)
	if err != nil {
		return err
	}
	dir, err := currentDir(env)
	if err != nil {
		return err
	}
	current, inWorktree := worktree.Containing(repo.worktrees, dir)

	result := agentContext{
		OtherWorktrees: []agentWorktree{},
		Repository:     agentRepository{Root: repo.root, TotalWorktrees: len(repo.worktrees)},
	}
	for _, wt := range repo.worktrees {
		info := toAgentWorktree(cmd, repo.git, wt)
		if inWorktree && wt.Path == current.Path {
			result.CurrentWorktree = &info
		} else {
			result.OtherWorktrees = append(result.OtherWorktrees, info)
		}
	}

	if IsJSONOutput() {
		return printJSON(cmd.OutOrStdout(), result)
	}
	printAgentContext(cmd.OutOrStdout(), result)
	return nil
}

func printAgentContext(w io.Writer, c agentContext) {
	_, _ = fmt.Fprint(w, "## Worktree Context\n\n")

	if c.CurrentWorktree != nil {
		_, _ = fmt.Fprintf(w, "Current: %s @ %s\n", agentBranch(*c.CurrentWorktree), c.CurrentWorktree.Path)
		status := "clean"
		if c.CurrentWorktree.Dirty {
			status = "dirty"
		}
		_, _ = fmt.Fprintf(w, "Status: %s\n\n", status)
	} else {
		_, _ = fmt.Fprint(w, "Not currently in a worktree\n\n")
	}

	if len(c.OtherWorktrees) > 0 {
		_, _ = fmt.Fprintln(w, "Other worktrees:")
		for _, wt := range c.OtherWorktrees {
			_, _ = fmt.Fprintf(w, "  - %s @ %s%s\n", agentBranch(wt), wt.Path, dirtySuffix(wt))
		}
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintf(w, "Repository: %s\n", c.Repository.Root)
	_, _ = fmt.Fprintf(w, "Total worktrees: %d\n\n", c.Repository.TotalWorktrees)

	_, _ = fmt.Fprint(w, `## Quick Commands

  wt                  # Interactive picker
  wt list --json      # List all worktrees
  wt add <branch>     # Create new worktree
  wt remove <target>  # Remove worktree
  wt prune            # Clean stale worktrees
`)
}

func runAgentStatus(cmd *cobra.Command, env *Env) error {
	repo, err := openRepo(cmd, env)
	if err != nil {
		return err
	}
	dir, err := currentDir(env)
	if err != nil {
		return err
	}

	result := agentStatus{Count: len(repo.worktrees)}
	if wt, ok := worktree.Containing(repo.worktrees, dir); ok {
		info := toAgentWorktree(cmd, repo.git, wt)
		result.Current = &info
	}

	if IsJSONOutput() {
		return printJSON(cmd.OutOrStdout(), result)
	}

	out := cmd.OutOrStdout()
	if result.Current != nil {
		_, _ = fmt.Fprintf(out, "%s @ %s%s\n", agentBranch(*result.Current), result.Current.Path, dirtySuffix(*result.Current))
	} else {
		_, _ = fmt.Fprintln(out, "Not in a worktree")
	}
	_, _ = fmt.Fprintf(out, "Total: %d worktrees\n", result.Count)
	return nil
}

func agentBranch(wt agentWorktree) string {
	if wt.Branch == "" {
		return "<detached>"
	}
	return wt.Branch
}

func dirtySuffix(wt agentWorktree) string {
	if wt.Dirty {
		return " (dirty)"
	}
	return ""
}

const onboardText = "# wt - Git Worktree Manager\n\n" +
	"## Quick Reference\n\n" +
	"| Command | Description | Agent Flags |\n" +
	"|---------|-------------|-------------|\n" +
	"| `wt list` | List worktrees | `--json`, `--all` |\n" +
	"| `wt add <branch>` | Create a worktree | `--json`, `--quiet` |\n" +
	"| `wt remove <target>` | Remove a worktree | `--json`, `--quiet`, `--force` |\n" +
	"| `wt prune` | Clean stale worktree records | `--json`, `--quiet`, `--dry-run` |\n" +
	"| `wt preview --path <p>` | Summarize a worktree | `--json` |\n" +
	"| `wt agent context` | Full worktree context | `--json` |\n" +
	"| `wt agent status` | Minimal status | `--json` |\n\n" +
	"## JSON Output\n\n" +
	"### wt list --json\n" +
	"```json\n" +
	`[{"path": "/path/to/wt", "head": "abc123", "branch": "refs/heads/main", "branch_name": "main", "is_main": true}]` + "\n" +
	"```\n\n" +
	"### wt add <branch> --json\n" +
	"```json\n" +
	`{"success": true, "branch": "feature-x", "path": "/path/to/repo-feature-x"}` + "\n" +
	"```\n\n" +
	"### wt remove <target> --json --force\n" +
	"```json\n" +
	`{"success": true, "removed": true, "branch": "feature-x", "path": "/path/to/repo-feature-x"}` + "\n" +
	"```\n\n" +
	"### wt agent status --json\n" +
	"```json\n" +
	`{"current": {"path": "/path/to/wt", "branch": "main", "dirty": true}, "count": 3}` + "\n" +
	"```\n\n" +
	"### Errors (with --json)\n" +
	"```json\n" +
	`{"error": true, "code": "not_found", "message": "no worktree found matching 'x'"}` + "\n" +
	"```\n\n" +
	"Exit codes: 0 success, 1 user_error, 2 not_found, 3 git_error, 4 config_error, 5 io_error.\n\n" +
	"## Common Workflows\n\n" +
	"```bash\n" +
	"wt add feature-x --json --quiet      # create a worktree\n" +
	"wt list --json                       # list worktrees\n" +
	"wt agent status --json               # check the current state\n" +
	"wt remove feature-x --force --json   # remove after the PR is merged\n" +
	"wt prune --quiet --json              # clean stale records\n" +
	"```\n\n" +
	"## Notes\n\n" +
	"1. Use `--json` for anything parsed by a program.\n" +
	"2. `--quiet` and `--json` never prompt; remove needs `--force` in those modes.\n" +
	"3. Run `wt agent context` at session start to see the layout.\n" +
	"4. Check `dirty` before switching worktrees.\n"
