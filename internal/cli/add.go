// Package cli - add.go implements the "wt add" command.
//
// Orchestration steps:
//  1. Resolve the repository and its worktrees
//  2. Determine the branch (argument, or fzf branch picker)
//  3. Determine the worktree path (--path, or ../<repo>-<branch>)
//  4. Reject existing paths and branches that are already checked out
//  5. Run git worktree add
//  6. Output results (text or JSON)
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/wt/internal/model"
	"github.com/shinji-kodama/wt/internal/picker"
	"github.com/shinji-kodama/wt/internal/worktree"
)

// createBranchEntry is the first line of the branch picker.
const createBranchEntry = "[+] Create new branch..."

// addFlags holds the flag values for the add command.
type addFlags struct {
	path  string // --path: custom worktree directory path
	track string // --track: remote to track <remote>/<branch> from
	base  string // --base: start point for a new branch
	quiet bool   // --quiet: print nothing on success
}

// addResult is the JSON document printed by add.
type addResult struct {
	Success  bool   `json:"success"`
	Branch   string `json:"branch"`
	Path     string `json:"path"`
	Tracking string `json:"tracking,omitempty"`
}

func newAddCommand(env *Env) *cobra.Command {
	flags := &addFlags{}

	cmd := &cobra.Command{
		Use:   "add [branch]",
		Short: "Add a worktree for a branch",
		Long: `Create a git worktree for a branch.

An existing local branch is checked out. A branch that only exists on a
remote is checked out as a new tracking branch. Otherwise a new branch is
created from --base (default HEAD).

The worktree is placed next to the repository as <repo>-<branch>, with
"/" in the branch name replaced by "-", unless --path is given.

Without a branch argument, an fzf picker lists branches that have no
worktree yet, plus an entry to create a new branch.

Examples:
  wt add feature/auth
  wt add --base main bugfix/login
  wt add --track origin release-2.0
  wt add --path ~/dev/auth feature/auth`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			branch := ""
			if len(args) == 1 {
				branch = args[0]
			}
			return runAdd(cmd, env, branch, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.path, "path", "p", "", "Worktree directory path (default: ../<repo>-<branch>)")
	cmd.Flags().StringVar(&flags.track, "track", "", "Create the branch tracking <remote>/<branch>")
	cmd.Flags().StringVar(&flags.base, "base", "", "Start point for a new branch (default: HEAD)")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "Print nothing on success")

	return cmd
}

func runAdd(cmd *cobra.Command, env *Env, branch string, flags *addFlags) error {
	ctx := cmd.Context()

	// Step 1: Resolve the repository.
	repo, err := openRepo(cmd, env)
	if err != nil {
		return err
	}

	// Step 2: Determine the branch.
	opts := worktree.AddOptions{Branch: branch, Base: flags.base, Track: flags.track}
	if branch == "" {
		if IsJSONOutput() || flags.quiet {
			return model.NewCLIError(model.ExitUserError, "a branch argument is required with --json or --quiet")
		}

		selected, ok, err := pickBranch(cmd, env, repo)
		if err != nil || !ok {
			return err
		}
		opts.Branch = selected.branch
		if opts.Track == "" {
			opts.Track = selected.remote
		}
	}
	if err := validateBranchName(opts.Branch); err != nil {
		return err
	}

	// Step 3: Determine the worktree path.
	path := flags.path
	if path == "" {
		path = worktree.DefaultPath(repo.root, opts.Branch)
	}
	if opts.Path, err = absPath(env, path); err != nil {
		return err
	}
	VerboseLog("worktree path: %s", opts.Path)

	// Step 4: Reject conflicts before git does, with clearer messages.
	if _, statErr := os.Stat(opts.Path); statErr == nil {
		return model.Errorf(model.ExitUserError, "path already exists: %s", opts.Path)
	}
	for _, wt := range repo.worktrees {
		if wt.Branch == model.LocalBranchPrefix+opts.Branch {
			return model.Errorf(model.ExitUserError, "branch '%s' is already checked out at %s", opts.Branch, wt.Path)
		}
	}

	// Step 5: Create the worktree.
	if err := repo.git.Add(ctx, repo.root, opts); err != nil {
		return err
	}

	// Step 6: Output.
	result := addResult{Success: true, Branch: opts.Branch, Path: opts.Path}
	if opts.Track != "" {
		result.Tracking = opts.Track + "/" + opts.Branch
	}

	switch {
	case IsJSONOutput():
		return printJSON(cmd.OutOrStdout(), result)
	case flags.quiet:
		return nil
	default:
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "%s Created worktree for branch '%s' at %s\n", green.Sprint("✓"), result.Branch, result.Path)
		if result.Tracking != "" {
			_, _ = fmt.Fprintf(out, "  tracking %s\n", result.Tracking)
		}
		return nil
	}
}

// validateBranchName rejects names git would misread as options.
func validateBranchName(branch string) error {
	switch {
	case strings.TrimSpace(branch) == "":
		return model.NewCLIError(model.ExitUserError, "branch name must not be empty")
	case strings.HasPrefix(branch, "-"):
		return model.Errorf(model.ExitUserError, "invalid branch name '%s'", branch)
	}
	return nil
}

// absPath resolves p against env.WorkDir (or the process directory) and
// expands a leading "~".
func absPath(env *Env, p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := env.HomeDir()
		if err != nil {
			return "", model.WrapCLIError(model.ExitIOError, "cannot determine home directory", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(p, "~"), "/"))
	}
	if !filepath.IsAbs(p) && env.WorkDir != "" {
		p = filepath.Join(env.WorkDir, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", model.WrapCLIError(model.ExitIOError, "failed to resolve path", err)
	}
	return abs, nil
}

// branchChoice is a branch chosen in the picker. remote is set for a
// remote-only branch, which is then created as a tracking branch.
type branchChoice struct {
	branch string
	remote string
}

// branchCandidates lists branches that have no worktree: local branches
// first, then remote branches with no local counterpart.
func branchCandidates(local, remote []string, worktrees []model.Worktree) []string {
	checkedOut := map[string]bool{}
	for _, wt := range worktrees {
		if wt.Branch != "" {
			checkedOut[wt.ShortBranch()] = true
		}
	}

	localSet := map[string]bool{}
	candidates := []string{createBranchEntry}
	for _, b := range local {
		localSet[b] = true
		if !checkedOut[b] {
			candidates = append(candidates, b)
		}
	}
	for _, r := range remote {
		_, name, _ := strings.Cut(r, "/")
		if !localSet[name] && !checkedOut[name] && !checkedOut[r] {
			candidates = append(candidates, r)
		}
	}
	return candidates
}

// pickBranch runs the branch picker. ok is false when the user cancelled.
func pickBranch(cmd *cobra.Command, env *Env, repo *repoContext) (branchChoice, bool, error) {
	ctx := cmd.Context()

	local, err := repo.git.LocalBranches(ctx, repo.root)
	if err != nil {
		return branchChoice{}, false, err
	}
	remote, err := repo.git.RemoteBranches(ctx, repo.root)
	if err != nil {
		return branchChoice{}, false, err
	}
	remotes := map[string]bool{}
	for _, r := range remote {
		name, _, _ := strings.Cut(r, "/")
		remotes[name] = true
	}

	cfg, err := loadConfig(env)
	if err != nil {
		return branchChoice{}, false, err
	}

	result := newPicker(env).Pick(ctx, branchCandidates(local, remote, repo.worktrees), picker.Options{
		Height:        cfg.Fzf.Height,
		Layout:        cfg.Fzf.Layout,
		PreviewWindow: cfg.Fzf.PreviewWindow,
		Prompt:        "Branch> ",
		Header:        "Select a branch for the new worktree",
	})

	switch r := result.(type) {
	case picker.Cancelled:
		return branchChoice{}, false, nil
	case picker.Failed:
		return branchChoice{}, false, pickerError(r.Err)
	case picker.Selected:
		if r.Line == createBranchEntry {
			name, err := readLine(cmd, env, "New branch name: ")
			if err != nil {
				return branchChoice{}, false, err
			}
			if name == "" {
				return branchChoice{}, false, nil
			}
			return branchChoice{branch: name}, true, nil
		}
		if remoteName, name, ok := strings.Cut(r.Line, "/"); ok && remotes[remoteName] && !slices.Contains(local, r.Line) {
			return branchChoice{branch: name, remote: remoteName}, true, nil
		}
		return branchChoice{branch: r.Line}, true, nil
	default:
		return branchChoice{}, false, nil
	}
}
