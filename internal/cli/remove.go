// Package cli - remove.go implements the "wt remove" command.
//
// The remove command deletes one worktree:
//  1. Resolve the target by path or branch name (or pick it with fzf)
//  2. Refuse the bare location, the main-branch worktree, and locked
//     worktrees without --force
//  3. Ask for confirmation unless --force is given
//  4. Run git worktree remove
package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/wt/internal/model"
	"github.com/shinji-kodama/wt/internal/picker"
	"github.com/shinji-kodama/wt/internal/worktree"
)

// removeFlags holds the flag values for the remove command.
type removeFlags struct {
	// force skips the confirmation prompt, removes locked worktrees, and
	// discards uncommitted changes.
	force bool

	// quiet prints nothing on success.
	quiet bool
}

// removeResult is the JSON document printed by remove.
type removeResult struct {
	Success bool   `json:"success"`
	Removed bool   `json:"removed"`
	Branch  string `json:"branch,omitempty"`
	Path    string `json:"path"`
}

func newRemoveCommand(env *Env) *cobra.Command {
	flags := &removeFlags{}

	cmd := &cobra.Command{
		Use:   "remove [path|branch]",
		Short: "Remove a worktree",
		Long: `Remove a git worktree, given by path or branch name.

The worktree of the main branch and the bare repository location are never
removed. A locked worktree, or one with uncommitted changes, is removed
only with --force.

Without an argument, an fzf picker lists the removable worktrees.

Unless --force is specified, the command prompts for confirmation.

Examples:
  wt remove feature/auth
  wt remove ../proj-feature-auth
  wt remove --force feature/auth`,

		Aliases: []string{"rm"},
		Args:    cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			return runRemove(cmd, env, target, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Remove without confirmation, even if locked or dirty")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "Print nothing on success")

	return cmd
}

func runRemove(cmd *cobra.Command, env *Env, target string, flags *removeFlags) error {
	ctx := cmd.Context()

	// Step 1: Find the target worktree.
	repo, err := openRepo(cmd, env)
	if err != nil {
		return err
	}

	var wt model.Worktree
	if target == "" {
		if IsJSONOutput() || flags.quiet {
			return model.NewCLIError(model.ExitUserError, "a worktree argument is required with --json or --quiet")
		}
		var ok bool
		wt, ok, err = pickRemovable(cmd, env, repo)
		if err != nil || !ok {
			return err
		}
	} else {
		if wt, err = resolveTarget(env, repo.worktrees, target); err != nil {
			return err
		}
	}
	VerboseLog("removing worktree %s (branch %q)", wt.Path, wt.ShortBranch())

	// Step 2: Policy checks.
	if err := worktree.CheckRemovable(wt, repo.mainBranch, flags.force); err != nil {
		return err
	}

	// Step 3: Confirmation.
	if !flags.force {
		if IsJSONOutput() || flags.quiet {
			return model.Errorf(model.ExitUserError, "refusing to remove %s without confirmation; pass --force", wt.Path)
		}
		ok, err := confirm(cmd, env, fmt.Sprintf("Remove worktree %s (%s)?", wt.Path, branchLabel(wt)))
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Aborted.")
			return nil
		}
	}

	// Step 4: Remove.
	if err := repo.git.Remove(ctx, repo.root, wt, flags.force); err != nil {
		return err
	}

	switch {
	case IsJSONOutput():
		return printJSON(cmd.OutOrStdout(), removeResult{
			Success: true,
			Removed: true,
			Branch:  wt.ShortBranch(),
			Path:    wt.Path,
		})
	case flags.quiet:
		return nil
	default:
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s Removed worktree %s\n", green.Sprint("✓"), wt.Path)
		return nil
	}
}

// resolveTarget finds the worktree named by target. Relative and
// "~"-prefixed paths are made absolute first, since git lists absolute
// paths. A target such as "feature/x" may be either a branch or a relative
// path, so it is tried as given before being tried as a path.
func resolveTarget(env *Env, worktrees []model.Worktree, target string) (model.Worktree, error) {
	if strings.HasPrefix(target, ".") || strings.HasPrefix(target, "~") {
		abs, err := absPath(env, target)
		if err != nil {
			return model.Worktree{}, err
		}
		if wt, ok := worktree.FindByPath(worktrees, abs); ok {
			return wt, nil
		}
		return model.Worktree{}, model.Errorf(model.ExitNotFound, "no worktree found matching '%s'", target)
	}

	wt, err := worktree.Find(worktrees, target)
	if err == nil || filepath.IsAbs(target) || !strings.ContainsRune(target, filepath.Separator) {
		return wt, err
	}

	var cliErr *model.CLIError
	if !errors.As(err, &cliErr) || cliErr.Code != model.ExitNotFound {
		return wt, err
	}
	abs, absErr := absPath(env, target)
	if absErr != nil {
		return model.Worktree{}, err
	}
	if byPath, ok := worktree.FindByPath(worktrees, abs); ok {
		return byPath, nil
	}
	return model.Worktree{}, err
}

// pickRemovable lets the user choose among the removable worktrees.
func pickRemovable(cmd *cobra.Command, env *Env, repo *repoContext) (model.Worktree, bool, error) {
	removable := worktree.Removable(repo.worktrees, repo.mainBranch)
	if len(removable) == 0 {
		return model.Worktree{}, false, model.NewCLIError(model.ExitNotFound, "no removable worktrees")
	}

	cfg, err := loadConfig(env)
	if err != nil {
		return model.Worktree{}, false, err
	}

	opts := worktreePickerOptions(cfg)
	opts.Prompt = "Remove> "
	opts.Header = "Select a worktree to remove"

	result := newPicker(env).Pick(cmd.Context(), worktreeCandidates(toEntries(removable, repo.mainBranch, ""), false), opts)
	switch r := result.(type) {
	case picker.Selected:
		wt, ok := worktree.FindByPath(removable, candidatePath(r.Line))
		if !ok {
			return model.Worktree{}, false, model.Errorf(model.ExitNotFound, "no worktree found matching '%s'", r.Line)
		}
		return wt, true, nil
	case picker.Failed:
		return model.Worktree{}, false, pickerError(r.Err)
	default:
		return model.Worktree{}, false, nil
	}
}
