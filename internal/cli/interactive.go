// Package cli - interactive.go implements the worktree picker that runs
// for a bare "wt" and for "wt interactive".
//
// The selection is printed as "cd|<path>" (Enter) or "edit|<path>"
// (Ctrl-E). The shell wrapper installed by "wt init" reads that line and
// changes directory or opens the editor; the binary itself cannot change
// the parent shell's directory.
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/wt/internal/config"
	"github.com/shinji-kodama/wt/internal/model"
	"github.com/shinji-kodama/wt/internal/picker"
)

// Actions printed for the shell wrapper.
const (
	actionCd   = "cd"
	actionEdit = "edit"
)

// editKey is the fzf key that selects the edit action.
const editKey = "ctrl-e"

// interactiveFlags holds the flag values for the interactive command.
type interactiveFlags struct {
	// all offers worktrees from every discovered repository.
	all bool
}

func newInteractiveCommand(env *Env) *cobra.Command {
	flags := &interactiveFlags{}

	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Pick a worktree with fzf",
		Long: `Pick a worktree with fzf and print the chosen action.

Enter prints "cd|<path>", Ctrl-E prints "edit|<path>". Nothing is printed
when the picker is cancelled. The shell function installed by "wt init"
turns the output into a directory change or an editor launch.

Examples:
  wt interactive
  wt interactive --all`,

		Aliases: []string{"i"},
		Args:    cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, env, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.all, "all", "a", false, "Pick from all discovered repositories")

	return cmd
}

func runInteractive(cmd *cobra.Command, env *Env, flags *interactiveFlags) error {
	if IsJSONOutput() {
		return model.NewCLIError(model.ExitUserError, "interactive mode does not support --json; use wt list --json")
	}

	cfg, err := loadConfig(env)
	if err != nil {
		return err
	}

	var entries []listEntry
	if flags.all {
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

	opts := worktreePickerOptions(cfg)
	opts.Prompt = "Worktree> "
	opts.Header = "Enter: cd | Ctrl-E: edit"
	opts.Expect = []string{editKey}

	result := newPicker(env).Pick(cmd.Context(), worktreeCandidates(entries, flags.all), opts)
	switch r := result.(type) {
	case picker.Selected:
		action := actionCd
		if r.Key == editKey {
			action = actionEdit
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s|%s\n", action, candidatePath(r.Line))
		return err
	case picker.Failed:
		return pickerError(r.Err)
	default:
		VerboseLog("picker cancelled")
		return nil
	}
}

// worktreePickerOptions returns the fzf settings shared by every worktree
// picker. Each candidate line is "<display>\t<path>"; only the display
// field is shown and the preview receives the path.
func worktreePickerOptions(cfg *config.Config) picker.Options {
	return picker.Options{
		Height:        cfg.Fzf.Height,
		Layout:        cfg.Fzf.Layout,
		PreviewWindow: cfg.Fzf.PreviewWindow,
		Preview:       "wt preview --path {2}",
		Delimiter:     "\t",
		WithNth:       "1",
	}
}

// worktreeCandidates renders entries as picker lines with aligned
// columns: "[repo]  branch  path\tpath".
func worktreeCandidates(entries []listEntry, withRepo bool) []string {
	var repos, branches []string
	for _, e := range entries {
		repos = append(repos, e.Repo)
		branches = append(branches, branchLabel(e.Worktree))
	}
	repoWidth := columnWidth(repos)
	branchWidth := columnWidth(branches)

	lines := make([]string, 0, len(entries))
	for i, e := range entries {
		var display strings.Builder
		if withRepo {
			display.WriteString(padRight(e.Repo, repoWidth) + "  ")
		}
		display.WriteString(padRight(branches[i], branchWidth) + "  " + e.Path)
		lines = append(lines, display.String()+"\t"+e.Path)
	}
	return lines
}

// candidatePath extracts the path field from a picker line.
func candidatePath(line string) string {
	if i := strings.LastIndexByte(line, '\t'); i >= 0 {
		return line[i+1:]
	}
	return strings.TrimSpace(line)
}

// pickerError maps a picker failure to an exit category. Errors that
// already carry one (fzf missing from PATH) keep it.
func pickerError(err error) error {
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		return err
	}
	return model.WrapCLIError(model.ExitIOError, "fzf failed: "+err.Error(), err)
}
