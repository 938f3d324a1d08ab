// Package cli - preview.go implements the "wt preview" command used as
// the fzf preview pane.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/wt/internal/model"
	"github.com/shinji-kodama/wt/internal/worktree"
)

// previewCommits is how many recent commits the preview shows.
const previewCommits = 5

// previewFlags holds the flag values for the preview command.
type previewFlags struct {
	path string
}

// previewResult is the preview content, also printed as JSON.
type previewResult struct {
	Repo         string   `json:"repo"`
	Branch       string   `json:"branch"`
	Path         string   `json:"path"`
	Head         string   `json:"head"`
	Status       string   `json:"status"`
	Commits      []string `json:"commits"`
	ChangedFiles []string `json:"changed_files"`
}

func newPreviewCommand(env *Env) *cobra.Command {
	flags := &previewFlags{}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show a worktree summary (fzf preview)",
		Long: `Show the repository, branch, status, recent commits and changed files
of a worktree. The pickers run this command for the highlighted line.

Examples:
  wt preview --path ../proj-feature-auth`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, env, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.path, "path", "p", "", "Worktree path (default: current directory)")

	return cmd
}

func runPreview(cmd *cobra.Command, env *Env, flags *previewFlags) error {
	ctx := cmd.Context()

	path := flags.path
	if path == "" {
		path = "."
	}
	path, err := absPath(env, path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return model.Errorf(model.ExitNotFound, "worktree path does not exist: %s", path)
	}

	git := worktree.NewManager(env.Runner)
	worktrees, err := git.List(ctx, path)
	if err != nil {
		return err
	}

	result := previewResult{Path: path, Commits: []string{}, ChangedFiles: []string{}}
	if len(worktrees) > 0 {
		result.Repo = strings.TrimSuffix(filepath.Base(worktrees[0].Path), ".git")
	}
	if wt, ok := worktree.Containing(worktrees, path); ok {
		result.Path = wt.Path
		result.Branch = branchLabel(wt)
		result.Head = wt.Head
	}

	// The remaining sections are best effort: a failing git call leaves its
	// section empty.
	if out, err := git.Git(ctx, result.Path, "status", "-sb"); err == nil {
		result.Status = strings.TrimRight(out, "\n")
	}
	if out, err := git.Git(ctx, result.Path, "log", "-n", fmt.Sprint(previewCommits), "--oneline", "--decorate"); err == nil {
		result.Commits = nonEmptyLines(out)
	}
	if out, err := git.Git(ctx, result.Path, "status", "--porcelain=v1"); err == nil {
		result.ChangedFiles = nonEmptyLines(out)
	}

	if IsJSONOutput() {
		return printJSON(cmd.OutOrStdout(), result)
	}
	printPreviewText(cmd.OutOrStdout(), result)
	return nil
}

func printPreviewText(w io.Writer, p previewResult) {
	_, _ = fmt.Fprintf(w, "%s %s\n", bold.Sprint("Repository:"), cyan.Sprint(p.Repo))
	_, _ = fmt.Fprintf(w, "%s     %s\n", bold.Sprint("Branch:"), green.Sprint(p.Branch))
	_, _ = fmt.Fprintf(w, "%s       %s\n", bold.Sprint("Path:"), p.Path)

	if p.Status != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n%s\n", bold.Sprint("Status:"), p.Status)
	}

	_, _ = fmt.Fprintf(w, "\n%s\n", bold.Sprint("Recent commits:"))
	if len(p.Commits) == 0 {
		_, _ = fmt.Fprintln(w, dim.Sprint("  (none)"))
	}
	for _, c := range p.Commits {
		_, _ = fmt.Fprintf(w, "  %s\n", c)
	}

	_, _ = fmt.Fprintf(w, "\n%s\n", bold.Sprint("Changed files:"))
	if len(p.ChangedFiles) == 0 {
		_, _ = fmt.Fprintln(w, dim.Sprint("  (clean)"))
	}
	for _, f := range p.ChangedFiles {
		_, _ = fmt.Fprintf(w, "  %s\n", f)
	}
}

func nonEmptyLines(s string) []string {
	lines := []string{}
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
