// Package cli - prune.go implements the "wt prune" command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/wt/internal/worktree"
)

// pruneFlags holds the flag values for the prune command.
type pruneFlags struct {
	dryRun bool
	quiet  bool
}

// pruneResult is the JSON document printed by prune.
type pruneResult struct {
	Success bool                      `json:"success"`
	DryRun  bool                      `json:"dry_run"`
	Pruned  []worktree.PruneCandidate `json:"pruned"`
}

func newPruneCommand(env *Env) *cobra.Command {
	flags := &pruneFlags{}

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Prune stale worktree records",
		Long: `Report worktrees git considers prunable (their directory is gone or
their gitdir is invalid) and delete their administrative data with
git worktree prune.

Examples:
  wt prune --dry-run
  wt prune`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrune(cmd, env, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.dryRun, "dry-run", "n", false, "Only report what would be pruned")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "Print nothing on success")

	return cmd
}

func runPrune(cmd *cobra.Command, env *Env, flags *pruneFlags) error {
	repo, err := openRepo(cmd, env)
	if err != nil {
		return err
	}

	candidates := worktree.PruneCandidates(repo.worktrees)
	VerboseLog("%d prunable worktree(s)", len(candidates))

	// git may know about stale entries the listing does not flag, so prune
	// runs even with no candidates.
	if !flags.dryRun {
		if err := repo.git.Prune(cmd.Context(), repo.root); err != nil {
			return err
		}
	}

	if IsJSONOutput() {
		return printJSON(cmd.OutOrStdout(), pruneResult{Success: true, DryRun: flags.dryRun, Pruned: candidates})
	}
	if flags.quiet {
		return nil
	}

	out := cmd.OutOrStdout()
	if len(candidates) == 0 {
		_, _ = fmt.Fprintln(out, "Nothing to prune.")
		return nil
	}

	verb := "Pruned"
	if flags.dryRun {
		verb = "Would prune"
	}
	for _, c := range candidates {
		reason := c.Reason
		if reason == "" {
			reason = "prunable"
		}
		_, _ = fmt.Fprintf(out, "%s %s %s\n", yellow.Sprint(verb), c.Path, dim.Sprintf("(%s)", reason))
	}
	return nil
}
