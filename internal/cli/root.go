// Package cli implements the cobra-based CLI commands for wt.
//
// Each subcommand (list, add, remove, prune, preview, interactive, config,
// init, agent) is defined in its own file within this package. This file
// defines the root command, the global flags, and error reporting.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/shinji-kodama/wt/internal/config"
	"github.com/shinji-kodama/wt/internal/logger"
	"github.com/shinji-kodama/wt/internal/model"
	"github.com/shinji-kodama/wt/internal/picker"
	"github.com/shinji-kodama/wt/internal/process"
	"github.com/shinji-kodama/wt/internal/worktree"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command.
var (
	// jsonOutput switches every command to machine-readable output,
	// including errors.
	jsonOutput bool

	// verbose enables debug logging on stderr.
	verbose bool

	// configDir overrides the settings directory.
	configDir string
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// Env holds the process-level collaborators commands depend on. Tests
// replace them to run commands without git, fzf or a terminal.
type Env struct {
	// Runner executes git and fzf.
	Runner process.Runner

	// WorkDir is the directory commands operate from. Empty means the
	// process working directory.
	WorkDir string

	// Getenv reads environment variables.
	Getenv func(string) string

	// HomeDir returns the user's home directory.
	HomeDir func() (string, error)

	// IsTerminal reports whether stdin is an interactive terminal, which
	// decides if confirmation prompts are possible.
	IsTerminal func() bool
}

// DefaultEnv returns the Env used by the real binary.
func DefaultEnv() *Env {
	return &Env{
		Runner:     process.NewExecRunner(),
		Getenv:     os.Getenv,
		HomeDir:    os.UserHomeDir,
		IsTerminal: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
	}
}

// NewRootCommand creates and configures the root cobra command.
//
// Run without a subcommand, wt opens the interactive worktree picker.
func NewRootCommand() *cobra.Command {
	return newRootCommand(DefaultEnv())
}

func newRootCommand(env *Env) *cobra.Command {
	pickFlags := &interactiveFlags{}

	rootCmd := &cobra.Command{
		Use:   "wt",
		Short: "Git worktree manager",
		Long: `wt lists, creates, removes, prunes and previews git worktrees.

Run without arguments inside a repository to pick a worktree with fzf;
with the shell integration installed (wt init), the shell then changes
to the selected worktree.`,

		Args: cobra.NoArgs,

		// SilenceUsage prevents cobra from printing usage on every error.
		SilenceUsage: true,

		// SilenceErrors lets Execute format errors (text or JSON).
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetDebug(verbose)
			if jsonOutput {
				color.NoColor = true
			}
		},

		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, env, pickFlags)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Settings directory (default $WT_CONFIG_DIR or ~/.config/worktree-manager)")

	rootCmd.Flags().BoolVarP(&pickFlags.all, "all", "a", false, "Pick from all discovered repositories")

	// Shell completion scripts are not provided.
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(newInteractiveCommand(env))
	rootCmd.AddCommand(newListCommand(env))
	rootCmd.AddCommand(newAddCommand(env))
	rootCmd.AddCommand(newRemoveCommand(env))
	rootCmd.AddCommand(newPruneCommand(env))
	rootCmd.AddCommand(newPreviewCommand(env))
	rootCmd.AddCommand(newConfigCommand(env))
	rootCmd.AddCommand(newInitCommand(env))
	rootCmd.AddCommand(newAgentCommand(env))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// newVersionCommand prints the same string as --version.
func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if IsJSONOutput() {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"version": Version,
					"commit":  Commit,
					"date":    Date,
				})
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wt %s (commit: %s, built: %s)\n", Version, Commit, Date)
			return err
		},
	}
}

// Execute runs the root command and exits with the error's category code.
// This is the main entry point called from main.go.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(reportError(rootCmd.OutOrStdout(), rootCmd.ErrOrStderr(), err))
	}
}

// reportError prints err as JSON on stdout (--json) or as
// "error[<tag>]: <message>: <detail>" on stderr, and returns the exit code.
//
// Errors that are not CLIErrors (cobra flag and argument errors) are
// user errors.
func reportError(stdout, stderr io.Writer, err error) int {
	code := model.ExitUserError
	message := err.Error()
	detail := ""

	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		code = cliErr.Code
		message = cliErr.Message
		detail = errorDetail(cliErr.Err)
	}

	if jsonOutput {
		doc := map[string]any{
			"error":   true,
			"code":    code.Tag(),
			"message": message,
		}
		if detail != "" {
			doc["detail"] = detail
		}
		_ = printJSON(stdout, doc)
	} else {
		tag := color.New(color.FgRed, color.Bold).Sprintf("error[%s]", code.Tag())
		if detail != "" {
			message += ": " + detail
		}
		_, _ = fmt.Fprintf(stderr, "%s: %s\n", tag, message)
	}
	return int(code)
}

// errorDetail is the cause shown after an error message. Failed commands
// are left out: their stderr is already part of the message, and the full
// command line goes to the debug log.
func errorDetail(err error) string {
	if err == nil {
		return ""
	}
	var cmdErr *process.CommandError
	if errors.As(err, &cmdErr) {
		logger.Get().Debug("underlying error", "err", err)
		return ""
	}
	return err.Error()
}

// VerboseLog writes a debug record; it is shown only with --verbose.
func VerboseLog(format string, args ...any) {
	logger.Get().Debug(fmt.Sprintf(format, args...))
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}

// loadStore opens the settings store from --config-dir or the default
// location.
func loadStore(env *Env) (*config.Store, error) {
	dir := configDir
	if dir == "" {
		var err error
		if dir, err = config.DefaultDir(env.Getenv, env.HomeDir); err != nil {
			return nil, err
		}
	}
	return config.NewStore(dir), nil
}

// loadConfig reads the settings document.
func loadConfig(env *Env) (*config.Config, error) {
	store, err := loadStore(env)
	if err != nil {
		return nil, err
	}
	return store.Load()
}

// repoContext is what most commands need: the repository root, its
// worktrees, and the detected main branch.
type repoContext struct {
	git        *worktree.Manager
	root       string
	worktrees  []model.Worktree
	mainBranch string
}

// openRepo resolves the repository containing env.WorkDir and lists its
// worktrees.
func openRepo(cmd *cobra.Command, env *Env) (*repoContext, error) {
	ctx := cmd.Context()
	git := worktree.NewManager(env.Runner)

	root, err := git.RepoRoot(ctx, env.WorkDir)
	if err != nil {
		return nil, err
	}
	VerboseLog("repository root: %s", root)

	worktrees, err := git.List(ctx, root)
	if err != nil {
		return nil, err
	}

	mainBranch := git.MainBranch(ctx, root)
	VerboseLog("main branch: %s, %d worktree(s)", mainBranch, len(worktrees))

	return &repoContext{git: git, root: root, worktrees: worktrees, mainBranch: mainBranch}, nil
}

// newPicker returns an fzf picker running through env.
func newPicker(env *Env) *picker.Picker {
	return picker.New(env.Runner)
}
