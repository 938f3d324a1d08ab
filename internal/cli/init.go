// Package cli - init.go implements the "wt init" command.
//
// With a shell argument it prints the wrapper script, for use as
// eval "$(wt init zsh)". Without one it installs that line into the rc
// file of the current shell:
//  1. Detect the shell from $SHELL
//  2. Locate its rc file
//  3. Skip if the wrapper is already configured
//  4. Confirm (unless --yes) and append the integration line
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/wt/internal/model"
	"github.com/shinji-kodama/wt/internal/shell"
)

// initFlags holds the flag values for the init command.
type initFlags struct {
	// yes installs without asking.
	yes bool
}

func newInitCommand(env *Env) *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init [bash|zsh|fish]",
		Short: "Print or install the shell integration",
		Long: `Print or install the shell function that lets wt change the current
directory after a selection in the picker.

With a shell name, the script is printed:
  eval "$(wt init zsh)"          # ~/.zshrc
  eval "$(wt init bash)"         # ~/.bashrc
  wt init fish | source          # ~/.config/fish/config.fish

Without arguments, the shell is detected from $SHELL and the line above is
appended to its rc file after confirmation.`,

		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(shell.Bash), string(shell.Zsh), string(shell.Fish)},

		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runInitPrint(cmd, args[0])
			}
			return runInitInstall(cmd, env, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "Install without confirmation")

	return cmd
}

func runInitPrint(cmd *cobra.Command, name string) error {
	s, err := shell.Parse(name)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), shell.Script(s))
	return err
}

func runInitInstall(cmd *cobra.Command, env *Env, flags *initFlags) error {
	// Step 1: Detect the shell.
	s, err := shell.Detect(env.Getenv("SHELL"))
	if err != nil {
		return err
	}

	// Step 2: Locate the rc file.
	home, err := env.HomeDir()
	if err != nil {
		return model.WrapCLIError(model.ExitIOError, "cannot determine home directory", err)
	}
	rcPath := shell.RCPath(s, home, env.Getenv("ZDOTDIR"))
	VerboseLog("detected %s, rc file %s", s, rcPath)

	// Step 3: Already configured?
	configured, err := shell.IsConfigured(rcPath)
	if err != nil {
		return err
	}
	if configured {
		return reportInit(cmd, s, rcPath, false)
	}

	// Step 4: Confirm and install.
	if !flags.yes {
		if IsJSONOutput() {
			return model.NewCLIError(model.ExitUserError, "refusing to modify the rc file without confirmation; pass --yes")
		}
		errOut := cmd.ErrOrStderr()
		_, _ = fmt.Fprintf(errOut, "Detected shell: %s\n", s)
		_, _ = fmt.Fprintf(errOut, "The following will be added to %s:\n\n", rcPath)
		_, _ = fmt.Fprintf(errOut, "  %s\n  %s\n\n", shell.Marker, shell.IntegrationLine(s))

		ok, err := confirm(cmd, env, "Proceed?")
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(errOut, "Aborted.")
			_, _ = fmt.Fprintf(errOut, "To set it up manually, add this line to %s:\n  %s\n", rcPath, shell.IntegrationLine(s))
			return nil
		}
	}

	installed, err := shell.Install(s, rcPath)
	if err != nil {
		return err
	}
	return reportInit(cmd, s, rcPath, installed)
}

func reportInit(cmd *cobra.Command, s shell.Shell, rcPath string, installed bool) error {
	if IsJSONOutput() {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"success":   true,
			"shell":     s,
			"rc_file":   rcPath,
			"installed": installed,
		})
	}

	errOut := cmd.ErrOrStderr()
	if !installed {
		_, _ = fmt.Fprintf(errOut, "Shell integration is already configured in %s\n", rcPath)
		return nil
	}
	_, _ = fmt.Fprintf(errOut, "%s Added shell integration to %s\n", green.Sprint("✓"), rcPath)
	_, _ = fmt.Fprintf(errOut, "Restart your shell or run: %s\n", shell.ReloadHint(s, rcPath))
	return nil
}
