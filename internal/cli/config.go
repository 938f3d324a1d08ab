// Package cli - config.go implements the "wt config" command group.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/wt/internal/config"
	"github.com/shinji-kodama/wt/internal/model"
)

// defaultEditor is used when neither the settings nor $EDITOR name one.
const defaultEditor = "vim"

func newConfigCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage wt settings",
		Long: `Manage the wt settings file (config.yaml in the settings directory).

The directory is --config-dir, $WT_CONFIG_DIR, $XDG_CONFIG_HOME/worktree-manager
or ~/.config/worktree-manager, in that order.`,
		Args: cobra.NoArgs,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Create the settings file with default values",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigInit(cmd, env)
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigShow(cmd, env)
			},
		},
		&cobra.Command{
			Use:   "set-editor <editor>",
			Short: "Set the editor opened by Ctrl-E",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigSetEditor(cmd, env, args[0])
			},
		},
		&cobra.Command{
			Use:   "set-discovery-paths <path>...",
			Short: "Set the directories searched by --all",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigSetDiscoveryPaths(cmd, env, args)
			},
		},
		&cobra.Command{
			Use:    "editor",
			Short:  "Print the editor the shell wrapper should launch",
			Args:   cobra.NoArgs,
			Hidden: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigEditor(cmd, env)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the settings file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := loadStore(env)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), store.Path())
				return err
			},
		},
	)

	return cmd
}

func runConfigInit(cmd *cobra.Command, env *Env) error {
	store, err := loadStore(env)
	if err != nil {
		return err
	}
	created, err := store.Init()
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		return printJSON(cmd.OutOrStdout(), map[string]any{"success": true, "created": created, "path": store.Path()})
	}
	if created {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s Created %s\n", green.Sprint("✓"), store.Path())
	} else {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Config already exists: %s\n", store.Path())
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, env *Env) error {
	cfg, err := loadConfig(env)
	if err != nil {
		return err
	}
	if IsJSONOutput() {
		return printJSON(cmd.OutOrStdout(), cfg)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return model.WrapCLIError(model.ExitConfigError, "failed to encode settings", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigSetEditor(cmd *cobra.Command, env *Env, editor string) error {
	return updateConfig(cmd, env, func(cfg *config.Config) error {
		cfg.Editor = editor
		return nil
	}, fmt.Sprintf("Editor set to %s", editor))
}

func runConfigSetDiscoveryPaths(cmd *cobra.Command, env *Env, paths []string) error {
	return updateConfig(cmd, env, func(cfg *config.Config) error {
		cfg.AutoDiscovery.Paths = paths
		cfg.AutoDiscovery.Enabled = true
		return nil
	}, fmt.Sprintf("Discovery paths set to %v", paths))
}

// updateConfig applies fn to the stored settings and reports success.
func updateConfig(cmd *cobra.Command, env *Env, fn func(*config.Config) error, message string) error {
	store, err := loadStore(env)
	if err != nil {
		return err
	}
	cfg, err := store.Update(fn)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		return printJSON(cmd.OutOrStdout(), map[string]any{"success": true, "config": cfg})
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", green.Sprint("✓"), message)
	return nil
}

// runConfigEditor prints the effective editor: the settings value, then
// $EDITOR, then vim.
func runConfigEditor(cmd *cobra.Command, env *Env) error {
	editor := defaultEditor
	if cfg, err := loadConfig(env); err == nil && cfg.Editor != "" {
		editor = cfg.Editor
	} else if e := env.Getenv("EDITOR"); e != "" {
		editor = e
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), editor)
	return err
}
