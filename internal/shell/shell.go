// Package shell generates and installs the wt shell wrapper for bash, zsh
// and fish.
package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shinji-kodama/wt/internal/model"
)

// Marker precedes the integration line in an rc file.
const Marker = "# wt shell integration"

// Shell is a supported interactive shell.
type Shell string

const (
	Bash Shell = "bash"
	Zsh  Shell = "zsh"
	Fish Shell = "fish"
)

// Supported lists the shells in help output order.
var Supported = []Shell{Bash, Zsh, Fish}

// Parse converts a shell name into a Shell.
func Parse(name string) (Shell, error) {
	switch s := Shell(strings.ToLower(strings.TrimSpace(name))); s {
	case Bash, Zsh, Fish:
		return s, nil
	default:
		return "", model.Errorf(model.ExitUserError, "unsupported shell %q (supported: bash, zsh, fish)", name)
	}
}

// Detect derives the shell from a $SHELL value such as "/bin/zsh".
func Detect(shellEnv string) (Shell, error) {
	if shellEnv == "" {
		return "", model.NewCLIError(model.ExitUserError, "$SHELL is not set; run `wt init <shell>` to print the script instead")
	}
	base := filepath.Base(shellEnv)
	for _, s := range Supported {
		if strings.Contains(base, string(s)) {
			return s, nil
		}
	}
	return "", model.Errorf(model.ExitUserError,
		"unsupported shell: %s (supported: bash, zsh, fish); for manual setup run `wt init <shell>`", shellEnv)
}

// Script returns the wrapper script for s.
func Script(s Shell) string {
	switch s {
	case Zsh:
		return zshScript
	case Fish:
		return fishScript
	default:
		return bashScript
	}
}

// IntegrationLine is the rc-file line that loads the wrapper.
func IntegrationLine(s Shell) string {
	if s == Fish {
		return "wt init fish | source"
	}
	return fmt.Sprintf(`eval "$(wt init %s)"`, s)
}

// ReloadHint tells the user how to activate the wrapper in the current shell.
func ReloadHint(s Shell, rcPath string) string {
	if s == Fish {
		return "exec fish"
	}
	return "source " + rcPath
}

// RCPath picks the rc file to install into.
//
//   - zsh: ~/.zshrc if it exists, else $ZDOTDIR/.zshrc when ZDOTDIR is set,
//     else ~/.zshrc
//   - bash: ~/.bashrc if it exists, else ~/.bash_profile if it exists,
//     else ~/.bashrc
//   - fish: ~/.config/fish/config.fish
func RCPath(s Shell, home, zdotdir string) string {
	switch s {
	case Zsh:
		zshrc := filepath.Join(home, ".zshrc")
		if fileExists(zshrc) || zdotdir == "" {
			return zshrc
		}
		return filepath.Join(zdotdir, ".zshrc")
	case Fish:
		return filepath.Join(home, ".config", "fish", "config.fish")
	default:
		bashrc := filepath.Join(home, ".bashrc")
		if fileExists(bashrc) {
			return bashrc
		}
		if profile := filepath.Join(home, ".bash_profile"); fileExists(profile) {
			return profile
		}
		return bashrc
	}
}

// IsConfigured reports whether rcPath already loads the wrapper.
func IsConfigured(rcPath string) (bool, error) {
	data, err := os.ReadFile(rcPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, model.WrapCLIError(model.ExitIOError, fmt.Sprintf("failed to read %s", rcPath), err)
	}

	content := string(data)
	for _, needle := range []string{Marker, `eval "$(wt init`, "wt init fish | source"} {
		if strings.Contains(content, needle) {
			return true, nil
		}
	}
	return false, nil
}

// Install appends the marker and integration line to rcPath, creating the
// file and its directory if needed. It reports false without writing when
// the wrapper is already configured.
func Install(s Shell, rcPath string) (bool, error) {
	configured, err := IsConfigured(rcPath)
	if err != nil || configured {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(rcPath), 0755); err != nil {
		return false, model.WrapCLIError(model.ExitIOError, fmt.Sprintf("failed to create directory %s", filepath.Dir(rcPath)), err)
	}

	existing, _ := os.ReadFile(rcPath)
	var b strings.Builder
	if len(existing) > 0 && !strings.HasSuffix(string(existing), "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\n" + Marker + "\n" + IntegrationLine(s) + "\n")

	f, err := os.OpenFile(rcPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return false, model.WrapCLIError(model.ExitIOError, fmt.Sprintf("failed to open %s for writing", rcPath), err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(b.String()); err != nil {
		return false, model.WrapCLIError(model.ExitIOError, fmt.Sprintf("failed to write %s", rcPath), err)
	}
	return true, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
