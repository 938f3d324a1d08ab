package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/wt/internal/model"
)

// Colors for human-readable output. fatih/color disables them when stdout
// is not a terminal.
var (
	green     = color.New(color.FgGreen)
	mainColor = color.New(color.FgGreen, color.Bold)
	yellow    = color.New(color.FgYellow)
	red       = color.New(color.FgRed)
	cyan      = color.New(color.FgCyan)
	bold      = color.New(color.Bold)
	dim       = color.New(color.Faint)
)

// printJSON writes v as indented JSON followed by a newline.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return model.WrapCLIError(model.ExitIOError, "failed to encode JSON output", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// padRight pads s with spaces to width terminal columns. Wide characters
// (CJK, emoji) count as two columns.
func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// columnWidth returns the widest display width among values.
func columnWidth(values []string) int {
	width := 0
	for _, v := range values {
		width = max(width, runewidth.StringWidth(v))
	}
	return width
}

// branchLabel is the branch column text for a worktree.
func branchLabel(wt model.Worktree) string {
	switch {
	case wt.Bare:
		return "(bare)"
	case wt.IsDetached():
		return "(detached)"
	default:
		return wt.ShortBranch()
	}
}

// flagList renders the state flags shown after the path in list output,
// e.g. "locked, prunable: gitdir file points to non-existent location".
func flagList(wt model.Worktree) []string {
	var flags []string
	if wt.Locked {
		if wt.LockReason != "" {
			flags = append(flags, "locked: "+wt.LockReason)
		} else {
			flags = append(flags, "locked")
		}
	}
	if wt.Prunable {
		if wt.PrunableReason != "" {
			flags = append(flags, "prunable: "+wt.PrunableReason)
		} else {
			flags = append(flags, "prunable")
		}
	}
	if wt.Bare {
		flags = append(flags, "bare")
	}
	return flags
}

// confirm asks a yes/no question on stderr and reads one line from stdin.
// Only "y" and "yes" (any case) confirm; EOF declines.
func confirm(cmd *cobra.Command, env *Env, question string) (bool, error) {
	if env.IsTerminal != nil && !env.IsTerminal() {
		return false, model.NewCLIError(model.ExitUserError,
			"cannot ask for confirmation: stdin is not a terminal (pass --force or --yes)")
	}

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N] ", question)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	if scanner.Scan() {
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		return answer == "y" || answer == "yes", nil
	}
	if err := scanner.Err(); err != nil {
		return false, model.WrapCLIError(model.ExitIOError, "failed to read user input", err)
	}
	return false, nil
}

// readLine prompts on stderr and returns one trimmed line from stdin.
func readLine(cmd *cobra.Command, env *Env, prompt string) (string, error) {
	if env.IsTerminal != nil && !env.IsTerminal() {
		return "", model.NewCLIError(model.ExitUserError, "cannot prompt: stdin is not a terminal")
	}

	_, _ = fmt.Fprint(cmd.ErrOrStderr(), prompt)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	if err := scanner.Err(); err != nil {
		return "", model.WrapCLIError(model.ExitIOError, "failed to read user input", err)
	}
	return "", nil
}
