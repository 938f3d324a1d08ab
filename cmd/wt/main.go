// Package main is the entry point for the wt CLI.
//
// wt lists, creates, removes and previews git worktrees and drives an fzf
// picker whose selection a shell wrapper turns into a directory change.
// All commands live in internal/cli.
//
// Build-time variables (version, commit, date) are injected via ldflags
// at release time.
package main

import (
	"github.com/shinji-kodama/wt/internal/cli"
)

// version, commit, and date are set by GoReleaser at build time
// via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}
