// Package model defines the domain types and value objects for the wt CLI.
//
// This package contains pure data structures with no external dependencies.
// Worktree records are transient values rebuilt from `git worktree list
// --porcelain` on every invocation; nothing here is persisted.
//
// The package also defines the error categories (ExitCode) and a custom
// error type (CLIError) that carries the category through to the process
// exit status and the JSON error document.
package model
