package worktree

import (
	"fmt"
	"strings"

	"github.com/shinji-kodama/wt/internal/model"
)

// ParseError describes malformed porcelain input. Parsing stops at the
// first error and no partial result is returned.
type ParseError struct {
	// Line is the 1-based line number of the offending line.
	Line int

	// Text is the offending line with trailing whitespace removed.
	Text string

	// Reason says what was wrong, e.g. "missing worktree path".
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed worktree list at line %d (%q): %s", e.Line, e.Text, e.Reason)
}

// headDetached is the legacy value some git versions print after "HEAD"
// for a detached worktree. It maps to an empty Head.
const headDetached = "detached"

// ParsePorcelain parses the output of `git worktree list --porcelain` into
// records in input order.
//
// Blocks are separated by blank lines; the last block does not need a
// trailing blank line. Each line is "<key>" or "<key> <value>":
//
//	worktree /path/to/main
//	HEAD abc123
//	branch refs/heads/main
//
//	worktree /path/to/old
//	HEAD def456
//	detached
//	prunable gitdir file points to non-existent location
//
// Unknown keys are ignored so newer git versions keep working. A known key
// appearing before any "worktree" line, or a "worktree"/"HEAD" line without
// a value, is a *ParseError.
func ParsePorcelain(input string) ([]model.Worktree, error) {
	worktrees := []model.Worktree{}
	var current *model.Worktree

	flush := func() {
		if current != nil {
			worktrees = append(worktrees, *current)
			current = nil
		}
	}

	for i, raw := range strings.Split(input, "\n") {
		line := strings.TrimRight(raw, " \t\r")
		if line == "" {
			flush()
			continue
		}

		key, value, _ := strings.Cut(line, " ")
		fail := func(reason string) error {
			return &ParseError{Line: i + 1, Text: line, Reason: reason}
		}

		switch key {
		case "worktree":
			flush()
			if value == "" {
				return nil, fail("missing worktree path")
			}
			current = &model.Worktree{Path: value}
			continue
		case "HEAD", "branch", "locked", "prunable", "bare":
			if current == nil {
				return nil, fail(key + " before worktree")
			}
		default:
			continue
		}

		switch key {
		case "HEAD":
			if value == "" {
				return nil, fail("missing HEAD value")
			}
			if value == headDetached {
				current.Head = ""
			} else {
				current.Head = value
			}
		case "branch":
			current.Branch = value
		case "locked":
			current.Locked = true
			current.LockReason = value
		case "prunable":
			current.Prunable = true
			current.PrunableReason = value
		case "bare":
			current.Bare = true
		}
	}
	flush()

	return worktrees, nil
}
