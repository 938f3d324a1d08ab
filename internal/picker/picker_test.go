package picker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/wt/internal/process"
)

// TestInterpret covers every fzf exit status the picker distinguishes.
func TestInterpret(t *testing.T) {
	tests := []struct {
		name   string
		res    process.Result
		expect bool
		want   Result
	}{
		{
			name: "plain selection",
			res:  process.Result{Stdout: "main\t/repo\n"},
			want: Selected{Line: "main\t/repo"},
		},
		{
			name:   "enter with expect",
			res:    process.Result{Stdout: "\nmain\t/repo\n"},
			expect: true,
			want:   Selected{Line: "main\t/repo"},
		},
		{
			name:   "ctrl-e with expect",
			res:    process.Result{Stdout: "ctrl-e\nfeature\t/repo-feature\n"},
			expect: true,
			want:   Selected{Key: "ctrl-e", Line: "feature\t/repo-feature"},
		},
		{
			name: "no match",
			res:  process.Result{ExitCode: 1},
			want: Cancelled{},
		},
		{
			name: "interrupted",
			res:  process.Result{ExitCode: 130},
			want: Cancelled{},
		},
		{
			name: "empty selection",
			res:  process.Result{Stdout: "\n"},
			want: Cancelled{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.res
			assert.Equal(t, tt.want, interpret(&res, tt.expect))
		})
	}
}

func TestInterpret_Failed(t *testing.T) {
	got := interpret(&process.Result{ExitCode: 2, Stderr: "unknown option: --bogus"}, false)

	failed, ok := got.(Failed)
	require.True(t, ok)
	assert.Contains(t, failed.Err.Error(), "status 2")
	assert.Contains(t, failed.Err.Error(), "unknown option")
}

// TestPick verifies candidates are fed on stdin and options become flags.
func TestPick(t *testing.T) {
	r := process.NewMockRunner()
	r.AddPrefixMatch(Binary, nil, process.MockResponse{Stdout: "ctrl-e\nb\n"})

	got := New(r).Pick(context.Background(), []string{"a", "b"}, Options{
		Height: "40%",
		Prompt: "Worktree> ",
		Expect: []string{"ctrl-e"},
	})
	assert.Equal(t, Selected{Key: "ctrl-e", Line: "b"}, got)

	calls := r.GetCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "a\nb\n", calls[0].Input)
	assert.Equal(t, []string{"--height", "40%", "--prompt", "Worktree> ", "--expect", "ctrl-e"}, calls[0].Args)
}

func TestPick_StartFailure(t *testing.T) {
	r := process.NewMockRunner()
	r.AddPrefixMatch(Binary, nil, process.MockResponse{Err: errors.New("fzf not found in PATH")})

	got := New(r).Pick(context.Background(), []string{"a"}, Options{})
	failed, ok := got.(Failed)
	require.True(t, ok)
	assert.EqualError(t, failed.Err, "fzf not found in PATH")
}

func TestOptionsArgs(t *testing.T) {
	opts := Options{
		Height:        "40%",
		Layout:        "reverse",
		PreviewWindow: "right:60%",
		Preview:       "wt preview --path {2}",
		Delimiter:     "\t",
		WithNth:       "1",
	}
	assert.Equal(t, []string{
		"--height", "40%",
		"--layout", "reverse",
		"--preview-window", "right:60%",
		"--preview", "wt preview --path {2}",
		"--delimiter", "\t",
		"--with-nth", "1",
	}, opts.Args())
}
