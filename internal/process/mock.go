package process

import (
	"context"
	"slices"
	"sync"
)

// MockResponse defines the response for a mocked command.
type MockResponse struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

// CommandMatcher is a function that determines if a command matches.
type CommandMatcher func(dir, name string, args []string) bool

// MockRule defines a matching rule and its response.
type MockRule struct {
	Match    CommandMatcher
	Response MockResponse
}

// MockCall records a command invocation for verification.
type MockCall struct {
	Dir   string
	Name  string
	Args  []string
	Input string
}

// MockRunner returns pre-recorded responses for commands.
// Rules are matched in registration order. A command matching no rule
// exits with status 1 and a stderr note, like a failing git query.
type MockRunner struct {
	mu    sync.RWMutex
	rules []MockRule
	calls []MockCall
}

// NewMockRunner creates a new MockRunner.
func NewMockRunner() *MockRunner {
	return &MockRunner{}
}

// AddRule adds a matching rule with its response.
func (m *MockRunner) AddRule(match CommandMatcher, response MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, MockRule{Match: match, Response: response})
}

// AddExactMatch adds a rule that matches a specific command exactly.
func (m *MockRunner) AddExactMatch(name string, args []string, response MockResponse) {
	m.AddRule(func(_, n string, a []string) bool {
		return n == name && slices.Equal(a, args)
	}, response)
}

// AddPrefixMatch adds a rule that matches commands starting with specific args.
func (m *MockRunner) AddPrefixMatch(name string, prefixArgs []string, response MockResponse) {
	m.AddRule(func(_, n string, a []string) bool {
		return n == name && len(a) >= len(prefixArgs) && slices.Equal(a[:len(prefixArgs)], prefixArgs)
	}, response)
}

// GetCalls returns all recorded command invocations.
func (m *MockRunner) GetCalls() []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.calls)
}

// Called reports whether any recorded call starts with name and prefixArgs.
func (m *MockRunner) Called(name string, prefixArgs ...string) bool {
	for _, c := range m.GetCalls() {
		if c.Name == name && len(c.Args) >= len(prefixArgs) && slices.Equal(c.Args[:len(prefixArgs)], prefixArgs) {
			return true
		}
	}
	return false
}

// Run executes a mocked command.
func (m *MockRunner) Run(ctx context.Context, dir, name string, args ...string) (*Result, error) {
	return m.RunWithInput(ctx, dir, "", name, args...)
}

// RunWithInput executes a mocked command, recording its input.
func (m *MockRunner) RunWithInput(_ context.Context, dir, input, name string, args ...string) (*Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Dir: dir, Name: name, Args: slices.Clone(args), Input: input})
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rule := range m.rules {
		if rule.Match(dir, name, args) {
			r := rule.Response
			if r.Err != nil {
				return nil, r.Err
			}
			return &Result{ExitCode: r.ExitCode, Stdout: r.Stdout, Stderr: r.Stderr}, nil
		}
	}
	return &Result{ExitCode: 1, Stderr: "mock: unexpected command"}, nil
}
