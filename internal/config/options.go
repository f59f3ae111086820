// Package config provides configuration types shared across the session layers.
package config

import "log/slog"

// DefaultStderrBudget bounds how much stderr is retained for error
// reporting. The process keeps running past the budget; only the
// captured text stops growing.
const DefaultStderrBudget = 64 * 1024

// Options configures a session with the agent CLI.
type Options struct {
	// Command is the agent CLI binary name or path. Defaults to "claude".
	Command string

	// Model selects the model, when the CLI supports --model.
	Model string

	// SystemPrompt is passed via --system-prompt when non-empty.
	SystemPrompt string

	// MaxTurns limits conversation turns when > 0.
	MaxTurns int

	// Tools restricts the tool set. A non-nil empty slice disables all
	// tools (--tools ""). Nil leaves the CLI default untouched.
	Tools []string

	// Cwd is the working directory for the child process.
	Cwd string

	// Env holds extra environment variables for the child process.
	Env map[string]string

	// StderrBudget caps the bytes of stderr retained for diagnostics.
	// Zero means DefaultStderrBudget.
	StderrBudget int

	// Stderr, when set, receives each stderr line as it arrives.
	Stderr func(line string)

	// Logger receives debug output. Nil disables logging.
	Logger *slog.Logger

	// Transport overrides the default subprocess transport. Used for
	// testing and alternative process supervision.
	Transport Transport
}

// EffectiveStderrBudget returns the configured stderr budget or the default.
func (o *Options) EffectiveStderrBudget() int {
	if o.StderrBudget > 0 {
		return o.StderrBudget
	}

	return DefaultStderrBudget
}

// EffectiveCommand returns the configured command or the default binary name.
func (o *Options) EffectiveCommand() string {
	if o.Command != "" {
		return o.Command
	}

	return "claude"
}
