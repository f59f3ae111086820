package agentpipe

import "log/slog"

// Option configures Options using the functional options pattern.
// This is the primary option type for configuring clients and queries.
type Option func(*Options)

// applyOptions applies functional options to an Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// ===== Basic Configuration =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithModel specifies which model the agent CLI should use.
func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithSystemPrompt sets the system prompt passed to the agent CLI.
func WithSystemPrompt(prompt string) Option {
	return func(o *Options) {
		o.SystemPrompt = prompt
	}
}

// WithMaxTurns limits the maximum number of conversation turns.
func WithMaxTurns(maxTurns int) Option {
	return func(o *Options) {
		o.MaxTurns = maxTurns
	}
}

// WithTools restricts which tools the agent may use. An empty slice
// disables tools entirely; leaving the option unset keeps the CLI's
// defaults.
func WithTools(tools []string) Option {
	return func(o *Options) {
		if tools == nil {
			tools = []string{}
		}

		o.Tools = tools
	}
}

// WithNoTools disables all tools for the session.
func WithNoTools() Option {
	return WithTools([]string{})
}

// ===== Process Configuration =====

// WithCommand sets the agent CLI binary name or explicit path.
// If not set, "claude" is searched in PATH and common install locations.
func WithCommand(command string) Option {
	return func(o *Options) {
		o.Command = command
	}
}

// WithCwd sets the working directory for the CLI process.
func WithCwd(cwd string) Option {
	return func(o *Options) {
		o.Cwd = cwd
	}
}

// WithEnv provides additional environment variables for the CLI process.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		o.Env = env
	}
}

// ===== Diagnostics =====

// WithStderrBudget caps how many bytes of the child's stderr are
// retained for error reporting. Zero keeps the default budget.
func WithStderrBudget(budget int) Option {
	return func(o *Options) {
		o.StderrBudget = budget
	}
}

// WithStderr registers a callback invoked with each stderr line as it
// arrives, in addition to the retained capture.
func WithStderr(fn func(line string)) Option {
	return func(o *Options) {
		o.Stderr = fn
	}
}

// ===== Testing =====

// WithTransport injects a custom Transport, replacing the subprocess.
// Intended for tests and alternative process supervisors.
func WithTransport(transport Transport) Option {
	return func(o *Options) {
		o.Transport = transport
	}
}
