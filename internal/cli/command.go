package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/agentpipe/agentpipe/internal/config"
)

// BuildArgs constructs the CLI invocation for a session.
//
// Every session runs non-interactive (--print) with NDJSON output and
// verbose diagnostics, which the CLI requires alongside stream-json.
// When streaming is true the prompt is omitted and --input-format
// stream-json keeps stdin open for injected user messages; otherwise
// the prompt is passed positionally after --.
func BuildArgs(prompt string, options *config.Options, streaming bool) []string {
	args := []string{
		"--print",
		"--output-format", "stream-json",
		"--verbose",
	}

	if options.Model != "" {
		args = append(args, "--model", options.Model)
	}

	if options.SystemPrompt != "" {
		args = append(args, "--system-prompt", options.SystemPrompt)
	}

	if options.MaxTurns > 0 {
		args = append(args, "--max-turns", strconv.Itoa(options.MaxTurns))
	}

	// A non-nil empty list disables all tools; nil keeps the CLI default.
	if options.Tools != nil {
		args = append(args, "--tools", strings.Join(options.Tools, ","))
	}

	if streaming {
		args = append(args, "--input-format", "stream-json")
	} else {
		args = append(args, "--", prompt)
	}

	return args
}

// BuildEnvironment constructs the environment for the child process:
// the parent environment plus any configured overrides.
func BuildEnvironment(options *config.Options) []string {
	env := os.Environ()

	for key, value := range options.Env {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}

	return env
}
