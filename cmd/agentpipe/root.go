package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentpipe/agentpipe"
)

var (
	version = "dev"

	verboseFlag bool
	modelFlag   string
	commandFlag string
)

var rootCmd = &cobra.Command{
	Use:   "agentpipe",
	Short: "Drive an AI-assistant CLI over newline-delimited JSON",
	Long: `agentpipe spawns an AI-assistant CLI as a subprocess, decodes its
stream-json output line by line, and injects user messages over stdin.
Follow-up messages wait for the previous turn's result instead of
guessing with timers.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"enable debug logging to stderr")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "",
		"model the agent CLI should use")
	rootCmd.PersistentFlags().StringVar(&commandFlag, "command", "",
		"agent CLI binary name or path (default: claude)")
}

// newLogger builds the logger shared by all subcommands.
func newLogger() *slog.Logger {
	if !verboseFlag {
		return agentpipe.NopLogger()
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// sessionOptions collects the options common to query and chat.
func sessionOptions(log *slog.Logger) []agentpipe.Option {
	opts := []agentpipe.Option{agentpipe.WithLogger(log)}

	if modelFlag != "" {
		opts = append(opts, agentpipe.WithModel(modelFlag))
	}

	if commandFlag != "" {
		opts = append(opts, agentpipe.WithCommand(commandFlag))
	}

	return opts
}
