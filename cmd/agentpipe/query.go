package main

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentpipe/agentpipe"
	"github.com/agentpipe/agentpipe/internal/render"
)

var (
	queryMaxTurns     int
	querySystemPrompt string
	queryNoTools      bool
)

var queryCmd = &cobra.Command{
	Use:   "query [flags] -- <prompt>",
	Short: "Run a one-shot query and print the decoded messages",
	Long: `Spawn the agent CLI with a single prompt, close its stdin, and print
each decoded output message as a bounded one-line summary. Malformed
output lines are shown as raw previews without stopping the stream.

Example:
  agentpipe query --max-turns 1 -- "What is 2+2?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().IntVar(&queryMaxTurns, "max-turns", 0,
		"limit the number of conversation turns")
	queryCmd.Flags().StringVar(&querySystemPrompt, "system-prompt", "",
		"system prompt passed to the agent CLI")
	queryCmd.Flags().BoolVar(&queryNoTools, "no-tools", false,
		"disable all tools for the session")
}

func runQuery(cmd *cobra.Command, args []string) error {
	log := newLogger()
	prompt := strings.Join(args, " ")

	opts := sessionOptions(log)

	if queryMaxTurns > 0 {
		opts = append(opts, agentpipe.WithMaxTurns(queryMaxTurns))
	}

	if querySystemPrompt != "" {
		opts = append(opts, agentpipe.WithSystemPrompt(querySystemPrompt))
	}

	if queryNoTools {
		opts = append(opts, agentpipe.WithNoTools())
	}

	printer := render.NewPrinter(os.Stdout)

	for msg, err := range agentpipe.Query(cmd.Context(), prompt, opts...) {
		if err != nil {
			if _, isDecode := errors.AsType[*agentpipe.DecodeError](err); isDecode {
				printer.PrintError(err)

				continue
			}

			return err
		}

		printer.Print(msg)
	}

	return nil
}
