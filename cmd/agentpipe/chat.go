package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentpipe/agentpipe"
	"github.com/agentpipe/agentpipe/internal/render"
)

var chatSystemPrompt string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Hold an interactive multi-turn conversation",
	Long: `Start the agent CLI in streaming mode and read prompts from stdin,
one per line. Each prompt is sent only after the previous turn's
result message has arrived. End the session with "exit" or EOF.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVar(&chatSystemPrompt, "system-prompt", "",
		"system prompt passed to the agent CLI")
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := newLogger()

	opts := sessionOptions(log)
	if chatSystemPrompt != "" {
		opts = append(opts, agentpipe.WithSystemPrompt(chatSystemPrompt))
	}

	printer := render.NewPrinter(os.Stdout)

	return agentpipe.WithClient(ctx, func(c agentpipe.Client) error {
		scanner := bufio.NewScanner(os.Stdin)

		fmt.Print("> ")

		for scanner.Scan() {
			prompt := strings.TrimSpace(scanner.Text())

			if prompt == "" {
				fmt.Print("> ")

				continue
			}

			if prompt == "exit" || prompt == "quit" {
				break
			}

			if err := c.Send(ctx, prompt); err != nil {
				return err
			}

			for msg, err := range c.ReceiveResponse(ctx) {
				if err != nil {
					return err
				}

				printer.Print(msg)
			}

			fmt.Print("> ")
		}

		return scanner.Err()
	}, opts...)
}
