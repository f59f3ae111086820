// Command agentpipe drives an AI-assistant CLI as a subprocess:
// one-shot queries, interactive chat, chat-history export, and a
// speech-synthesis server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
