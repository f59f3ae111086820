// Package agentpipe drives an AI-assistant CLI as a subprocess and
// exposes its newline-delimited JSON output as a stream of typed
// messages.
//
// The CLI is spawned in print mode with stream-json output. A
// background read loop decodes one JSON object per line; malformed
// lines are reported and skipped without stopping the stream. In
// streaming-input mode, user messages are injected over stdin and each
// follow-up send is gated on the previous turn's result message.
//
// # One-shot queries
//
// For a single prompt and response, use Query:
//
//	ctx := context.Background()
//	for msg, err := range agentpipe.Query(ctx, "What is 2+2?",
//	    agentpipe.WithMaxTurns(1),
//	) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    switch m := msg.(type) {
//	    case *agentpipe.AssistantMessage:
//	        fmt.Println(m.Text())
//	    case *agentpipe.ResultMessage:
//	        fmt.Printf("cost=$%.4f\n", *m.TotalCostUSD)
//	    }
//	}
//
// # Interactive sessions
//
// For multi-turn conversations, use NewClient or the WithClient
// helper:
//
//	err := agentpipe.WithClient(ctx, func(c agentpipe.Client) error {
//	    if err := c.Send(ctx, "Hello"); err != nil {
//	        return err
//	    }
//	    for msg, err := range c.ReceiveResponse(ctx) {
//	        if err != nil {
//	            return err
//	        }
//	        // process message...
//	    }
//	    return c.Send(ctx, "Thanks!")
//	})
//
// Send blocks until the previous turn's result message has been
// observed, so callers never need timed waits between turns.
//
// # Logging
//
// Logging is disabled by default. Use WithLogger for operation
// tracking:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
//	for msg, err := range agentpipe.Query(ctx, prompt,
//	    agentpipe.WithLogger(logger),
//	) { ... }
//
// # Error handling
//
// Typed errors cover the failure scenarios:
//
//	for msg, err := range agentpipe.Query(ctx, prompt) {
//	    if err != nil {
//	        if spawnErr, ok := errors.AsType[*agentpipe.SpawnError](err); ok {
//	            log.Fatalf("agent CLI not found, searched: %v", spawnErr.SearchedPaths)
//	        }
//	        if exitErr, ok := errors.AsType[*agentpipe.ExitError](err); ok {
//	            log.Fatalf("agent CLI exited %d: %s", exitErr.ExitCode, exitErr.Stderr)
//	        }
//	        log.Fatal(err)
//	    }
//	    // ...
//	}
//
// # Requirements
//
// The agent CLI must be installed and reachable in PATH, or its path
// given with WithCommand.
package agentpipe
