package agentpipe

import (
	"context"
	"iter"
)

// Client provides an interactive, stateful interface for multi-turn
// conversations with the agent CLI.
//
// Unlike the one-shot Query() function, Client maintains session state
// across multiple exchanges. The child stays running between turns, and
// Send blocks until the previous turn's result message has been
// observed, so callers never pace the conversation with timers.
//
// Lifecycle: Clients are single-use. After Close(), create a new client
// with NewClient().
//
// Example usage:
//
//	client := NewClient()
//	defer client.Close()
//
//	if err := client.Start(ctx, WithLogger(slog.Default())); err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := client.Send(ctx, "What is 2+2?"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Receive all messages for this turn (stops at ResultMessage)
//	for msg, err := range client.ReceiveResponse(ctx) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    // Process message...
//	}
type Client interface {
	// Start spawns the agent CLI in streaming mode.
	// Must be called before any other methods.
	// Returns SpawnError if the CLI cannot be found or launched.
	Start(ctx context.Context, opts ...Option) error

	// Send injects a user message into the conversation.
	// Blocks until any previous turn has completed, then returns after
	// the message is written; use ReceiveMessages() or ReceiveResponse()
	// to consume the response.
	// Returns WriteError after EndInput or process exit.
	Send(ctx context.Context, prompt string) error

	// ReceiveMessages returns an iterator that yields messages indefinitely.
	// Messages are yielded as they arrive until EOF, an error occurs, or context is cancelled.
	// Unlike ReceiveResponse, this iterator does not stop at ResultMessage.
	ReceiveMessages(ctx context.Context) iter.Seq2[Message, error]

	// ReceiveResponse returns an iterator that yields messages until a ResultMessage is received.
	// Messages are yielded as they arrive for streaming consumption.
	// The iterator stops after yielding the ResultMessage.
	// To collect all messages into a slice, use slices.Collect or a simple loop.
	ReceiveResponse(ctx context.Context) iter.Seq2[Message, error]

	// State reports where the session is in its protocol lifecycle.
	State() SessionState

	// SessionID returns the identifier announced by the child's system
	// message, or empty before readiness.
	SessionID() string

	// EndInput closes the child's stdin, telling it to finalize after
	// the current turn. Subsequent Send calls fail with WriteError.
	EndInput() error

	// Close terminates the session and cleans up resources.
	// After Close(), the client cannot be reused. Safe to call multiple times.
	Close() error
}

// NewClient creates a new interactive client.
//
// Call Start() with options to begin a session:
//
//	client := NewClient()
//	err := client.Start(ctx, WithLogger(slog.Default()))
func NewClient() Client {
	return newClientImpl()
}
