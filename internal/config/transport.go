package config

import "context"

// Transport defines the interface for agent CLI communication.
// Implement this to provide custom transports for testing or
// alternative process supervision.
//
// The default implementation is subprocess.PipeTransport which spawns
// the CLI and speaks NDJSON over its standard streams.
type Transport interface {
	// Start launches the child process and wires up its streams.
	Start(ctx context.Context) error

	// ReadMessages returns channels for decoded output objects and
	// read errors. Decode failures for individual lines arrive on the
	// error channel without stopping the message flow. Both channels
	// close when the process output ends.
	ReadMessages(ctx context.Context) (<-chan map[string]any, <-chan error)

	// SendMessage writes one JSON message to the child's stdin.
	// A trailing newline is appended when missing. Safe for concurrent use.
	SendMessage(ctx context.Context, data []byte) error

	// EndInput closes the child's stdin, signaling that no further
	// input will arrive. Idempotent.
	EndInput() error

	// Close terminates the child process. Safe to call multiple times.
	Close() error
}
