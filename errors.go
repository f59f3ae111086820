package agentpipe

import "github.com/agentpipe/agentpipe/internal/errors"

// Re-export error types from internal package

// SpawnError indicates the agent CLI binary was not found or failed to
// launch.
type SpawnError = errors.SpawnError

// DecodeError indicates one output line was not valid JSON. It is
// recoverable: the read loop reports it and continues.
type DecodeError = errors.DecodeError

// WriteError indicates a stdin write failed, including writes attempted
// after input was closed.
type WriteError = errors.WriteError

// ExitError indicates the CLI process exited with a non-zero code. It
// carries the exit code and captured stderr.
type ExitError = errors.ExitError

// ParseError indicates a decoded object could not be mapped to a typed
// message.
type ParseError = errors.ParseError

// Re-export sentinel errors from internal package.
var (
	// ErrNotStarted indicates the client or transport is not started.
	ErrNotStarted = errors.ErrNotStarted

	// ErrAlreadyStarted indicates Start was called twice.
	ErrAlreadyStarted = errors.ErrAlreadyStarted

	// ErrClosed indicates the client has been closed and cannot be reused.
	ErrClosed = errors.ErrClosed

	// ErrInputClosed indicates a send was attempted after EndInput.
	ErrInputClosed = errors.ErrInputClosed
)
