package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrNotStarted indicates the transport has not been started.
	ErrNotStarted = errors.New("transport not started")

	// ErrAlreadyStarted indicates the session is already running.
	ErrAlreadyStarted = errors.New("session already started")

	// ErrClosed indicates the session has been closed and cannot be reused.
	ErrClosed = errors.New("session closed: sessions are single-use, create a new one")

	// ErrInputClosed indicates stdin was closed and no further input can be sent.
	ErrInputClosed = errors.New("input stream closed")
)

// SpawnError indicates the agent CLI binary could not be found or launched.
// Fatal to the session.
type SpawnError struct {
	SearchedPaths []string
	Err           error
}

func (e *SpawnError) Error() string {
	if len(e.SearchedPaths) > 0 {
		return fmt.Sprintf("agent CLI not found in: %v", e.SearchedPaths)
	}

	return fmt.Sprintf("failed to spawn agent CLI: %v", e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// DecodeError indicates a single stdout line was not valid JSON.
// Recovered locally: the read loop reports it and continues.
type DecodeError struct {
	Raw string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode output line: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// WriteError indicates a write to the child's stdin failed, typically
// because the input stream was already closed. Fatal to further sends.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write to agent CLI: %v", e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// ExitError indicates the child process exited with a non-zero status.
// Stderr carries the captured diagnostic output, bounded by the
// configured stderr budget.
type ExitError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("agent CLI exited with code %d: %s", e.ExitCode, e.Stderr)
	}

	return fmt.Sprintf("agent CLI exited with code %d: %v", e.ExitCode, e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ParseError indicates a decoded JSON object did not match any known
// message shape. Distinct from DecodeError: the line was valid JSON.
type ParseError struct {
	Message string
	Data    map[string]any
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse message: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
