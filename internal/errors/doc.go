// Package errors defines the error taxonomy for agent CLI sessions.
//
// Decode errors are recoverable: the read loop reports them and keeps
// going. Everything else (spawn, write, exit) is fatal to the session
// and propagates to the caller. No errors trigger retries.
package errors
