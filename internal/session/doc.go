// Package session tracks the protocol state machine of an agent CLI
// exchange: starting, ready, turn-active, turn-complete, closed.
//
// Turn completion is signaled by observing a result message on the
// output stream, giving callers a readiness channel to gate the next
// input on instead of guessing with timers.
package session
