package session

import (
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/agentpipe/agentpipe/internal/message"
)

// State describes where the session is in its protocol lifecycle.
type State int

const (
	// StateStarting means the process is launched but has not yet
	// announced readiness with a system message.
	StateStarting State = iota
	// StateReady means a system message was observed and the child
	// accepts input.
	StateReady
	// StateTurnActive means assistant or tool traffic is streaming.
	StateTurnActive
	// StateTurnComplete means a result message closed the current turn;
	// the child accepts further input until stdin closes.
	StateTurnComplete
	// StateClosed means input was closed and the process has exited or
	// is exiting.
	StateClosed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateTurnActive:
		return "turn-active"
	case StateTurnComplete:
		return "turn-complete"
	case StateClosed:
		return "closed"
	default:
		return "invalid"
	}
}

// Tracker follows the child's protocol state from its output stream.
//
// The tracker replaces timed waits with explicit readiness signals: a
// turn is open for new input only after the previous turn's result
// message has been observed. Callers gate sends on TurnComplete()
// instead of sleeping.
type Tracker struct {
	log *slog.Logger

	mu         sync.Mutex
	state      State
	turnID     string
	sessionID  string
	lastResult *message.ResultMessage

	ready    chan struct{}
	turnDone chan struct{}
}

// NewTracker creates a tracker in the starting state. The initial turn
// channel is open so the first send never waits on a prior turn.
func NewTracker(log *slog.Logger) *Tracker {
	t := &Tracker{
		log:      log.With("component", "session"),
		state:    StateStarting,
		ready:    make(chan struct{}),
		turnDone: make(chan struct{}),
	}

	// No turn is pending before the first send.
	close(t.turnDone)

	return t
}

// State returns the current protocol state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.state
}

// SessionID returns the identifier announced in the system message, or
// empty before readiness.
func (t *Tracker) SessionID() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.sessionID
}

// LastResult returns the most recently observed result message, or nil.
func (t *Tracker) LastResult() *message.ResultMessage {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.lastResult
}

// TurnID returns the identifier of the turn currently in flight, or
// empty when no turn is pending.
func (t *Tracker) TurnID() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.turnID
}

// Ready returns a channel closed once the child announces readiness
// with its first system message.
func (t *Tracker) Ready() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.ready
}

// BeginTurn marks a new turn as pending and returns its identifier.
// The returned TurnComplete channel will not close until a result
// message for this turn is observed.
func (t *Tracker) BeginTurn() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.turnID = ulid.Make().String()

	// After Close the channel stays closed so late senders never block.
	if t.state != StateClosed {
		t.turnDone = make(chan struct{})
	}

	t.log.Debug("Turn started", "turn_id", t.turnID)

	return t.turnID
}

// TurnComplete returns a channel closed when the pending turn's result
// message arrives. Already closed when no turn is pending.
func (t *Tracker) TurnComplete() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.turnDone
}

// Observe updates the tracker from one output message.
func (t *Tracker) Observe(msg message.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == StateClosed {
		return
	}

	switch m := msg.(type) {
	case *message.SystemMessage:
		if t.state == StateStarting {
			t.state = StateReady

			close(t.ready)
		}

		if m.SessionID != "" {
			t.sessionID = m.SessionID
		}

		t.log.Debug("Session ready", "session_id", t.sessionID, "model", m.Model)

	case *message.AssistantMessage, *message.UserMessage:
		t.state = StateTurnActive

	case *message.ResultMessage:
		t.state = StateTurnComplete
		t.lastResult = m

		t.log.Debug("Turn complete",
			"turn_id", t.turnID,
			"subtype", m.Subtype,
			"num_turns", m.NumTurns,
		)

		t.turnID = ""

		select {
		case <-t.turnDone:
			// Unsolicited result with no pending turn; channel already closed.
		default:
			close(t.turnDone)
		}
	}
}

// Close marks the session closed and releases any waiter still gated
// on the pending turn.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == StateClosed {
		return
	}

	t.state = StateClosed

	select {
	case <-t.turnDone:
	default:
		close(t.turnDone)
	}
}
