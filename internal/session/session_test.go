package session

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentpipe/agentpipe/internal/message"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestTrackerInitialState(t *testing.T) {
	tracker := NewTracker(testLogger())

	assert.Equal(t, StateStarting, tracker.State())
	assert.Empty(t, tracker.SessionID())
	assert.False(t, isClosed(tracker.Ready()))

	// No turn is pending, so the first send never waits.
	assert.True(t, isClosed(tracker.TurnComplete()))
}

func TestTrackerReadyOnSystemMessage(t *testing.T) {
	tracker := NewTracker(testLogger())

	tracker.Observe(&message.SystemMessage{
		Type:      "system",
		SessionID: "sess-1",
		Model:     "claude-sonnet-4-5",
	})

	assert.Equal(t, StateReady, tracker.State())
	assert.Equal(t, "sess-1", tracker.SessionID())
	assert.True(t, isClosed(tracker.Ready()))
}

// TestTrackerTurnLifecycle walks the ordered scenario: system,
// assistant traffic, then the result that releases the next send.
func TestTrackerTurnLifecycle(t *testing.T) {
	tracker := NewTracker(testLogger())

	tracker.Observe(&message.SystemMessage{Type: "system", SessionID: "sess-1"})

	turnID := tracker.BeginTurn()
	require.NotEmpty(t, turnID)
	assert.Equal(t, turnID, tracker.TurnID())
	assert.False(t, isClosed(tracker.TurnComplete()))

	tracker.Observe(&message.AssistantMessage{Type: "assistant"})
	assert.Equal(t, StateTurnActive, tracker.State())
	assert.False(t, isClosed(tracker.TurnComplete()))

	cost := 0.01
	tracker.Observe(&message.ResultMessage{
		Type:         "result",
		Subtype:      "success",
		NumTurns:     1,
		TotalCostUSD: &cost,
		Result:       "hi",
	})

	assert.Equal(t, StateTurnComplete, tracker.State())
	assert.True(t, isClosed(tracker.TurnComplete()))
	assert.Empty(t, tracker.TurnID())

	result := tracker.LastResult()
	require.NotNil(t, result)
	require.NotNil(t, result.TotalCostUSD)
	assert.InDelta(t, 0.01, *result.TotalCostUSD, 1e-9)
	assert.Equal(t, "hi", result.Result)
}

func TestTrackerSuccessiveTurns(t *testing.T) {
	tracker := NewTracker(testLogger())

	first := tracker.BeginTurn()
	tracker.Observe(&message.ResultMessage{Type: "result", Subtype: "success"})
	require.True(t, isClosed(tracker.TurnComplete()))

	second := tracker.BeginTurn()
	assert.NotEqual(t, first, second)
	assert.False(t, isClosed(tracker.TurnComplete()))

	tracker.Observe(&message.ResultMessage{Type: "result", Subtype: "success"})
	assert.True(t, isClosed(tracker.TurnComplete()))
}

func TestTrackerTurnCompleteUnblocksWaiter(t *testing.T) {
	tracker := NewTracker(testLogger())
	tracker.BeginTurn()

	released := make(chan struct{})

	go func() {
		<-tracker.TurnComplete()
		close(released)
	}()

	tracker.Observe(&message.ResultMessage{Type: "result", Subtype: "success"})

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("waiter was not released by result message")
	}
}

func TestTrackerUnsolicitedResult(t *testing.T) {
	tracker := NewTracker(testLogger())

	// A result with no pending turn must not panic on the already
	// closed channel.
	tracker.Observe(&message.ResultMessage{Type: "result", Subtype: "success"})
	assert.Equal(t, StateTurnComplete, tracker.State())
}

func TestTrackerCloseReleasesWaiters(t *testing.T) {
	tracker := NewTracker(testLogger())
	tracker.BeginTurn()

	tracker.Close()

	assert.Equal(t, StateClosed, tracker.State())
	assert.True(t, isClosed(tracker.TurnComplete()))

	// Observations after close are ignored.
	tracker.Observe(&message.SystemMessage{Type: "system", SessionID: "late"})
	assert.Equal(t, StateClosed, tracker.State())
	assert.Empty(t, tracker.SessionID())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "starting", StateStarting.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "turn-active", StateTurnActive.String())
	assert.Equal(t, "turn-complete", StateTurnComplete.String())
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "invalid", State(99).String())
}
