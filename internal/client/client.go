package client

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/agentpipe/agentpipe/internal/config"
	"github.com/agentpipe/agentpipe/internal/errors"
	"github.com/agentpipe/agentpipe/internal/message"
	"github.com/agentpipe/agentpipe/internal/session"
	"github.com/agentpipe/agentpipe/internal/subprocess"
)

// defaultMessageBufferSize is the buffer size for the messages channel.
const defaultMessageBufferSize = 10

// Client implements the interactive multi-turn session.
type Client struct {
	log       *slog.Logger
	transport config.Transport
	tracker   *session.Tracker
	options   *config.Options

	// Decoded messages flowing to the consumer
	messages chan message.Message

	// First fatal error wins
	errMu    sync.RWMutex
	fatalErr error

	eg *errgroup.Group

	mu        sync.Mutex
	done      chan struct{}
	connected bool
	closed    bool
	closeOnce sync.Once
}

// New creates a new interactive client. The client is not connected
// until Start is called.
func New() *Client {
	return &Client{
		messages: make(chan message.Message, defaultMessageBufferSize),
		done:     make(chan struct{}),
	}
}

func (c *Client) setFatalError(err error) {
	if err == nil {
		return
	}

	c.errMu.Lock()
	defer c.errMu.Unlock()

	if c.fatalErr == nil {
		c.fatalErr = err
	}
}

func (c *Client) getFatalError() error {
	c.errMu.RLock()
	defer c.errMu.RUnlock()

	return c.fatalErr
}

func (c *Client) isConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.connected
}

// Start spawns the agent CLI in streaming mode and begins reading its
// output on a background goroutine.
//
// Returns SpawnError if the binary cannot be located or launched.
func (c *Client) Start(ctx context.Context, options *config.Options) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.ErrClosed
	}

	if c.connected {
		return errors.ErrAlreadyStarted
	}

	if options == nil {
		options = &config.Options{}
	}

	log := options.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c.log = log.With("component", "client")
	c.options = options
	c.tracker = session.NewTracker(c.log)

	transport := options.Transport
	if transport == nil {
		transport = subprocess.NewStreaming(c.log, "", options, true)
	}

	if err := transport.Start(ctx); err != nil {
		return err
	}

	c.transport = transport

	// The errgroup uses a background context: the caller's ctx may
	// carry a startup timeout, and the read loop must outlive it until
	// Close is called. The done channel provides shutdown signaling.
	var egCtx context.Context

	c.eg, egCtx = errgroup.WithContext(context.Background())

	c.eg.Go(func() error {
		return c.readLoop(egCtx)
	})

	c.connected = true
	c.log.Info("Client started")

	return nil
}

// readLoop drains the transport, parses each object into a typed
// message, feeds the session tracker, and forwards messages to the
// consumer channel. Decode errors are logged and skipped; everything
// else on the error channel is fatal.
func (c *Client) readLoop(ctx context.Context) error {
	defer c.log.Debug("Read loop stopped")
	defer close(c.messages)
	defer c.tracker.Close()

	rawMessages, errs := c.transport.ReadMessages(ctx)

	for {
		select {
		case msg, ok := <-rawMessages:
			if !ok {
				c.log.Debug("Message channel closed")

				return c.drainErrors(errs)
			}

			parsed, err := message.Parse(c.log, msg)
			if err != nil {
				// Shaped-but-invalid objects are reported like decode
				// errors: skipped, not fatal.
				c.log.Warn("Failed to parse message", "error", err)

				continue
			}

			c.tracker.Observe(parsed)

			select {
			case c.messages <- parsed:
			case <-c.done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil

				continue
			}

			if fatal := c.handleReadError(err); fatal != nil {
				return fatal
			}

		case <-c.done:
			return nil

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// drainErrors consumes remaining errors after the message channel
// closes and returns the first fatal one, if any. A nil channel means
// the error channel already closed inside the read loop; ranging over
// it would block forever and keep the messages channel open.
func (c *Client) drainErrors(errs <-chan error) error {
	if errs == nil {
		return nil
	}

	for err := range errs {
		if fatal := c.handleReadError(err); fatal != nil {
			return fatal
		}
	}

	return nil
}

// handleReadError classifies one transport error. Decode errors are
// recoverable and return nil; anything else is recorded as fatal.
func (c *Client) handleReadError(err error) error {
	if decodeErr, ok := stderrors.AsType[*errors.DecodeError](err); ok {
		c.log.Warn("Skipping malformed output line",
			"error", decodeErr.Err,
			"raw_len", len(decodeErr.Raw),
		)

		return nil
	}

	c.log.Error("Transport error", "error", err)
	c.setFatalError(err)

	return err
}

// Send injects one user message into the conversation.
//
// Sends are gated on turn completion: if a previous turn is still in
// flight, Send blocks until its result message is observed. This is
// the flow-control replacement for fixed-duration waits between turns.
func (c *Client) Send(ctx context.Context, prompt string) error {
	if !c.isConnected() {
		return errors.ErrNotStarted
	}

	select {
	case <-c.tracker.TurnComplete():
	case <-c.done:
		return errors.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	turnID := c.tracker.BeginTurn()

	c.log.Debug("Sending user message", "turn_id", turnID, "prompt_len", len(prompt))

	data, err := json.Marshal(message.NewInputMessage(prompt))
	if err != nil {
		return fmt.Errorf("marshal input message: %w", err)
	}

	return c.transport.SendMessage(ctx, data)
}

// receive blocks until the next message is available. Returns io.EOF
// when the session ends normally.
func (c *Client) receive(ctx context.Context) (message.Message, error) {
	if err := c.getFatalError(); err != nil {
		return nil, err
	}

	select {
	case msg, ok := <-c.messages:
		if !ok {
			if c.eg != nil {
				if err := c.eg.Wait(); err != nil {
					c.setFatalError(err)

					return nil, err
				}
			}

			return nil, io.EOF
		}

		return msg, nil

	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ReceiveMessages yields messages until end-of-stream, a fatal error,
// or context cancellation. It does not stop at result messages.
func (c *Client) ReceiveMessages(ctx context.Context) iter.Seq2[message.Message, error] {
	return func(yield func(message.Message, error) bool) {
		if !c.isConnected() {
			yield(nil, errors.ErrNotStarted)

			return
		}

		for {
			msg, err := c.receive(ctx)
			if err != nil {
				yield(nil, err)

				return
			}

			if !yield(msg, nil) {
				return
			}
		}
	}
}

// ReceiveResponse yields messages for the current turn, stopping after
// the result message.
func (c *Client) ReceiveResponse(ctx context.Context) iter.Seq2[message.Message, error] {
	return func(yield func(message.Message, error) bool) {
		if !c.isConnected() {
			yield(nil, errors.ErrNotStarted)

			return
		}

		for {
			msg, err := c.receive(ctx)
			if err != nil {
				yield(nil, fmt.Errorf("receive response: %w", err))

				return
			}

			if !yield(msg, nil) {
				return
			}

			if _, ok := msg.(*message.ResultMessage); ok {
				return
			}
		}
	}
}

// State returns the session's protocol state.
func (c *Client) State() session.State {
	if c.tracker == nil {
		return session.StateStarting
	}

	return c.tracker.State()
}

// SessionID returns the identifier announced by the child, or empty
// before readiness.
func (c *Client) SessionID() string {
	if c.tracker == nil {
		return ""
	}

	return c.tracker.SessionID()
}

// EndInput closes the child's stdin, telling it to finalize after the
// current turn. Further Send calls fail with WriteError.
func (c *Client) EndInput() error {
	if !c.isConnected() {
		return errors.ErrNotStarted
	}

	return c.transport.EndInput()
}

// Close terminates the session and releases resources. After Close the
// client cannot be reused. Safe to call multiple times.
func (c *Client) Close() error {
	var closeErr error

	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		wasConnected := c.connected
		c.connected = false
		c.mu.Unlock()

		if !wasConnected {
			return
		}

		c.log.Info("Closing client")

		close(c.done)

		if c.tracker != nil {
			c.tracker.Close()
		}

		if c.transport != nil {
			closeErr = c.transport.Close()
		}

		if c.eg != nil {
			if err := c.eg.Wait(); err != nil && closeErr == nil {
				closeErr = err
			}
		}

		c.log.Info("Client closed")
	})

	return closeErr
}
