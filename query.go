package agentpipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/agentpipe/agentpipe/internal/config"
	sdkerrors "github.com/agentpipe/agentpipe/internal/errors"
	"github.com/agentpipe/agentpipe/internal/message"
	"github.com/agentpipe/agentpipe/internal/session"
	"github.com/agentpipe/agentpipe/internal/subprocess"
)

// getLoggerWithComponent returns a logger with the component field set.
func getLoggerWithComponent(options *Options, component string) *slog.Logger {
	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	return log.With("component", component)
}

// Query executes a one-shot query against the agent CLI and returns an
// iterator of messages.
//
// The CLI is spawned in print mode with stream-json output, its stdin
// is closed immediately, and the iterator yields decoded messages as
// they arrive: a system message announcing readiness, assistant and
// tool traffic, and a final result message.
//
// By default, logging is disabled. Use WithLogger to enable logging:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
//	for msg, err := range Query(ctx, "What is 2+2?",
//	    WithLogger(logger),
//	    WithMaxTurns(1),
//	) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    // handle msg
//	}
//
// Error Handling:
//
// Errors are yielded inline as the second return value. The iterator
// distinguishes between recoverable and fatal errors:
//
//   - Decode errors: a stdout line that is not valid JSON yields a
//     DecodeError and iteration continues with the next line. Callers
//     can log the raw line without losing subsequent data.
//
//   - Fatal errors: spawn failures, non-zero process exit, and context
//     cancellation cause iteration to stop after yielding the error.
//
// Callers can always stop iteration early by breaking from the loop,
// regardless of error type.
func Query(
	ctx context.Context,
	prompt string,
	opts ...Option,
) iter.Seq2[Message, error] {
	return func(yield func(Message, error) bool) {
		options := applyOptions(opts)

		log := getLoggerWithComponent(options, "query")
		log.Debug("Starting query execution")

		var transport Transport

		if options.Transport != nil {
			transport = options.Transport

			log.Debug("Using injected custom transport")
		} else {
			log.Debug("Creating subprocess transport")

			transport = subprocess.New(log, prompt, options)
		}

		log.Info("Starting transport")

		if err := transport.Start(ctx); err != nil {
			log.Error("Failed to start agent CLI", "error", err)
			yield(nil, err)

			return
		}

		defer transport.Close()

		// No input follows the argv prompt in one-shot mode. The CLI
		// waits for stdin to close before processing.
		log.Debug("Closing stdin for one-shot query mode")

		if err := transport.EndInput(); err != nil {
			yield(nil, fmt.Errorf("close stdin: %w", err))

			return
		}

		_ = readMessages(ctx, log, transport, nil, yield)
	}
}

// QueryStream executes a streaming query with multiple input messages.
//
// The messages iterator yields InputMessage values that are sent to the
// agent via stdin in streaming mode; the transport uses
// --input-format stream-json. Each message after the first is sent only
// after the previous turn's result message has been observed, so the
// stream never races the agent. Stdin closes when the iterator is
// exhausted and the CLI finalizes after its last turn.
//
// By default, logging is disabled. Use WithLogger to enable logging.
//
// Example usage:
//
//	messages := agentpipe.MessagesFromSlice([]agentpipe.InputMessage{
//	    agentpipe.NewUserMessage("Hello"),
//	    agentpipe.NewUserMessage("How are you?"),
//	})
//
//	for msg, err := range agentpipe.QueryStream(ctx, messages) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    // Handle messages
//	}
//
// Error Handling follows Query: decode errors are yielded inline and
// iteration continues; spawn failures, write failures, process exit,
// and context cancellation stop iteration after the error is yielded.
func QueryStream(
	ctx context.Context,
	messages iter.Seq[InputMessage],
	opts ...Option,
) iter.Seq2[Message, error] {
	return func(yield func(Message, error) bool) {
		options := applyOptions(opts)

		log := getLoggerWithComponent(options, "query_stream")
		log.Debug("Starting streaming query execution")

		var transport Transport

		if options.Transport != nil {
			transport = options.Transport

			log.Debug("Using injected custom transport for streaming")
		} else {
			log.Debug("Creating subprocess transport in streaming mode")

			transport = subprocess.NewStreaming(log, "", options, true)
		}

		log.Info("Starting transport in streaming mode")

		if err := transport.Start(ctx); err != nil {
			log.Error("Failed to start agent CLI", "error", err)
			yield(nil, err)

			return
		}

		defer transport.Close()

		// The tracker observes the output stream; the send goroutine
		// gates each follow-up message on its turn-complete signal.
		tracker := session.NewTracker(log)

		g, gCtx := errgroup.WithContext(ctx)

		g.Go(func() error {
			return streamInputMessages(gCtx, log, transport, tracker, messages)
		})

		defer func() { _ = g.Wait() }()
		defer tracker.Close()

		if readMessages(ctx, log, transport, tracker, yield) {
			// Stream ended without a fatal error. Release the sender
			// before waiting on it: the child may have exited mid-turn,
			// leaving the sender gated on a result that never arrives.
			tracker.Close()

			if sendErr := g.Wait(); sendErr != nil {
				yield(nil, sendErr)
			}
		}
	}
}

// streamInputMessages writes each input message to the transport's
// stdin, waiting for the previous turn's result before each send.
// Stdin is closed when the iterator completes.
func streamInputMessages(
	ctx context.Context,
	log *slog.Logger,
	transport config.Transport,
	tracker *session.Tracker,
	messages iter.Seq[InputMessage],
) (err error) {
	defer func() {
		if endErr := transport.EndInput(); endErr != nil && err == nil {
			err = fmt.Errorf("end input: %w", endErr)
		}
	}()

	for msg := range messages {
		select {
		case <-tracker.TurnComplete():
		case <-ctx.Done():
			log.Debug("Context cancelled during message streaming")

			return ctx.Err()
		}

		if tracker.State() == session.StateClosed {
			log.Debug("Session closed before all input was sent")

			return nil
		}

		turnID := tracker.BeginTurn()

		data, err := json.Marshal(msg)
		if err != nil {
			log.Error("Failed to marshal input message", "error", err)

			return fmt.Errorf("marshal input message: %w", err)
		}

		if err := transport.SendMessage(ctx, data); err != nil {
			log.Error("Failed to send input message", "error", err)

			return fmt.Errorf("send input message: %w", err)
		}

		log.Debug("Sent input message", "turn_id", turnID)
	}

	// The final turn's result still arrives after the last send; wait
	// for it so stdin does not close mid-turn.
	select {
	case <-tracker.TurnComplete():
		log.Debug("Finished streaming all messages")
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

// readMessages drains the transport and yields decoded messages.
// Decode errors are yielded inline and the loop continues; any other
// transport error is fatal. The tracker is optional. Returns true only
// when the stream ended cleanly with the consumer still accepting
// messages.
func readMessages(
	ctx context.Context,
	log *slog.Logger,
	transport config.Transport,
	tracker *session.Tracker,
	yield func(Message, error) bool,
) bool {
	rawMessages, errs := transport.ReadMessages(ctx)

	log.Debug("Reading messages from transport")

	for {
		select {
		case msg, ok := <-rawMessages:
			if !ok {
				log.Debug("Raw message channel closed")

				if err := drainFatal(errs); err != nil {
					log.Error("Error from transport", "error", err)
					yield(nil, err)

					return false
				}

				return true
			}

			parsed, err := message.Parse(log, msg)
			if err != nil {
				log.Warn("Failed to parse message", "error", err)

				if !yield(nil, fmt.Errorf("parse message: %w", err)) {
					return false
				}

				continue
			}

			if tracker != nil {
				tracker.Observe(parsed)
			}

			if !yield(parsed, nil) {
				log.Debug("Yield returned false, stopping iteration")

				return false
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil

				continue
			}

			if decodeErr, isDecode := errors.AsType[*sdkerrors.DecodeError](err); isDecode {
				log.Warn("Skipping malformed output line", "error", decodeErr.Err)

				if !yield(nil, decodeErr) {
					return false
				}

				continue
			}

			log.Error("Error from transport", "error", err)
			yield(nil, err)

			return false

		case <-ctx.Done():
			log.Debug("Context cancelled")
			yield(nil, ctx.Err())

			return false
		}
	}
}

// drainFatal consumes remaining errors after the message channel closes
// and returns the first fatal one. Decode errors at this point have no
// following messages to protect and are dropped. A nil channel means
// the error channel already closed during the read loop; ranging over
// it would block forever.
func drainFatal(errs <-chan error) error {
	if errs == nil {
		return nil
	}

	for err := range errs {
		if _, isDecode := errors.AsType[*sdkerrors.DecodeError](err); isDecode {
			continue
		}

		return err
	}

	return nil
}
