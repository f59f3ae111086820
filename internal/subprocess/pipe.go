package subprocess

import (
	"bufio"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/agentpipe/agentpipe/internal/cli"
	"github.com/agentpipe/agentpipe/internal/config"
	"github.com/agentpipe/agentpipe/internal/errors"
)

// maxScanTokenSize is the maximum buffer size for reading output lines.
// Tool results can carry whole files, so lines get large.
const maxScanTokenSize = 1024 * 1024

// PipeTransport implements Transport by spawning the agent CLI and
// exchanging newline-delimited JSON over its standard streams.
type PipeTransport struct {
	log          *slog.Logger
	options      *config.Options
	prompt       string
	streaming    bool
	stderrBudget int

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser

	// done is closed by Close so the read goroutine unblocks even when
	// the consumer stopped pulling from the message channel.
	done chan struct{}

	mu          sync.Mutex // protects stdin writes and lifecycle flags
	closing     bool
	stdinClosed bool
}

var _ config.Transport = (*PipeTransport)(nil)

// New creates a transport for a one-shot exchange: the prompt is
// passed on the command line and stdin closes immediately after spawn.
func New(log *slog.Logger, prompt string, options *config.Options) *PipeTransport {
	return NewStreaming(log, prompt, options, false)
}

// NewStreaming creates a transport with explicit streaming control.
//
// When streaming is true the child is started with --input-format
// stream-json and stdin stays open for injected user messages; the
// prompt argument is ignored. Binary discovery is deferred to Start.
func NewStreaming(
	log *slog.Logger,
	prompt string,
	options *config.Options,
	streaming bool,
) *PipeTransport {
	return &PipeTransport{
		log:          log.With("component", "pipe_transport"),
		options:      options,
		prompt:       prompt,
		streaming:    streaming,
		stderrBudget: options.EffectiveStderrBudget(),
		done:         make(chan struct{}),
	}
}

// Start discovers the agent CLI binary and spawns it with stdin,
// stdout, and stderr captured as pipes.
//
// Returns SpawnError if the binary cannot be located or launched.
func (t *PipeTransport) Start(ctx context.Context) error {
	t.log.Info("Starting agent CLI subprocess")

	cliPath, err := cli.Discover(t.log, t.options.EffectiveCommand())
	if err != nil {
		return err
	}

	args := cli.BuildArgs(t.prompt, t.options, t.streaming)
	t.log.Debug("Built command arguments", "args", args)

	cwd := t.options.Cwd
	if cwd == "" {
		cwd, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
	}

	//nolint:gosec // G204: subprocess launching with dynamic args is the point here
	cmd := exec.CommandContext(ctx, cliPath, args...)
	cmd.Dir = cwd
	cmd.Env = cli.BuildEnvironment(t.options)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return &errors.SpawnError{Err: fmt.Errorf("stdin pipe: %w", err)}
	}

	t.stdin = stdin

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &errors.SpawnError{Err: fmt.Errorf("stdout pipe: %w", err)}
	}

	t.stdout = stdout

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &errors.SpawnError{Err: fmt.Errorf("stderr pipe: %w", err)}
	}

	t.stderr = stderr

	if err := cmd.Start(); err != nil {
		t.log.Error("Failed to start agent CLI process", "error", err)

		return &errors.SpawnError{Err: fmt.Errorf("start process: %w", err)}
	}

	t.cmd = cmd
	t.log.Info("Agent CLI subprocess started", "pid", cmd.Process.Pid)

	return nil
}

// ReadMessages reads JSON messages from the child's stdout.
//
// A goroutine scans line-delimited JSON from stdout; each decoded
// object is sent to the message channel. Malformed lines produce a
// DecodeError on the error channel without stopping the flow. When
// stdout reaches end-of-input the goroutine drains stderr, waits for
// the process, and surfaces a non-zero exit as ExitError with the
// captured stderr attached. Both channels close when the goroutine
// exits.
func (t *PipeTransport) ReadMessages(
	ctx context.Context,
) (<-chan map[string]any, <-chan error) {
	messages := make(chan map[string]any)
	errs := make(chan error, 1)

	var (
		stderrWg     sync.WaitGroup
		stderrMu     sync.Mutex
		stderrBuffer strings.Builder
	)

	// Stderr must be fully read before Wait; see os/exec.Cmd.StderrPipe.
	stderrWg.Go(func() {
		scanner := bufio.NewScanner(t.stderr)
		for scanner.Scan() {
			line := scanner.Text()

			stderrMu.Lock()

			if stderrBuffer.Len() < t.stderrBudget {
				if stderrBuffer.Len() > 0 {
					stderrBuffer.WriteString("\n")
				}

				stderrBuffer.WriteString(line)
			}

			stderrMu.Unlock()

			if t.options.Stderr != nil {
				t.options.Stderr(line)
			}
		}

		if err := scanner.Err(); err != nil {
			t.log.Debug("Stderr scanner error", "error", err)
		}
	})

	go func() {
		defer close(messages)
		defer close(errs)
		defer t.log.Debug("Read loop stopped")

		readLines(ctx, t.log, t.stdout, t.done, messages, errs)

		stderrWg.Wait()

		t.log.Debug("Waiting for agent CLI process to exit")

		if err := t.cmd.Wait(); err != nil {
			t.mu.Lock()
			isClosing := t.closing
			t.mu.Unlock()

			if isClosing {
				t.log.Debug("Agent CLI terminated during shutdown")

				return
			}

			stderrMu.Lock()
			stderrOutput := stderrBuffer.String()
			stderrMu.Unlock()

			exitCode := 0
			if exitErr, ok := stderrors.AsType[*exec.ExitError](err); ok {
				exitCode = exitErr.ExitCode()
			}

			t.log.Error("Agent CLI exited with error", "exit_code", exitCode, "stderr", stderrOutput)

			errs <- &errors.ExitError{
				ExitCode: exitCode,
				Stderr:   stderrOutput,
				Err:      err,
			}
		} else {
			t.log.Info("Agent CLI exited successfully")
		}
	}()

	return messages, errs
}

// readLines scans line-delimited JSON from r, sending decoded objects
// to messages and decode failures to errs. Empty lines are skipped.
// Returns when r reaches end-of-input, done closes, or ctx is
// cancelled. Without the done channel a consumer that stops pulling
// would pin this goroutine on the message send until ctx ends.
func readLines(
	ctx context.Context,
	log *slog.Logger,
	r io.Reader,
	done <-chan struct{},
	messages chan<- map[string]any,
	errs chan<- error,
) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, maxScanTokenSize)
	scanner.Buffer(buf, maxScanTokenSize)

	for scanner.Scan() {
		select {
		case <-done:
			return
		case <-ctx.Done():
			errs <- ctx.Err()

			return
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var msg map[string]any

		if err := json.Unmarshal(line, &msg); err != nil {
			log.Debug("Failed to decode output line", "error", err, "line", string(line))

			errs <- &errors.DecodeError{Raw: string(line), Err: err}

			continue
		}

		select {
		case messages <- msg:
		case <-done:
			return
		case <-ctx.Done():
			errs <- ctx.Err()

			return
		}
	}

	if err := scanner.Err(); err != nil {
		log.Error("Scanner error while reading output", "error", err)

		errs <- fmt.Errorf("scanner error: %w", err)
	}
}

// SendMessage writes one JSON message to the child's stdin.
//
// A trailing newline is appended when missing. Returns a WriteError
// wrapping ErrInputClosed if EndInput was already called; writes are
// never silently dropped. Safe for concurrent use.
func (t *PipeTransport) SendMessage(ctx context.Context, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stdinClosed {
		return &errors.WriteError{Err: errors.ErrInputClosed}
	}

	if t.stdin == nil {
		return &errors.WriteError{Err: errors.ErrNotStarted}
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	t.log.Debug("Sending message to agent CLI", "data_len", len(data))

	// Explicit copy so the caller's backing array is never mutated
	if len(data) == 0 || data[len(data)-1] != '\n' {
		newData := make([]byte, len(data)+1)
		copy(newData, data)
		newData[len(data)] = '\n'
		data = newData
	}

	// Write in a goroutine so cancellation can unblock a full pipe
	done := make(chan error, 1)

	go func() {
		_, err := t.stdin.Write(data)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.log.Error("Failed to write message", "error", err)

			return &errors.WriteError{Err: err}
		}

		return nil

	case <-ctx.Done():
		t.log.Debug("Context cancelled during write, closing stdin")

		_ = t.stdin.Close()
		t.stdinClosed = true

		select {
		case <-done:
		case <-time.After(1 * time.Second):
			t.log.Warn("Write goroutine did not exit after stdin close")
		}

		return ctx.Err()
	}
}

// EndInput closes the child's stdin, telling it that no further input
// will arrive. For non-interactive exchanges this is how the child is
// told to finalize. Idempotent.
func (t *PipeTransport) EndInput() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stdin != nil && !t.stdinClosed {
		t.log.Debug("Closing stdin pipe")

		err := t.stdin.Close()
		t.stdinClosed = true
		t.stdin = nil

		return err
	}

	return nil
}

// Close terminates the child process with SIGKILL. Safe to call
// multiple times or on an already-dead process.
func (t *PipeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.closing {
		t.closing = true

		close(t.done)
	}

	t.stdinClosed = true

	if t.cmd != nil && t.cmd.Process != nil {
		t.log.Debug("Killing agent CLI process", "pid", t.cmd.Process.Pid)

		if err := t.cmd.Process.Kill(); err != nil {
			return fmt.Errorf("kill agent CLI process (pid %d): %w", t.cmd.Process.Pid, err)
		}
	}

	return nil
}
