// Package render formats decoded messages as bounded, human-readable
// console lines. It is a pure presentation layer: classification
// happens here, not in the read loop, and callers feed it from a
// channel of already-parsed messages.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/agentpipe/agentpipe/internal/errors"
	"github.com/agentpipe/agentpipe/internal/message"
)

// Preview lengths keep console output bounded.
const (
	// AssistantPreviewLen bounds assistant text previews.
	AssistantPreviewLen = 200
	// ToolPreviewLen bounds tool input and tool result previews.
	ToolPreviewLen = 120
	// RawPreviewLen bounds undecodable raw line previews.
	RawPreviewLen = 100
)

// Truncate bounds s to max runes, appending an ellipsis when content
// was dropped. Strings at or under the limit pass through unchanged.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	return string(runes[:max]) + "..."
}

// Lines renders one message as console lines, one per content block.
func Lines(msg message.Message) []string {
	switch m := msg.(type) {
	case *message.SystemMessage:
		return []string{fmt.Sprintf(
			"[system] ready session=%s model=%s tools=%d",
			m.SessionID, m.Model, len(m.Tools),
		)}

	case *message.AssistantMessage:
		return blockLines("assistant", blocksOf(m.Content))

	case *message.UserMessage:
		return blockLines("user", blocksOf(m.Content.Blocks()))

	case *message.ResultMessage:
		cost := 0.0
		if m.TotalCostUSD != nil {
			cost = *m.TotalCostUSD
		}

		return []string{fmt.Sprintf(
			"[result %s] cost=$%.4f turns=%d",
			m.Subtype, cost, m.NumTurns,
		)}

	default:
		return []string{fmt.Sprintf("[%s]", msg.MessageType())}
	}
}

// blocksOf guards against nil content lists.
func blocksOf(blocks []message.ContentBlock) []message.ContentBlock {
	if blocks == nil {
		return []message.ContentBlock{}
	}

	return blocks
}

// blockLines renders each content block under a role label.
func blockLines(role string, blocks []message.ContentBlock) []string {
	lines := make([]string, 0, len(blocks))

	for _, block := range blocks {
		switch b := block.(type) {
		case *message.TextBlock:
			lines = append(lines, fmt.Sprintf(
				"[%s] %s", role, Truncate(b.Text, AssistantPreviewLen),
			))

		case *message.ToolUseBlock:
			input, err := json.Marshal(b.Input)
			if err != nil {
				input = []byte("{}")
			}

			lines = append(lines, fmt.Sprintf(
				"[tool_use] %s id=%s input=%s",
				b.Name, b.ID, Truncate(string(input), ToolPreviewLen),
			))

		case *message.ToolResultBlock:
			lines = append(lines, fmt.Sprintf(
				"[tool_result] %s: %s",
				b.ToolUseID, Truncate(b.Text(), ToolPreviewLen),
			))

		default:
			lines = append(lines, fmt.Sprintf("[%s] [%s]", role, block.BlockType()))
		}
	}

	if len(lines) == 0 {
		lines = append(lines, fmt.Sprintf("[%s]", role))
	}

	return lines
}

// ErrorLine renders an error as a bounded console line. Decode errors
// show a truncated raw preview; exit errors include captured stderr.
func ErrorLine(err error) string {
	switch e := err.(type) {
	case *errors.DecodeError:
		return fmt.Sprintf("[raw] %s", Truncate(e.Raw, RawPreviewLen))

	case *errors.ExitError:
		return fmt.Sprintf("[exit %d]\n[stderr] %s", e.ExitCode, e.Stderr)

	default:
		return fmt.Sprintf("[error] %v", err)
	}
}

// Printer consumes decoded messages and writes their summaries.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Print writes the summary lines for one message.
func (p *Printer) Print(msg message.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, line := range Lines(msg) {
		fmt.Fprintln(p.w, line)
	}
}

// PrintError writes the summary line for one error.
func (p *Printer) PrintError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.w, ErrorLine(err))
}

// Run consumes messages until the channel closes.
func (p *Printer) Run(msgs <-chan message.Message) {
	for msg := range msgs {
		p.Print(msg)
	}
}
