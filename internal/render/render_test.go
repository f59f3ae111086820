package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentpipe/agentpipe/internal/errors"
	"github.com/agentpipe/agentpipe/internal/message"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "short string passes through", in: "hi", max: 200, want: "hi"},
		{name: "empty string", in: "", max: 10, want: ""},
		{name: "exact length passes through", in: "abcde", max: 5, want: "abcde"},
		{name: "one over gets ellipsis", in: "abcdef", max: 5, want: "abcde..."},
		{
			name: "long assistant text bounded",
			in:   strings.Repeat("x", 500),
			max:  AssistantPreviewLen,
			want: strings.Repeat("x", 200) + "...",
		},
		{name: "multibyte runes not split", in: "héllo wörld", max: 4, want: "héll..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.max))
		})
	}
}

func TestLinesSystemMessage(t *testing.T) {
	lines := Lines(&message.SystemMessage{
		Type:      "system",
		SessionID: "sess-1",
		Model:     "claude-sonnet-4-5",
		Tools:     []string{"Bash", "Read"},
	})

	require.Len(t, lines, 1)
	assert.Equal(t, "[system] ready session=sess-1 model=claude-sonnet-4-5 tools=2", lines[0])
}

func TestLinesAssistantMessage(t *testing.T) {
	lines := Lines(&message.AssistantMessage{
		Type: "assistant",
		Content: []message.ContentBlock{
			&message.TextBlock{Type: message.BlockTypeText, Text: "hi"},
			&message.ToolUseBlock{
				Type:  message.BlockTypeToolUse,
				ID:    "t1",
				Name:  "Bash",
				Input: map[string]any{"command": "ls"},
			},
		},
	})

	require.Len(t, lines, 2)
	assert.Equal(t, "[assistant] hi", lines[0])
	assert.Equal(t, `[tool_use] Bash id=t1 input={"command":"ls"}`, lines[1])
}

func TestLinesAssistantLongTextBounded(t *testing.T) {
	lines := Lines(&message.AssistantMessage{
		Type: "assistant",
		Content: []message.ContentBlock{
			&message.TextBlock{Type: message.BlockTypeText, Text: strings.Repeat("a", 400)},
		},
	})

	require.Len(t, lines, 1)
	assert.Equal(t, "[assistant] "+strings.Repeat("a", AssistantPreviewLen)+"...", lines[0])
}

func TestLinesToolResult(t *testing.T) {
	lines := Lines(&message.UserMessage{
		Type: "user",
		Content: message.NewUserContentBlocks([]message.ContentBlock{
			&message.ToolResultBlock{
				Type:      message.BlockTypeToolResult,
				ToolUseID: "t1",
				Content: []message.ContentBlock{
					&message.TextBlock{Type: message.BlockTypeText, Text: "42"},
				},
			},
		}),
	})

	require.Len(t, lines, 1)
	assert.Equal(t, "[tool_result] t1: 42", lines[0])
}

func TestLinesResultMessage(t *testing.T) {
	cost := 0.01
	lines := Lines(&message.ResultMessage{
		Type:         "result",
		Subtype:      "success",
		NumTurns:     1,
		TotalCostUSD: &cost,
	})

	require.Len(t, lines, 1)
	assert.Equal(t, "[result success] cost=$0.0100 turns=1", lines[0])
}

func TestLinesResultMessageNoCost(t *testing.T) {
	lines := Lines(&message.ResultMessage{Type: "result", Subtype: "success"})

	require.Len(t, lines, 1)
	assert.Equal(t, "[result success] cost=$0.0000 turns=0", lines[0])
}

func TestLinesUnknownMessage(t *testing.T) {
	lines := Lines(&message.UnknownMessage{Type: "telemetry"})

	require.Len(t, lines, 1)
	assert.Equal(t, "[telemetry]", lines[0])

	lines = Lines(&message.UnknownMessage{})
	require.Len(t, lines, 1)
	assert.Equal(t, "[unknown]", lines[0])
}

func TestErrorLine(t *testing.T) {
	decodeLine := ErrorLine(&errors.DecodeError{Raw: strings.Repeat("x", 300)})
	assert.Equal(t, "[raw] "+strings.Repeat("x", RawPreviewLen)+"...", decodeLine)

	exitLine := ErrorLine(&errors.ExitError{ExitCode: 2, Stderr: "boom"})
	assert.Equal(t, "[exit 2]\n[stderr] boom", exitLine)
}

func TestPrinterRunConsumesChannel(t *testing.T) {
	var out strings.Builder

	printer := NewPrinter(&out)

	msgs := make(chan message.Message, 2)
	msgs <- &message.SystemMessage{Type: "system", SessionID: "s", Model: "m"}
	msgs <- &message.ResultMessage{Type: "result", Subtype: "success", NumTurns: 1}
	close(msgs)

	printer.Run(msgs)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[system]")
	assert.Contains(t, lines[1], "[result success]")
}
