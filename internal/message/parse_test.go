package message

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdkerrors "github.com/agentpipe/agentpipe/internal/errors"
)

func TestParseClassification(t *testing.T) {
	logger := slog.Default()

	tests := []struct {
		name     string
		data     map[string]any
		wantType string
	}{
		{
			name: "system message",
			data: map[string]any{
				"type":       "system",
				"subtype":    "init",
				"session_id": "sess-1",
				"model":      "claude-sonnet-4-5",
				"tools":      []any{"Bash", "Read"},
			},
			wantType: "system",
		},
		{
			name: "assistant message",
			data: map[string]any{
				"type": "assistant",
				"message": map[string]any{
					"content": []any{
						map[string]any{"type": "text", "text": "hi"},
					},
					"model": "claude-sonnet-4-5",
				},
			},
			wantType: "assistant",
		},
		{
			name: "user message with tool result",
			data: map[string]any{
				"type": "user",
				"message": map[string]any{
					"content": []any{
						map[string]any{
							"type":        "tool_result",
							"tool_use_id": "t1",
							"content":     "42",
						},
					},
				},
			},
			wantType: "user",
		},
		{
			name: "result message",
			data: map[string]any{
				"type":    "result",
				"subtype": "success",
			},
			wantType: "result",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Parse(logger, tt.data)
			require.NoError(t, err)
			require.Equal(t, tt.wantType, msg.MessageType())
		})
	}
}

func TestParseUnknownTypeFallsBack(t *testing.T) {
	logger := slog.Default()

	msg, err := Parse(logger, map[string]any{
		"type":    "telemetry",
		"payload": map[string]any{"events": 3.0},
	})
	require.NoError(t, err)

	unknown, ok := msg.(*UnknownMessage)
	require.True(t, ok)
	assert.Equal(t, "telemetry", unknown.MessageType())
	assert.Contains(t, unknown.Data, "payload")
}

func TestParseEmptyTypeLabelsUnknown(t *testing.T) {
	msg := &UnknownMessage{Data: map[string]any{}}
	assert.Equal(t, "unknown", msg.MessageType())
}

func TestParseMissingTypeFails(t *testing.T) {
	logger := slog.Default()

	_, err := Parse(logger, map[string]any{"text": "no type tag"})
	require.Error(t, err)

	var parseErr *sdkerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseSystemMessageMetadata(t *testing.T) {
	logger := slog.Default()

	msg, err := Parse(logger, map[string]any{
		"type":       "system",
		"subtype":    "init",
		"session_id": "sess-42",
		"model":      "claude-sonnet-4-5",
		"tools":      []any{"Bash", "Read", "Write"},
		"cwd":        "/tmp",
	})
	require.NoError(t, err)

	system, ok := msg.(*SystemMessage)
	require.True(t, ok)
	assert.Equal(t, "sess-42", system.SessionID)
	assert.Equal(t, "claude-sonnet-4-5", system.Model)
	assert.Equal(t, []string{"Bash", "Read", "Write"}, system.Tools)
	assert.Equal(t, "/tmp", system.Data["cwd"])
}

func TestParseAssistantMessageContent(t *testing.T) {
	logger := slog.Default()

	msg, err := Parse(logger, map[string]any{
		"type": "assistant",
		"message": map[string]any{
			"content": []any{
				map[string]any{"type": "text", "text": "hello "},
				map[string]any{"type": "text", "text": "world"},
			},
			"model": "claude-sonnet-4-5",
		},
	})
	require.NoError(t, err)

	assistant, ok := msg.(*AssistantMessage)
	require.True(t, ok)
	require.Len(t, assistant.Content, 2)
	assert.Equal(t, "hello world", assistant.Text())
	assert.Equal(t, "claude-sonnet-4-5", assistant.Model)
}

func TestParseAssistantMissingMessageFails(t *testing.T) {
	logger := slog.Default()

	_, err := Parse(logger, map[string]any{"type": "assistant"})
	require.Error(t, err)
}

func TestParseResultMessageCost(t *testing.T) {
	logger := slog.Default()

	msg, err := Parse(logger, map[string]any{
		"type":           "result",
		"subtype":        "success",
		"total_cost_usd": 0.01,
		"num_turns":      1.0,
		"result":         "hi",
	})
	require.NoError(t, err)

	result, ok := msg.(*ResultMessage)
	require.True(t, ok)
	require.NotNil(t, result.TotalCostUSD)
	assert.InDelta(t, 0.01, *result.TotalCostUSD, 1e-9)
	assert.Equal(t, 1, result.NumTurns)
	assert.Equal(t, "hi", result.Result)
}

// TestParseToolRoundTrip walks the ordered scenario of a tool-using
// exchange: the tool_use block and the later tool_result block share
// the same correlation ID.
func TestParseToolRoundTrip(t *testing.T) {
	logger := slog.Default()

	useMsg, err := Parse(logger, map[string]any{
		"type": "assistant",
		"message": map[string]any{
			"content": []any{
				map[string]any{
					"type":  "tool_use",
					"id":    "t1",
					"name":  "Bash",
					"input": map[string]any{"command": "echo hi"},
				},
			},
			"model": "claude-sonnet-4-5",
		},
	})
	require.NoError(t, err)

	assistant, ok := useMsg.(*AssistantMessage)
	require.True(t, ok)
	require.Len(t, assistant.Content, 1)

	use, ok := assistant.Content[0].(*ToolUseBlock)
	require.True(t, ok)
	assert.Equal(t, "t1", use.ID)
	assert.Equal(t, "Bash", use.Name)
	assert.Equal(t, "echo hi", use.Input["command"])

	resultMsg, err := Parse(logger, map[string]any{
		"type": "user",
		"message": map[string]any{
			"content": []any{
				map[string]any{
					"type":        "tool_result",
					"tool_use_id": "t1",
					"content":     "hi\n",
				},
			},
		},
	})
	require.NoError(t, err)

	user, ok := resultMsg.(*UserMessage)
	require.True(t, ok)

	blocks := user.Content.Blocks()
	require.Len(t, blocks, 1)

	toolResult, ok := blocks[0].(*ToolResultBlock)
	require.True(t, ok)
	assert.Equal(t, use.ID, toolResult.ToolUseID)
	assert.Equal(t, "hi\n", toolResult.Text())
}

func TestParseToolResultBlockContentShapes(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantText string
	}{
		{
			name:     "string content",
			data:     `{"type":"tool_result","tool_use_id":"t1","content":"plain"}`,
			wantText: "plain",
		},
		{
			name:     "block list content",
			data:     `{"type":"tool_result","tool_use_id":"t1","content":[{"type":"text","text":"listed"}]}`,
			wantText: "listed",
		},
		{
			name:     "absent content",
			data:     `{"type":"tool_result","tool_use_id":"t1"}`,
			wantText: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, err := UnmarshalContentBlock([]byte(tt.data))
			require.NoError(t, err)

			toolResult, ok := block.(*ToolResultBlock)
			require.True(t, ok)
			assert.Equal(t, "t1", toolResult.ToolUseID)
			assert.Equal(t, tt.wantText, toolResult.Text())
		})
	}
}

func TestUnmarshalContentBlockUnknownType(t *testing.T) {
	block, err := UnmarshalContentBlock([]byte(`{"type":"thinking","text":"hmm"}`))
	require.NoError(t, err)

	text, ok := block.(*TextBlock)
	require.True(t, ok)
	assert.Equal(t, "hmm", text.Text)
}
