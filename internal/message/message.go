package message

import "encoding/json"

// Message represents any message in the conversation.
// Use a type switch to determine the concrete type.
type Message interface {
	MessageType() string
}

var (
	_ Message = (*UserMessage)(nil)
	_ Message = (*AssistantMessage)(nil)
	_ Message = (*SystemMessage)(nil)
	_ Message = (*ResultMessage)(nil)
	_ Message = (*UnknownMessage)(nil)
)

// UserContent represents user message content that can arrive as a
// plain string or as a list of content blocks (e.g. tool results).
type UserContent struct {
	text   *string
	blocks []ContentBlock
}

// NewUserContent creates UserContent from a string.
func NewUserContent(text string) UserContent {
	return UserContent{text: &text}
}

// NewUserContentBlocks creates UserContent from blocks.
func NewUserContentBlocks(blocks []ContentBlock) UserContent {
	return UserContent{blocks: blocks}
}

// String returns the string content, or empty when content is blocks.
func (c *UserContent) String() string {
	if c.text != nil {
		return *c.text
	}

	return ""
}

// Blocks returns the content as blocks, normalizing a string to a
// single TextBlock.
func (c *UserContent) Blocks() []ContentBlock {
	if c.blocks != nil {
		return c.blocks
	}

	if c.text != nil {
		return []ContentBlock{&TextBlock{Type: BlockTypeText, Text: *c.text}}
	}

	return nil
}

// IsString reports whether the content arrived as a plain string.
func (c *UserContent) IsString() bool {
	return c.text != nil
}

// MarshalJSON implements json.Marshaler.
func (c UserContent) MarshalJSON() ([]byte, error) {
	if c.text != nil {
		return json.Marshal(*c.text)
	}

	return json.Marshal(c.blocks)
}

// UnmarshalJSON implements json.Unmarshaler, accepting both a string
// and an array of content blocks.
func (c *UserContent) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		c.text = &text
		c.blocks = nil

		return nil
	}

	var rawBlocks []json.RawMessage
	if err := json.Unmarshal(data, &rawBlocks); err != nil {
		return err
	}

	blocks := make([]ContentBlock, 0, len(rawBlocks))

	for _, raw := range rawBlocks {
		block, err := UnmarshalContentBlock(raw)
		if err != nil {
			return err
		}

		blocks = append(blocks, block)
	}

	c.blocks = blocks
	c.text = nil

	return nil
}

// UserMessage represents a message attributed to the user. In CLI
// output these carry tool results echoed back into the conversation.
type UserMessage struct {
	Type    string      `json:"type"`
	Content UserContent `json:"content"`
}

// MessageType implements the Message interface.
func (m *UserMessage) MessageType() string { return "user" }

// AssistantMessage represents a message from the assistant.
type AssistantMessage struct {
	Type    string         `json:"type"`
	Content []ContentBlock `json:"content"`
	Model   string         `json:"model"`
}

// MessageType implements the Message interface.
func (m *AssistantMessage) MessageType() string { return "assistant" }

// Text returns the concatenated text of all text blocks.
func (m *AssistantMessage) Text() string {
	var out string

	for _, block := range m.Content {
		if text, ok := block.(*TextBlock); ok {
			out += text.Text
		}
	}

	return out
}

// SystemMessage announces session readiness and carries session
// metadata: the session identifier, the active model, and the tools
// the CLI has enabled.
//
//nolint:tagliatelle // agent CLI uses snake_case
type SystemMessage struct {
	Type      string         `json:"type"`
	Subtype   string         `json:"subtype,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Model     string         `json:"model,omitempty"`
	Tools     []string       `json:"tools,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// MessageType implements the Message interface.
func (m *SystemMessage) MessageType() string { return "system" }

// ResultMessage signals turn completion and carries cost and timing
// for the exchange. The process may keep running for further turns;
// result is terminal only once the process actually exits.
//
//nolint:tagliatelle // agent CLI uses snake_case
type ResultMessage struct {
	Type         string   `json:"type"`
	Subtype      string   `json:"subtype"`
	DurationMs   int      `json:"duration_ms,omitempty"`
	IsError      bool     `json:"is_error,omitempty"`
	NumTurns     int      `json:"num_turns"`
	SessionID    string   `json:"session_id,omitempty"`
	TotalCostUSD *float64 `json:"total_cost_usd,omitempty"`
	Usage        *Usage   `json:"usage,omitempty"`
	Result       string   `json:"result,omitempty"`
}

// MessageType implements the Message interface.
func (m *ResultMessage) MessageType() string { return "result" }

// UnknownMessage preserves output whose type the session does not
// recognize. Unknown types classify under a generic label instead of
// failing, keeping the session forward-compatible.
type UnknownMessage struct {
	Type string
	Data map[string]any
}

// MessageType implements the Message interface.
func (m *UnknownMessage) MessageType() string {
	if m.Type == "" {
		return "unknown"
	}

	return m.Type
}

// Usage contains token usage information.
//
//nolint:tagliatelle // agent CLI uses snake_case
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// InputContent is the nested payload of an injected user message.
type InputContent struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// InputMessage is the parent-to-child wire format: one JSON object per
// line, written to the child's stdin in streaming mode.
//
//nolint:tagliatelle // agent CLI uses snake_case
type InputMessage struct {
	Type      string       `json:"type"`
	Message   InputContent `json:"message"`
	SessionID string       `json:"session_id,omitempty"`
}

// NewInputMessage creates an InputMessage with the user role.
func NewInputMessage(content string) InputMessage {
	return InputMessage{
		Type: "user",
		Message: InputContent{
			Role:    "user",
			Content: content,
		},
	}
}
