package agentpipe

import (
	"iter"

	"github.com/agentpipe/agentpipe/internal/config"
	"github.com/agentpipe/agentpipe/internal/message"
	"github.com/agentpipe/agentpipe/internal/session"
)

// Re-export types from internal packages

// ===== Transport =====

// Transport is the byte-level connection to the agent CLI process.
// The default implementation spawns the CLI and speaks newline-delimited
// JSON over its standard streams; tests inject fakes through
// WithTransport.
type Transport = config.Transport

// ===== Options and Configuration =====

// Options configures the agent subprocess and session behavior.
type Options = config.Options

// ===== Messages =====

// Message represents any decoded message on the output stream.
type Message = message.Message

// UserMessage is a user message echoed on the output stream, typically
// carrying tool results.
type UserMessage = message.UserMessage

// UserContent is user message content that is either a plain string or
// a list of content blocks.
type UserContent = message.UserContent

// NewUserContent creates UserContent from a string.
var NewUserContent = message.NewUserContent

// NewUserContentBlocks creates UserContent from blocks.
var NewUserContentBlocks = message.NewUserContentBlocks

// AssistantMessage is a message from the assistant.
type AssistantMessage = message.AssistantMessage

// SystemMessage announces session readiness and metadata.
type SystemMessage = message.SystemMessage

// ResultMessage closes a turn with cost and usage accounting.
type ResultMessage = message.ResultMessage

// UnknownMessage preserves output objects whose type is not recognized.
type UnknownMessage = message.UnknownMessage

// Usage contains token usage information.
type Usage = message.Usage

// ===== Content Blocks =====

// ContentBlock is a block of content within a message.
type ContentBlock = message.ContentBlock

// TextBlock contains plain text content.
type TextBlock = message.TextBlock

// ToolUseBlock represents the assistant invoking a tool.
type ToolUseBlock = message.ToolUseBlock

// ToolResultBlock contains the result of a tool invocation, correlated
// to its ToolUseBlock by ToolUseID.
type ToolResultBlock = message.ToolResultBlock

// ===== Streaming Input =====

// InputStream is an iterator yielding input messages for streaming mode.
type InputStream = iter.Seq[InputMessage]

// InputMessage is one stdin-injected message in streaming mode.
type InputMessage = message.InputMessage

// InputContent is the role/content body of an InputMessage.
type InputContent = message.InputContent

// ===== Session State =====

// SessionState describes where a session is in its protocol lifecycle.
type SessionState = session.State

const (
	// StateStarting means the process is launched but not yet ready.
	StateStarting = session.StateStarting
	// StateReady means the child announced readiness and accepts input.
	StateReady = session.StateReady
	// StateTurnActive means assistant or tool traffic is streaming.
	StateTurnActive = session.StateTurnActive
	// StateTurnComplete means a result message closed the current turn.
	StateTurnComplete = session.StateTurnComplete
	// StateClosed means the session has ended.
	StateClosed = session.StateClosed
)
