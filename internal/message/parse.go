package message

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/agentpipe/agentpipe/internal/errors"
)

// Parse converts a decoded JSON object into a typed Message.
//
// Messages with an unrecognized type parse into UnknownMessage rather
// than erroring. Parse fails only when the object is missing its type
// tag or a recognized type is malformed.
func Parse(log *slog.Logger, data map[string]any) (Message, error) {
	msgType, ok := data["type"].(string)
	if !ok {
		log.Debug("Message missing 'type' field")

		return nil, &errors.ParseError{
			Message: "missing or invalid 'type' field",
			Data:    data,
			Err:     fmt.Errorf("missing or invalid 'type' field"),
		}
	}

	log.Debug("Parsing message", "message_type", msgType)

	var (
		msg Message
		err error
	)

	switch msgType {
	case "user":
		msg, err = parseUserMessage(data)
	case "assistant":
		msg, err = parseAssistantMessage(data)
	case "system":
		msg, err = parseSystemMessage(data)
	case "result":
		msg, err = parseResultMessage(data)
	default:
		log.Debug("Unknown message type", "message_type", msgType)

		return &UnknownMessage{Type: msgType, Data: data}, nil
	}

	if err != nil {
		return nil, &errors.ParseError{
			Message: err.Error(),
			Data:    data,
			Err:     err,
		}
	}

	return msg, nil
}

// parseUserMessage parses a UserMessage from raw JSON. The wire format
// nests content under a "message" field that gets flattened here.
func parseUserMessage(data map[string]any) (*UserMessage, error) {
	messageData, ok := data["message"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("user message: missing or invalid 'message' field")
	}

	contentData, ok := messageData["content"]
	if !ok {
		return nil, fmt.Errorf("user message: missing content field")
	}

	contentJSON, err := json.Marshal(contentData)
	if err != nil {
		return nil, fmt.Errorf("user message: marshal content: %w", err)
	}

	var content UserContent
	if err := json.Unmarshal(contentJSON, &content); err != nil {
		return nil, fmt.Errorf("user message: %w", err)
	}

	return &UserMessage{Type: "user", Content: content}, nil
}

// parseAssistantMessage parses an AssistantMessage from raw JSON.
func parseAssistantMessage(data map[string]any) (*AssistantMessage, error) {
	messageData, ok := data["message"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("assistant message: missing or invalid 'message' field")
	}

	msg := &AssistantMessage{Type: "assistant"}

	if contentData, ok := messageData["content"].([]any); ok {
		content, err := parseContentBlocks(contentData)
		if err != nil {
			return nil, fmt.Errorf("parse assistant content: %w", err)
		}

		msg.Content = content
	}

	if model, ok := messageData["model"].(string); ok {
		msg.Model = model
	}

	return msg, nil
}

// parseSystemMessage parses a SystemMessage from raw JSON. The CLI
// sends session metadata at the root level; anything not pulled into a
// typed field lands in Data.
func parseSystemMessage(data map[string]any) (*SystemMessage, error) {
	msg := &SystemMessage{Type: "system"}

	if subtype, ok := data["subtype"].(string); ok {
		msg.Subtype = subtype
	}

	if sessionID, ok := data["session_id"].(string); ok {
		msg.SessionID = sessionID
	}

	if model, ok := data["model"].(string); ok {
		msg.Model = model
	}

	if tools, ok := data["tools"].([]any); ok {
		msg.Tools = make([]string, 0, len(tools))

		for _, tool := range tools {
			if name, ok := tool.(string); ok {
				msg.Tools = append(msg.Tools, name)
			}
		}
	}

	msg.Data = make(map[string]any)

	for k, v := range data {
		switch k {
		case "type", "subtype", "session_id", "model", "tools":
		default:
			msg.Data[k] = v
		}
	}

	return msg, nil
}

// parseResultMessage parses a ResultMessage from raw JSON.
func parseResultMessage(data map[string]any) (*ResultMessage, error) {
	// Re-marshal and unmarshal to use json struct tags for parsing
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}

	var msg ResultMessage
	if err := json.Unmarshal(jsonBytes, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}

	return &msg, nil
}

// parseContentBlocks parses an array of content blocks.
func parseContentBlocks(data []any) ([]ContentBlock, error) {
	blocks := make([]ContentBlock, 0, len(data))

	for i, item := range data {
		blockData, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("content block %d: not an object", i)
		}

		blockJSON, err := json.Marshal(blockData)
		if err != nil {
			return nil, fmt.Errorf("content block %d: %w", i, err)
		}

		block, err := UnmarshalContentBlock(blockJSON)
		if err != nil {
			return nil, fmt.Errorf("content block %d: %w", i, err)
		}

		blocks = append(blocks, block)
	}

	return blocks, nil
}
