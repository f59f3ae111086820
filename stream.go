package agentpipe

import (
	"iter"

	"github.com/agentpipe/agentpipe/internal/message"
)

// MessagesFromSlice adapts a fixed set of input messages into an
// InputStream for QueryStream.
func MessagesFromSlice(msgs []InputMessage) iter.Seq[InputMessage] {
	return func(yield func(InputMessage) bool) {
		for _, msg := range msgs {
			if !yield(msg) {
				return
			}
		}
	}
}

// MessagesFromChannel adapts a channel into an InputStream, for
// callers that produce prompts over time. The stream ends when the
// channel closes.
func MessagesFromChannel(ch <-chan InputMessage) iter.Seq[InputMessage] {
	return func(yield func(InputMessage) bool) {
		for msg := range ch {
			if !yield(msg) {
				return
			}
		}
	}
}

// SingleMessage wraps one user prompt as an InputStream.
func SingleMessage(content string) iter.Seq[InputMessage] {
	return MessagesFromSlice([]InputMessage{NewUserMessage(content)})
}

// NewUserMessage builds the stdin wire form of a user prompt.
func NewUserMessage(content string) InputMessage {
	return message.NewInputMessage(content)
}
