package agentpipe

import (
	"context"
	"iter"

	"github.com/agentpipe/agentpipe/internal/client"
)

// clientImpl adapts the internal client to the public Client interface.
type clientImpl struct {
	inner *client.Client
}

// newClientImpl creates the default Client implementation.
func newClientImpl() *clientImpl {
	return &clientImpl{inner: client.New()}
}

func (c *clientImpl) Start(ctx context.Context, opts ...Option) error {
	return c.inner.Start(ctx, applyOptions(opts))
}

func (c *clientImpl) Send(ctx context.Context, prompt string) error {
	return c.inner.Send(ctx, prompt)
}

func (c *clientImpl) ReceiveMessages(ctx context.Context) iter.Seq2[Message, error] {
	return c.inner.ReceiveMessages(ctx)
}

func (c *clientImpl) ReceiveResponse(ctx context.Context) iter.Seq2[Message, error] {
	return c.inner.ReceiveResponse(ctx)
}

func (c *clientImpl) State() SessionState {
	return c.inner.State()
}

func (c *clientImpl) SessionID() string {
	return c.inner.SessionID()
}

func (c *clientImpl) EndInput() error {
	return c.inner.EndInput()
}

func (c *clientImpl) Close() error {
	return c.inner.Close()
}
