package agentpipe

import (
	"context"
	"fmt"
)

// WithClient runs fn against a started client and closes it afterwards.
//
// The client is started with the given options before fn runs and
// closed when fn returns, whether or not it returned an error. A Close
// failure is logged rather than replacing fn's error.
//
//	err := agentpipe.WithClient(ctx, func(c agentpipe.Client) error {
//	    if err := c.Send(ctx, "Hello"); err != nil {
//	        return err
//	    }
//	    for msg, err := range c.ReceiveResponse(ctx) {
//	        if err != nil {
//	            return err
//	        }
//	        // process message
//	    }
//	    return nil
//	}, agentpipe.WithLogger(log))
func WithClient(ctx context.Context, fn func(Client) error, opts ...Option) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	options := applyOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	client := NewClient()
	if err := client.Start(ctx, opts...); err != nil {
		return fmt.Errorf("start client: %w", err)
	}

	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			log.Warn("Failed to close client", "error", closeErr)
		}
	}()

	return fn(client)
}
