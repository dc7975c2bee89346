package messagequeue

import "context"

// MessageQueue defines the interface for message queue services.
type MessageQueue interface {
	Publish(ctx context.Context, queueName string, body []byte) error
	// Consume delivers messages to handler until ctx is cancelled or the channel closes.
	Consume(ctx context.Context, queueName string, handler func(body []byte)) error
	Close() error
}

// Noop discards published messages. It is used when no broker URL is configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, []byte) error { return nil }

func (Noop) Consume(ctx context.Context, _ string, _ func([]byte)) error {
	<-ctx.Done()
	return nil
}

func (Noop) Close() error { return nil }
