package infrastructure

import "context"

// MessagePublisher receives the JSON envelopes built by NATSEventForwarder.
// NATSClient satisfies it by publishing to JetStream.
type MessagePublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

var _ MessagePublisher = (*NATSClient)(nil)
