// Package events publishes and consumes transaction change notifications
// over AMQP.
package events

import "context"

// Publisher announces transaction changes.
type Publisher interface {
	Publish(ctx context.Context, e TransactionEvent) error
	Close() error
}

// Nop discards every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, TransactionEvent) error { return nil }
func (Nop) Close() error                                      { return nil }
