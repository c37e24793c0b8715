package infrastructure

import "wagerbot/events"

// NoopEventPublisher drops every event. Used when NATS is not configured.
type NoopEventPublisher struct{}

func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

func (n *NoopEventPublisher) Publish(event events.Event) error {
	return nil
}
