package sink

import (
	"context"

	"roomcast/domain/event"
)

// SessionSink buffers outbound events for one connection. The transport
// write loop drains Events and frames them on the wire.
type SessionSink struct {
	Events chan event.OutboundEvent
}

func NewSessionSink(bufferSize int) *SessionSink {
	return &SessionSink{Events: make(chan event.OutboundEvent, bufferSize)}
}

// Consume is called by the dispatcher's fanout.
// Delivery is fire-and-forget: a full buffer means the event is dropped
// for this connection rather than stalling every other client.
func (s *SessionSink) Consume(ctx context.Context, e event.OutboundEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
