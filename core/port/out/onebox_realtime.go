package out

import (
	"context"

	"github.com/parvatkhattak/onebox-email-aggregator/core/domain"
)

// RealtimePort pushes events to connected SSE clients.
type RealtimePort interface {
	// Subscribe registers a client channel.
	Subscribe(clientID string) <-chan *domain.RealtimeEvent

	// Unsubscribe releases a client channel.
	Unsubscribe(clientID string, ch <-chan *domain.RealtimeEvent)

	// Broadcast sends an event to every connected client.
	Broadcast(ctx context.Context, event *domain.RealtimeEvent) error

	// ConnectedCount reports the number of connected clients.
	ConnectedCount() int
}
