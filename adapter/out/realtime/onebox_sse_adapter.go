// Package realtime provides real-time communication adapters.
package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/rs/zerolog"

	"github.com/parvatkhattak/onebox-email-aggregator/core/domain"
	"github.com/parvatkhattak/onebox-email-aggregator/core/port/out"
)

// =============================================================================
// SSE Adapter - RealtimePort implementation
// =============================================================================

// SSEAdapter implements out.RealtimePort using Server-Sent Events.
// Every connected client receives every event.
type SSEAdapter struct {
	clients map[string]chan *domain.RealtimeEvent // clientID -> channel
	mu      sync.RWMutex
	log     zerolog.Logger

	// Metrics
	messagesSent    int64
	messagesDropped int64
}

// NewSSEAdapter creates a new SSE adapter.
func NewSSEAdapter(log zerolog.Logger) *SSEAdapter {
	return &SSEAdapter{
		clients: make(map[string]chan *domain.RealtimeEvent),
		log:     log.With().Str("component", "sse_adapter").Logger(),
	}
}

// Subscribe creates a new subscription channel for a client.
func (a *SSEAdapter) Subscribe(clientID string) <-chan *domain.RealtimeEvent {
	a.mu.Lock()
	defer a.mu.Unlock()

	ch := make(chan *domain.RealtimeEvent, 256) // Buffer for backpressure
	a.clients[clientID] = ch

	a.log.Debug().
		Str("client_id", clientID).
		Int("total_connections", len(a.clients)).
		Msg("client subscribed")

	return ch
}

// Unsubscribe removes a subscription channel.
func (a *SSEAdapter) Unsubscribe(clientID string, ch <-chan *domain.RealtimeEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if c, ok := a.clients[clientID]; ok && c == ch {
		delete(a.clients, clientID)
		close(c)
	}

	a.log.Debug().
		Str("client_id", clientID).
		Msg("client unsubscribed")
}

// Broadcast sends an event to all connected clients.
func (a *SSEAdapter) Broadcast(ctx context.Context, event *domain.RealtimeEvent) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for clientID, ch := range a.clients {
		select {
		case ch <- event:
			a.messagesSent++
		default:
			// Channel full, drop message (backpressure)
			a.messagesDropped++
			a.log.Warn().
				Str("client_id", clientID).
				Str("event_type", event.Type).
				Msg("dropped broadcast event")
		}
	}

	return nil
}

// ConnectedCount returns the number of connected clients.
func (a *SSEAdapter) ConnectedCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.clients)
}

// =============================================================================
// SSE Hub - HTTP handler glue
// =============================================================================

// SSEHub manages SSE connections for HTTP handlers.
type SSEHub struct {
	adapter *SSEAdapter
	log     zerolog.Logger

	heartbeatInterval time.Duration
}

// NewSSEHub creates a new SSE hub.
func NewSSEHub(adapter *SSEAdapter, log zerolog.Logger) *SSEHub {
	return &SSEHub{
		adapter:           adapter,
		log:               log.With().Str("component", "sse_hub").Logger(),
		heartbeatInterval: 30 * time.Second,
	}
}

// CreateClient registers a new SSE client.
func (h *SSEHub) CreateClient(clientID string) *SSEClient {
	eventCh := h.adapter.Subscribe(clientID)

	return &SSEClient{
		ID:     clientID,
		Events: eventCh,
		Done:   make(chan struct{}),
		hub:    h,
	}
}

// RemoveClient removes an SSE client.
func (h *SSEHub) RemoveClient(client *SSEClient) {
	h.adapter.Unsubscribe(client.ID, client.Events)
}

// ConnectedCount returns the number of connected clients.
func (h *SSEHub) ConnectedCount() int {
	return h.adapter.ConnectedCount()
}

// SSEClient represents one SSE connection.
type SSEClient struct {
	ID     string
	Events <-chan *domain.RealtimeEvent
	Done   chan struct{}
	hub    *SSEHub
}

// Close closes the client connection.
func (c *SSEClient) Close() {
	close(c.Done)
	c.hub.RemoveClient(c)
}

// HeartbeatInterval returns the heartbeat interval.
func (c *SSEClient) HeartbeatInterval() time.Duration {
	return c.hub.heartbeatInterval
}

// =============================================================================
// Event Serialization
// =============================================================================

// SerializeEvent converts a RealtimeEvent to its SSE data payload.
func SerializeEvent(event *domain.RealtimeEvent) ([]byte, error) {
	payload := map[string]interface{}{
		"type":      event.Type,
		"payload":   event.Payload,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	return json.Marshal(payload)
}

// =============================================================================
// Interface Compliance
// =============================================================================

var _ out.RealtimePort = (*SSEAdapter)(nil)
