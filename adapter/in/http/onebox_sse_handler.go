package http

import (
	"bufio"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/parvatkhattak/onebox-email-aggregator/adapter/out/realtime"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/response"
)

// SSEHandler streams realtime events to browser clients.
type SSEHandler struct {
	hub *realtime.SSEHub
	log zerolog.Logger
}

func NewSSEHandler(hub *realtime.SSEHub, log zerolog.Logger) *SSEHandler {
	return &SSEHandler{
		hub: hub,
		log: log.With().Str("handler", "sse").Logger(),
	}
}

// Register registers realtime routes.
func (h *SSEHandler) Register(router fiber.Router) {
	router.Get("/events", h.Stream)
	router.Get("/events/status", h.Status)
}

// Stream handles an SSE connection. Each connection gets its own
// buffered channel; slow consumers drop events rather than blocking
// the ingest pipeline.
// GET /api/events
func (h *SSEHandler) Stream(c *fiber.Ctx) error {
	clientID := uuid.New().String()
	client := h.hub.CreateClient(clientID)

	h.log.Info().
		Str("client_id", clientID).
		Msg("SSE client connected")

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Transfer-Encoding", "chunked")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(client.HeartbeatInterval())
		defer ticker.Stop()
		defer func() {
			client.Close()
			h.log.Info().
				Str("client_id", clientID).
				Msg("SSE client disconnected")
		}()

		w.WriteString("event: connected\n")
		w.WriteString("data: {\"status\":\"connected\"}\n\n")
		w.Flush()

		for {
			select {
			case event, ok := <-client.Events:
				if !ok {
					return
				}

				data, err := realtime.SerializeEvent(event)
				if err != nil {
					h.log.Error().Err(err).Msg("failed to serialize event")
					continue
				}

				w.WriteString("event: ")
				w.WriteString(event.Type)
				w.WriteString("\n")
				w.WriteString("data: ")
				w.Write(data)
				w.WriteString("\n\n")

				if err := w.Flush(); err != nil {
					h.log.Debug().Err(err).Msg("client disconnected during write")
					return
				}

			case <-ticker.C:
				w.WriteString(": heartbeat\n\n")
				if err := w.Flush(); err != nil {
					h.log.Debug().Err(err).Msg("client disconnected during heartbeat")
					return
				}

			case <-client.Done:
				return
			}
		}
	})

	return nil
}

// Status reports the number of connected SSE clients.
// GET /api/events/status
func (h *SSEHandler) Status(c *fiber.Ctx) error {
	return response.OK(c, fiber.Map{
		"connected": h.hub.ConnectedCount(),
	})
}
