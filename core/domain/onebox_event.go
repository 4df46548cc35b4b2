package domain

// Realtime event types pushed to SSE clients.
const (
	EventNewEmail     = "new-email"
	EventSyncProgress = "sync-progress"
)

// SyncProgress reports backfill progress for one account/folder.
type SyncProgress struct {
	AccountID string `json:"accountId"`
	Folder    string `json:"folder"`
	Processed int    `json:"processed"`
}

// RealtimeEvent is the envelope broadcast to connected clients.
type RealtimeEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}
