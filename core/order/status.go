package order

// Status is an append-only order status update keyed by session.
type Status string

const (
	StatusDialing            Status = "dialing"
	StatusInConversation     Status = "in_conversation"
	StatusTransferred        Status = "transferred"
	StatusPlaced             Status = "placed"
	StatusVoicemailAbandoned Status = "voicemail_abandoned"
	StatusFailed             Status = "failed"
	StatusEnded              Status = "ended"
)

// Sink receives status updates. Delivery is best-effort: implementations
// must not block the caller and are never retried.
type Sink interface {
	Publish(sessionID string, status Status)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(sessionID string, status Status)

func (f SinkFunc) Publish(sessionID string, status Status) { f(sessionID, status) }

// NopSink discards all updates.
type NopSink struct{}

func (NopSink) Publish(string, Status) {}
