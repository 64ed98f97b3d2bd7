package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "TURN_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewTurnCompleted fires when a streamed turn produced a synthesized
// document.
func NewTurnCompleted(threadID, turnID uuid.UUID, scopeCount int, total float64) Event {
	return BaseEvent{
		Type: "TURN_COMPLETED",
		Data: map[string]interface{}{
			"thread_id":   threadID.String(),
			"turn_id":     turnID.String(),
			"scope_count": scopeCount,
			"total":       total,
		},
		OccurredAt: time.Now(),
	}
}

// NewTurnFailed fires when a streamed turn ended in a failure state.
func NewTurnFailed(threadID, turnID uuid.UUID, reason string) Event {
	return BaseEvent{
		Type: "TURN_FAILED",
		Data: map[string]interface{}{
			"thread_id": threadID.String(),
			"turn_id":   turnID.String(),
			"reason":    reason,
		},
		OccurredAt: time.Now(),
	}
}

// NewDocumentSynced fires after the merge engine installed a new tree.
func NewDocumentSynced(documentID uuid.UUID, title string) Event {
	return BaseEvent{
		Type: "DOCUMENT_SYNCED",
		Data: map[string]interface{}{
			"document_id": documentID.String(),
			"title":       title,
		},
		OccurredAt: time.Now(),
	}
}
