// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// Actions carried by BookingEvent.
const (
	ActionCreated   = "created"
	ActionCancelled = "cancelled"
)

// BookingEvent is published whenever a booking is created or cancelled.
// It carries enough information for downstream consumers to log, notify
// or feed analytics without querying the primary database.  Cancellation
// events omit the interval fields when the handler no longer has them.
type BookingEvent struct {
	Action     string `json:"action"` // created | cancelled
	BookingID  uint64 `json:"booking_id"`
	UserID     uint64 `json:"user_id"`
	RoomID     uint64 `json:"room_id,omitempty"`
	StartTime  string `json:"start_time,omitempty"`
	EndTime    string `json:"end_time,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
