// Package notify builds outbox notification records. Records are written in
// the same transaction as the state change they describe; the relay binary
// publishes them to the broker afterwards, so delivery is decoupled from the
// mutation.
package notify

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/brightpaws/dogtrainer-api/internal/models"
)

const (
	EventSignupRequested       = "signup.requested"
	EventSignupApproved        = "signup.approved"
	EventSignupRejected        = "signup.rejected"
	EventSignupCancelled       = "signup.cancelled"
	EventWaitlistSpotAvailable = "waitlist.spot_available"
	EventSessionCancelled      = "session.cancelled"
)

// Message is the wire shape the relay publishes to the broker.
type Message struct {
	EventID     string          `json:"event_id"`
	EventType   string          `json:"event_type"`
	RecipientID uint            `json:"recipient_id"`
	Payload     json.RawMessage `json:"payload"`
}

// NewRecord builds an outbox row for the given event and recipient. The
// payload must be JSON-marshallable.
func NewRecord(eventType string, recipientID uint, payload map[string]any) (*models.Notification, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &models.Notification{
		EventID:     uuid.NewString(),
		EventType:   eventType,
		RecipientID: recipientID,
		Payload:     string(body),
	}, nil
}

// SessionPayload is the common payload base for session-scoped events.
func SessionPayload(s *models.Session) map[string]any {
	return map[string]any{
		"session_id":    s.ID,
		"session_title": s.Title,
		"start_time":    s.StartTime,
		"end_time":      s.EndTime,
	}
}
