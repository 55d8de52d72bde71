package models

import "time"

// Notification is a transactional outbox row. It is written in the same
// transaction as the state change that produced it; the relay binary picks
// up unprocessed rows and publishes them to the broker. Delivery failures
// therefore never roll back the state change.
type Notification struct {
	ID uint `gorm:"primaryKey" json:"id"`

	EventID     string `gorm:"size:36;uniqueIndex;not null" json:"event_id"`
	EventType   string `gorm:"size:50;not null" json:"event_type"`
	RecipientID uint   `gorm:"index" json:"recipient_id"`

	Payload string `gorm:"type:text" json:"payload"`

	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at"`
}
