package models

import "time"

// SessionWaitlist is a FIFO queue entry for a dog that could not join a full
// session directly. JoinedWaitlistAt (id as tiebreak) defines promotion order.
type SessionWaitlist struct {
	ID uint `gorm:"primaryKey" json:"id"`

	SessionID uint    `gorm:"uniqueIndex:idx_waitlist_session_dog" json:"session_id"`
	Session   Session `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"session"`

	DogID uint `gorm:"uniqueIndex:idx_waitlist_session_dog" json:"dog_id"`
	Dog   Dog  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"dog"`

	JoinedWaitlistAt time.Time `gorm:"index" json:"joined_waitlist_at"`

	Notified   bool       `gorm:"default:false" json:"notified"`
	NotifiedAt *time.Time `json:"notified_at"`

	CreatedAt time.Time `json:"created_at"`
}
