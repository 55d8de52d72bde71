package models

import "time"

// SessionSignup is one dog's request to occupy a capacity slot in a session.
// Only one active (pending/approved) row may exist per (session, dog); the
// partial unique index enforcing that is created in internal/db.
type SessionSignup struct {
	ID uint `gorm:"primaryKey" json:"id"`

	SessionID uint    `gorm:"index:idx_signups_session_status" json:"session_id"`
	Session   Session `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"session"`

	DogID uint `gorm:"index" json:"dog_id"`
	Dog   Dog  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"dog"`

	Status string `gorm:"size:20;default:'pending';index:idx_signups_session_status" json:"status"`

	SignedUpAt  time.Time  `json:"signed_up_at"`
	ApprovedAt  *time.Time `json:"approved_at"`
	ApprovedBy  *uint      `json:"approved_by"`
	CancelledAt *time.Time `json:"cancelled_at"`

	RejectionReason string `gorm:"size:255" json:"rejection_reason"`
	Notes           string `gorm:"size:500" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
