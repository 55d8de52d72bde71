package models

import "time"

const (
	SessionTypeIndividual = "individual"
	SessionTypeGroup      = "group"
	SessionTypeDaycare    = "daycare"
)

// Session is a concrete bookable time slot with bounded capacity.
type Session struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Set when the session was generated from a daycare schedule.
	ScheduleID *uint            `gorm:"index" json:"schedule_id"`
	Schedule   *DaycareSchedule `gorm:"foreignKey:ScheduleID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"schedule,omitempty"`

	TrainerID uint `gorm:"index" json:"trainer_id"`
	Trainer   User `gorm:"foreignKey:TrainerID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"trainer"`

	Title       string `gorm:"size:100;not null" json:"title"`
	Description string `gorm:"size:500" json:"description"`
	Location    string `gorm:"size:255" json:"location"`

	StartTime time.Time `gorm:"index" json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Capacity            int `gorm:"not null" json:"capacity"`
	MinimumParticipants int `gorm:"default:1" json:"minimum_participants"`

	WaitlistEnabled bool    `gorm:"default:true" json:"waitlist_enabled"`
	SessionType     string  `gorm:"size:20;default:'group'" json:"session_type"`
	Price           float64 `json:"price"`

	Status string `gorm:"size:20;default:'scheduled'" json:"status"`

	CancellationReason string     `gorm:"size:255" json:"cancellation_reason"`
	StartedAt          *time.Time `json:"started_at"`
	CompletedAt        *time.Time `json:"completed_at"`
	CancelledAt        *time.Time `json:"cancelled_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
