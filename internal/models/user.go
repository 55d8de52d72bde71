package models

import "time"

const (
	RoleOwner   = "owner"
	RoleTrainer = "trainer"
)

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Phone        string `gorm:"size:20" json:"phone"`
	Role         string `gorm:"size:20;default:'owner'" json:"role"`

	// IANA timezone used to interpret date/time input from this user.
	Timezone string `gorm:"size:50" json:"timezone"`

	Bio      string `gorm:"size:500" json:"bio"`
	Location string `gorm:"size:100" json:"location"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
