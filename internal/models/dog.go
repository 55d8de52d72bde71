package models

import "time"

// Dog belongs to an owner user; signups and waitlist entries reference dogs,
// never owners directly.
type Dog struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OwnerID uint `gorm:"index" json:"owner_id"`
	Owner   User `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"owner"`

	Name  string `gorm:"size:100;not null" json:"name"`
	Breed string `gorm:"size:100" json:"breed"`
	Size  string `gorm:"size:20" json:"size"`
	Notes string `gorm:"size:500" json:"notes"`

	Active bool `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
