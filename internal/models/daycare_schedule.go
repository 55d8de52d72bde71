package models

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// DaycareSchedule is a weekly recurrence template owned by a trainer.
// Generated sessions reference it but are never deleted with it; schedules
// are deactivated, not removed, to stop future generation.
type DaycareSchedule struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	TrainerID uint `gorm:"index" json:"trainer_id"`
	Trainer   User `gorm:"foreignKey:TrainerID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"trainer"`

	Title       string `gorm:"size:100;not null" json:"title"`
	Description string `gorm:"size:500" json:"description"`
	Location    string `gorm:"size:255" json:"location"`

	// ISO weekdays (1=Monday .. 7=Sunday), stored as CSV, e.g. "1,3,5".
	DaysOfWeek string `gorm:"size:20;not null" json:"days_of_week"`

	// Time-of-day in "15:04" format, interpreted in the trainer's timezone.
	StartTime string `gorm:"size:5;not null" json:"start_time"`
	EndTime   string `gorm:"size:5;not null" json:"end_time"`

	Capacity        int  `gorm:"not null" json:"capacity"`
	WaitlistEnabled bool `gorm:"default:true" json:"waitlist_enabled"`

	ValidFrom  *time.Time `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`

	Active bool    `gorm:"default:true" json:"active"`
	Price  float64 `json:"price"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Weekdays parses DaysOfWeek into a sorted, de-duplicated slice of ISO
// weekdays. Malformed or out-of-range entries are dropped.
func (s *DaycareSchedule) Weekdays() []int {
	seen := make(map[int]bool)
	var days []int
	for _, part := range strings.Split(s.DaysOfWeek, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || d < 1 || d > 7 || seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}

// FormatWeekdays is the inverse of Weekdays, for storing validated input.
func FormatWeekdays(days []int) string {
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, strconv.Itoa(d))
	}
	return strings.Join(parts, ",")
}
