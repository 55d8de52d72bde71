package handlers

import (
	"time"

	"github.com/brightpaws/dogtrainer-api/internal/models"
	"github.com/brightpaws/dogtrainer-api/internal/timezone"
)

// locationForUser resolves the timezone all date/time input from this user
// is interpreted in.
func locationForUser(u *models.User) *time.Location {
	if u == nil {
		return timezone.Location("")
	}
	return timezone.Location(u.Timezone)
}

func parseDateIn(loc *time.Location, dateStr string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", dateStr, loc)
}

func parseDateTimeIn(loc *time.Location, dateStr, timeStr string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", dateStr+" "+timeStr, loc)
}
