// Package recurrence expands weekly daycare templates into concrete session
// time slots. Expansion is pure: persistence and duplicate-skipping belong
// to the caller.
package recurrence

import "time"

// Template is the recurrence definition extracted from a daycare schedule.
type Template struct {
	// ISO weekdays, 1=Monday .. 7=Sunday.
	Weekdays []int

	// Time-of-day in "15:04" format, anchored to each matching date.
	StartTime string
	EndTime   string

	ValidFrom  *time.Time
	ValidUntil *time.Time

	Active bool

	// Location in which dates and times-of-day are interpreted. Defaults to
	// UTC when nil.
	Location *time.Location
}

// Draft is one expanded occurrence.
type Draft struct {
	Date  time.Time // midnight of the occurrence date, in the template location
	Start time.Time
	End   time.Time
}

// Expand produces one draft per calendar date in [rangeStart, rangeEnd]
// (inclusive) whose ISO weekday is in the template's set, clamped to the
// template's validity bounds. Inactive templates, empty weekday sets and
// reversed ranges expand to nothing.
func Expand(t Template, rangeStart, rangeEnd time.Time) []Draft {
	if !t.Active || len(t.Weekdays) == 0 {
		return nil
	}

	loc := t.Location
	if loc == nil {
		loc = time.UTC
	}

	startHour, startMin, okStart := parseTimeOfDay(t.StartTime)
	endHour, endMin, okEnd := parseTimeOfDay(t.EndTime)
	if !okStart || !okEnd {
		return nil
	}

	weekdays := make(map[int]bool, len(t.Weekdays))
	for _, d := range t.Weekdays {
		weekdays[d] = true
	}

	from := dateOf(rangeStart.In(loc))
	until := dateOf(rangeEnd.In(loc))

	if t.ValidFrom != nil {
		if vf := dateOf(t.ValidFrom.In(loc)); vf.After(from) {
			from = vf
		}
	}
	if t.ValidUntil != nil {
		if vu := dateOf(t.ValidUntil.In(loc)); vu.Before(until) {
			until = vu
		}
	}

	var drafts []Draft
	for d := from; !d.After(until); d = d.AddDate(0, 0, 1) {
		if !weekdays[isoWeekday(d)] {
			continue
		}

		drafts = append(drafts, Draft{
			Date:  d,
			Start: time.Date(d.Year(), d.Month(), d.Day(), startHour, startMin, 0, 0, loc),
			End:   time.Date(d.Year(), d.Month(), d.Day(), endHour, endMin, 0, 0, loc),
		})
	}

	return drafts
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// isoWeekday maps time.Weekday (Sunday=0) to ISO (Monday=1 .. Sunday=7).
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func parseTimeOfDay(hm string) (hour, min int, ok bool) {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return 0, 0, false
	}
	return t.Hour(), t.Minute(), true
}
