package recurrence

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func activeTemplate(weekdays ...int) Template {
	return Template{
		Weekdays:  weekdays,
		StartTime: "09:00",
		EndTime:   "12:00",
		Active:    true,
	}
}

func TestExpandMonWedFriOverJanuary(t *testing.T) {
	// January 2024 starts on a Monday and has 31 days: 5 Mondays,
	// 5 Wednesdays, 4 Fridays.
	drafts := Expand(activeTemplate(1, 3, 5), date(2024, time.January, 1), date(2024, time.January, 31))

	if len(drafts) != 14 {
		t.Fatalf("expected 14 drafts, got %d", len(drafts))
	}

	first := drafts[0]
	if !first.Date.Equal(date(2024, time.January, 1)) {
		t.Errorf("first draft date = %v, want 2024-01-01", first.Date)
	}
	if first.Start.Hour() != 9 || first.Start.Minute() != 0 {
		t.Errorf("first draft start = %v, want 09:00", first.Start)
	}
	if first.End.Hour() != 12 {
		t.Errorf("first draft end = %v, want 12:00", first.End)
	}

	last := drafts[len(drafts)-1]
	if !last.Date.Equal(date(2024, time.January, 31)) {
		t.Errorf("last draft date = %v, want 2024-01-31", last.Date)
	}

	for _, d := range drafts {
		switch d.Date.Weekday() {
		case time.Monday, time.Wednesday, time.Friday:
		default:
			t.Errorf("draft on unexpected weekday %v (%v)", d.Date.Weekday(), d.Date)
		}
	}
}

func TestExpandSundayUsesISONumbering(t *testing.T) {
	// 2024-01-07 is a Sunday; ISO weekday 7 must match it, not 0.
	drafts := Expand(activeTemplate(7), date(2024, time.January, 1), date(2024, time.January, 7))

	if len(drafts) != 1 {
		t.Fatalf("expected 1 draft, got %d", len(drafts))
	}
	if !drafts[0].Date.Equal(date(2024, time.January, 7)) {
		t.Errorf("draft date = %v, want 2024-01-07", drafts[0].Date)
	}
}

func TestExpandInclusiveBounds(t *testing.T) {
	// Range is a single Monday; both bounds inclusive.
	drafts := Expand(activeTemplate(1), date(2024, time.January, 8), date(2024, time.January, 8))

	if len(drafts) != 1 {
		t.Fatalf("expected 1 draft, got %d", len(drafts))
	}
}

func TestExpandInactiveTemplate(t *testing.T) {
	tmpl := activeTemplate(1, 2, 3)
	tmpl.Active = false

	if drafts := Expand(tmpl, date(2024, time.January, 1), date(2024, time.January, 31)); drafts != nil {
		t.Errorf("inactive template expanded to %d drafts, want none", len(drafts))
	}
}

func TestExpandEmptyWeekdays(t *testing.T) {
	tmpl := activeTemplate()

	if drafts := Expand(tmpl, date(2024, time.January, 1), date(2024, time.January, 31)); drafts != nil {
		t.Errorf("empty weekday set expanded to %d drafts, want none", len(drafts))
	}
}

func TestExpandReversedRange(t *testing.T) {
	drafts := Expand(activeTemplate(1, 2, 3, 4, 5, 6, 7), date(2024, time.January, 31), date(2024, time.January, 1))

	if drafts != nil {
		t.Errorf("reversed range expanded to %d drafts, want none", len(drafts))
	}
}

func TestExpandMalformedTimes(t *testing.T) {
	tmpl := activeTemplate(1)
	tmpl.StartTime = "9am"

	if drafts := Expand(tmpl, date(2024, time.January, 1), date(2024, time.January, 31)); drafts != nil {
		t.Errorf("malformed start time expanded to %d drafts, want none", len(drafts))
	}
}

func TestExpandClampsToValidity(t *testing.T) {
	validFrom := date(2024, time.January, 10)
	validUntil := date(2024, time.January, 20)

	tmpl := activeTemplate(1, 2, 3, 4, 5, 6, 7)
	tmpl.ValidFrom = &validFrom
	tmpl.ValidUntil = &validUntil

	drafts := Expand(tmpl, date(2024, time.January, 1), date(2024, time.January, 31))

	if len(drafts) != 11 {
		t.Fatalf("expected 11 drafts inside validity window, got %d", len(drafts))
	}
	if drafts[0].Date.Before(validFrom) {
		t.Errorf("draft %v precedes valid_from", drafts[0].Date)
	}
	if drafts[len(drafts)-1].Date.After(validUntil) {
		t.Errorf("draft %v exceeds valid_until", drafts[len(drafts)-1].Date)
	}
}

func TestExpandHonorsLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}

	tmpl := activeTemplate(1)
	tmpl.Location = loc

	day := time.Date(2024, time.January, 8, 0, 0, 0, 0, loc)
	drafts := Expand(tmpl, day, day)
	if len(drafts) != 1 {
		t.Fatalf("expected 1 draft, got %d", len(drafts))
	}
	if drafts[0].Start.Location() != loc {
		t.Errorf("draft start location = %v, want %v", drafts[0].Start.Location(), loc)
	}
}
