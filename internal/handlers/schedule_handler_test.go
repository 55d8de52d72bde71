package handlers

import (
	"testing"
	"time"
)

func TestValidityRangeOK(t *testing.T) {
	day := func(d int) *time.Time {
		v := time.Date(2024, time.June, d, 0, 0, 0, 0, time.UTC)
		return &v
	}

	cases := []struct {
		name        string
		from, until *time.Time
		want        bool
	}{
		{"both open", nil, nil, true},
		{"open until", day(1), nil, true},
		{"open from", nil, day(1), true},
		{"ordered", day(1), day(30), true},
		{"same day", day(15), day(15), true},
		{"reversed", day(30), day(1), false},
	}

	for _, tc := range cases {
		if got := validityRangeOK(tc.from, tc.until); got != tc.want {
			t.Errorf("%s: validityRangeOK = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestValidTimeOfDay(t *testing.T) {
	for _, ok := range []string{"00:00", "09:30", "23:59"} {
		if !validTimeOfDay(ok) {
			t.Errorf("validTimeOfDay(%q) = false", ok)
		}
	}
	for _, bad := range []string{"", "24:00", "9:3", "noon", "09:30:00"} {
		if validTimeOfDay(bad) {
			t.Errorf("validTimeOfDay(%q) = true", bad)
		}
	}
}

func TestValidWeekdays(t *testing.T) {
	cases := []struct {
		days []int
		want bool
	}{
		{[]int{1, 3, 5}, true},
		{[]int{7}, true},
		{nil, false},
		{[]int{0}, false},
		{[]int{1, 8}, false},
	}

	for _, tc := range cases {
		if got := validWeekdays(tc.days); got != tc.want {
			t.Errorf("validWeekdays(%v) = %v, want %v", tc.days, got, tc.want)
		}
	}
}
