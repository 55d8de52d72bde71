package session

import (
	"context"
	"testing"
	"time"

	"github.com/brightpaws/dogtrainer-api/internal/models"
)

// countRepo stubs only the count the ledger reads; everything else panics if
// touched.
type countRepo struct {
	Repository
	approved int
}

func (r countRepo) CountApprovedSignups(ctx context.Context, sessionID uint) (int, error) {
	return r.approved, nil
}

func TestLedgerAvailableSpots(t *testing.T) {
	s := &models.Session{ID: 1, Capacity: 3}

	cases := []struct {
		approved int
		spots    int
		full     bool
	}{
		{0, 3, false},
		{2, 1, false},
		{3, 0, true},
		{5, 0, true}, // over-approved data never reports negative spots
	}

	for _, tc := range cases {
		ledger := NewLedger(countRepo{approved: tc.approved})

		spots, err := ledger.AvailableSpots(context.Background(), s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if spots != tc.spots {
			t.Errorf("approved=%d: spots = %d, want %d", tc.approved, spots, tc.spots)
		}

		full, err := ledger.IsFull(context.Background(), s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if full != tc.full {
			t.Errorf("approved=%d: full = %v, want %v", tc.approved, full, tc.full)
		}
	}
}

func TestLedgerCanAcceptSignup(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	cases := []struct {
		name     string
		status   Status
		start    time.Time
		approved int
		waitlist bool
		want     bool
	}{
		{"open with spots", StatusScheduled, future, 1, false, true},
		{"full with waitlist", StatusScheduled, future, 3, true, true},
		{"full without waitlist", StatusScheduled, future, 3, false, false},
		{"already started", StatusScheduled, past, 0, true, false},
		{"in progress", StatusInProgress, future, 0, true, false},
		{"cancelled", StatusCancelled, future, 0, true, false},
		{"completed", StatusCompleted, future, 0, true, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &models.Session{
				ID:              1,
				Status:          string(tc.status),
				StartTime:       tc.start,
				Capacity:        3,
				WaitlistEnabled: tc.waitlist,
			}

			ledger := NewLedger(countRepo{approved: tc.approved})
			got, err := ledger.CanAcceptSignup(context.Background(), s, now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("CanAcceptSignup = %v, want %v", got, tc.want)
			}
		})
	}
}
