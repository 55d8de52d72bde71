package session

import (
	"testing"
	"time"

	"github.com/brightpaws/dogtrainer-api/internal/httperr"
	"github.com/brightpaws/dogtrainer-api/internal/models"
)

func scheduledSession(start time.Time) *models.Session {
	return &models.Session{
		ID:                  1,
		Status:              string(StatusScheduled),
		StartTime:           start,
		EndTime:             start.Add(2 * time.Hour),
		Capacity:            5,
		MinimumParticipants: 2,
	}
}

func TestStartRequiresStartTimeReached(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s := scheduledSession(now.Add(time.Hour))

	err := Start(s, 3, now)
	if !httperr.IsBusiness(err, httperr.CodeSessionNotStarted) {
		t.Fatalf("expected %s, got %v", httperr.CodeSessionNotStarted, err)
	}
	if s.Status != string(StatusScheduled) {
		t.Errorf("status changed to %s on failed start", s.Status)
	}
}

func TestStartRequiresMinimumParticipants(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s := scheduledSession(now.Add(-time.Minute))

	err := Start(s, 1, now)
	if !httperr.IsBusiness(err, httperr.CodeMinimumNotReached) {
		t.Fatalf("expected %s, got %v", httperr.CodeMinimumNotReached, err)
	}
}

func TestStartHappyPath(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s := scheduledSession(now.Add(-time.Minute))

	if err := Start(s, 2, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Status != string(StatusInProgress) {
		t.Errorf("status = %s, want in_progress", s.Status)
	}
	if s.StartedAt == nil || !s.StartedAt.Equal(now) {
		t.Errorf("StartedAt = %v, want %v", s.StartedAt, now)
	}
}

func TestCompleteFromInProgress(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := scheduledSession(now.Add(-3 * time.Hour))
	s.Status = string(StatusInProgress)

	if err := Complete(s, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Status != string(StatusCompleted) {
		t.Errorf("status = %s, want completed", s.Status)
	}
}

func TestCompleteFromScheduledBeforeStart(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s := scheduledSession(now.Add(time.Hour))

	err := Complete(s, now)
	if !httperr.IsBusiness(err, httperr.CodeSessionNotStarted) {
		t.Fatalf("expected %s, got %v", httperr.CodeSessionNotStarted, err)
	}
}

func TestCompleteFromScheduledAfterStart(t *testing.T) {
	// A trainer who never pressed start can still close out the session.
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := scheduledSession(now.Add(-3 * time.Hour))

	if err := Complete(s, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTerminalStatesRejectAllTransitions(t *testing.T) {
	now := time.Now()

	for _, terminal := range []Status{StatusCompleted, StatusCancelled} {
		s := scheduledSession(now.Add(-time.Hour))
		s.Status = string(terminal)

		if err := Start(s, 5, now); !httperr.IsBusiness(err, httperr.CodeInvalidState) {
			t.Errorf("start from %s: expected invalid_state, got %v", terminal, err)
		}
		if err := Complete(s, now); !httperr.IsBusiness(err, httperr.CodeInvalidState) {
			t.Errorf("complete from %s: expected invalid_state, got %v", terminal, err)
		}
		if err := Cancel(s, "x", now); !httperr.IsBusiness(err, httperr.CodeInvalidState) {
			t.Errorf("cancel from %s: expected invalid_state, got %v", terminal, err)
		}
	}
}

func TestCancelRecordsReason(t *testing.T) {
	now := time.Now()
	s := scheduledSession(now.Add(time.Hour))

	if err := Cancel(s, "trainer sick", now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Status != string(StatusCancelled) {
		t.Errorf("status = %s, want cancelled", s.Status)
	}
	if s.CancellationReason != "trainer sick" {
		t.Errorf("reason = %q", s.CancellationReason)
	}
	if s.CancelledAt == nil {
		t.Error("CancelledAt not set")
	}
}

func TestSignupTransitions(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name string
		from SignupStatus
		fn   func(su *models.SessionSignup) error
		ok   bool
	}{
		{"approve pending", SignupPending, func(su *models.SessionSignup) error { return ApproveSignup(su, 9, now) }, true},
		{"reject pending", SignupPending, func(su *models.SessionSignup) error { return RejectSignup(su, "full") }, true},
		{"cancel pending", SignupPending, func(su *models.SessionSignup) error { return CancelSignup(su, now) }, true},
		{"cancel approved", SignupApproved, func(su *models.SessionSignup) error { return CancelSignup(su, now) }, true},
		{"approve approved", SignupApproved, func(su *models.SessionSignup) error { return ApproveSignup(su, 9, now) }, false},
		{"reject approved", SignupApproved, func(su *models.SessionSignup) error { return RejectSignup(su, "x") }, false},
		{"approve rejected", SignupRejected, func(su *models.SessionSignup) error { return ApproveSignup(su, 9, now) }, false},
		{"cancel cancelled", SignupCancelled, func(su *models.SessionSignup) error { return CancelSignup(su, now) }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			su := &models.SessionSignup{ID: 1, Status: string(tc.from)}
			err := tc.fn(su)

			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !httperr.IsBusiness(err, httperr.CodeInvalidState) {
				t.Fatalf("expected invalid_state, got %v", err)
			}
		})
	}
}

func TestApproveSignupRecordsApprover(t *testing.T) {
	now := time.Now()
	su := &models.SessionSignup{ID: 1, Status: string(SignupPending)}

	if err := ApproveSignup(su, 42, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if su.ApprovedBy == nil || *su.ApprovedBy != 42 {
		t.Errorf("ApprovedBy = %v, want 42", su.ApprovedBy)
	}
	if su.ApprovedAt == nil {
		t.Error("ApprovedAt not set")
	}
}

func TestResize(t *testing.T) {
	cases := []struct {
		name     string
		status   Status
		approved int
		capacity int
		code     string
	}{
		{"grow", StatusScheduled, 2, 10, ""},
		{"shrink to approved count", StatusScheduled, 3, 3, ""},
		{"shrink below approved count", StatusScheduled, 3, 2, httperr.CodeCapacityExceeded},
		{"zero capacity", StatusScheduled, 0, 0, "invalid_capacity"},
		{"in_progress is frozen", StatusInProgress, 0, 10, httperr.CodeInvalidState},
		{"cancelled is frozen", StatusCancelled, 0, 10, httperr.CodeInvalidState},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &models.Session{Status: string(tc.status), Capacity: 5}
			err := Resize(s, tc.approved, tc.capacity)

			if tc.code == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if s.Capacity != tc.capacity {
					t.Errorf("capacity = %d, want %d", s.Capacity, tc.capacity)
				}
				return
			}
			if !httperr.IsBusiness(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
			if s.Capacity != 5 {
				t.Errorf("capacity changed to %d on failed resize", s.Capacity)
			}
		})
	}
}
