package signup

import (
	"context"
	"testing"
	"time"

	"github.com/brightpaws/dogtrainer-api/internal/audit"
	"github.com/brightpaws/dogtrainer-api/internal/clock"
	domain "github.com/brightpaws/dogtrainer-api/internal/domain/session"
	"github.com/brightpaws/dogtrainer-api/internal/httperr"
	"github.com/brightpaws/dogtrainer-api/internal/models"
	"github.com/brightpaws/dogtrainer-api/internal/notify"
	"github.com/brightpaws/dogtrainer-api/internal/testfixtures"
)

const (
	trainerID = uint(10)
	ownerID   = uint(20)
	otherID   = uint(30)
)

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	repo    *testfixtures.MemRepo
	clock   *clock.Fake
	audit   *audit.Dispatcher
	session *models.Session
	dog     *models.Dog
}

func newFixture(t *testing.T, capacity int, waitlist bool) *fixture {
	t.Helper()

	repo := testfixtures.NewMemRepo()

	dog := repo.SeedDog(models.Dog{OwnerID: ownerID, Name: "Rex", Active: true})
	session := repo.SeedSession(models.Session{
		TrainerID:           trainerID,
		Title:               "Group obedience",
		StartTime:           testNow.Add(24 * time.Hour),
		EndTime:             testNow.Add(26 * time.Hour),
		Capacity:            capacity,
		MinimumParticipants: 1,
		WaitlistEnabled:     waitlist,
		Status:              string(domain.StatusScheduled),
	})

	return &fixture{
		repo:    repo,
		clock:   clock.NewFake(testNow),
		audit:   audit.NewDispatcher(nil),
		session: session,
		dog:     dog,
	}
}

// approveDogs fills approved capacity with freshly seeded dogs from other
// owners.
func (f *fixture) approveDogs(n int) {
	for i := 0; i < n; i++ {
		d := f.repo.SeedDog(models.Dog{OwnerID: otherID, Name: "Filler", Active: true})
		f.repo.SeedSignup(models.SessionSignup{
			SessionID:  f.session.ID,
			DogID:      d.ID,
			Status:     string(domain.SignupApproved),
			SignedUpAt: testNow.Add(-time.Hour),
		})
	}
}

func TestRequestSignupCreatesPending(t *testing.T) {
	f := newFixture(t, 3, true)
	uc := NewRequestSignup(f.repo, f.clock, f.audit)

	result, err := uc.Execute(context.Background(), RequestSignupInput{
		SessionID: f.session.ID,
		DogID:     f.dog.ID,
		OwnerID:   ownerID,
		Notes:     "first time",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Queued {
		t.Fatal("expected a pending signup, got a waitlist entry")
	}
	if result.Signup.Status != string(domain.SignupPending) {
		t.Errorf("status = %s, want pending", result.Signup.Status)
	}
	if !result.Signup.SignedUpAt.Equal(testNow) {
		t.Errorf("SignedUpAt = %v, want %v", result.Signup.SignedUpAt, testNow)
	}

	// Pending signups never consume capacity.
	approved, _ := f.repo.CountApprovedSignups(context.Background(), f.session.ID)
	if approved != 0 {
		t.Errorf("approved count = %d, want 0", approved)
	}

	notes := f.repo.NotificationsByType(notify.EventSignupRequested)
	if len(notes) != 1 {
		t.Fatalf("expected 1 trainer notification, got %d", len(notes))
	}
	if notes[0].RecipientID != trainerID {
		t.Errorf("notification recipient = %d, want trainer %d", notes[0].RecipientID, trainerID)
	}
}

func TestRequestSignupQueuesWhenFull(t *testing.T) {
	f := newFixture(t, 2, true)
	f.approveDogs(2)

	uc := NewRequestSignup(f.repo, f.clock, f.audit)

	result, err := uc.Execute(context.Background(), RequestSignupInput{
		SessionID: f.session.ID,
		DogID:     f.dog.ID,
		OwnerID:   ownerID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Queued || result.WaitlistEntry == nil {
		t.Fatal("expected the dog to be queued on the waitlist")
	}
	if result.WaitlistEntry.Notified {
		t.Error("fresh waitlist entry must not be marked notified")
	}

	// Queuing is silent for the trainer.
	if n := len(f.repo.NotificationsByType(notify.EventSignupRequested)); n != 0 {
		t.Errorf("expected no trainer notification for a queued dog, got %d", n)
	}
}

func TestRequestSignupRejectsWhenFullWithoutWaitlist(t *testing.T) {
	f := newFixture(t, 1, false)
	f.approveDogs(1)

	uc := NewRequestSignup(f.repo, f.clock, f.audit)

	_, err := uc.Execute(context.Background(), RequestSignupInput{
		SessionID: f.session.ID,
		DogID:     f.dog.ID,
		OwnerID:   ownerID,
	})
	if !httperr.IsBusiness(err, httperr.CodeNotAcceptingSignups) {
		t.Fatalf("expected %s, got %v", httperr.CodeNotAcceptingSignups, err)
	}
}

func TestRequestSignupRejectsDuplicate(t *testing.T) {
	f := newFixture(t, 3, true)
	uc := NewRequestSignup(f.repo, f.clock, f.audit)

	in := RequestSignupInput{SessionID: f.session.ID, DogID: f.dog.ID, OwnerID: ownerID}

	if _, err := uc.Execute(context.Background(), in); err != nil {
		t.Fatalf("first request failed: %v", err)
	}

	_, err := uc.Execute(context.Background(), in)
	if !httperr.IsBusiness(err, httperr.CodeAlreadySignedUp) {
		t.Fatalf("expected %s, got %v", httperr.CodeAlreadySignedUp, err)
	}
}

func TestRequestSignupRejectsDuplicateWaitlistEntry(t *testing.T) {
	f := newFixture(t, 1, true)
	f.approveDogs(1)

	uc := NewRequestSignup(f.repo, f.clock, f.audit)
	in := RequestSignupInput{SessionID: f.session.ID, DogID: f.dog.ID, OwnerID: ownerID}

	if _, err := uc.Execute(context.Background(), in); err != nil {
		t.Fatalf("first request failed: %v", err)
	}

	_, err := uc.Execute(context.Background(), in)
	if !httperr.IsBusiness(err, httperr.CodeAlreadySignedUp) {
		t.Fatalf("expected %s, got %v", httperr.CodeAlreadySignedUp, err)
	}
}

func TestRequestSignupAllowsResignupAfterCancel(t *testing.T) {
	f := newFixture(t, 3, true)
	f.repo.SeedSignup(models.SessionSignup{
		SessionID:  f.session.ID,
		DogID:      f.dog.ID,
		Status:     string(domain.SignupCancelled),
		SignedUpAt: testNow.Add(-time.Hour),
	})

	uc := NewRequestSignup(f.repo, f.clock, f.audit)

	result, err := uc.Execute(context.Background(), RequestSignupInput{
		SessionID: f.session.ID,
		DogID:     f.dog.ID,
		OwnerID:   ownerID,
	})
	if err != nil {
		t.Fatalf("re-signup after cancellation failed: %v", err)
	}
	if result.Queued {
		t.Error("expected a pending signup")
	}
}

func TestRequestSignupRejectsStartedSession(t *testing.T) {
	f := newFixture(t, 3, true)
	f.clock.Set(f.session.StartTime.Add(time.Minute))

	uc := NewRequestSignup(f.repo, f.clock, f.audit)

	_, err := uc.Execute(context.Background(), RequestSignupInput{
		SessionID: f.session.ID,
		DogID:     f.dog.ID,
		OwnerID:   ownerID,
	})
	if !httperr.IsBusiness(err, httperr.CodeNotAcceptingSignups) {
		t.Fatalf("expected %s, got %v", httperr.CodeNotAcceptingSignups, err)
	}
}

func TestRequestSignupRejectsForeignDog(t *testing.T) {
	f := newFixture(t, 3, true)
	uc := NewRequestSignup(f.repo, f.clock, f.audit)

	_, err := uc.Execute(context.Background(), RequestSignupInput{
		SessionID: f.session.ID,
		DogID:     f.dog.ID,
		OwnerID:   otherID,
	})
	if !httperr.IsBusiness(err, httperr.CodeNotFound) {
		t.Fatalf("expected %s, got %v", httperr.CodeNotFound, err)
	}
}
