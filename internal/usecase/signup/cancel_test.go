package signup

import (
	"context"
	"testing"
	"time"

	domain "github.com/brightpaws/dogtrainer-api/internal/domain/session"
	"github.com/brightpaws/dogtrainer-api/internal/httperr"
	"github.com/brightpaws/dogtrainer-api/internal/models"
	"github.com/brightpaws/dogtrainer-api/internal/notify"
)

const responseWindow = 24 * time.Hour

func (f *fixture) cancelUC() *CancelSignup {
	promoter := NewPromoter(f.clock, responseWindow)
	return NewCancelSignup(f.repo, f.clock, f.audit, promoter)
}

func (f *fixture) waitlistedDog(owner uint, joined time.Time) (*models.Dog, *models.SessionWaitlist) {
	d := f.repo.SeedDog(models.Dog{OwnerID: owner, Name: "Queued", Active: true})
	e := f.repo.SeedWaitlistEntry(models.SessionWaitlist{
		SessionID:        f.session.ID,
		DogID:            d.ID,
		JoinedWaitlistAt: joined,
	})
	return d, e
}

func TestCancelPendingSignupByOwner(t *testing.T) {
	f := newFixture(t, 3, true)
	su := f.pendingSignup(t, f.dog.ID)

	cancelled, err := f.cancelUC().Execute(context.Background(), CancelSignupInput{
		SignupID:  su.ID,
		ActorID:   ownerID,
		ActorRole: models.RoleOwner,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != string(domain.SignupCancelled) {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}

	// Cancelling a pending signup frees no capacity, so no one is promoted.
	if n := len(f.repo.NotificationsByType(notify.EventWaitlistSpotAvailable)); n != 0 {
		t.Errorf("expected no promotion notification, got %d", n)
	}
}

func TestCancelApprovedSignupPromotesOldestEntry(t *testing.T) {
	f := newFixture(t, 1, true)

	su := f.pendingSignup(t, f.dog.ID)
	approveUC := NewApproveSignup(f.repo, f.clock, f.audit)
	if _, err := approveUC.Execute(context.Background(), su.ID, trainerID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	// Two dogs queue behind the approved one; the earlier joiner must win.
	lateOwner := uint(40)
	_, second := f.waitlistedDog(lateOwner, testNow.Add(2*time.Minute))
	firstDog, first := f.waitlistedDog(otherID, testNow.Add(time.Minute))

	_, err := f.cancelUC().Execute(context.Background(), CancelSignupInput{
		SignupID:  su.ID,
		ActorID:   ownerID,
		ActorRole: models.RoleOwner,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	notes := f.repo.NotificationsByType(notify.EventWaitlistSpotAvailable)
	if len(notes) != 1 {
		t.Fatalf("expected exactly 1 promotion notification, got %d", len(notes))
	}
	if notes[0].RecipientID != firstDog.OwnerID {
		t.Errorf("promoted owner = %d, want FIFO head %d", notes[0].RecipientID, firstDog.OwnerID)
	}

	promoted, _ := f.repo.GetWaitlistEntry(context.Background(), first.ID)
	if !promoted.Notified || promoted.NotifiedAt == nil {
		t.Error("FIFO head not marked notified")
	}

	untouched, _ := f.repo.GetWaitlistEntry(context.Background(), second.ID)
	if untouched.Notified {
		t.Error("second entry must stay unnotified")
	}
}

func TestPromoterRenotifiesAfterResponseWindow(t *testing.T) {
	f := newFixture(t, 1, true)
	_, entry := f.waitlistedDog(otherID, testNow)

	notified := testNow
	entry.Notified = true
	entry.NotifiedAt = &notified

	promoter := NewPromoter(f.clock, responseWindow)

	// Within the window the notified head keeps its hold; nothing happens.
	f.clock.Set(testNow.Add(responseWindow - time.Minute))
	if err := promoter.Promote(context.Background(), f.repo, f.session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(f.repo.NotificationsByType(notify.EventWaitlistSpotAvailable)); n != 0 {
		t.Fatalf("expected no re-notification inside the window, got %d", n)
	}

	// Once the window lapses the same entry is offered the spot again.
	f.clock.Set(testNow.Add(responseWindow + time.Minute))
	if err := promoter.Promote(context.Background(), f.repo, f.session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	notes := f.repo.NotificationsByType(notify.EventWaitlistSpotAvailable)
	if len(notes) != 1 {
		t.Fatalf("expected 1 re-notification after the window, got %d", len(notes))
	}
}

func TestPromoterDoesNothingWhenFull(t *testing.T) {
	f := newFixture(t, 1, true)
	f.approveDogs(1)
	f.waitlistedDog(otherID, testNow)

	promoter := NewPromoter(f.clock, responseWindow)
	if err := promoter.Promote(context.Background(), f.repo, f.session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := len(f.repo.NotificationsByType(notify.EventWaitlistSpotAvailable)); n != 0 {
		t.Errorf("expected no promotion on a full session, got %d", n)
	}
}

func TestCancelByTrainer(t *testing.T) {
	f := newFixture(t, 3, true)
	su := f.pendingSignup(t, f.dog.ID)

	_, err := f.cancelUC().Execute(context.Background(), CancelSignupInput{
		SignupID:  su.ID,
		ActorID:   trainerID,
		ActorRole: models.RoleTrainer,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	notes := f.repo.NotificationsByType(notify.EventSignupCancelled)
	if len(notes) != 1 || notes[0].RecipientID != ownerID {
		t.Errorf("expected cancellation notification to owner %d", ownerID)
	}
}

func TestCancelRejectsUnrelatedActor(t *testing.T) {
	f := newFixture(t, 3, true)
	su := f.pendingSignup(t, f.dog.ID)

	_, err := f.cancelUC().Execute(context.Background(), CancelSignupInput{
		SignupID:  su.ID,
		ActorID:   otherID,
		ActorRole: models.RoleOwner,
	})
	if !httperr.IsBusiness(err, httperr.CodeUnauthorized) {
		t.Fatalf("expected %s, got %v", httperr.CodeUnauthorized, err)
	}
}

func TestCancelTwiceFails(t *testing.T) {
	f := newFixture(t, 3, true)
	su := f.pendingSignup(t, f.dog.ID)

	in := CancelSignupInput{SignupID: su.ID, ActorID: ownerID, ActorRole: models.RoleOwner}

	if _, err := f.cancelUC().Execute(context.Background(), in); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}

	_, err := f.cancelUC().Execute(context.Background(), in)
	if !httperr.IsBusiness(err, httperr.CodeInvalidState) {
		t.Fatalf("expected %s, got %v", httperr.CodeInvalidState, err)
	}
}
