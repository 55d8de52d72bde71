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

func TestClaimConvertsEntryToPendingSignup(t *testing.T) {
	f := newFixture(t, 1, true)
	_, entry := f.waitlistedDog(ownerID, testNow)

	uc := NewClaimSpot(f.repo, f.clock, f.audit)

	su, err := uc.Execute(context.Background(), entry.ID, ownerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if su.Status != string(domain.SignupPending) {
		t.Errorf("status = %s, want pending", su.Status)
	}

	if _, err := f.repo.GetWaitlistEntry(context.Background(), entry.ID); err == nil {
		t.Error("waitlist entry must be deleted by a successful claim")
	}

	// The trainer reviews the claim like any other request.
	notes := f.repo.NotificationsByType(notify.EventSignupRequested)
	if len(notes) != 1 || notes[0].RecipientID != trainerID {
		t.Errorf("expected 1 request notification to trainer %d", trainerID)
	}
}

func TestClaimWithoutPriorNotificationIsAllowed(t *testing.T) {
	f := newFixture(t, 1, true)
	_, entry := f.waitlistedDog(ownerID, testNow)

	if entry.Notified {
		t.Fatal("fixture entry unexpectedly notified")
	}

	uc := NewClaimSpot(f.repo, f.clock, f.audit)
	if _, err := uc.Execute(context.Background(), entry.ID, ownerID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClaimRejectsForeignOwner(t *testing.T) {
	f := newFixture(t, 1, true)
	_, entry := f.waitlistedDog(ownerID, testNow)

	uc := NewClaimSpot(f.repo, f.clock, f.audit)

	_, err := uc.Execute(context.Background(), entry.ID, otherID)
	if !httperr.IsBusiness(err, httperr.CodeUnauthorized) {
		t.Fatalf("expected %s, got %v", httperr.CodeUnauthorized, err)
	}

	if _, err := f.repo.GetWaitlistEntry(context.Background(), entry.ID); err != nil {
		t.Error("failed claim must leave the waitlist entry in place")
	}
}

func TestClaimOnCancelledSession(t *testing.T) {
	f := newFixture(t, 1, true)
	_, entry := f.waitlistedDog(ownerID, testNow)

	f.session.Status = string(domain.StatusCancelled)

	uc := NewClaimSpot(f.repo, f.clock, f.audit)

	_, err := uc.Execute(context.Background(), entry.ID, ownerID)
	if !httperr.IsBusiness(err, httperr.CodeNotAcceptingSignups) {
		t.Fatalf("expected %s, got %v", httperr.CodeNotAcceptingSignups, err)
	}
}

func TestClaimOnStartedSession(t *testing.T) {
	f := newFixture(t, 1, true)
	_, entry := f.waitlistedDog(ownerID, testNow)

	f.clock.Set(f.session.StartTime.Add(time.Minute))

	uc := NewClaimSpot(f.repo, f.clock, f.audit)

	_, err := uc.Execute(context.Background(), entry.ID, ownerID)
	if !httperr.IsBusiness(err, httperr.CodeNotAcceptingSignups) {
		t.Fatalf("expected %s, got %v", httperr.CodeNotAcceptingSignups, err)
	}
}

func TestClaimMissingEntry(t *testing.T) {
	f := newFixture(t, 1, true)

	uc := NewClaimSpot(f.repo, f.clock, f.audit)

	_, err := uc.Execute(context.Background(), 999, ownerID)
	if !httperr.IsBusiness(err, httperr.CodeWaitlistEntryMissing) {
		t.Fatalf("expected %s, got %v", httperr.CodeWaitlistEntryMissing, err)
	}
}

func (f *fixture) withdrawUC() *WithdrawWaitlist {
	return NewWithdrawWaitlist(f.repo, f.audit, NewPromoter(f.clock, responseWindow))
}

func TestWithdrawRemovesEntry(t *testing.T) {
	f := newFixture(t, 1, true)
	_, entry := f.waitlistedDog(ownerID, testNow)

	if err := f.withdrawUC().Execute(context.Background(), entry.ID, ownerID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := f.repo.GetWaitlistEntry(context.Background(), entry.ID); err == nil {
		t.Error("withdrawn entry still present")
	}
}

func TestWithdrawRejectsForeignOwner(t *testing.T) {
	f := newFixture(t, 1, true)
	_, entry := f.waitlistedDog(ownerID, testNow)

	err := f.withdrawUC().Execute(context.Background(), entry.ID, otherID)
	if !httperr.IsBusiness(err, httperr.CodeUnauthorized) {
		t.Fatalf("expected %s, got %v", httperr.CodeUnauthorized, err)
	}
}

// A notified head that bows out must not strand the rest of the queue while
// a spot is still open.
func TestWithdrawOfNotifiedHeadPromotesNext(t *testing.T) {
	f := newFixture(t, 1, true)

	notifiedAt := testNow.Add(-time.Hour)
	headDog := f.repo.SeedDog(models.Dog{OwnerID: ownerID, Name: "Head", Active: true})
	head := f.repo.SeedWaitlistEntry(models.SessionWaitlist{
		SessionID:        f.session.ID,
		DogID:            headDog.ID,
		JoinedWaitlistAt: testNow.Add(-2 * time.Hour),
		Notified:         true,
		NotifiedAt:       &notifiedAt,
	})
	nextDog, _ := f.waitlistedDog(otherID, testNow.Add(-time.Hour))

	if err := f.withdrawUC().Execute(context.Background(), head.ID, ownerID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	promos := f.repo.NotificationsByType(notify.EventWaitlistSpotAvailable)
	if len(promos) != 1 || promos[0].RecipientID != nextDog.OwnerID {
		t.Fatalf("expected promotion notification to owner %d, got %v", nextDog.OwnerID, promos)
	}

	entries, _ := f.repo.ListWaitlist(context.Background(), f.session.ID)
	if len(entries) != 1 || !entries[0].Notified {
		t.Errorf("remaining entry should be the notified successor, got %v", entries)
	}
}
